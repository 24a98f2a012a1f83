package service

import (
	"net/http"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/crypto/bcrypt"

	"github.com/accountd-dev/accountd/internal/domain"
	"github.com/accountd-dev/accountd/internal/errors"
	"github.com/accountd-dev/accountd/internal/logger"
	"github.com/accountd-dev/accountd/internal/utils"
)

const minPasswordLen = 8

// Bounded retry for the (unlikely) case a freshly generated code collides
// with one already stored.
const maxCodeAttempts = 5

type AccountService interface {
	Register(email, password string) (domain.Account, error)
	Activate(code string) (domain.Account, string, error)
	ResendActivation(email string) error
	Login(email, password string) (domain.Account, string, error)
	RequestReset(email string) error
	FulfillReset(code, newPassword string) (domain.Account, string, error)
	ChangePassword(acc domain.Account, oldPassword, newPassword, repeatPassword string) error
	ChangeEmail(acc domain.Account, newEmail, password string) error
	UpdateProfile(acc domain.Account, displayName string) (domain.Account, error)
	UploadPhoto(acc domain.Account, data []byte) (domain.Account, error)
}

type AccountStorage interface {
	SaveAccount(acc domain.Account) (domain.Account, error)
	Account(id domain.AccountId) (domain.Account, error)
	AccountByEmail(email string) (domain.Account, error)
	AccountByRegistrationCode(code string) (domain.Account, error)
	AccountByResetCode(code string) (domain.Account, error)
	UpdateAccount(acc domain.Account) (domain.Account, error)
	DeleteAccount(id domain.AccountId) error
}

type Mailer interface {
	IsCorrect(email string) error
	SendRegistration(recipient, registrationCode string) error
	SendPasswordReset(recipient, displayName, resetCode string) error
}

type TokenIssuer interface {
	NewToken(accountId domain.AccountId) (string, error)
}

// Accounts orchestrates the account credential and session state machine:
// pending-activation -> active, with the orthogonal reset-pending sub-state.
// Every operation performs a single read-modify-write against one account.
type Accounts struct {
	storage AccountStorage
	mailer  Mailer
	jwt     TokenIssuer

	displayNamePolicy *bluemonday.Policy
}

func NewAccounts(storage AccountStorage, mailer Mailer, jwt TokenIssuer) *Accounts {
	return &Accounts{
		storage:           storage,
		mailer:            mailer,
		jwt:               jwt,
		displayNamePolicy: bluemonday.StrictPolicy(),
	}
}

// Register creates a pending-activation account and mails the activation
// code. The mail is best-effort: the created account is authoritative even
// when delivery fails.
func (a *Accounts) Register(email, password string) (domain.Account, error) {
	email = strings.ToLower(email)

	if err := a.mailer.IsCorrect(email); err != nil {
		return domain.Account{}, err
	}

	_, err := a.storage.AccountByEmail(email)
	if err == nil {
		return domain.Account{}, &errors.ErrorWithStatusCode{Message: "An account with this email address already exists", StatusCode: http.StatusConflict}
	}
	if !errors.IsNotFound(err) {
		return domain.Account{}, err
	}

	passHash, err := hashPassword(password)
	if err != nil {
		return domain.Account{}, err
	}

	code, err := a.freshCode(a.storage.AccountByRegistrationCode)
	if err != nil {
		return domain.Account{}, err
	}

	acc, err := a.storage.SaveAccount(domain.Account{
		Email:            email,
		PasswordHash:     passHash,
		RegistrationCode: &code,
	})
	if err != nil {
		return domain.Account{}, err
	}

	if err := a.mailer.SendRegistration(acc.Email, code); err != nil {
		logger.Log.Warn("failed to send activation email", "account_id", acc.Id, "error", err)
	}

	return acc, nil
}

// Activate clears the registration code of the matching account and issues a
// session token. Activation is monotonic: nothing but an explicit resend ever
// repopulates the code.
func (a *Accounts) Activate(code string) (domain.Account, string, error) {
	acc, err := a.storage.AccountByRegistrationCode(code)
	if err != nil {
		if errors.IsNotFound(err) {
			return domain.Account{}, "", &errors.ErrorWithStatusCode{Message: "An account with this registration code could not be found", StatusCode: http.StatusNotFound}
		}
		return domain.Account{}, "", err
	}

	token, err := a.jwt.NewToken(acc.Id)
	if err != nil {
		return domain.Account{}, "", err
	}

	acc.RegistrationCode = nil
	acc, err = a.storage.UpdateAccount(acc)
	if err != nil {
		// token was minted but the mutation did not persist; the token is
		// discarded here and the caller sees an internal error
		return domain.Account{}, "", err
	}

	return acc, token, nil
}

// ResendActivation mails the existing registration code again. The code is
// left unchanged and no token is issued.
func (a *Accounts) ResendActivation(email string) error {
	email = strings.ToLower(email)

	acc, err := a.storage.AccountByEmail(email)
	if err != nil {
		if errors.IsNotFound(err) {
			return &errors.ErrorWithStatusCode{Message: "Account could not be found", StatusCode: http.StatusNotFound}
		}
		return err
	}
	if acc.IsConfirmed() {
		return &errors.ErrorWithStatusCode{Message: "Account already activated", StatusCode: http.StatusConflict}
	}

	if err := a.mailer.SendRegistration(acc.Email, *acc.RegistrationCode); err != nil {
		logger.Log.Warn("failed to resend activation email", "account_id", acc.Id, "error", err)
	}
	return nil
}

// Login verifies credentials and issues a session token. A stale reset code
// is cleared on success. The failure message never distinguishes an unknown
// email from a wrong password.
func (a *Accounts) Login(email, password string) (domain.Account, string, error) {
	email = strings.ToLower(email)

	acc, err := a.storage.AccountByEmail(email)
	if err != nil {
		if errors.IsNotFound(err) {
			return domain.Account{}, "", badCredentials()
		}
		return domain.Account{}, "", err
	}

	if !verifyPassword(acc.PasswordHash, password) {
		return domain.Account{}, "", badCredentials()
	}

	token, err := a.jwt.NewToken(acc.Id)
	if err != nil {
		return domain.Account{}, "", err
	}

	if acc.ResetCode != nil {
		acc.ResetCode = nil
		acc, err = a.storage.UpdateAccount(acc)
		if err != nil {
			return domain.Account{}, "", err
		}
	}

	return acc, token, nil
}

// RequestReset stores a fresh reset code and mails it. A concurrent second
// request simply overwrites the code; last writer wins.
func (a *Accounts) RequestReset(email string) error {
	email = strings.ToLower(email)

	acc, err := a.storage.AccountByEmail(email)
	if err != nil {
		if errors.IsNotFound(err) {
			return &errors.ErrorWithStatusCode{Message: "Account could not be found", StatusCode: http.StatusNotFound}
		}
		return err
	}

	code, err := a.freshCode(a.storage.AccountByResetCode)
	if err != nil {
		return err
	}

	acc.ResetCode = &code
	acc, err = a.storage.UpdateAccount(acc)
	if err != nil {
		return err
	}

	if err := a.mailer.SendPasswordReset(acc.Email, acc.DisplayName, code); err != nil {
		logger.Log.Warn("failed to send reset email", "account_id", acc.Id, "error", err)
	}
	return nil
}

// FulfillReset consumes the reset code, sets the new password and issues a
// session token. A successful reset proves e-mail ownership, so the
// registration code is cleared too.
func (a *Accounts) FulfillReset(code, newPassword string) (domain.Account, string, error) {
	if err := validatePassword(newPassword); err != nil {
		return domain.Account{}, "", err
	}

	acc, err := a.storage.AccountByResetCode(code)
	if err != nil {
		if errors.IsNotFound(err) {
			return domain.Account{}, "", &errors.ErrorWithStatusCode{Message: "An account with this reset code could not be found", StatusCode: http.StatusNotFound}
		}
		return domain.Account{}, "", err
	}

	passHash, err := hashPassword(newPassword)
	if err != nil {
		return domain.Account{}, "", err
	}

	token, err := a.jwt.NewToken(acc.Id)
	if err != nil {
		return domain.Account{}, "", err
	}

	acc.PasswordHash = passHash
	acc.ResetCode = nil
	acc.RegistrationCode = nil
	acc, err = a.storage.UpdateAccount(acc)
	if err != nil {
		return domain.Account{}, "", err
	}

	return acc, token, nil
}

// ChangePassword replaces the password of an authenticated account after
// verifying the old one.
func (a *Accounts) ChangePassword(acc domain.Account, oldPassword, newPassword, repeatPassword string) error {
	if newPassword != repeatPassword {
		return &errors.ErrorWithStatusCode{Message: "Passwords do not match", StatusCode: http.StatusUnprocessableEntity}
	}
	if err := validatePassword(newPassword); err != nil {
		return err
	}
	if !verifyPassword(acc.PasswordHash, oldPassword) {
		return &errors.ErrorWithStatusCode{Message: "Invalid password", StatusCode: http.StatusUnauthorized}
	}

	passHash, err := hashPassword(newPassword)
	if err != nil {
		return err
	}

	acc.PasswordHash = passHash
	_, err = a.storage.UpdateAccount(acc)
	return err
}

// ChangeEmail moves the account to a new, unused address after re-verifying
// the password.
func (a *Accounts) ChangeEmail(acc domain.Account, newEmail, password string) error {
	newEmail = strings.ToLower(newEmail)

	if err := a.mailer.IsCorrect(newEmail); err != nil {
		return err
	}

	other, err := a.storage.AccountByEmail(newEmail)
	if err == nil && other.Id != acc.Id {
		return &errors.ErrorWithStatusCode{Message: "An account with this email already exists. Could not update", StatusCode: http.StatusConflict}
	}
	if err != nil && !errors.IsNotFound(err) {
		return err
	}

	if !verifyPassword(acc.PasswordHash, password) {
		return badCredentials()
	}

	acc.Email = newEmail
	_, err = a.storage.UpdateAccount(acc)
	return err
}

// UpdateProfile applies the whitelisted mutable fields. The display name is
// sanitized so stored profile data never carries markup.
func (a *Accounts) UpdateProfile(acc domain.Account, displayName string) (domain.Account, error) {
	acc.DisplayName = strings.TrimSpace(a.displayNamePolicy.Sanitize(displayName))
	return a.storage.UpdateAccount(acc)
}

// freshCode draws codes until lookup misses, bounded by maxCodeAttempts.
func (a *Accounts) freshCode(lookup func(string) (domain.Account, error)) (string, error) {
	for range maxCodeAttempts {
		code := utils.GenerateCode()
		_, err := lookup(code)
		if errors.IsNotFound(err) {
			return code, nil
		}
		if err != nil {
			return "", err
		}
		logger.Log.Warn("generated code collided, retrying")
	}
	return "", &errors.ErrorWithStatusCode{Message: "Could not generate a unique code", StatusCode: http.StatusInternalServerError}
}

func badCredentials() error {
	return &errors.ErrorWithStatusCode{Message: "Account not found or wrong password", StatusCode: http.StatusUnauthorized}
}

func validatePassword(password string) error {
	if len([]rune(password)) < minPasswordLen {
		return &errors.ErrorWithStatusCode{Message: "Password is too short. Minimum 8 characters!", StatusCode: http.StatusBadRequest}
	}
	return nil
}

func hashPassword(password string) (string, error) {
	passHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logger.Log.Error("failed to hash password", "error", err)
		return "", &errors.ErrorWithStatusCode{Message: "Could not process password", StatusCode: http.StatusInternalServerError}
	}
	return string(passHash), nil
}

// verifyPassword is constant-time via bcrypt; mismatches and malformed
// digests both come back false.
func verifyPassword(passHash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(passHash), []byte(password)) == nil
}
