package domain

import "time"

type AccountId = int64

// Account is the single persistent entity of the service.
//
// The account state machine is encoded in the two optional codes:
// an account is pending activation while RegistrationCode is non-nil and
// active otherwise; ResetCode is present only between a reset request and
// its fulfillment. PasswordHash and both codes never leave the process,
// see api.NewAccountResponse for the outward-facing shape.
type Account struct {
	Id               AccountId
	DisplayName      string
	Email            string
	PasswordHash     string
	RegistrationCode *string
	ResetCode        *string
	Image            []byte
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// IsConfirmed reports whether the account finished e-mail activation.
func (a *Account) IsConfirmed() bool {
	return a.RegistrationCode == nil
}
