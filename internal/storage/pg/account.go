package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/lib/pq"

	"github.com/accountd-dev/accountd/internal/domain"
	internal_errors "github.com/accountd-dev/accountd/internal/errors"
)

const opTimeout = 5 * time.Second

// Postgres error code for unique constraint violations.
const uniqueViolation = "23505"

const accountColumns = "id, display_name, email, password_hash, registration_code, reset_code, image, created_at, updated_at"

// =========================================================================
// Public Methods (satisfy the service.AccountStorage interface)
// =========================================================================

// SaveAccount inserts a new account record and returns it with the
// repository-assigned id and timestamps.
func (s *Storage) SaveAccount(acc domain.Account) (domain.Account, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var saved domain.Account
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		saved, err = s.saveAccount(tx, acc)
		return err
	})
	return saved, err
}

// Account fetches a single account by id. Read-only, uses the pool directly.
func (s *Storage) Account(id domain.AccountId) (domain.Account, error) {
	return s.scanAccount(s.db.QueryRow(
		"SELECT "+accountColumns+" FROM accounts WHERE id = $1", id))
}

func (s *Storage) AccountByEmail(email string) (domain.Account, error) {
	return s.scanAccount(s.db.QueryRow(
		"SELECT "+accountColumns+" FROM accounts WHERE email = $1", email))
}

func (s *Storage) AccountByRegistrationCode(code string) (domain.Account, error) {
	return s.scanAccount(s.db.QueryRow(
		"SELECT "+accountColumns+" FROM accounts WHERE registration_code = $1", code))
}

func (s *Storage) AccountByResetCode(code string) (domain.Account, error) {
	return s.scanAccount(s.db.QueryRow(
		"SELECT "+accountColumns+" FROM accounts WHERE reset_code = $1", code))
}

// UpdateAccount persists every mutable column of the record in one
// authoritative write and returns the stored row.
func (s *Storage) UpdateAccount(acc domain.Account) (domain.Account, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var updated domain.Account
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		updated, err = s.updateAccount(tx, acc)
		return err
	})
	return updated, err
}

// DeleteAccount removes an account record. Administrative capability only,
// no user-facing flow deletes accounts.
func (s *Storage) DeleteAccount(id domain.AccountId) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		return s.deleteAccount(tx, id)
	})
}

// =========================================================================
// Internal Methods (Core Database Logic)
// =========================================================================

func (s *Storage) saveAccount(q Querier, acc domain.Account) (domain.Account, error) {
	row := q.QueryRow(`
        INSERT INTO accounts(display_name, email, password_hash, registration_code, reset_code, image)
        VALUES($1, $2, $3, $4, $5, $6)
        RETURNING `+accountColumns,
		acc.DisplayName, acc.Email, acc.PasswordHash, acc.RegistrationCode, acc.ResetCode, acc.Image,
	)
	saved, err := s.scanAccount(row)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Account{}, &internal_errors.ErrorWithStatusCode{Message: "An account with this email address already exists", StatusCode: http.StatusConflict}
		}
		return domain.Account{}, fmt.Errorf("failed to insert account: %w", err)
	}
	return saved, nil
}

func (s *Storage) updateAccount(q Querier, acc domain.Account) (domain.Account, error) {
	row := q.QueryRow(`
        UPDATE accounts
        SET display_name = $1, email = $2, password_hash = $3,
            registration_code = $4, reset_code = $5, image = $6,
            updated_at = now()
        WHERE id = $7
        RETURNING `+accountColumns,
		acc.DisplayName, acc.Email, acc.PasswordHash, acc.RegistrationCode, acc.ResetCode, acc.Image, acc.Id,
	)
	updated, err := s.scanAccount(row)
	if err != nil {
		if internal_errors.IsNotFound(err) {
			return domain.Account{}, &internal_errors.ErrorWithStatusCode{Message: "Account not found for update", StatusCode: http.StatusNotFound}
		}
		if isUniqueViolation(err) {
			return domain.Account{}, &internal_errors.ErrorWithStatusCode{Message: "An account with this email address already exists", StatusCode: http.StatusConflict}
		}
		return domain.Account{}, fmt.Errorf("failed to update account: %w", err)
	}
	return updated, nil
}

func (s *Storage) deleteAccount(q Querier, id domain.AccountId) error {
	result, err := q.Exec("DELETE FROM accounts WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	rowsDeleted, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows for account deletion: %w", err)
	}
	if rowsDeleted == 0 {
		return &internal_errors.ErrorWithStatusCode{Message: "Account not found for deletion", StatusCode: http.StatusNotFound}
	}
	return nil
}

func (s *Storage) scanAccount(row *sql.Row) (domain.Account, error) {
	var acc domain.Account
	err := row.Scan(&acc.Id, &acc.DisplayName, &acc.Email, &acc.PasswordHash,
		&acc.RegistrationCode, &acc.ResetCode, &acc.Image, &acc.CreatedAt, &acc.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Account{}, &internal_errors.ErrorWithStatusCode{Message: "Account not found", StatusCode: http.StatusNotFound}
		}
		return domain.Account{}, err
	}
	return acc, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
