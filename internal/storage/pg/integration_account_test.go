package pg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/accountd-dev/accountd/internal/domain"
	"github.com/accountd-dev/accountd/internal/errors"
	_ "github.com/lib/pq"
)

func strPtr(s string) *string { return &s }

func mustSave(t *testing.T, acc domain.Account) domain.Account {
	t.Helper()
	saved, err := storage.SaveAccount(acc)
	require.NoError(t, err, "SaveAccount should not return an error")
	return saved
}

func assertNotFound(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	e, ok := err.(*errors.ErrorWithStatusCode)
	require.True(t, ok, "Expected ErrorWithStatusCode")
	assert.Equal(t, 404, e.StatusCode, "Expected status code 404")
}

func TestSaveAccount(t *testing.T) {
	acc := mustSave(t, domain.Account{
		Email:            "save@example.com",
		PasswordHash:     "hash",
		RegistrationCode: strPtr("savecd01"),
	})
	assert.Greater(t, acc.Id, domain.AccountId(0), "Expected ID > 0")
	assert.False(t, acc.CreatedAt.IsZero())
	assert.False(t, acc.UpdatedAt.IsZero())
	require.NotNil(t, acc.RegistrationCode)
	assert.Equal(t, "savecd01", *acc.RegistrationCode)

	_, err := storage.SaveAccount(domain.Account{Email: "save@example.com", PasswordHash: "hash"})
	require.Error(t, err, "Saving the same email twice should return an error")
	e, ok := err.(*errors.ErrorWithStatusCode)
	require.True(t, ok, "Expected ErrorWithStatusCode")
	assert.Equal(t, 409, e.StatusCode, "Expected status code 409")
}

func TestAccount(t *testing.T) {
	saved := mustSave(t, domain.Account{Email: "byid@example.com", PasswordHash: "hash"})

	acc, err := storage.Account(saved.Id)
	require.NoError(t, err)
	assert.Equal(t, "byid@example.com", acc.Email)
	assert.Equal(t, "hash", acc.PasswordHash)
	assert.Nil(t, acc.RegistrationCode)
	assert.Nil(t, acc.ResetCode)

	_, err = storage.Account(999999)
	assertNotFound(t, err)
}

func TestAccountByEmail(t *testing.T) {
	mustSave(t, domain.Account{Email: "byemail@example.com", PasswordHash: "hash"})

	acc, err := storage.AccountByEmail("byemail@example.com")
	require.NoError(t, err)
	assert.Equal(t, "byemail@example.com", acc.Email)

	_, err = storage.AccountByEmail("nonexistent@example.com")
	assertNotFound(t, err)
}

func TestAccountByRegistrationCode(t *testing.T) {
	saved := mustSave(t, domain.Account{
		Email:            "bycode@example.com",
		PasswordHash:     "hash",
		RegistrationCode: strPtr("regcd001"),
	})

	acc, err := storage.AccountByRegistrationCode("regcd001")
	require.NoError(t, err)
	assert.Equal(t, saved.Id, acc.Id)

	_, err = storage.AccountByRegistrationCode("nosuchcd")
	assertNotFound(t, err)
}

func TestAccountByResetCode(t *testing.T) {
	saved := mustSave(t, domain.Account{
		Email:        "byreset@example.com",
		PasswordHash: "hash",
		ResetCode:    strPtr("rstcd001"),
	})

	acc, err := storage.AccountByResetCode("rstcd001")
	require.NoError(t, err)
	assert.Equal(t, saved.Id, acc.Id)

	_, err = storage.AccountByResetCode("nosuchcd")
	assertNotFound(t, err)
}

func TestUpdateAccount(t *testing.T) {
	saved := mustSave(t, domain.Account{
		Email:            "update@example.com",
		PasswordHash:     "hash",
		RegistrationCode: strPtr("updcd001"),
	})

	saved.DisplayName = "Alice"
	saved.RegistrationCode = nil
	saved.ResetCode = strPtr("updrst01")
	saved.Image = []byte{1, 2, 3}
	updated, err := storage.UpdateAccount(saved)
	require.NoError(t, err, "UpdateAccount should not return an error")

	assert.Equal(t, "Alice", updated.DisplayName)
	assert.Nil(t, updated.RegistrationCode)
	require.NotNil(t, updated.ResetCode)
	assert.Equal(t, "updrst01", *updated.ResetCode)
	assert.Equal(t, []byte{1, 2, 3}, updated.Image)
	assert.True(t, updated.UpdatedAt.After(updated.CreatedAt) || updated.UpdatedAt.Equal(updated.CreatedAt))

	// round-trips through a fresh read
	fetched, err := storage.Account(saved.Id)
	require.NoError(t, err)
	assert.Equal(t, updated.DisplayName, fetched.DisplayName)
	assert.Nil(t, fetched.RegistrationCode)

	missing := saved
	missing.Id = 999999
	_, err = storage.UpdateAccount(missing)
	assertNotFound(t, err)
}

func TestUpdateAccountEmailConflict(t *testing.T) {
	first := mustSave(t, domain.Account{Email: "first@example.com", PasswordHash: "hash"})
	mustSave(t, domain.Account{Email: "second@example.com", PasswordHash: "hash"})

	first.Email = "second@example.com"
	_, err := storage.UpdateAccount(first)
	require.Error(t, err)
	e, ok := err.(*errors.ErrorWithStatusCode)
	require.True(t, ok, "Expected ErrorWithStatusCode")
	assert.Equal(t, 409, e.StatusCode, "Expected status code 409")
}

func TestDeleteAccount(t *testing.T) {
	saved := mustSave(t, domain.Account{Email: "delete@example.com", PasswordHash: "hash"})

	err := storage.DeleteAccount(saved.Id)
	require.NoError(t, err, "DeleteAccount should not return an error")

	_, err = storage.Account(saved.Id)
	assertNotFound(t, err)

	err = storage.DeleteAccount(saved.Id)
	assertNotFound(t, err)
}
