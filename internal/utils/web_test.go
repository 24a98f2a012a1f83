package utils

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/accountd-dev/accountd/internal/errors"
)

type testBody struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func reader(s string) io.ReadCloser {
	return io.NopCloser(bytes.NewBufferString(s))
}

func TestDecodeValidate(t *testing.T) {
	t.Run("Valid body", func(t *testing.T) {
		var body testBody
		err := DecodeValidate(reader(`{"email": "user@example.com", "password": "pass"}`), &body)
		require.NoError(t, err)
		assert.Equal(t, "user@example.com", body.Email)
	})

	t.Run("Invalid json", func(t *testing.T) {
		var body testBody
		err := DecodeValidate(reader(`{oops`), &body)
		require.Error(t, err)
		esc := err.(*errors.ErrorWithStatusCode)
		assert.Equal(t, http.StatusBadRequest, esc.StatusCode)
	})

	t.Run("Missing required field", func(t *testing.T) {
		var body testBody
		err := DecodeValidate(reader(`{"email": "user@example.com"}`), &body)
		require.Error(t, err)
		esc := err.(*errors.ErrorWithStatusCode)
		assert.Equal(t, http.StatusUnprocessableEntity, esc.StatusCode)
		assert.Contains(t, esc.Message, "Password")
	})

	t.Run("Malformed email", func(t *testing.T) {
		var body testBody
		err := DecodeValidate(reader(`{"email": "nope", "password": "pass"}`), &body)
		require.Error(t, err)
		esc := err.(*errors.ErrorWithStatusCode)
		assert.Equal(t, http.StatusUnprocessableEntity, esc.StatusCode)
	})
}

func TestWriteErrorAndStatusCode(t *testing.T) {
	t.Run("Tagged error keeps its status", func(t *testing.T) {
		rr := httptest.NewRecorder()

		WriteErrorAndStatusCode(rr, &errors.ErrorWithStatusCode{Message: "Account not found", StatusCode: http.StatusNotFound})

		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Equal(t, "Account not found", strings.TrimSpace(rr.Body.String()))
	})

	t.Run("Untagged error becomes opaque 500", func(t *testing.T) {
		rr := httptest.NewRecorder()

		WriteErrorAndStatusCode(rr, io.ErrUnexpectedEOF)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.NotContains(t, rr.Body.String(), "EOF", "internals never leak")
	})
}
