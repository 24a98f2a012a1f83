package email

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/accountd-dev/accountd/internal/config"
	internal_errors "github.com/accountd-dev/accountd/internal/errors"
)

func TestIsCorrect(t *testing.T) {
	m := New(&config.Email{})

	t.Run("Valid addresses", func(t *testing.T) {
		for _, addr := range []string{"user@example.com", "first.last+tag@sub.example.org"} {
			assert.NoError(t, m.IsCorrect(addr), addr)
		}
	})

	t.Run("Invalid addresses", func(t *testing.T) {
		for _, addr := range []string{"", "plainstring", "@example.com", "user@"} {
			err := m.IsCorrect(addr)
			require.Error(t, err, addr)
			var esc *internal_errors.ErrorWithStatusCode
			require.ErrorAs(t, err, &esc)
			assert.Equal(t, http.StatusBadRequest, esc.StatusCode)
		}
	})
}

func TestRenderMarkdown(t *testing.T) {
	html, err := renderMarkdown("# Welcome!\n\n**abc12345**\n")
	require.NoError(t, err)
	assert.Contains(t, html, "<h1>Welcome!</h1>")
	assert.Contains(t, html, "<strong>abc12345</strong>")
}

func TestBuildMessage(t *testing.T) {
	m := New(&config.Email{
		SMTPServer: "smtp.example.com",
		Username:   "noreply@example.com",
		SenderName: "Accountd",
	})

	msg := string(m.buildMessage("user@example.com", "Registration successful", "<p>hi</p>"))

	assert.Contains(t, msg, "To: user@example.com\r\n")
	assert.Contains(t, msg, "From: Accountd <noreply@example.com>\r\n")
	assert.Contains(t, msg, "Subject: Registration successful\r\n")
	assert.Contains(t, msg, "Content-Type: text/html; charset=\"utf-8\"\r\n")
	assert.Contains(t, msg, "Message-ID: <")
	assert.Contains(t, msg, "@smtp.example.com>")
	assert.True(t, strings.HasSuffix(msg, "<p>hi</p>"))
}
