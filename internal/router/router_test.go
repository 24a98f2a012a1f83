package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/accountd-dev/accountd/internal/config"
	"github.com/accountd-dev/accountd/internal/domain"
	"github.com/accountd-dev/accountd/internal/handler"
	"github.com/accountd-dev/accountd/internal/jwt"
	"github.com/accountd-dev/accountd/internal/middleware"
	"github.com/accountd-dev/accountd/internal/middleware/metrics"
	"github.com/accountd-dev/accountd/internal/setup"
)

// Minimal stubs; route wiring is under test, not the service logic.

type stubAccounts struct{}

func (stubAccounts) Register(email, password string) (domain.Account, error) {
	return domain.Account{Id: 1, Email: email}, nil
}
func (stubAccounts) Activate(code string) (domain.Account, string, error) {
	return domain.Account{Id: 1}, "token", nil
}
func (stubAccounts) ResendActivation(email string) error { return nil }
func (stubAccounts) Login(email, password string) (domain.Account, string, error) {
	return domain.Account{Id: 1, Email: email}, "token", nil
}
func (stubAccounts) RequestReset(email string) error { return nil }
func (stubAccounts) FulfillReset(code, newPassword string) (domain.Account, string, error) {
	return domain.Account{Id: 1}, "token", nil
}
func (stubAccounts) ChangePassword(acc domain.Account, oldPassword, newPassword, repeatPassword string) error {
	return nil
}
func (stubAccounts) ChangeEmail(acc domain.Account, newEmail, password string) error { return nil }
func (stubAccounts) UpdateProfile(acc domain.Account, displayName string) (domain.Account, error) {
	return acc, nil
}
func (stubAccounts) UploadPhoto(acc domain.Account, data []byte) (domain.Account, error) {
	return acc, nil
}

type stubLoader struct{}

func (stubLoader) Account(id domain.AccountId) (domain.Account, error) {
	return domain.Account{Id: id, Email: "user@example.com"}, nil
}

func newTestRouter(t *testing.T) (http.Handler, jwt.TokenService) {
	t.Helper()
	cfg := &config.Config{}
	tokenService := jwt.New("test_secret")
	deps := &setup.Dependencies{
		Config:         cfg,
		Handler:        handler.New(stubAccounts{}, cfg),
		AuthMiddleware: middleware.NewAuth(tokenService, stubLoader{}),
		Jwt:            tokenService,
		Metrics:        metrics.New(),
	}
	return New(deps), tokenService
}

func TestLogoutRoute(t *testing.T) {
	t.Run("Anonymous logout succeeds", func(t *testing.T) {
		r, _ := newTestRouter(t)

		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/v1/account/logout", nil))

		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("Authenticated logout succeeds and clears cookie", func(t *testing.T) {
		r, tokenService := newTestRouter(t)
		token, err := tokenService.NewToken(1)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodPost, "/v1/account/logout", nil)
		req.AddCookie(&http.Cookie{Name: "token", Value: token})
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		cookies := rr.Result().Cookies()
		require.NotEmpty(t, cookies)
		assert.Equal(t, "token", cookies[0].Name)
		assert.Negative(t, cookies[0].MaxAge)
	})

	t.Run("Invalid credentials still log out", func(t *testing.T) {
		r, _ := newTestRouter(t)

		req := httptest.NewRequest(http.MethodPost, "/v1/account/logout", nil)
		req.AddCookie(&http.Cookie{Name: "token", Value: "garbage"})
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
	})
}

func TestProtectedRoutesRequireIdentity(t *testing.T) {
	r, tokenService := newTestRouter(t)

	for _, route := range []struct{ method, path string }{
		{http.MethodGet, "/v1/account/"},
		{http.MethodPut, "/v1/account/password"},
		{http.MethodPut, "/v1/account/email"},
		{http.MethodPost, "/v1/account/profile_image"},
	} {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(route.method, route.path, nil))
		assert.Equal(t, http.StatusUnauthorized, rr.Code, "%s %s", route.method, route.path)
	}

	token, err := tokenService.NewToken(1)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/v1/account/", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: token})
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestMetricsRoute(t *testing.T) {
	r, _ := newTestRouter(t)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "accountd_http_requests_total")
}
