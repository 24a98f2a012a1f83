package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/accountd-dev/accountd/internal/domain"
	"github.com/accountd-dev/accountd/internal/errors"
	"github.com/accountd-dev/accountd/internal/jwt"
)

// AccountLoader is the read-only repository slice the resolver needs.
type AccountLoader interface {
	Account(id domain.AccountId) (domain.Account, error)
}

// Key to store the resolved account in the request context
type key int

const AccountKey key = 0

// Auth resolves the request's credential material (cookie "token" or
// Authorization bearer header) into an authenticated account. Resolution is
// read-only; the result is cached in the request context so handlers never
// re-verify or re-query.
type Auth struct {
	jwt     jwt.TokenService
	storage AccountLoader
}

func NewAuth(jwtService jwt.TokenService, storage AccountLoader) *Auth {
	return &Auth{jwt: jwtService, storage: storage}
}

var (
	errNoToken = &errors.ErrorWithStatusCode{Message: "Not authorized", StatusCode: http.StatusUnauthorized}
)

// tokenFromRequest picks the credential carrier. The bearer header wins when
// well-formed; a malformed scheme is ignored and the cookie is used instead.
// This precedence is deliberate and load-bearing: API clients can override a
// stale browser cookie.
func tokenFromRequest(r *http.Request) string {
	if token, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); found && token != "" {
		return token
	}
	if cookie, err := r.Cookie("token"); err == nil {
		return cookie.Value
	}
	return ""
}

// resolve turns the request's credentials into an account.
// "absent" (no carrier) and "invalid" (bad signature, bad subject, account
// gone) both surface as errors; only success populates the context.
func (a *Auth) resolve(r *http.Request) (*domain.Account, error) {
	tokenStr := tokenFromRequest(r)
	if tokenStr == "" {
		return nil, errNoToken
	}

	accountId, err := a.jwt.AccountId(tokenStr)
	if err != nil {
		return nil, err
	}

	acc, err := a.storage.Account(accountId)
	if err != nil {
		if errors.IsNotFound(err) {
			// token outlived the account
			return nil, &errors.ErrorWithStatusCode{Message: "Invalid access token", StatusCode: http.StatusUnauthorized}
		}
		return nil, err
	}

	return &acc, nil
}

// RequireAccount rejects requests without a resolvable identity.
func (a *Auth) RequireAccount() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			acc, err := a.resolve(r)
			if err != nil {
				if e, ok := err.(*errors.ErrorWithStatusCode); ok && e.StatusCode == http.StatusUnauthorized {
					http.Error(w, e.Message, http.StatusUnauthorized)
					return
				}
				http.Error(w, "Internal server error", http.StatusInternalServerError)
				return
			}

			ctx := context.WithValue(r.Context(), AccountKey, acc)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAccount populates the context when credentials resolve but lets
// the request through either way. Handlers branch on presence.
func (a *Auth) OptionalAccount() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if acc, err := a.resolve(r); err == nil {
				ctx := context.WithValue(r.Context(), AccountKey, acc)
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// AccountFromContext retrieves the resolved account, nil when absent.
func AccountFromContext(r *http.Request) *domain.Account {
	acc, ok := r.Context().Value(AccountKey).(*domain.Account)
	if !ok {
		return nil
	}
	return acc
}
