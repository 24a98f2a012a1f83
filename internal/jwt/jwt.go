package jwt

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/golang-jwt/jwt/v5"

	"github.com/accountd-dev/accountd/internal/domain"
	internal_errors "github.com/accountd-dev/accountd/internal/errors"
	"github.com/accountd-dev/accountd/internal/logger"
)

// TokenService mints and verifies the session tokens handed out after a
// successful credential event. The only claim is the account id; tokens carry
// no expiry, so rotating the signing key is the sole revocation mechanism.
type TokenService interface {
	NewToken(accountId domain.AccountId) (string, error)
	AccountId(tokenStr string) (domain.AccountId, error)
}

type Jwt struct {
	secretKey string
}

func New(secretKey string) *Jwt {
	return &Jwt{secretKey}
}

func (j *Jwt) NewToken(accountId domain.AccountId) (string, error) {
	claims := jwt.MapClaims{
		"sub": strconv.FormatInt(accountId, 10),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(j.secretKey))
	if err != nil {
		logger.Log.Error("failed to sign token", "error", err)
		return "", &internal_errors.ErrorWithStatusCode{Message: "Token could not be created", StatusCode: http.StatusInternalServerError}
	}

	return tokenString, nil
}

// AccountId verifies the signature and returns the subject claim as account
// id. Every malformed, truncated or tampered token maps to a 401, never a
// panic or a 500.
func (j *Jwt) AccountId(tokenStr string) (domain.AccountId, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, &internal_errors.ErrorWithStatusCode{Message: fmt.Sprintf("Unexpected signing method: %v", token.Header["alg"]), StatusCode: http.StatusUnauthorized}
		}
		return []byte(j.secretKey), nil
	})
	if err != nil {
		return 0, &internal_errors.ErrorWithStatusCode{Message: "Invalid token signature", StatusCode: http.StatusUnauthorized}
	}
	if !token.Valid {
		return 0, &internal_errors.ErrorWithStatusCode{Message: "Invalid access token", StatusCode: http.StatusUnauthorized}
	}

	sub, err := token.Claims.GetSubject()
	if err != nil || sub == "" {
		return 0, &internal_errors.ErrorWithStatusCode{Message: "Token is missing subject", StatusCode: http.StatusUnauthorized}
	}

	accountId, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		return 0, &internal_errors.ErrorWithStatusCode{Message: "Invalid token subject", StatusCode: http.StatusUnauthorized}
	}

	return accountId, nil
}
