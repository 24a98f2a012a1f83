package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// One-time codes mailed for activation and password reset.
const CodeLength = 8

const codeCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateRandomString generates a cryptographically secure random string
// using the provided charset and length
func GenerateRandomString(length int, charset string) string {
	b := make([]byte, length)
	for i := range b {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			panic(fmt.Sprintf("failed to generate random string: %v", err))
		}
		b[i] = charset[n.Int64()]
	}
	return string(b)
}

// GenerateCode returns an 8-character alphanumeric one-time code. Codes are
// opaque lookup keys, not globally unique by construction; callers that need
// uniqueness check the store and retry.
func GenerateCode() string {
	return GenerateRandomString(CodeLength, codeCharset)
}
