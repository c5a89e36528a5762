// Package authtest mints access tokens shaped like the backend's for tests.
package authtest

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var signingKey = []byte("authtest-signing-key")

// Token returns a signed access token for userID expiring at exp. Every call
// yields a distinct token, even for identical arguments.
func Token(t testing.TB, userID, username, email string, exp time.Time) string {
	t.Helper()

	claims := jwt.MapClaims{
		"token_type": "access",
		"jti":        uuid.NewString(),
		"user_uuid":  userID,
		"user":       map[string]string{"username": username, "email": email},
		"iat":        exp.Add(-5 * time.Minute).Unix(),
		"exp":        exp.Unix(),
	}

	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(signingKey)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

// Valid returns a token for userID that expires in an hour.
func Valid(t testing.TB, userID string) string {
	t.Helper()
	return Token(t, userID, "user-"+userID, userID+"@example.com", time.Now().Add(time.Hour))
}

// Expired returns a token for userID that expired a minute ago.
func Expired(t testing.TB, userID string) string {
	t.Helper()
	return Token(t, userID, "user-"+userID, userID+"@example.com", time.Now().Add(-time.Minute))
}
