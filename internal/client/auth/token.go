// Package auth decodes access tokens on the client. Signatures are not
// verified here: the client only reads its own token's claims, and the
// backend remains the party that validates them.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophnotes/internal/client/models"
	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMissingSubject = errors.New("token has no user_uuid claim")
	ErrMissingExpiry  = errors.New("token has no exp claim")
)

// DecodeError reports an access token that could not be parsed.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode access token: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Claims mirrors the access token payload issued by the backend.
type Claims struct {
	jwt.RegisteredClaims
	UserUUID string `json:"user_uuid"`
	User     struct {
		Username string `json:"username"`
		Email    string `json:"email"`
	} `json:"user"`
}

// Decode parses token and returns its claims. Any structural problem,
// including a missing user_uuid or exp, yields a *DecodeError.
func Decode(token string) (*Claims, error) {
	claims := &Claims{}

	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, &DecodeError{Err: err}
	}
	if claims.UserUUID == "" {
		return nil, &DecodeError{Err: ErrMissingSubject}
	}
	if claims.ExpiresAt == nil {
		return nil, &DecodeError{Err: ErrMissingExpiry}
	}

	return claims, nil
}

// Expired reports whether the token's expiry is at or before now.
func (c *Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.Time.After(now)
}

// ToUser builds a user record from the claims. The claims carry no account
// timestamps, so both are set to now.
func (c *Claims) ToUser(now time.Time) models.User {
	return models.User{
		ID:        c.UserUUID,
		Username:  c.User.Username,
		Email:     c.User.Email,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
