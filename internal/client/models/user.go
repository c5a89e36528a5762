package models

import (
	"errors"
	"time"
)

var ErrIncompleteUser = errors.New("user record has neither username nor email")

// User is the cached identity of the signed-in account. It is a cache over
// the access token claims; the token subject stays authoritative for ID.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Avatar    string    `json:"avatar,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// UserPatch carries a partial profile update; nil fields are left unchanged.
type UserPatch struct {
	Username *string `json:"username,omitempty"`
	Email    *string `json:"email,omitempty"`
	Avatar   *string `json:"avatar,omitempty"`
}

func (p UserPatch) IsEmpty() bool {
	return p.Username == nil && p.Email == nil && p.Avatar == nil
}

// Apply returns a copy of u with the patch applied and UpdatedAt set to now.
func (u User) Apply(p UserPatch, now time.Time) User {
	if p.Username != nil {
		u.Username = *p.Username
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Avatar != nil {
		u.Avatar = *p.Avatar
	}
	u.UpdatedAt = now
	return u
}

func (u User) Validate() error {
	if u.Username == "" && u.Email == "" {
		return ErrIncompleteUser
	}
	return nil
}
