package api

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophnotes/internal/client/models"
)

// Backend endpoints, relative to the base URL.
const (
	EndpointLogin          = "/account/login/"
	EndpointRegister       = "/account/register/"
	EndpointRefresh        = "/account/token/refresh/"
	EndpointForgotPassword = "/account/forgot-password/"
	EndpointResetPassword  = "/account/reset-password/"
	EndpointChangePassword = "/account/change-password/"
	EndpointProfile        = "/account/profile/"
	EndpointNotes          = "/notes/"
)

var (
	errMissingData   = errors.New(`missing "data"`)
	errMissingAccess = errors.New("missing access token")
)

// envelope is the {"data": ..., "message": ...} wrapper around every
// response except token refresh.
type envelope[T any] struct {
	Data    *T              `json:"data"`
	Message json.RawMessage `json:"message,omitempty"`
}

func (e *envelope[T]) Validate() error {
	if e.Data == nil {
		return errMissingData
	}
	if v, ok := any(e.Data).(validator); ok {
		return v.Validate()
	}
	return nil
}

// messageResponse is a response whose only payload is a message.
type messageResponse struct {
	Message json.RawMessage `json:"message"`
}

func (m *messageResponse) Text() string { return messageText(m.Message) }

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResult is returned by login and register. User is only present when
// the backend includes it.
type AuthResult struct {
	Tokens models.TokenPair `json:"tokens"`
	User   *models.User     `json:"user,omitempty"`
}

func (r *AuthResult) Validate() error {
	if r.Tokens.Access == "" {
		return errMissingAccess
	}
	if r.Tokens.Refresh == "" {
		return errors.New("missing refresh token")
	}
	return nil
}

type RefreshRequest struct {
	Refresh string `json:"refresh"`
}

// RefreshResponse carries the new access token and, when the backend rotates
// refresh tokens, a new refresh token.
type RefreshResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh,omitempty"`
}

func (r *RefreshResponse) Validate() error {
	if r.Access == "" {
		return errMissingAccess
	}
	return nil
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

type profile models.User

func (p *profile) Validate() error { return models.User(*p).Validate() }

type noteList []models.Note

func (l *noteList) Validate() error {
	for i, n := range *l {
		if err := n.Validate(); err != nil {
			return fmt.Errorf("note %d: %w", i, err)
		}
	}
	return nil
}

type note models.Note

func (n *note) Validate() error { return models.Note(*n).Validate() }

type CreateNoteRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type UpdateNoteRequest struct {
	UUID string `json:"note_uuid"`
	models.NoteUpdate
}

type DeleteNotesRequest struct {
	UUIDs []string `json:"note_uuid"`
}
