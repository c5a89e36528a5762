// Package services contains application services for the notes client.
// This file defines the account service: sign-up, sign-in, sign-out,
// password flows and profile maintenance, keeping the session in step.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gophnotes/internal/client/api"
	"github.com/dmitrijs2005/gophnotes/internal/client/models"
)

var (
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrMissingField     = errors.New("required field is empty")
)

// AuthService defines account operations for the CLI.
//
// Contract:
//   - Register, Login: authenticate against the server, store the tokens and
//     sign the session in. The user comes from the token claims, overlaid with
//     the user record the server returns, if any.
//   - Logout: forget tokens and the cached user. Local only.
//   - ForgotPassword, ResetPassword: public password-recovery calls.
//   - ChangePassword: authenticated; new and confirm must match.
//   - Profile, UpdateProfile: read and edit the account, refreshing the
//     session's cached user.
//
// All methods must honor context cancellation/timeouts.
type AuthService interface {
	Register(ctx context.Context, username, email, password string) (models.User, error)
	Login(ctx context.Context, email, password string) (models.User, error)
	Logout(ctx context.Context)
	ForgotPassword(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, token, password, confirm string) (string, error)
	ChangePassword(ctx context.Context, oldPassword, newPassword, confirm string) (string, error)
	Profile(ctx context.Context) (models.User, error)
	UpdateProfile(ctx context.Context, patch models.UserPatch) (models.User, error)
}

// AccountClient is the account part of the backend client.
type AccountClient interface {
	Login(ctx context.Context, email, password string) (*api.AuthResult, error)
	Register(ctx context.Context, username, email, password string) (*api.AuthResult, error)
	ForgotPassword(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, token, password string) (string, error)
	ChangePassword(ctx context.Context, oldPassword, newPassword string) (string, error)
	Profile(ctx context.Context) (*models.User, error)
	UpdateProfile(ctx context.Context, patch models.UserPatch) (*models.User, error)
}

// Session is the part of the session manager the service drives.
type Session interface {
	Login(ctx context.Context, access string, user *models.User) (models.User, error)
	Logout(ctx context.Context)
	UpdateUser(ctx context.Context, patch models.UserPatch) (models.User, error)
}

type authService struct {
	client  AccountClient
	session Session
}

// NewAuthService constructs an AuthService bound to the given client and session.
func NewAuthService(client AccountClient, session Session) AuthService {
	return &authService{client: client, session: session}
}

func required(fields ...[2]string) error {
	for _, f := range fields {
		if strings.TrimSpace(f[1]) == "" {
			return fmt.Errorf("%w: %s", ErrMissingField, f[0])
		}
	}
	return nil
}

func (a *authService) Register(ctx context.Context, username, email, password string) (models.User, error) {
	if err := required([2]string{"username", username}, [2]string{"email", email}, [2]string{"password", password}); err != nil {
		return models.User{}, err
	}

	res, err := a.client.Register(ctx, username, email, password)
	if err != nil {
		return models.User{}, fmt.Errorf("register: %w", err)
	}
	return a.signIn(ctx, res)
}

func (a *authService) Login(ctx context.Context, email, password string) (models.User, error) {
	if err := required([2]string{"email", email}, [2]string{"password", password}); err != nil {
		return models.User{}, err
	}

	res, err := a.client.Login(ctx, email, password)
	if err != nil {
		return models.User{}, fmt.Errorf("login: %w", err)
	}
	return a.signIn(ctx, res)
}

func (a *authService) signIn(ctx context.Context, res *api.AuthResult) (models.User, error) {
	u, err := a.session.Login(ctx, res.Tokens.Access, res.User)
	if err != nil {
		// tokens we cannot read are useless
		a.session.Logout(ctx)
		return models.User{}, err
	}
	return u, nil
}

func (a *authService) Logout(ctx context.Context) {
	a.session.Logout(ctx)
}

func (a *authService) ForgotPassword(ctx context.Context, email string) (string, error) {
	if err := required([2]string{"email", email}); err != nil {
		return "", err
	}
	return a.client.ForgotPassword(ctx, email)
}

func (a *authService) ResetPassword(ctx context.Context, token, password, confirm string) (string, error) {
	if err := required([2]string{"token", token}, [2]string{"password", password}); err != nil {
		return "", err
	}
	if password != confirm {
		return "", ErrPasswordMismatch
	}
	return a.client.ResetPassword(ctx, token, password)
}

func (a *authService) ChangePassword(ctx context.Context, oldPassword, newPassword, confirm string) (string, error) {
	if err := required([2]string{"current password", oldPassword}, [2]string{"new password", newPassword}); err != nil {
		return "", err
	}
	if newPassword != confirm {
		return "", ErrPasswordMismatch
	}
	return a.client.ChangePassword(ctx, oldPassword, newPassword)
}

// Profile fetches the account from the server and refreshes the cached user.
func (a *authService) Profile(ctx context.Context) (models.User, error) {
	u, err := a.client.Profile(ctx)
	if err != nil {
		return models.User{}, err
	}
	return a.session.UpdateUser(ctx, patchFrom(u))
}

func (a *authService) UpdateProfile(ctx context.Context, patch models.UserPatch) (models.User, error) {
	if patch.IsEmpty() {
		return models.User{}, fmt.Errorf("%w: nothing to update", ErrMissingField)
	}

	u, err := a.client.UpdateProfile(ctx, patch)
	if err != nil {
		return models.User{}, err
	}
	return a.session.UpdateUser(ctx, patchFrom(u))
}

func patchFrom(u *models.User) models.UserPatch {
	return models.UserPatch{Username: &u.Username, Email: &u.Email, Avatar: &u.Avatar}
}
