package api

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/gophnotes/internal/client/models"
)

// Login authenticates with email and password and stores the issued tokens.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	return c.authenticate(ctx, EndpointLogin, LoginRequest{Email: email, Password: password})
}

// Register creates an account and stores the issued tokens.
func (c *Client) Register(ctx context.Context, username, email, password string) (*AuthResult, error) {
	return c.authenticate(ctx, EndpointRegister, RegisterRequest{Username: username, Email: email, Password: password})
}

func (c *Client) authenticate(ctx context.Context, endpoint string, in any) (*AuthResult, error) {
	var resp envelope[AuthResult]
	err := c.send(ctx, request{method: http.MethodPost, endpoint: endpoint, in: in, out: &resp, public: true}, true)
	if err != nil {
		return nil, err
	}

	if err := c.tokens.SetTokens(ctx, resp.Data.Tokens); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// ForgotPassword asks the backend to mail a reset link and returns its message.
func (c *Client) ForgotPassword(ctx context.Context, email string) (string, error) {
	var resp messageResponse
	err := c.send(ctx, request{method: http.MethodPost, endpoint: EndpointForgotPassword,
		in: ForgotPasswordRequest{Email: email}, out: &resp, public: true}, true)
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}

func (c *Client) ResetPassword(ctx context.Context, token, password string) (string, error) {
	var resp messageResponse
	err := c.send(ctx, request{method: http.MethodPost, endpoint: EndpointResetPassword,
		in: ResetPasswordRequest{Token: token, Password: password}, out: &resp, public: true}, true)
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}

func (c *Client) ChangePassword(ctx context.Context, oldPassword, newPassword string) (string, error) {
	var resp messageResponse
	err := c.Do(ctx, http.MethodPost, EndpointChangePassword,
		ChangePasswordRequest{OldPassword: oldPassword, NewPassword: newPassword}, &resp)
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}

func (c *Client) Profile(ctx context.Context) (*models.User, error) {
	var resp envelope[profile]
	if err := c.Do(ctx, http.MethodGet, EndpointProfile, nil, &resp); err != nil {
		return nil, err
	}
	u := models.User(*resp.Data)
	return &u, nil
}

func (c *Client) UpdateProfile(ctx context.Context, patch models.UserPatch) (*models.User, error) {
	var resp envelope[profile]
	if err := c.Do(ctx, http.MethodPatch, EndpointProfile, patch, &resp); err != nil {
		return nil, err
	}
	u := models.User(*resp.Data)
	return &u, nil
}
