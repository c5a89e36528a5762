// Package tokens persists the access token, refresh token and cached user
// record in a storage.Store. It has no logic beyond get/set/remove.
package tokens

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/gophnotes/internal/client/models"
	"github.com/dmitrijs2005/gophnotes/internal/client/storage"
)

// Storage keys.
const (
	AccessTokenKey  = "auth_token"
	RefreshTokenKey = "refresh_token"
	UserKey         = "cached_user"
)

type Store struct {
	kv storage.Store
}

func NewStore(kv storage.Store) *Store {
	return &Store{kv: kv}
}

// AccessToken returns the stored access token or "" if none.
func (s *Store) AccessToken(ctx context.Context) (string, error) {
	return s.getString(ctx, AccessTokenKey)
}

// RefreshToken returns the stored refresh token or "" if none.
func (s *Store) RefreshToken(ctx context.Context) (string, error) {
	return s.getString(ctx, RefreshTokenKey)
}

func (s *Store) SetAccessToken(ctx context.Context, token string) error {
	return s.kv.Set(ctx, AccessTokenKey, []byte(token))
}

func (s *Store) SetRefreshToken(ctx context.Context, token string) error {
	return s.kv.Set(ctx, RefreshTokenKey, []byte(token))
}

func (s *Store) SetTokens(ctx context.Context, pair models.TokenPair) error {
	if err := s.SetAccessToken(ctx, pair.Access); err != nil {
		return err
	}
	return s.SetRefreshToken(ctx, pair.Refresh)
}

// ClearTokens removes both tokens.
func (s *Store) ClearTokens(ctx context.Context) error {
	return s.kv.Remove(ctx, AccessTokenKey, RefreshTokenKey)
}

// User returns the cached user record, or nil if none is cached. A record
// that no longer decodes is reported as an error.
func (s *Store) User(ctx context.Context) (*models.User, error) {
	b, err := s.kv.Get(ctx, UserKey)
	if err != nil || b == nil {
		return nil, err
	}
	var u models.User
	if err := json.Unmarshal(b, &u); err != nil {
		return nil, fmt.Errorf("cached user: %w", err)
	}
	return &u, nil
}

func (s *Store) SetUser(ctx context.Context, u models.User) error {
	b, err := json.Marshal(u)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, UserKey, b)
}

func (s *Store) ClearUser(ctx context.Context) error {
	return s.kv.Remove(ctx, UserKey)
}

// ClearAll removes both tokens and the cached user.
func (s *Store) ClearAll(ctx context.Context) error {
	return s.kv.Remove(ctx, AccessTokenKey, RefreshTokenKey, UserKey)
}

func (s *Store) getString(ctx context.Context, key string) (string, error) {
	b, err := s.kv.Get(ctx, key)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
