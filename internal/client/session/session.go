// Package session tracks who is signed in.
//
// A Manager starts Uninitialized. Init resolves the stored credentials once,
// passing through Loading, and settles on Authenticated or Anonymous. Login,
// Logout, UpdateUser and Expire move between the settled states afterwards.
// The token subject is authoritative for identity; the cached user record is
// only reused when its ID matches it.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophnotes/internal/client/auth"
	"github.com/dmitrijs2005/gophnotes/internal/client/models"
	"github.com/dmitrijs2005/gophnotes/internal/logging"
)

var ErrNotAuthenticated = errors.New("not signed in")

type State int

const (
	StateUninitialized State = iota
	StateLoading
	StateAuthenticated
	StateAnonymous
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateLoading:
		return "loading"
	case StateAuthenticated:
		return "authenticated"
	case StateAnonymous:
		return "anonymous"
	}
	return "unknown"
}

// Credentials is where tokens and the cached user live. *tokens.Store
// satisfies it.
type Credentials interface {
	AccessToken(ctx context.Context) (string, error)
	RefreshToken(ctx context.Context) (string, error)
	SetAccessToken(ctx context.Context, token string) error
	User(ctx context.Context) (*models.User, error)
	SetUser(ctx context.Context, u models.User) error
	ClearUser(ctx context.Context) error
	ClearAll(ctx context.Context) error
}

// Refresher renews the access token. *api.Client satisfies it.
type Refresher interface {
	Refresh(ctx context.Context) (string, error)
}

type Manager struct {
	creds     Credentials
	refresher Refresher
	log       logging.Logger
	now       func() time.Time

	initOnce sync.Once

	mu    sync.RWMutex
	state State
	user  *models.User
}

type Option func(*Manager)

func WithLogger(l logging.Logger) Option {
	return func(m *Manager) { m.log = l }
}

// WithClock overrides time.Now for expiry checks and user timestamps.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func NewManager(creds Credentials, refresher Refresher, opts ...Option) *Manager {
	m := &Manager{
		creds:     creds,
		refresher: refresher,
		log:       logging.NewNop(),
		now:       time.Now,
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// User returns a copy of the signed-in user, or nil when anonymous.
func (m *Manager) User() *models.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil {
		return nil
	}
	u := *m.user
	return &u
}

func (m *Manager) commit(state State, user *models.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state, m.user = state, user
}

// Init resolves the stored credentials. Only the first call does any work;
// concurrent callers wait for it and all return the resulting state.
func (m *Manager) Init(ctx context.Context) State {
	m.initOnce.Do(func() {
		m.commit(StateLoading, nil)

		state, user := m.resolve(ctx)

		m.mu.Lock()
		// Login, Logout or Expire during the pass win over its result.
		if m.state == StateLoading {
			m.state, m.user = state, user
		}
		m.mu.Unlock()

		m.log.Debug(ctx, "session initialized", "state", state.String())
	})
	return m.State()
}

func (m *Manager) resolve(ctx context.Context) (State, *models.User) {
	access, err := m.creds.AccessToken(ctx)
	if err != nil {
		m.log.Warn(ctx, "read access token", "err", err)
	}
	if access == "" {
		return StateAnonymous, nil
	}

	claims, err := auth.Decode(access)
	if err != nil {
		m.log.Info(ctx, "discarding unreadable access token", "err", err)
		m.clearAll(ctx)
		return StateAnonymous, nil
	}

	now := m.now()

	if claims.Expired(now) {
		refresh, err := m.creds.RefreshToken(ctx)
		if err != nil {
			m.log.Warn(ctx, "read refresh token", "err", err)
		}
		if refresh == "" {
			m.clearAll(ctx)
			return StateAnonymous, nil
		}

		renewed, err := m.refresher.Refresh(ctx)
		if err != nil {
			m.log.Info(ctx, "session could not be renewed", "err", err)
			m.clearAll(ctx)
			return StateAnonymous, nil
		}

		claims, err = auth.Decode(renewed)
		if err != nil {
			m.log.Info(ctx, "discarding unreadable access token", "err", err)
			m.clearAll(ctx)
			return StateAnonymous, nil
		}

		u := claims.ToUser(now)
		m.cacheUser(ctx, u)
		return StateAuthenticated, &u
	}

	cached, err := m.creds.User(ctx)
	if err != nil {
		m.log.Warn(ctx, "read cached user", "err", err)
	}
	if cached != nil && cached.ID == claims.UserUUID {
		return StateAuthenticated, cached
	}

	u := claims.ToUser(now)
	m.cacheUser(ctx, u)
	return StateAuthenticated, &u
}

// Login records a successful sign-in with access token access. The user ID
// always comes from the token; profile fields come from user when given,
// otherwise from the token claims.
func (m *Manager) Login(ctx context.Context, access string, user *models.User) (models.User, error) {
	claims, err := auth.Decode(access)
	if err != nil {
		return models.User{}, err
	}

	u := claims.ToUser(m.now())
	if user != nil {
		if user.Username != "" {
			u.Username = user.Username
		}
		if user.Email != "" {
			u.Email = user.Email
		}
		u.Avatar = user.Avatar
		if !user.CreatedAt.IsZero() {
			u.CreatedAt = user.CreatedAt
		}
		if !user.UpdatedAt.IsZero() {
			u.UpdatedAt = user.UpdatedAt
		}
	}

	if err := m.creds.SetAccessToken(ctx, access); err != nil {
		m.log.Warn(ctx, "store access token", "err", err)
	}
	m.cacheUser(ctx, u)

	m.commit(StateAuthenticated, &u)
	m.log.Info(ctx, "signed in", "user", u.ID)
	return u, nil
}

// Logout forgets tokens and the cached user whatever the current state.
func (m *Manager) Logout(ctx context.Context) {
	m.clearAll(ctx)
	m.commit(StateAnonymous, nil)
	m.log.Info(ctx, "signed out")
}

// Expire is the session-expired hook: the credentials are gone, so the
// manager drops to Anonymous.
func (m *Manager) Expire(ctx context.Context) {
	if err := m.creds.ClearUser(ctx); err != nil {
		m.log.Warn(ctx, "clear cached user", "err", err)
	}
	m.commit(StateAnonymous, nil)
}

// UpdateUser applies patch to the signed-in user and caches the result.
func (m *Manager) UpdateUser(ctx context.Context, patch models.UserPatch) (models.User, error) {
	m.mu.Lock()
	if m.state != StateAuthenticated || m.user == nil {
		m.mu.Unlock()
		return models.User{}, ErrNotAuthenticated
	}
	u := m.user.Apply(patch, m.now())
	m.user = &u
	m.mu.Unlock()

	m.cacheUser(ctx, u)
	return u, nil
}

func (m *Manager) cacheUser(ctx context.Context, u models.User) {
	if err := m.creds.SetUser(ctx, u); err != nil {
		m.log.Warn(ctx, "cache user", "err", err)
	}
}

func (m *Manager) clearAll(ctx context.Context) {
	if err := m.creds.ClearAll(ctx); err != nil {
		m.log.Warn(ctx, "clear credentials", "err", err)
	}
}
