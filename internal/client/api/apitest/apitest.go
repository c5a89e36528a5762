// Package apitest runs an in-memory notes backend over httptest for tests.
package apitest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophnotes/internal/client/auth/authtest"
	"github.com/dmitrijs2005/gophnotes/internal/client/models"
	"github.com/google/uuid"
)

// Request is a call the server received.
type Request struct {
	Method string
	Path   string
	Auth   string
	Body   map[string]any
}

type account struct {
	user     models.User
	password string
}

// Server mimics the backend's account and notes endpoints.
type Server struct {
	*httptest.Server

	t testing.TB

	// RefreshDelay holds every refresh response back, widening the window in
	// which concurrent requests pile up behind one refresh.
	RefreshDelay time.Duration
	// RotateRefresh makes refresh responses carry a new refresh token.
	RotateRefresh bool

	refreshCalls atomic.Int32

	mu          sync.Mutex
	accounts    map[string]*account // by email
	access      map[string]string   // token -> user id
	refresh     map[string]string
	notes       map[string][]models.Note // by user id, newest first
	requests    []Request
	failRefresh bool
	down        map[string]int // path -> status forced for every request
}

func NewServer(t testing.TB) *Server {
	t.Helper()

	s := &Server{
		t:        t,
		accounts: map[string]*account{},
		access:   map[string]string{},
		refresh:  map[string]string{},
		notes:    map[string][]models.Note{},
		down:     map[string]int{},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /account/login/", s.handleLogin)
	mux.HandleFunc("POST /account/register/", s.handleRegister)
	mux.HandleFunc("POST /account/token/refresh/", s.handleRefresh)
	mux.HandleFunc("POST /account/forgot-password/", s.handleForgot)
	mux.HandleFunc("POST /account/reset-password/", s.handleReset)
	mux.HandleFunc("POST /account/change-password/", s.authed(s.handleChangePassword))
	mux.HandleFunc("GET /account/profile/", s.authed(s.handleProfile))
	mux.HandleFunc("PATCH /account/profile/", s.authed(s.handleUpdateProfile))
	mux.HandleFunc("GET /notes/", s.authed(s.handleListNotes))
	mux.HandleFunc("POST /notes/", s.authed(s.handleCreateNote))
	mux.HandleFunc("PATCH /notes/", s.authed(s.handleUpdateNote))
	mux.HandleFunc("DELETE /notes/", s.authed(s.handleDeleteNotes))

	s.Server = httptest.NewServer(s.record(mux))
	t.Cleanup(s.Close)
	return s
}

// AddUser creates an account and returns its id.
func (s *Server) AddUser(username, email, password string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addUserLocked(username, email, password)
}

func (s *Server) addUserLocked(username, email, password string) string {
	now := time.Now().UTC().Truncate(time.Second)
	u := models.User{ID: uuid.NewString(), Username: username, Email: email, CreatedAt: now, UpdatedAt: now}
	s.accounts[email] = &account{user: u, password: password}
	return u.ID
}

// Issue mints a token pair for the user with id userID as login would.
func (s *Server) Issue(userID string) models.TokenPair {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.issueLocked(userID)
}

func (s *Server) issueLocked(userID string) models.TokenPair {
	pair := models.TokenPair{Access: s.accessLocked(userID), Refresh: uuid.NewString()}
	s.refresh[pair.Refresh] = userID
	return pair
}

func (s *Server) accessLocked(userID string) string {
	var username, email string
	for _, a := range s.accounts {
		if a.user.ID == userID {
			username, email = a.user.Username, a.user.Email
		}
	}
	tok := authtest.Token(s.t, userID, username, email, time.Now().Add(time.Hour))
	s.access[tok] = userID
	return tok
}

// ExpireAccess makes every access token issued so far rejected with 401.
func (s *Server) ExpireAccess() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.access)
}

// FailRefresh makes the refresh endpoint reject every token.
func (s *Server) FailRefresh(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failRefresh = fail
}

// Break forces status for every request to path, or restores it when status
// is 0.
func (s *Server) Break(path string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if status == 0 {
		delete(s.down, path)
		return
	}
	s.down[path] = status
}

// RefreshCalls is the number of requests the refresh endpoint received.
func (s *Server) RefreshCalls() int {
	return int(s.refreshCalls.Load())
}

// Requests returns a copy of every request received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// SeedNotes stores notes for a user as if they were created in order, so the
// last one is listed first.
func (s *Server) SeedNotes(userID string, notes ...models.Note) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range notes {
		s.notes[userID] = append([]models.Note{n}, s.notes[userID]...)
	}
}

// Notes returns the user's notes as listed by the backend.
func (s *Server) Notes(userID string) []models.Note {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Note(nil), s.notes[userID]...)
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&body)
		}

		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method: r.Method,
			Path:   r.URL.Path,
			Auth:   r.Header.Get("Authorization"),
			Body:   body,
		})
		status := s.down[r.URL.Path]
		s.mu.Unlock()

		if status != 0 {
			writeJSON(w, status, map[string]any{"message": http.StatusText(status)})
			return
		}

		ctx := withBody(r.Context(), body)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type handler func(w http.ResponseWriter, r *http.Request, userID string, body map[string]any)

func (s *Server) authed(h handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tok := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")

		s.mu.Lock()
		userID, ok := s.access[tok]
		s.mu.Unlock()

		if !ok {
			writeJSON(w, http.StatusUnauthorized, map[string]any{
				"detail": "Given token not valid for any token type",
			})
			return
		}
		h(w, r, userID, bodyFrom(r.Context()))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func data(v any) map[string]any {
	return map[string]any{"data": v, "message": ""}
}

func str(body map[string]any, key string) string {
	s, _ := body[key].(string)
	return s
}
