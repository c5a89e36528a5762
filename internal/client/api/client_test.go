package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophnotes/internal/client/api/apitest"
	"github.com/dmitrijs2005/gophnotes/internal/client/auth/authtest"
	"github.com/dmitrijs2005/gophnotes/internal/client/models"
	"github.com/dmitrijs2005/gophnotes/internal/client/storage"
	"github.com/dmitrijs2005/gophnotes/internal/client/tokens"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, baseURL string) (*Client, *tokens.Store) {
	t.Helper()
	ts := tokens.NewStore(storage.NewMemoryStore())
	return New(baseURL, ts), ts
}

// signedIn returns a client holding a fresh token pair for a new user.
func signedIn(t *testing.T, srv *apitest.Server) (*Client, *tokens.Store, string) {
	t.Helper()
	c, ts := newTestClient(t, srv.URL)
	id := srv.AddUser("alice", "alice@example.com", "pw")
	require.NoError(t, ts.SetTokens(context.Background(), srv.Issue(id)))
	return c, ts, id
}

func TestDo_AttachesBearerToken(t *testing.T) {
	srv := apitest.NewServer(t)
	c, ts, _ := signedIn(t, srv)
	ctx := context.Background()

	_, err := c.ListNotes(ctx)
	require.NoError(t, err)

	access, _ := ts.AccessToken(ctx)
	reqs := srv.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "Bearer "+access, reqs[0].Auth)
}

func TestDo_NoTokenSendsNoHeader(t *testing.T) {
	var got atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.Store(r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c, _ := newTestClient(t, srv.URL)
	require.NoError(t, c.Do(context.Background(), http.MethodGet, "/ping/", nil, nil))
	assert.Equal(t, "", got.Load())
}

func TestDo_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, _ := newTestClient(t, url)
	err := c.Do(context.Background(), http.MethodGet, EndpointNotes, nil, nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnavailable)
	var ne *NetworkError
	require.ErrorAs(t, err, &ne)
	assert.Equal(t, "GET /notes/", ne.Op)
}

func TestDo_APIErrorMessage(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"plain message", http.StatusBadRequest, `{"message":"Title is required"}`, "Title is required"},
		{"nested error", http.StatusBadRequest, `{"message":{"error":"Note not found"}}`, "Note not found"},
		{"drf detail", http.StatusForbidden, `{"detail":"Not allowed."}`, "Not allowed."},
		{"empty body", http.StatusInternalServerError, ``, "Internal Server Error"},
		{"not json", http.StatusBadGateway, `<html>bad gateway</html>`, "Bad Gateway"},
		{"unknown status", 599, `{}`, fallbackMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c, _ := newTestClient(t, srv.URL)
			err := c.Do(context.Background(), http.MethodGet, EndpointNotes, nil, nil)

			var ae *APIError
			require.ErrorAs(t, err, &ae)
			assert.Equal(t, tt.status, ae.Status)
			assert.Equal(t, tt.want, ae.Message)
		})
	}
}

func TestDo_MalformedResponse(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty", ``},
		{"not json", `ok`},
		{"missing data", `{"message":"done"}`},
		{"null data", `{"data":null}`},
		{"bad note uuid", `{"data":[{"note_uuid":"nope","title":"t"}]}`},
		{"wrong shape", `{"data":{"note_uuid":"x"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c, _ := newTestClient(t, srv.URL)
			_, err := c.ListNotes(context.Background())

			var me *MalformedResponseError
			require.ErrorAs(t, err, &me)
			assert.Equal(t, EndpointNotes, me.Endpoint)
		})
	}
}

func TestRefresh_ConcurrentUnauthorizedShareOneRefresh(t *testing.T) {
	srv := apitest.NewServer(t)
	srv.RefreshDelay = 100 * time.Millisecond
	c, ts, _ := signedIn(t, srv)
	ctx := context.Background()

	var expired atomic.Int32
	c.OnSessionExpired(func(context.Context) { expired.Add(1) })

	before, _ := ts.AccessToken(ctx)
	srv.ExpireAccess()

	const n = 10
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = c.ListNotes(ctx)
		}()
	}
	wg.Wait()

	for i, err := range errs {
		assert.NoError(t, err, "request %d", i)
	}
	assert.Equal(t, 1, srv.RefreshCalls())
	assert.Zero(t, expired.Load())

	after, _ := ts.AccessToken(ctx)
	assert.NotEqual(t, before, after)
}

func TestRefresh_FailureExpiresSessionOnce(t *testing.T) {
	srv := apitest.NewServer(t)
	srv.RefreshDelay = 50 * time.Millisecond
	c, ts, _ := signedIn(t, srv)
	ctx := context.Background()

	var expired atomic.Int32
	c.OnSessionExpired(func(context.Context) { expired.Add(1) })

	srv.ExpireAccess()
	srv.FailRefresh(true)

	const n = 5
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = c.ListNotes(ctx)
		}()
	}
	wg.Wait()

	for _, err := range errs {
		assert.ErrorIs(t, err, ErrSessionExpired)
	}
	assert.Equal(t, int32(1), expired.Load())

	access, _ := ts.AccessToken(ctx)
	refresh, _ := ts.RefreshToken(ctx)
	assert.Empty(t, access)
	assert.Empty(t, refresh)
}

func TestRefresh_NoRefreshToken(t *testing.T) {
	srv := apitest.NewServer(t)
	c, ts := newTestClient(t, srv.URL)
	ctx := context.Background()
	require.NoError(t, ts.SetAccessToken(ctx, authtest.Expired(t, "u1")))

	var expired atomic.Int32
	c.OnSessionExpired(func(context.Context) { expired.Add(1) })

	_, err := c.ListNotes(ctx)
	require.ErrorIs(t, err, ErrSessionExpired)
	assert.Zero(t, srv.RefreshCalls())
	assert.Equal(t, int32(1), expired.Load())

	access, _ := ts.AccessToken(ctx)
	assert.Empty(t, access)

	// nothing left to expire
	_, err = c.ListNotes(ctx)
	require.Error(t, err)
	assert.Equal(t, int32(1), expired.Load())
}

func TestRefresh_RetriesOriginalRequestOnlyOnce(t *testing.T) {
	var notesCalls, refreshCalls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/notes/", func(w http.ResponseWriter, r *http.Request) {
		notesCalls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":"still no"}`))
	})
	mux.HandleFunc(EndpointRefresh, func(w http.ResponseWriter, r *http.Request) {
		refreshCalls.Add(1)
		_, _ = w.Write([]byte(`{"access":"A2"}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c, ts := newTestClient(t, srv.URL)
	ctx := context.Background()
	require.NoError(t, ts.SetTokens(ctx, models.TokenPair{Access: "A1", Refresh: "R1"}))

	_, err := c.ListNotes(ctx)

	var ae *APIError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, http.StatusUnauthorized, ae.Status)
	assert.Equal(t, "still no", ae.Message)
	assert.Equal(t, int32(2), notesCalls.Load())
	assert.Equal(t, int32(1), refreshCalls.Load())
}

func TestRefresh_SkippedWhenTokenAlreadyRenewed(t *testing.T) {
	ts := tokens.NewStore(storage.NewMemoryStore())
	ctx := context.Background()
	require.NoError(t, ts.SetTokens(ctx, models.TokenPair{Access: "A1", Refresh: "R1"}))

	var refreshCalls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/notes/", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "Bearer A1" {
			// another request finished a refresh meanwhile
			_ = ts.SetAccessToken(ctx, "A2")
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"data":[]}`))
	})
	mux.HandleFunc(EndpointRefresh, func(w http.ResponseWriter, r *http.Request) {
		refreshCalls.Add(1)
		_, _ = w.Write([]byte(`{"access":"A3"}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := New(srv.URL, ts)
	notes, err := c.ListNotes(ctx)
	require.NoError(t, err)
	assert.Empty(t, notes)
	assert.Zero(t, refreshCalls.Load())
}

func TestRefresh_RotatesRefreshToken(t *testing.T) {
	srv := apitest.NewServer(t)
	srv.RotateRefresh = true
	c, ts, _ := signedIn(t, srv)
	ctx := context.Background()

	oldRefresh, _ := ts.RefreshToken(ctx)
	srv.ExpireAccess()

	_, err := c.ListNotes(ctx)
	require.NoError(t, err)

	newRefresh, _ := ts.RefreshToken(ctx)
	assert.NotEmpty(t, newRefresh)
	assert.NotEqual(t, oldRefresh, newRefresh)
}

func TestRefresh_KeepsRefreshTokenWithoutRotation(t *testing.T) {
	srv := apitest.NewServer(t)
	c, ts, _ := signedIn(t, srv)
	ctx := context.Background()

	oldRefresh, _ := ts.RefreshToken(ctx)
	access, err := c.Refresh(ctx)
	require.NoError(t, err)

	stored, _ := ts.AccessToken(ctx)
	newRefresh, _ := ts.RefreshToken(ctx)
	assert.Equal(t, access, stored)
	assert.Equal(t, oldRefresh, newRefresh)
}

func TestRefresh_SurvivesCallerCancellation(t *testing.T) {
	srv := apitest.NewServer(t)
	srv.RefreshDelay = 100 * time.Millisecond
	c, ts, _ := signedIn(t, srv)

	before, _ := ts.AccessToken(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := c.Refresh(ctx)
	require.NoError(t, err)

	after, _ := ts.AccessToken(context.Background())
	assert.NotEqual(t, before, after)
}

func TestPublicEndpoints_BypassRefresh(t *testing.T) {
	srv := apitest.NewServer(t)
	c, _, _ := signedIn(t, srv)
	ctx := context.Background()

	_, err := c.Login(ctx, "alice@example.com", "wrong")

	var ae *APIError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, http.StatusUnauthorized, ae.Status)
	assert.Equal(t, "Invalid credentials", ae.Message)
	assert.False(t, errors.Is(err, ErrSessionExpired))
	assert.Zero(t, srv.RefreshCalls())

	reqs := srv.Requests()
	require.NotEmpty(t, reqs)
	assert.Empty(t, reqs[len(reqs)-1].Auth)
}
