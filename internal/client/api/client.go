package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/dmitrijs2005/gophnotes/internal/client/models"
	"github.com/dmitrijs2005/gophnotes/internal/logging"
	"golang.org/x/sync/singleflight"
)

// TokenStore is the credential storage the client reads and renews.
// *tokens.Store satisfies it.
type TokenStore interface {
	AccessToken(ctx context.Context) (string, error)
	RefreshToken(ctx context.Context) (string, error)
	SetAccessToken(ctx context.Context, token string) error
	SetRefreshToken(ctx context.Context, token string) error
	SetTokens(ctx context.Context, pair models.TokenPair) error
	ClearTokens(ctx context.Context) error
}

const refreshFlightKey = "refresh"

type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenStore
	log     logging.Logger

	flight singleflight.Group

	mu        sync.RWMutex
	onExpired func(ctx context.Context)
}

type Option func(*Client)

// WithHTTPClient replaces http.DefaultClient. No timeout is imposed unless
// the supplied client has one.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithLogger(l logging.Logger) Option {
	return func(c *Client) { c.log = l }
}

func New(baseURL string, tokens TokenStore, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    http.DefaultClient,
		tokens:  tokens,
		log:     logging.NewNop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// OnSessionExpired registers fn to run once each time stored credentials are
// dropped because they could not be renewed.
func (c *Client) OnSessionExpired(fn func(ctx context.Context)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onExpired = fn
}

func (c *Client) expiredHandler() func(ctx context.Context) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.onExpired
}

// request describes one call. Public requests never carry a bearer token and
// a 401 on them is returned as is.
type request struct {
	method   string
	endpoint string
	in       any
	out      any
	public   bool
}

// Do sends an authenticated JSON request. in is encoded as the body when
// non-nil; out, when non-nil, receives the decoded response and is validated
// if it has a Validate() error method.
func (c *Client) Do(ctx context.Context, method, endpoint string, in, out any) error {
	return c.send(ctx, request{method: method, endpoint: endpoint, in: in, out: out}, false)
}

func (c *Client) send(ctx context.Context, r request, skipRetry bool) error {
	var access string
	if !r.public {
		tok, err := c.tokens.AccessToken(ctx)
		if err != nil {
			c.log.Warn(ctx, "read access token", "err", err)
		}
		access = tok
	}

	status, body, err := c.roundTrip(ctx, r, access)
	if err != nil {
		return err
	}

	if status == http.StatusUnauthorized && !r.public && !skipRetry {
		if err := c.recoverSession(ctx, access); err != nil {
			return err
		}
		return c.send(ctx, r, true)
	}

	if status < 200 || status > 299 {
		return newAPIError(status, body)
	}

	return decode(r.endpoint, body, r.out)
}

func (c *Client) roundTrip(ctx context.Context, r request, access string) (int, []byte, error) {
	var body io.Reader
	if r.in != nil {
		b, err := json.Marshal(r.in)
		if err != nil {
			return 0, nil, fmt.Errorf("encode %s request: %w", r.endpoint, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, c.baseURL+r.endpoint, body)
	if err != nil {
		return 0, nil, fmt.Errorf("build %s request: %w", r.endpoint, err)
	}
	req.Header.Set("Accept", "application/json")
	if r.in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if access != "" {
		req.Header.Set("Authorization", "Bearer "+access)
	}

	op := r.method + " " + r.endpoint
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, &NetworkError{Op: op, Err: err}
	}
	return resp.StatusCode, b, nil
}

type validator interface {
	Validate() error
}

func decode(endpoint string, body []byte, out any) error {
	if out == nil {
		return nil
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return &MalformedResponseError{Endpoint: endpoint, Err: errors.New("empty body")}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &MalformedResponseError{Endpoint: endpoint, Err: err}
	}
	if v, ok := out.(validator); ok {
		if err := v.Validate(); err != nil {
			return &MalformedResponseError{Endpoint: endpoint, Err: err}
		}
	}
	return nil
}

// recoverSession runs after a 401 on a request sent with token used. It
// returns nil when the caller should retry.
func (c *Client) recoverSession(ctx context.Context, used string) error {
	_, err := c.renew(ctx, used)
	return err
}

// Refresh exchanges the stored refresh token for a new access token. Concurrent
// callers share one request to the backend. The exchange is not cancelled
// when ctx is.
//
// On failure the tokens are cleared, the session-expired handler runs and the
// returned error matches ErrSessionExpired.
func (c *Client) Refresh(ctx context.Context) (string, error) {
	return c.renew(ctx, "")
}

func (c *Client) renew(ctx context.Context, used string) (string, error) {
	v, err, _ := c.flight.Do(refreshFlightKey, func() (any, error) {
		return c.refresh(context.WithoutCancel(ctx), used)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// refresh performs the exchange unless the stored access token already
// differs from used, meaning a previous refresh replaced it.
func (c *Client) refresh(ctx context.Context, used string) (string, error) {
	if used != "" {
		current, err := c.tokens.AccessToken(ctx)
		if err != nil {
			c.log.Warn(ctx, "read access token", "err", err)
		}
		if current != "" && current != used {
			return current, nil
		}
	}

	token, err := c.tokens.RefreshToken(ctx)
	if err != nil {
		c.log.Warn(ctx, "read refresh token", "err", err)
	}
	if token == "" {
		c.expire(ctx)
		return "", ErrSessionExpired
	}

	var resp RefreshResponse
	err = c.send(ctx, request{
		method:   http.MethodPost,
		endpoint: EndpointRefresh,
		in:       RefreshRequest{Refresh: token},
		out:      &resp,
		public:   true,
	}, true)
	if err != nil {
		c.log.Info(ctx, "token refresh failed", "err", err)
		c.expire(ctx)
		return "", fmt.Errorf("%w: %w", ErrSessionExpired, err)
	}

	if err := c.tokens.SetAccessToken(ctx, resp.Access); err != nil {
		c.log.Warn(ctx, "store access token", "err", err)
	}
	if resp.Refresh != "" {
		if err := c.tokens.SetRefreshToken(ctx, resp.Refresh); err != nil {
			c.log.Warn(ctx, "store refresh token", "err", err)
		}
	}

	c.log.Info(ctx, "access token refreshed", "rotated", resp.Refresh != "")
	return resp.Access, nil
}

// expire drops the credentials and notifies the handler. Nothing happens when
// there are no credentials left, so one expiry is reported once.
func (c *Client) expire(ctx context.Context) {
	access, _ := c.tokens.AccessToken(ctx)
	refresh, _ := c.tokens.RefreshToken(ctx)
	if access == "" && refresh == "" {
		return
	}

	if err := c.tokens.ClearTokens(ctx); err != nil {
		c.log.Warn(ctx, "clear tokens", "err", err)
	}
	c.log.Info(ctx, "session expired")

	if fn := c.expiredHandler(); fn != nil {
		fn(ctx)
	}
}
