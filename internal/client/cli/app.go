package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/dmitrijs2005/gophnotes/internal/client/api"
	"github.com/dmitrijs2005/gophnotes/internal/client/config"
	"github.com/dmitrijs2005/gophnotes/internal/client/models"
	"github.com/dmitrijs2005/gophnotes/internal/client/notes"
	"github.com/dmitrijs2005/gophnotes/internal/client/preferences"
	"github.com/dmitrijs2005/gophnotes/internal/client/services"
	"github.com/dmitrijs2005/gophnotes/internal/client/session"
	"github.com/dmitrijs2005/gophnotes/internal/client/storage"
	"github.com/dmitrijs2005/gophnotes/internal/client/tokens"
	"github.com/dmitrijs2005/gophnotes/internal/logging"
)

type App struct {
	config      *config.Config
	log         logging.Logger
	store       storage.Store
	authService services.AuthService
	session     *session.Manager
	board       *notes.Board
	reader      *bufio.Reader
	out         io.Writer

	mu sync.Mutex
	// view is what the last list or search printed; note numbers refer to it.
	view  []models.DisplayNote
	query string
}

// NewApp opens local storage as configured and wires the client components.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	store, err := openStore(ctx, c, func() ([]byte, error) {
		return getPassword(os.Stdout, "Storage passphrase")
	})
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	return newApp(c, store, log, bufio.NewReader(os.Stdin), os.Stdout), nil
}

func newApp(c *config.Config, store storage.Store, log logging.Logger, reader *bufio.Reader, out io.Writer) *App {
	creds := tokens.NewStore(store)
	client := api.New(c.APIBaseURL, creds, api.WithLogger(log.With("component", "api")))
	sess := session.NewManager(creds, client, session.WithLogger(log.With("component", "session")))
	board := notes.NewBoard(client, preferences.NewStore(store), log.With("component", "notes"))

	a := &App{
		config:      c,
		log:         log,
		store:       store,
		authService: services.NewAuthService(client, sess),
		session:     sess,
		board:       board,
		reader:      reader,
		out:         out,
	}
	client.OnSessionExpired(a.sessionExpired)
	return a
}

// sessionExpired runs once per expiry, from whichever command hit it.
func (a *App) sessionExpired(ctx context.Context) {
	a.session.Expire(ctx)
	a.board.Reset()
	a.setView(nil, "")
	a.println("Your session has expired. Please log in again.")
}

func (a *App) Close() error {
	return a.store.Close()
}

func (a *App) isLoggedIn() bool {
	return a.session.State() == session.StateAuthenticated
}

func (a *App) getStatus() string {
	if u := a.session.User(); u != nil {
		return fmt.Sprintf("(%s)", u.Username)
	}
	return ""
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *App) setView(view []models.DisplayNote, query string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.view, a.query = view, query
}

func (a *App) currentView() ([]models.DisplayNote, string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.view, a.query
}
