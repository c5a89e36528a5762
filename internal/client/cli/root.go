package cli

import (
	"context"

	"github.com/dmitrijs2005/gophnotes/internal/client/session"
)

// Root restores the previous session, loads the notes if signed in and runs
// the REPL until the user exits.
func (a *App) Root(ctx context.Context) {
	a.println("Welcome to GophNotes CLI (type 'help' for commands)")

	if a.session.Init(ctx) == session.StateAuthenticated {
		if u := a.session.User(); u != nil {
			a.printf("Logged in as %s\n", u.Username)
		}
		if err := a.load(ctx); err != nil {
			if msg := errorText(err); msg != "" {
				a.println("Error:", msg)
			}
		}
	}

	runREPL(ctx, a, a.getStatus, a.reader)
}

// Run starts the CLI and releases local storage when it returns.
func (a *App) Run(ctx context.Context) {
	defer func() {
		if err := a.Close(); err != nil {
			a.log.Warn(ctx, "close storage", "err", err)
		}
	}()
	a.Root(ctx)
}
