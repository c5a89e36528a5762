package cli

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/gophnotes/internal/client/models"
	"github.com/dmitrijs2005/gophnotes/internal/client/services"
)

// getSimpleText, getPassword and getMultiline are indirections used to
// facilitate testing. They point to interactive input helpers and can be
// swapped in tests.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
	getMultiline  = GetMultiline
)

// argOrPrompt returns args joined, or asks for the value when args is empty.
func (a *App) argOrPrompt(args []string, prompt string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	return getSimpleText(a.reader, prompt, a.out)
}

// newPassword asks for a password twice and returns both entries. The
// caller wipes them.
func (a *App) newPassword(prompt string) ([]byte, []byte, error) {
	pw, err := getPassword(a.out, prompt)
	if err != nil {
		return nil, nil, err
	}
	confirm, err := getPassword(a.out, "Repeat password")
	if err != nil {
		clear(pw)
		return nil, nil, err
	}
	return pw, confirm, nil
}

// Register prompts for username, email and password, creates the account
// and signs in.
func (a *App) Register(ctx context.Context, args []string) error {
	username, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	pw, confirm, err := a.newPassword("Enter password")
	if err != nil {
		return err
	}
	defer clear(pw)
	defer clear(confirm)

	if string(pw) != string(confirm) {
		return services.ErrPasswordMismatch
	}

	u, err := a.authService.Register(ctx, username, email, string(pw))
	if err != nil {
		return err
	}
	a.printf("Welcome, %s!\n", u.Username)
	return a.load(ctx)
}

// Login authenticates with an email (argument or prompt) and password, then
// loads the notes.
func (a *App) Login(ctx context.Context, args []string) error {
	email, err := a.argOrPrompt(args, "Enter email")
	if err != nil {
		return err
	}
	pw, err := getPassword(a.out, "Enter password")
	if err != nil {
		return err
	}
	defer clear(pw)

	u, err := a.authService.Login(ctx, email, string(pw))
	if err != nil {
		return err
	}
	a.printf("Logged in as %s\n", u.Username)
	return a.load(ctx)
}

// Logout forgets the session locally. Note colours and positions stay.
func (a *App) Logout(ctx context.Context, args []string) error {
	a.authService.Logout(ctx)
	a.board.Reset()
	a.setView(nil, "")
	a.println("Logged out")
	return nil
}

func (a *App) WhoAmI(ctx context.Context, args []string) error {
	u := a.session.User()
	if u == nil {
		a.println("Not logged in")
		return nil
	}
	printUser(a, *u)
	return nil
}

// Profile shows the account as the server has it. With arguments it edits
// a field: "profile username <name>" or "profile avatar <url>".
func (a *App) Profile(ctx context.Context, args []string) error {
	if len(args) == 0 {
		u, err := a.authService.Profile(ctx)
		if err != nil {
			return err
		}
		printUser(a, u)
		return nil
	}

	if len(args) < 2 {
		return usageError("profile [username|avatar <value>]")
	}
	value := strings.Join(args[1:], " ")

	var patch models.UserPatch
	switch args[0] {
	case "username":
		patch.Username = &value
	case "avatar":
		patch.Avatar = &value
	default:
		return usageError("profile [username|avatar <value>]")
	}

	u, err := a.authService.UpdateProfile(ctx, patch)
	if err != nil {
		return err
	}
	a.println("Profile updated")
	printUser(a, u)
	return nil
}

func (a *App) Passwd(ctx context.Context, args []string) error {
	current, err := getPassword(a.out, "Current password")
	if err != nil {
		return err
	}
	defer clear(current)

	pw, confirm, err := a.newPassword("New password")
	if err != nil {
		return err
	}
	defer clear(pw)
	defer clear(confirm)

	msg, err := a.authService.ChangePassword(ctx, string(current), string(pw), string(confirm))
	if err != nil {
		return err
	}
	a.println(orDefault(msg, "Password changed"))
	return nil
}

func (a *App) Forgot(ctx context.Context, args []string) error {
	email, err := a.argOrPrompt(args, "Enter email")
	if err != nil {
		return err
	}
	msg, err := a.authService.ForgotPassword(ctx, email)
	if err != nil {
		return err
	}
	a.println(orDefault(msg, "Check your email for a reset link"))
	return nil
}

func (a *App) Reset(ctx context.Context, args []string) error {
	token, err := a.argOrPrompt(args, "Enter reset token")
	if err != nil {
		return err
	}
	pw, confirm, err := a.newPassword("New password")
	if err != nil {
		return err
	}
	defer clear(pw)
	defer clear(confirm)

	msg, err := a.authService.ResetPassword(ctx, token, string(pw), string(confirm))
	if err != nil {
		return err
	}
	a.println(orDefault(msg, "Password reset, you can log in now"))
	return nil
}

func printUser(a *App, u models.User) {
	a.printf("Username: %s\nEmail:    %s\n", u.Username, u.Email)
	if u.Avatar != "" {
		a.printf("Avatar:   %s\n", u.Avatar)
	}
	if !u.CreatedAt.IsZero() {
		a.printf("Since:    %s\n", u.CreatedAt.Format("2006-01-02"))
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
