package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// command is the shape every REPL command handler has; args are the words
// after the command name.
type command func(ctx context.Context, args []string) error

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool

	Register(ctx context.Context, args []string) error
	Login(ctx context.Context, args []string) error
	Logout(ctx context.Context, args []string) error
	WhoAmI(ctx context.Context, args []string) error
	Profile(ctx context.Context, args []string) error
	Passwd(ctx context.Context, args []string) error
	Forgot(ctx context.Context, args []string) error
	Reset(ctx context.Context, args []string) error

	List(ctx context.Context, args []string) error
	Search(ctx context.Context, args []string) error
	ClearSearch(ctx context.Context, args []string) error
	Add(ctx context.Context, args []string) error
	Edit(ctx context.Context, args []string) error
	Delete(ctx context.Context, args []string) error
	Color(ctx context.Context, args []string) error
	Move(ctx context.Context, args []string) error
	Reload(ctx context.Context, args []string) error
	Prune(ctx context.Context, args []string) error
}

const (
	helpAnonymous = "Available commands: register, login, forgot, reset, help, exit"
	helpSignedIn  = "Available commands: (l)ist, search <text>, clear, add, edit <n>, delete <n>, " +
		"color <n> <1-10|#RRGGBB>, move <from> <to>, reload, prune, whoami, profile, passwd, logout, help, exit"
)

// runREPL starts a simple read–eval–print loop for the notes CLI.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a'. Unknown commands are reported back to the
// user. The loop exits on EOF or when the user types "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	Not logged in:
//	  - help                 — show available commands
//	  - register             — create an account
//	  - login [email]        — authenticate
//	  - forgot [email]       — request a password reset link
//	  - reset [token]        — set a new password with a reset token
//	  - exit | quit          — leave the program
//
//	Logged in:
//	  - (l)ist               — show all notes
//	  - search <text>        — show notes whose title or content match
//	  - clear                — drop the search and show all notes
//	  - add [title]          — create a note
//	  - edit <n>             — change title and/or content
//	  - delete <n>           — delete a note
//	  - color <n> <c>        — recolour; c is a palette number or #RRGGBB
//	  - move <from> <to>     — reorder within the shown list
//	  - reload               — fetch notes again
//	  - prune                — forget colours/positions of deleted notes
//	  - whoami, profile, passwd, logout
//	  - exit | quit          — leave the program
//
// Errors returned by handlers are printed and the loop continues.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("notes %s> ", statusFn()))

		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		run := func(needLogin bool, fn command) {
			if needLogin && !a.isLoggedIn() {
				printlnFn("Please log in first.")
				return
			}
			if err := fn(ctx, args); err != nil {
				if msg := errorText(err); msg != "" {
					printlnFn("Error:", msg)
				}
			}
		}

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpSignedIn)
			} else {
				printlnFn(helpAnonymous)
			}

		case "register":
			run(false, a.Register)
		case "login":
			run(false, a.Login)
		case "forgot":
			run(false, a.Forgot)
		case "reset":
			run(false, a.Reset)

		case "logout":
			run(true, a.Logout)
		case "whoami":
			run(true, a.WhoAmI)
		case "profile":
			run(true, a.Profile)
		case "passwd":
			run(true, a.Passwd)

		case "l", "list":
			run(true, a.List)
		case "search":
			run(true, a.Search)
		case "clear":
			run(true, a.ClearSearch)
		case "add":
			run(true, a.Add)
		case "edit":
			run(true, a.Edit)
		case "delete":
			run(true, a.Delete)
		case "color":
			run(true, a.Color)
		case "move":
			run(true, a.Move)
		case "reload":
			run(true, a.Reload)
		case "prune":
			run(true, a.Prune)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			// last line had no newline
			return
		}
	}
}
