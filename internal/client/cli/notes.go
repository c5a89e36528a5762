package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/gophnotes/internal/client/models"
	"github.com/dmitrijs2005/gophnotes/internal/client/notes"
)

// load fetches the notes after sign-in and prints the list.
func (a *App) load(ctx context.Context) error {
	if _, err := a.board.LoadAll(ctx); err != nil && !errors.Is(err, notes.ErrStaleLoad) {
		return fmt.Errorf("load notes: %w", err)
	}
	return a.show("")
}

// show prints the board filtered by query and remembers it as the view.
func (a *App) show(query string) error {
	view := notes.Filter(a.board.Notes(), query)
	a.setView(view, query)
	renderList(a.out, view, query)
	return nil
}

// refresh reprints the current view after a mutation.
func (a *App) refresh() error {
	_, query := a.currentView()
	return a.show(query)
}

// noteAt resolves a 1-based note number from the current view.
func (a *App) noteAt(arg string) (models.DisplayNote, int, error) {
	view, _ := a.currentView()
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 || n > len(view) {
		return models.DisplayNote{}, 0, fmt.Errorf("no note number %s in the list (1..%d)", arg, len(view))
	}
	return view[n-1], n - 1, nil
}

func (a *App) List(ctx context.Context, args []string) error {
	return a.show("")
}

func (a *App) Search(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("search <text>")
	}
	return a.show(strings.Join(args, " "))
}

func (a *App) ClearSearch(ctx context.Context, args []string) error {
	return a.show("")
}

func (a *App) Reload(ctx context.Context, args []string) error {
	_, query := a.currentView()
	if _, err := a.board.LoadAll(ctx); err != nil {
		if errors.Is(err, notes.ErrStaleLoad) {
			return nil
		}
		return err
	}
	return a.show(query)
}

// Add creates a note; the title comes from the arguments or a prompt.
func (a *App) Add(ctx context.Context, args []string) error {
	title, err := a.argOrPrompt(args, "Title")
	if err != nil {
		return err
	}
	content, err := getMultiline(a.reader, "Content", a.out)
	if err != nil {
		return err
	}
	if title == "" && content == "" {
		return errors.New("empty note, nothing saved")
	}

	dn, err := a.board.Create(ctx, title, content)
	if err != nil {
		return err
	}
	a.printf("Added %q\n", displayTitle(dn))
	return a.refresh()
}

// Edit asks for a new title and content; empty input keeps the old value.
func (a *App) Edit(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError("edit <n>")
	}
	dn, _, err := a.noteAt(args[0])
	if err != nil {
		return err
	}

	title, err := getSimpleText(a.reader, fmt.Sprintf("Title [%s]", dn.Title), a.out)
	if err != nil {
		return err
	}
	content, err := getMultiline(a.reader, "Content (empty keeps the current text)", a.out)
	if err != nil {
		return err
	}

	var upd models.NoteUpdate
	if title != "" && title != dn.Title {
		upd.Title = &title
	}
	if content != "" && content != dn.Content {
		upd.Content = &content
	}
	if upd.Validate() != nil {
		a.println("Nothing to change")
		return nil
	}

	if _, err := a.board.Update(ctx, dn.UUID, upd); err != nil {
		return err
	}
	a.println("Saved")
	return a.refresh()
}

func (a *App) Delete(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError("delete <n>")
	}
	dn, _, err := a.noteAt(args[0])
	if err != nil {
		return err
	}

	answer, err := getSimpleText(a.reader, fmt.Sprintf("Delete %q? [y/N]", displayTitle(dn)), a.out)
	if err != nil {
		return err
	}
	if !strings.EqualFold(answer, "y") && !strings.EqualFold(answer, "yes") {
		a.println("Cancelled")
		return nil
	}

	if err := a.board.Delete(ctx, dn.UUID); err != nil {
		return err
	}
	a.println("Deleted")
	return a.refresh()
}

// Color recolours a note. Without arguments it prints the palette.
func (a *App) Color(ctx context.Context, args []string) error {
	if len(args) == 0 {
		renderPalette(a.out)
		return nil
	}
	if len(args) != 2 {
		return usageError("color <n> <1-10|#RRGGBB>")
	}
	dn, _, err := a.noteAt(args[0])
	if err != nil {
		return err
	}
	color, err := notes.ResolveColor(args[1])
	if err != nil {
		return err
	}

	a.board.SetColor(ctx, dn.UUID, color)
	return a.refresh()
}

// Move reorders within the current view, so a search result can be sorted
// without disturbing the notes it hides.
func (a *App) Move(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return usageError("move <from> <to>")
	}
	_, from, err := a.noteAt(args[0])
	if err != nil {
		return err
	}
	_, to, err := a.noteAt(args[1])
	if err != nil {
		return err
	}

	view, _ := a.currentView()
	if err := a.board.Reorder(ctx, view, from, to); err != nil {
		return err
	}
	return a.refresh()
}

func (a *App) Prune(ctx context.Context, args []string) error {
	n, err := a.board.Prune(ctx)
	if err != nil {
		return err
	}
	a.printf("Removed %d stale preference(s)\n", n)
	return nil
}
