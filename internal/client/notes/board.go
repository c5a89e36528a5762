package notes

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/dmitrijs2005/gophnotes/internal/client/models"
	"github.com/dmitrijs2005/gophnotes/internal/logging"
)

var (
	ErrStaleLoad  = errors.New("notes load superseded")
	ErrNotFound   = errors.New("note not found")
	ErrOutOfRange = errors.New("index out of range")
)

// API is the slice of the backend client the board needs. *api.Client
// satisfies it.
type API interface {
	ListNotes(ctx context.Context) ([]models.Note, error)
	CreateNote(ctx context.Context, title, content string) (*models.Note, error)
	UpdateNote(ctx context.Context, id string, upd models.NoteUpdate) (*models.Note, error)
	DeleteNote(ctx context.Context, id string) error
}

// PreferenceStore persists colour and position. *preferences.Store
// satisfies it.
type PreferenceStore interface {
	All(ctx context.Context) (models.Preferences, error)
	Set(ctx context.Context, id string, patch models.Preference) error
	SetMany(ctx context.Context, patches map[string]models.Preference) error
	Remove(ctx context.Context, id string) error
	Prune(ctx context.Context, keep map[string]struct{}) (int, error)
}

// Board is the display list of notes. Its lock is only held while a result
// is committed, never across a backend call.
type Board struct {
	api   API
	prefs PreferenceStore
	log   logging.Logger

	mu    sync.Mutex
	notes []models.DisplayNote
	// generation is bumped when a load starts and when a mutation commits.
	generation uint64
}

func NewBoard(api API, prefs PreferenceStore, log logging.Logger) *Board {
	if log == nil {
		log = logging.NewNop()
	}
	return &Board{api: api, prefs: prefs, log: log}
}

// Notes returns a copy of the current display list.
func (b *Board) Notes() []models.DisplayNote {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.notes)
}

// Reset empties the board, e.g. after sign-out. In-flight loads become stale.
func (b *Board) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.generation++
	b.notes = nil
}

// LoadAll fetches the notes, merges them with the stored preferences and
// replaces the display list. On fetch failure the list is left as it was.
// A preference read failure is logged and the notes are shown with defaults.
func (b *Board) LoadAll(ctx context.Context) ([]models.DisplayNote, error) {
	b.mu.Lock()
	b.generation++
	gen := b.generation
	b.mu.Unlock()

	notes, err := b.api.ListNotes(ctx)
	if err != nil {
		return nil, err
	}

	prefs, err := b.prefs.All(ctx)
	if err != nil {
		b.log.Warn(ctx, "read preferences", "err", err)
		prefs = models.Preferences{}
	}

	merged := Merge(notes, prefs)

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.generation != gen {
		b.log.Debug(ctx, "dropping stale notes load", "generation", gen, "current", b.generation)
		return nil, ErrStaleLoad
	}
	b.notes = merged
	return slices.Clone(merged), nil
}

// Create adds a note at the top of the board with the default colour. The
// other notes move down by one on screen only; their stored positions are
// not rewritten.
func (b *Board) Create(ctx context.Context, title, content string) (models.DisplayNote, error) {
	n, err := b.api.CreateNote(ctx, title, content)
	if err != nil {
		return models.DisplayNote{}, err
	}

	pref := models.At(0)
	pref.Color = DefaultColor
	if err := b.prefs.Set(ctx, n.UUID, pref); err != nil {
		b.log.Warn(ctx, "store preference", "note", n.UUID, "err", err)
	}

	dn := models.DisplayNote{Note: *n, Color: DefaultColor, Position: 0}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.generation++

	// a load that finished meanwhile may already list it
	next := make([]models.DisplayNote, 0, len(b.notes)+1)
	next = append(next, dn)
	for _, x := range b.notes {
		if x.UUID == dn.UUID {
			continue
		}
		x.Position++
		next = append(next, x)
	}
	b.notes = next
	return dn, nil
}

// Update sends the content change and keeps the note's colour and position.
func (b *Board) Update(ctx context.Context, id string, upd models.NoteUpdate) (models.DisplayNote, error) {
	prev, ok := b.find(id)
	if !ok {
		return models.DisplayNote{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	n, err := b.api.UpdateNote(ctx, id, upd)
	if err != nil {
		return models.DisplayNote{}, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.generation++

	dn := models.DisplayNote{Note: *n, Color: prev.Color, Position: prev.Position}
	if i := b.index(id); i >= 0 {
		dn.Color, dn.Position = b.notes[i].Color, b.notes[i].Position
		next := slices.Clone(b.notes)
		next[i] = dn
		b.notes = next
	}
	return dn, nil
}

// Delete removes the note on the server and then locally together with its
// preference. If the server call fails nothing changes.
func (b *Board) Delete(ctx context.Context, id string) error {
	if err := b.api.DeleteNote(ctx, id); err != nil {
		return err
	}

	if err := b.prefs.Remove(ctx, id); err != nil {
		b.log.Warn(ctx, "remove preference", "note", id, "err", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.generation++
	b.notes = slices.DeleteFunc(slices.Clone(b.notes), func(x models.DisplayNote) bool {
		return x.UUID == id
	})
	return nil
}

// SetColor recolours a note. It is local only; a failed preference write is
// logged and the on-screen colour still changes.
func (b *Board) SetColor(ctx context.Context, id, color string) {
	if err := b.prefs.Set(ctx, id, models.Preference{Color: color}); err != nil {
		b.log.Warn(ctx, "store preference", "note", id, "err", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.generation++
	if i := b.index(id); i >= 0 {
		next := slices.Clone(b.notes)
		next[i].Color = color
		b.notes = next
	}
}

// Reorder moves the note at src to dst within visible, the subset of the
// board currently shown. Visible notes get dense positions equal to their new
// index; notes outside the subset keep theirs, and the whole board is then
// stably re-sorted. A hidden note can end up sharing a position with a
// visible one; the sort keeps their previous relative order.
func (b *Board) Reorder(ctx context.Context, visible []models.DisplayNote, src, dst int) error {
	if src < 0 || src >= len(visible) || dst < 0 || dst >= len(visible) {
		return fmt.Errorf("%w: move %d to %d in %d notes", ErrOutOfRange, src, dst, len(visible))
	}
	if src == dst {
		return nil
	}

	moved := slices.Clone(visible)
	item := moved[src]
	moved = slices.Delete(moved, src, src+1)
	moved = slices.Insert(moved, dst, item)

	// Every visible position is stored: a displayed position can differ
	// from the stored one after Create or when none was stored yet.
	positions := make(map[string]int, len(moved))
	patches := make(map[string]models.Preference, len(moved))
	for i, n := range moved {
		positions[n.UUID] = i
		patches[n.UUID] = models.At(i)
	}

	if err := b.prefs.SetMany(ctx, patches); err != nil {
		b.log.Warn(ctx, "store positions", "count", len(patches), "err", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.generation++

	next := slices.Clone(b.notes)
	for i := range next {
		if p, ok := positions[next[i].UUID]; ok {
			next[i].Position = p
		}
	}
	sortByPosition(next)
	b.notes = next
	return nil
}

// Prune drops stored preferences for notes that no longer exist on the
// server and returns how many were removed.
func (b *Board) Prune(ctx context.Context) (int, error) {
	notes, err := b.api.ListNotes(ctx)
	if err != nil {
		return 0, err
	}
	keep := make(map[string]struct{}, len(notes))
	for _, n := range notes {
		keep[n.UUID] = struct{}{}
	}
	return b.prefs.Prune(ctx, keep)
}

func (b *Board) find(id string) (models.DisplayNote, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if i := b.index(id); i >= 0 {
		return b.notes[i], true
	}
	return models.DisplayNote{}, false
}

// index must be called with mu held.
func (b *Board) index(id string) int {
	return slices.IndexFunc(b.notes, func(x models.DisplayNote) bool { return x.UUID == id })
}
