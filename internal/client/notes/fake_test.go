package notes

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophnotes/internal/client/models"
	"github.com/google/uuid"
)

var errBoom = errors.New("boom")

// fakeAPI is an in-memory backend. Hooks queued in onList run, in order, one
// per ListNotes call after the notes were read.
type fakeAPI struct {
	mu        sync.Mutex
	notes     []models.Note
	onList    []func()
	listErr   error
	createErr error
	updateErr error
	deleteErr error
	calls     map[string]int
}

func newFakeAPI(notes ...models.Note) *fakeAPI {
	return &fakeAPI{notes: notes, calls: map[string]int{}}
}

func (f *fakeAPI) setNotes(notes ...models.Note) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notes = notes
}

func (f *fakeAPI) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeAPI) ListNotes(ctx context.Context) ([]models.Note, error) {
	f.mu.Lock()
	f.calls["list"]++
	notes, err := slices.Clone(f.notes), f.listErr
	var hook func()
	if len(f.onList) > 0 {
		hook, f.onList = f.onList[0], f.onList[1:]
	}
	f.mu.Unlock()

	if hook != nil {
		hook()
	}
	return notes, err
}

func (f *fakeAPI) CreateNote(ctx context.Context, title, content string) (*models.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["create"]++
	if f.createErr != nil {
		return nil, f.createErr
	}
	n := newNote(title, content)
	f.notes = append([]models.Note{n}, f.notes...)
	return &n, nil
}

func (f *fakeAPI) UpdateNote(ctx context.Context, id string, upd models.NoteUpdate) (*models.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["update"]++
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	for i := range f.notes {
		if f.notes[i].UUID != id {
			continue
		}
		if upd.Title != nil {
			f.notes[i].Title = *upd.Title
		}
		if upd.Content != nil {
			f.notes[i].Content = *upd.Content
		}
		n := f.notes[i]
		return &n, nil
	}
	return nil, errors.New("not found")
}

func (f *fakeAPI) DeleteNote(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["delete"]++
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.notes = slices.DeleteFunc(f.notes, func(n models.Note) bool { return n.UUID == id })
	return nil
}

// brokenPrefs fails every call.
type brokenPrefs struct{}

func (brokenPrefs) All(context.Context) (models.Preferences, error) { return nil, errBoom }
func (brokenPrefs) Set(context.Context, string, models.Preference) error {
	return errBoom
}
func (brokenPrefs) SetMany(context.Context, map[string]models.Preference) error {
	return errBoom
}
func (brokenPrefs) Remove(context.Context, string) error { return errBoom }
func (brokenPrefs) Prune(context.Context, map[string]struct{}) (int, error) {
	return 0, errBoom
}

func newNote(title, content string) models.Note {
	now := time.Now().UTC()
	return models.Note{UUID: uuid.NewString(), Title: title, Content: content, CreatedAt: now, UpdatedAt: now}
}

// mkNotes returns one note per title, in the given (fetch) order.
func mkNotes(titles ...string) []models.Note {
	out := make([]models.Note, len(titles))
	for i, t := range titles {
		out[i] = newNote(t, "content of "+t)
	}
	return out
}

func titles(list []models.DisplayNote) []string {
	out := make([]string, len(list))
	for i, n := range list {
		out[i] = n.Title
	}
	return out
}

func positions(list []models.DisplayNote) []int {
	out := make([]int, len(list))
	for i, n := range list {
		out[i] = n.Position
	}
	return out
}
