// Package preferences persists per-note display preferences (colour and
// position) as a single JSON document in a storage.Store. Preferences never
// leave the client.
package preferences

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/gophnotes/internal/client/models"
	"github.com/dmitrijs2005/gophnotes/internal/client/storage"
)

// Key is the storage key holding the preference map.
const Key = "note_preferences"

// Store reads and writes the preference map. Writes are read-modify-write
// of the whole document and are serialised by a mutex.
type Store struct {
	mu sync.Mutex
	kv storage.Store
}

func NewStore(kv storage.Store) *Store {
	return &Store{kv: kv}
}

// All returns the full preference map. A missing document is an empty map.
func (s *Store) All(ctx context.Context) (models.Preferences, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// Get returns the preference for id, or the zero Preference.
func (s *Store) Get(ctx context.Context, id string) (models.Preference, error) {
	all, err := s.All(ctx)
	if err != nil {
		return models.Preference{}, err
	}
	return all[id], nil
}

// Set merges patch into the stored preference for id.
func (s *Store) Set(ctx context.Context, id string, patch models.Preference) error {
	return s.SetMany(ctx, map[string]models.Preference{id: patch})
}

// SetMany merges several patches with a single write.
func (s *Store) SetMany(ctx context.Context, patches map[string]models.Preference) error {
	if len(patches) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load(ctx)
	if err != nil {
		return err
	}
	for id, p := range patches {
		all[id] = all[id].Merge(p)
	}
	return s.save(ctx, all)
}

// Remove drops the preference for id.
func (s *Store) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load(ctx)
	if err != nil {
		return err
	}
	if _, ok := all[id]; !ok {
		return nil
	}
	delete(all, id)
	return s.save(ctx, all)
}

// Prune drops every preference whose id is not in keep and returns how many
// were removed.
func (s *Store) Prune(ctx context.Context, keep map[string]struct{}) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load(ctx)
	if err != nil {
		return 0, err
	}
	removed := 0
	for id := range all {
		if _, ok := keep[id]; !ok {
			delete(all, id)
			removed++
		}
	}
	if removed == 0 {
		return 0, nil
	}
	return removed, s.save(ctx, all)
}

// Clear removes the whole document.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.kv.Remove(ctx, Key)
}

func (s *Store) load(ctx context.Context) (models.Preferences, error) {
	b, err := s.kv.Get(ctx, Key)
	if err != nil {
		return nil, err
	}
	all := models.Preferences{}
	if b == nil {
		return all, nil
	}
	if err := json.Unmarshal(b, &all); err != nil {
		return nil, fmt.Errorf("decode %s: %w", Key, err)
	}
	return all, nil
}

func (s *Store) save(ctx context.Context, all models.Preferences) error {
	b, err := json.Marshal(all)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, Key, b)
}
