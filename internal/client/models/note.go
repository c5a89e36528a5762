package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidNoteUUID = errors.New("note_uuid is not a valid UUID")
	ErrEmptyNoteUpdate = errors.New("nothing to update")
)

// Note is a server-owned note record.
type Note struct {
	UUID      string    `json:"note_uuid"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (n Note) Validate() error {
	if _, err := uuid.Parse(n.UUID); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidNoteUUID, n.UUID)
	}
	return nil
}

// NoteUpdate is the editable subset of a note. Colour and position are not
// part of it: they never leave the client.
type NoteUpdate struct {
	Title   *string `json:"title,omitempty"`
	Content *string `json:"content,omitempty"`
}

func (u NoteUpdate) Validate() error {
	if u.Title == nil && u.Content == nil {
		return ErrEmptyNoteUpdate
	}
	return nil
}

// DisplayNote is a note merged with its local preference.
type DisplayNote struct {
	Note
	Color    string `json:"color"`
	Position int    `json:"position"`
}
