package api

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/gophnotes/internal/client/models"
)

// ListNotes returns the user's notes, newest first.
func (c *Client) ListNotes(ctx context.Context) ([]models.Note, error) {
	var resp envelope[noteList]
	if err := c.Do(ctx, http.MethodGet, EndpointNotes, nil, &resp); err != nil {
		return nil, err
	}
	return []models.Note(*resp.Data), nil
}

func (c *Client) CreateNote(ctx context.Context, title, content string) (*models.Note, error) {
	var resp envelope[note]
	err := c.Do(ctx, http.MethodPost, EndpointNotes, CreateNoteRequest{Title: title, Content: content}, &resp)
	if err != nil {
		return nil, err
	}
	n := models.Note(*resp.Data)
	return &n, nil
}

// UpdateNote sends only the fields set in upd.
func (c *Client) UpdateNote(ctx context.Context, id string, upd models.NoteUpdate) (*models.Note, error) {
	if err := upd.Validate(); err != nil {
		return nil, err
	}
	var resp envelope[note]
	err := c.Do(ctx, http.MethodPatch, EndpointNotes, UpdateNoteRequest{UUID: id, NoteUpdate: upd}, &resp)
	if err != nil {
		return nil, err
	}
	n := models.Note(*resp.Data)
	return &n, nil
}

func (c *Client) DeleteNote(ctx context.Context, id string) error {
	return c.Do(ctx, http.MethodDelete, EndpointNotes, DeleteNotesRequest{UUIDs: []string{id}}, nil)
}
