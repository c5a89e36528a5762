package storage

import (
	"context"
	"errors"
)

// Store is a flat key-value store for opaque values.
type Store interface {
	// Get returns the value for key, or (nil, nil) when the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set inserts or overwrites key.
	Set(ctx context.Context, key string, value []byte) error
	// Remove deletes the given keys; missing keys are ignored.
	Remove(ctx context.Context, keys ...string) error
	// Clear deletes every key.
	Clear(ctx context.Context) error
	Close() error
}

var ErrClosed = errors.New("store closed")
