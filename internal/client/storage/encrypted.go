package storage

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophnotes/internal/cryptox"
)

// Reserved keys written in the clear into the inner store.
const (
	saltKey     = "__enc_salt"
	verifierKey = "__enc_verifier"
)

var verifierPlaintext = []byte("gophnotes-store-v1")

var ErrWrongPassphrase = errors.New("wrong store passphrase")

// EncryptedStore seals every value with AES-GCM before handing it to the
// inner store. Keys are stored as-is and authenticated with their value, so a
// sealed value only opens under the key it was written to.
type EncryptedStore struct {
	inner Store
	key   []byte
}

// OpenEncrypted derives the store key from passphrase and a salt kept in the
// inner store, creating both salt and verifier on first use. A passphrase
// that does not match the one the store was created with yields
// ErrWrongPassphrase.
func OpenEncrypted(ctx context.Context, inner Store, passphrase []byte) (*EncryptedStore, error) {
	salt, err := inner.Get(ctx, saltKey)
	if err != nil {
		return nil, err
	}

	if salt == nil {
		salt, err = cryptox.RandomBytes(cryptox.SaltSize)
		if err != nil {
			return nil, err
		}
		s := &EncryptedStore{inner: inner, key: cryptox.DeriveKey(passphrase, salt)}
		if err := s.writeHeader(ctx, salt); err != nil {
			return nil, err
		}
		return s, nil
	}

	s := &EncryptedStore{inner: inner, key: cryptox.DeriveKey(passphrase, salt)}

	sealed, err := inner.Get(ctx, verifierKey)
	if err != nil {
		return nil, err
	}
	plain, err := cryptox.Open(sealed, s.key, []byte(verifierKey))
	if err != nil || subtle.ConstantTimeCompare(plain, verifierPlaintext) != 1 {
		return nil, ErrWrongPassphrase
	}

	return s, nil
}

func (s *EncryptedStore) writeHeader(ctx context.Context, salt []byte) error {
	v, err := cryptox.Seal(verifierPlaintext, s.key, []byte(verifierKey))
	if err != nil {
		return err
	}
	if err := s.inner.Set(ctx, saltKey, salt); err != nil {
		return err
	}
	return s.inner.Set(ctx, verifierKey, v)
}

func (s *EncryptedStore) Get(ctx context.Context, key string) ([]byte, error) {
	sealed, err := s.inner.Get(ctx, key)
	if err != nil || sealed == nil {
		return nil, err
	}
	plain, err := cryptox.Open(sealed, s.key, []byte(key))
	if err != nil {
		return nil, fmt.Errorf("decrypt %s: %w", key, err)
	}
	return plain, nil
}

func (s *EncryptedStore) Set(ctx context.Context, key string, value []byte) error {
	sealed, err := cryptox.Seal(value, s.key, []byte(key))
	if err != nil {
		return fmt.Errorf("encrypt %s: %w", key, err)
	}
	return s.inner.Set(ctx, key, sealed)
}

func (s *EncryptedStore) Remove(ctx context.Context, keys ...string) error {
	return s.inner.Remove(ctx, keys...)
}

// Clear wipes the inner store but keeps it openable with the same passphrase.
func (s *EncryptedStore) Clear(ctx context.Context) error {
	salt, err := s.inner.Get(ctx, saltKey)
	if err != nil {
		return err
	}
	if err := s.inner.Clear(ctx); err != nil {
		return err
	}
	return s.writeHeader(ctx, salt)
}

func (s *EncryptedStore) Close() error {
	return s.inner.Close()
}
