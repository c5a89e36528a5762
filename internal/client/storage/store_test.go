package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
)

// exerciseStore runs the Store contract against s.
func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	v, err := s.Get(ctx, "absent")
	require.NoError(t, err)
	require.Nil(t, v, "missing key must return (nil, nil)")

	require.NoError(t, s.Set(ctx, "access_token", []byte("old")))
	require.NoError(t, s.Set(ctx, "access_token", []byte("new")))
	v, err = s.Get(ctx, "access_token")
	require.NoError(t, err)
	require.Equal(t, []byte("new"), v)

	require.NoError(t, s.Set(ctx, "refresh_token", []byte("r")))
	require.NoError(t, s.Set(ctx, "note_preferences", []byte(`{}`)))

	require.NoError(t, s.Remove(ctx, "access_token", "refresh_token", "never-set"))
	for _, k := range []string{"access_token", "refresh_token"} {
		v, err = s.Get(ctx, k)
		require.NoError(t, err)
		require.Nil(t, v, k)
	}
	v, err = s.Get(ctx, "note_preferences")
	require.NoError(t, err)
	require.Equal(t, []byte(`{}`), v)

	require.NoError(t, s.Remove(ctx))

	require.NoError(t, s.Clear(ctx))
	v, err = s.Get(ctx, "note_preferences")
	require.NoError(t, err)
	require.Nil(t, v)
}

func TestMemoryStore_Contract(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	in := []byte("abc")
	require.NoError(t, s.Set(ctx, "k", in))
	in[0] = 'X'

	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, []byte("abc"), got)

	got[1] = 'Y'
	again, _ := s.Get(ctx, "k")
	require.Equal(t, []byte("abc"), again)
}

func TestMemoryStore_ClosedRejectsCalls(t *testing.T) {
	s := NewMemoryStore()
	require.NoError(t, s.Close())

	_, err := s.Get(context.Background(), "k")
	require.ErrorIs(t, err, ErrClosed)
	require.ErrorIs(t, s.Set(context.Background(), "k", nil), ErrClosed)
}

func TestSQLiteStore_Contract(t *testing.T) {
	s, err := OpenSQLite(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	exerciseStore(t, s)
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "notes.db")

	s, err := OpenSQLite(ctx, dsn)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "cached_user", []byte(`{"id":"u1"}`)))
	require.NoError(t, s.Close())

	s, err = OpenSQLite(ctx, dsn)
	require.NoError(t, err, "migrations must be idempotent")
	t.Cleanup(func() { _ = s.Close() })

	v, err := s.Get(ctx, "cached_user")
	require.NoError(t, err)
	require.Equal(t, []byte(`{"id":"u1"}`), v)
}

func TestSQLiteStore_CreatesKVTable(t *testing.T) {
	s, err := OpenSQLite(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	var n int
	err = s.db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name IN ('kv', 'goose_db_version')`).Scan(&n)
	require.NoError(t, err)
	require.Equal(t, 2, n)
}

func TestEncryptedStore_Contract(t *testing.T) {
	s, err := OpenEncrypted(context.Background(), NewMemoryStore(), []byte("passphrase"))
	require.NoError(t, err)

	exerciseStore(t, s)
}

func TestEncryptedStore_ValuesSealedAtRest(t *testing.T) {
	ctx := context.Background()
	inner := NewMemoryStore()

	s, err := OpenEncrypted(ctx, inner, []byte("passphrase"))
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "refresh_token", []byte("very-secret-refresh")))

	raw, err := inner.Get(ctx, "refresh_token")
	require.NoError(t, err)
	require.NotNil(t, raw)
	require.NotContains(t, string(raw), "very-secret-refresh")

	got, err := s.Get(ctx, "refresh_token")
	require.NoError(t, err)
	require.Equal(t, []byte("very-secret-refresh"), got)
}

func TestEncryptedStore_SwappedValuesDoNotOpen(t *testing.T) {
	ctx := context.Background()
	inner := NewMemoryStore()

	s, err := OpenEncrypted(ctx, inner, []byte("pw"))
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "access_token", []byte("access")))
	require.NoError(t, s.Set(ctx, "refresh_token", []byte("refresh")))

	access, err := inner.Get(ctx, "access_token")
	require.NoError(t, err)
	refresh, err := inner.Get(ctx, "refresh_token")
	require.NoError(t, err)
	require.NoError(t, inner.Set(ctx, "access_token", refresh))
	require.NoError(t, inner.Set(ctx, "refresh_token", access))

	_, err = s.Get(ctx, "access_token")
	require.Error(t, err)
	_, err = s.Get(ctx, "refresh_token")
	require.Error(t, err)
}

func TestEncryptedStore_ReopenWithPassphrase(t *testing.T) {
	ctx := context.Background()
	inner := NewMemoryStore()

	s, err := OpenEncrypted(ctx, inner, []byte("right"))
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "k", []byte("v")))

	_, err = OpenEncrypted(ctx, inner, []byte("wrong"))
	require.ErrorIs(t, err, ErrWrongPassphrase)

	again, err := OpenEncrypted(ctx, inner, []byte("right"))
	require.NoError(t, err)
	v, err := again.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, []byte("v"), v)
}

func TestEncryptedStore_ClearKeepsStoreOpenable(t *testing.T) {
	ctx := context.Background()
	inner := NewMemoryStore()

	s, err := OpenEncrypted(ctx, inner, []byte("pw"))
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "k", []byte("v")))
	require.NoError(t, s.Clear(ctx))

	again, err := OpenEncrypted(ctx, inner, []byte("pw"))
	require.NoError(t, err)
	v, err := again.Get(ctx, "k")
	require.NoError(t, err)
	require.Nil(t, v)
}

func TestRedisStore_Contract(t *testing.T) {
	addr := os.Getenv("GOPHNOTES_TEST_REDIS_ADDR")
	if addr == "" {
		addr = miniredis.RunT(t).Addr()
	}

	s, err := OpenRedis(context.Background(), addr, "gophnotes-test:"+t.Name()+":")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = s.Clear(context.Background())
		_ = s.Close()
	})

	exerciseStore(t, s)
}

func TestRedisStore_ClearKeepsOtherPrefixes(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)

	mine, err := OpenRedis(ctx, mr.Addr(), "alice:")
	require.NoError(t, err)
	defer mine.Close()
	theirs, err := OpenRedis(ctx, mr.Addr(), "bob:")
	require.NoError(t, err)
	defer theirs.Close()

	for i := 0; i < 250; i++ {
		require.NoError(t, mine.Set(ctx, fmt.Sprintf("k%d", i), []byte("v")))
	}
	require.NoError(t, theirs.Set(ctx, "access_token", []byte("t")))

	require.NoError(t, mine.Clear(ctx))

	for _, k := range mr.Keys() {
		require.NotContains(t, k, "alice:")
	}
	v, err := theirs.Get(ctx, "access_token")
	require.NoError(t, err)
	require.Equal(t, []byte("t"), v)
}

func TestOpenRedis_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := OpenRedis(context.Background(), addr, "x:")
	require.Error(t, err)
}
