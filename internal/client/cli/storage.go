package cli

import (
	"context"
	"path/filepath"

	"github.com/dmitrijs2005/gophnotes/internal/client/config"
	"github.com/dmitrijs2005/gophnotes/internal/client/storage"
	"github.com/dmitrijs2005/gophnotes/internal/filex"
)

// dbFileName is the SQLite database inside Config.DataDir.
const dbFileName = "notes.db"

// openStore opens the configured backend and, when a passphrase is
// configured or requested, wraps it in an encrypted store. askPassphrase is
// only called for Config.Encrypt without a configured passphrase.
func openStore(ctx context.Context, c *config.Config, askPassphrase func() ([]byte, error)) (storage.Store, error) {
	var (
		kv  storage.Store
		err error
	)

	switch c.StoreBackend {
	case config.StoreMemory:
		kv = storage.NewMemoryStore()
	case config.StoreRedis:
		kv, err = storage.OpenRedis(ctx, c.RedisAddr, c.RedisPrefix)
	default:
		var dir string
		dir, err = filex.EnsureDir(c.DataDir)
		if err == nil {
			kv, err = storage.OpenSQLite(ctx, filepath.Join(dir, dbFileName))
		}
	}
	if err != nil {
		return nil, err
	}

	passphrase := []byte(c.StorePassphrase)
	if len(passphrase) == 0 && c.Encrypt {
		passphrase, err = askPassphrase()
		if err != nil {
			kv.Close()
			return nil, err
		}
	}
	if len(passphrase) == 0 {
		return kv, nil
	}
	defer clear(passphrase)

	enc, err := storage.OpenEncrypted(ctx, kv, passphrase)
	if err != nil {
		kv.Close()
		return nil, err
	}
	return enc, nil
}
