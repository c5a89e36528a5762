package config

import (
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// EnvPrefix prefixes every environment variable the CLI reads.
const EnvPrefix = "GOPHNOTES_"

// dotEnvFiles are loaded in order; earlier files win.
var dotEnvFiles = []string{".env.local", ".env"}

// parseEnv overlays cfg with GOPHNOTES_* variables. Missing dotenv files are
// skipped; a malformed one panics.
func parseEnv(cfg *Config) {
	for _, f := range dotEnvFiles {
		if _, err := os.Stat(f); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			panic(err)
		}
	}

	overlay := map[string]*string{
		"API_URL":          &cfg.APIBaseURL,
		"DATA_DIR":         &cfg.DataDir,
		"STORE":            &cfg.StoreBackend,
		"STORE_PASSPHRASE": &cfg.StorePassphrase,
		"REDIS_ADDR":       &cfg.RedisAddr,
		"REDIS_PREFIX":     &cfg.RedisPrefix,
		"LOG_FORMAT":       &cfg.LogFormat,
		"LOG_LEVEL":        &cfg.LogLevel,
	}
	for name, dst := range overlay {
		if v, ok := os.LookupEnv(EnvPrefix + name); ok && v != "" {
			*dst = v
		}
	}
}
