package config

import (
	"fmt"
	"net/url"
	"os"
	"slices"

	"github.com/dmitrijs2005/gophnotes/internal/logging"
)

// Storage backends.
const (
	StoreSQLite = "sqlite"
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

// Config holds runtime settings for the notes CLI.
//
// Fields:
//   - APIBaseURL: backend root, endpoints are appended to it.
//   - DataDir: where the SQLite database lives.
//   - StoreBackend: sqlite, memory or redis.
//   - StorePassphrase: when set, local data is encrypted with it.
//   - Encrypt: ask for a passphrase at startup if none is configured.
//   - RedisAddr, RedisPrefix: used by the redis backend.
//   - LogFormat, LogLevel: see logging.New.
type Config struct {
	APIBaseURL      string
	DataDir         string
	StoreBackend    string
	StorePassphrase string
	Encrypt         bool
	RedisAddr       string
	RedisPrefix     string
	LogFormat       string
	LogLevel        string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://localhost:8000/api"
	c.DataDir = ".gophnotes"
	c.StoreBackend = StoreSQLite
	c.StorePassphrase = ""
	c.Encrypt = false
	c.RedisAddr = "localhost:6379"
	c.RedisPrefix = "gophnotes:"
	c.LogFormat = logging.FormatText
	c.LogLevel = "warn"
}

// Validate reports settings the CLI cannot run with.
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("api url %q: must be an absolute http(s) URL", c.APIBaseURL)
	}
	if !slices.Contains([]string{StoreSQLite, StoreMemory, StoreRedis}, c.StoreBackend) {
		return fmt.Errorf("unknown store backend %q", c.StoreBackend)
	}
	if c.StoreBackend == StoreRedis && c.RedisAddr == "" {
		return fmt.Errorf("redis store needs an address")
	}
	if !slices.Contains([]string{logging.FormatText, logging.FormatJSON, logging.FormatConsole}, c.LogFormat) {
		return fmt.Errorf("unknown log format %q", c.LogFormat)
	}
	return nil
}

// LoadConfig constructs a Config from the process environment and arguments.
func LoadConfig() *Config {
	return Load(os.Args[1:])
}

// Load constructs a Config, applies defaults, then overlays the environment,
// the config file named in args (if any) and the flags in args. Later sources
// take precedence over earlier ones.
func Load(args []string) *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseFile(cfg, args)
	parseFlags(cfg, args)
	return cfg
}
