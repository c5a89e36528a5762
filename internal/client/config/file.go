package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/gophnotes/internal/flagx"
	"gopkg.in/yaml.v3"
)

// FileConfig is a DTO used exclusively for file unmarshalling.
type FileConfig struct {
	APIBaseURL      string `json:"api_url" yaml:"api_url"`
	DataDir         string `json:"data_dir" yaml:"data_dir"`
	StoreBackend    string `json:"store" yaml:"store"`
	StorePassphrase string `json:"store_passphrase" yaml:"store_passphrase"`
	RedisAddr       string `json:"redis_addr" yaml:"redis_addr"`
	RedisPrefix     string `json:"redis_prefix" yaml:"redis_prefix"`
	LogFormat       string `json:"log_format" yaml:"log_format"`
	LogLevel        string `json:"log_level" yaml:"log_level"`
}

// parseFile overlays cfg with the file named by -c/-config in args. Without
// such a flag it does nothing. Read or decode errors panic.
func parseFile(cfg *Config, args []string) {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var fc FileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		err = yaml.Unmarshal(data, &fc)
	default:
		err = json.Unmarshal(data, &fc)
	}
	if err != nil {
		panic(err)
	}

	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&cfg.APIBaseURL, fc.APIBaseURL)
	set(&cfg.DataDir, fc.DataDir)
	set(&cfg.StoreBackend, fc.StoreBackend)
	set(&cfg.StorePassphrase, fc.StorePassphrase)
	set(&cfg.RedisAddr, fc.RedisAddr)
	set(&cfg.RedisPrefix, fc.RedisPrefix)
	set(&cfg.LogFormat, fc.LogFormat)
	set(&cfg.LogLevel, fc.LogLevel)
}
