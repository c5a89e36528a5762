// Package config loads runtime configuration for the notes CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Environment variables prefixed GOPHNOTES_, after loading .env.local and
//     .env from the working directory when present (joho/godotenv; variables
//     already set in the process win).
//  3. Optional config file selected with -c or -config: YAML when the name
//     ends in .yml or .yaml, JSON otherwise.
//  4. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-u string           backend base URL
//	-d string           local data directory
//	-s string           storage backend: sqlite, memory or redis
//	-e                  encrypt local storage (prompts for a passphrase)
//	-r string           redis address for -s redis
//	-log-format string  text, json or console
//	-log-level string   debug, info, warn or error
//
// Environment
//
//	GOPHNOTES_API_URL, GOPHNOTES_DATA_DIR, GOPHNOTES_STORE,
//	GOPHNOTES_STORE_PASSPHRASE, GOPHNOTES_REDIS_ADDR, GOPHNOTES_REDIS_PREFIX,
//	GOPHNOTES_LOG_FORMAT, GOPHNOTES_LOG_LEVEL
//
// # File schema
//
//	api_url: http://localhost:8000/api
//	data_dir: ~/.gophnotes
//	store: sqlite
//	store_passphrase: ""
//	redis_addr: localhost:6379
//	redis_prefix: "gophnotes:"
//	log_format: text
//	log_level: warn
//
// Keys that are absent or empty leave the earlier value in place. Unreadable
// files and malformed flags panic, as the CLI cannot start without them.
package config
