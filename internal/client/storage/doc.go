// Package storage provides the durable key-value stores that back the
// client's local state: tokens, the cached user record and note preferences.
//
// Implementations:
//   - MemoryStore: process-local map, used in tests and with -s memory.
//   - SQLiteStore: single-table SQLite database migrated with goose.
//   - RedisStore: keys under a prefix on a Redis server.
//   - EncryptedStore: wraps any Store and seals values with AES-GCM under a
//     passphrase-derived key.
//
// All stores share the Get contract of returning (nil, nil) for a missing key.
package storage
