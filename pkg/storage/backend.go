// Package storage provides key/value backends for the durable roadmap form.
//
// A [Backend] stores opaque byte blobs under string keys. The persistence
// adapter encodes the store state and writes it through one of:
//
//   - [NullBackend]: never stores anything (ephemeral sessions)
//   - [MemoryBackend]: a mutex-guarded map (tests, demos)
//   - [FileBackend]: one file per key under a directory (CLI default)
//   - [RedisBackend]: Redis via go-redis, with optional TTL
//   - [MongoBackend]: one MongoDB document per key
//   - [PostgresBackend]: a PostgreSQL table via pgx
//
// [Open] selects a backend from a [config.Storage] section.
//
// Network backends retry transient failures with [Retry].
package storage

import (
	"context"
	"errors"
)

// Backend is a key/value store for durable roadmap forms.
// Implementations must be safe for concurrent use.
type Backend interface {
	// Get returns the value stored under key. The bool is false on a miss;
	// a miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key, replacing any previous value.
	Set(ctx context.Context, key string, data []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the backend.
	Close() error

	// Driver returns the driver name, for logs and metrics.
	Driver() string
}

// ErrClosed is returned by operations on a closed backend.
var ErrClosed = errors.New("storage: backend closed")
