package storage

import (
	"context"
	"slices"
	"sync"
)

// MemoryBackend keeps values in a map. Values are copied on the way in and
// out so callers cannot alias stored bytes.
type MemoryBackend struct {
	mu     sync.RWMutex
	data   map[string][]byte
	writes int
	closed bool
}

// NewMemory creates an empty in-memory backend.
func NewMemory() *MemoryBackend {
	return &MemoryBackend{data: make(map[string][]byte)}
}

// Get returns a copy of the stored value.
func (b *MemoryBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return nil, false, ErrClosed
	}
	v, ok := b.data[key]
	if !ok {
		return nil, false, nil
	}
	return slices.Clone(v), true, nil
}

// Set stores a copy of data.
func (b *MemoryBackend) Set(ctx context.Context, key string, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrClosed
	}
	b.data[key] = slices.Clone(data)
	b.writes++
	return nil
}

// Delete removes key.
func (b *MemoryBackend) Delete(ctx context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrClosed
	}
	delete(b.data, key)
	return nil
}

// Close marks the backend closed. Later operations return [ErrClosed].
func (b *MemoryBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}

// Driver returns "memory".
func (b *MemoryBackend) Driver() string { return "memory" }

// Writes returns the number of successful Set calls.
func (b *MemoryBackend) Writes() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.writes
}

// Ensure MemoryBackend implements Backend.
var _ Backend = (*MemoryBackend)(nil)
