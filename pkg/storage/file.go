package storage

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// FileBackend stores each key as a file in a directory. Writes go to a
// temporary file that is renamed into place, so a crash never leaves a
// half-written durable form behind.
type FileBackend struct {
	dir string
}

// NewFile creates a file backend in dir.
// The directory will be created if it doesn't exist.
func NewFile(dir string) (*FileBackend, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &FileBackend{dir: dir}, nil
}

// Dir returns the backend directory.
func (b *FileBackend) Dir() string { return b.dir }

// Get reads the file for key.
func (b *FileBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := os.ReadFile(b.Path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// Set atomically replaces the file for key.
func (b *FileBackend) Set(ctx context.Context, key string, data []byte) error {
	path := b.Path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return nil
}

// Delete removes the file for key.
func (b *FileBackend) Delete(ctx context.Context, key string) error {
	err := os.Remove(b.Path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// Close does nothing for the file backend.
func (b *FileBackend) Close() error {
	return nil
}

// Driver returns "file".
func (b *FileBackend) Driver() string { return "file" }

// Path converts a key to a file path.
// Uses a hash-based directory structure so arbitrary keys map to safe names.
func (b *FileBackend) Path(key string) string {
	hash := Hash([]byte(key))
	// Use first 2 chars as subdirectory for distribution
	return filepath.Join(b.dir, hash[:2], hash[2:]+".json")
}

// Ensure FileBackend implements Backend.
var _ Backend = (*FileBackend)(nil)
