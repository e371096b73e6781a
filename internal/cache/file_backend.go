package cache

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"tripsync/internal/domain"
)

// FileBackend persists each key as <dir>/<key>.json.
type FileBackend struct {
	dir string
	mu  sync.Mutex
}

// NewFileBackend returns a FileBackend rooted at dir, creating it if needed.
func NewFileBackend(dir string) (*FileBackend, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &FileBackend{dir: dir}, nil
}

// Get returns the stored bytes for key.
func (b *FileBackend) Get(key string) ([]byte, bool, error) {
	path, err := b.path(key)
	if err != nil {
		return nil, false, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	return readFile(path)
}

// Put replaces the stored bytes for key.
func (b *FileBackend) Put(key string, value []byte) error {
	path, err := b.path(key)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	return replaceFile(path, value, 0o600)
}

// Delete removes key; a missing key is not an error.
func (b *FileBackend) Delete(key string) error {
	path, err := b.path(key)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (b *FileBackend) path(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return "", fmt.Errorf("invalid cache key %q", key)
	}
	return filepath.Join(b.dir, key+".json"), nil
}

// Compile-time assertion that FileBackend implements domain.CacheBackend.
var _ domain.CacheBackend = (*FileBackend)(nil)
