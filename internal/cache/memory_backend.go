package cache

import (
	"errors"
	"fmt"
	"sync"

	gocache "github.com/patrickmn/go-cache"

	"tripsync/internal/domain"
)

// ErrQuotaExceeded is returned by MemoryBackend.Put when the write would take
// the backend over its byte quota.
var ErrQuotaExceeded = errors.New("cache quota exceeded")

// DefaultQuota mirrors the usual per-origin browser storage limit.
const DefaultQuota = 5 << 20

// MemoryBackend keeps entries in process memory under a byte quota. Entries
// never expire.
type MemoryBackend struct {
	mu    sync.Mutex
	items *gocache.Cache
	quota int
	used  int
}

// NewMemoryBackend returns a backend that refuses writes beyond quota bytes.
// A quota <= 0 means DefaultQuota.
func NewMemoryBackend(quota int) *MemoryBackend {
	if quota <= 0 {
		quota = DefaultQuota
	}
	return &MemoryBackend{
		items: gocache.New(gocache.NoExpiration, 0),
		quota: quota,
	}
}

// Get returns a copy of the stored bytes for key.
func (b *MemoryBackend) Get(key string) ([]byte, bool, error) {
	obj, found := b.items.Get(key)
	if !found {
		return nil, false, nil
	}
	value := obj.([]byte)
	return append([]byte(nil), value...), true, nil
}

// Put replaces the stored bytes for key unless that exceeds the quota, in
// which case the previous value is kept.
func (b *MemoryBackend) Put(key string, value []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	used := b.used + len(key) + len(value)
	if obj, found := b.items.Get(key); found {
		used -= len(key) + len(obj.([]byte))
	}
	if used > b.quota {
		return fmt.Errorf("put %q (%d bytes): %w", key, len(value), ErrQuotaExceeded)
	}
	b.items.Set(key, append([]byte(nil), value...), gocache.NoExpiration)
	b.used = used
	return nil
}

// Delete removes key; a missing key is not an error.
func (b *MemoryBackend) Delete(key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if obj, found := b.items.Get(key); found {
		b.used -= len(key) + len(obj.([]byte))
		b.items.Delete(key)
	}
	return nil
}

// Used returns the number of bytes currently stored.
func (b *MemoryBackend) Used() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.used
}

// Compile-time assertion that MemoryBackend implements domain.CacheBackend.
var _ domain.CacheBackend = (*MemoryBackend)(nil)
