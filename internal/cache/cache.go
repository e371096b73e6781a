package cache

import (
	"encoding/json"

	"tripsync/internal/domain"
)

// Keys under which each entity collection is cached.
const (
	KeyItineraries = "itineraries"
	KeyExpenses    = "expenses"
	KeyBookings    = "bookings"
)

// Adapter stores whole collections of T as JSON in a backend. None of its
// methods return errors: failures are logged and reported as a miss (Load)
// or dropped (Save, Remove).
type Adapter[T any] struct {
	backend domain.CacheBackend
	log     domain.Logger
}

// New returns an Adapter over backend that reports failures to log.
func New[T any](backend domain.CacheBackend, log domain.Logger) *Adapter[T] {
	return &Adapter[T]{backend: backend, log: log}
}

// Load returns the collection cached under key. ok is false when nothing is
// cached or the entry cannot be read or decoded.
func (a *Adapter[T]) Load(key string) (collection []T, ok bool) {
	raw, found, err := a.backend.Get(key)
	if err != nil {
		a.log.Warnf("cache load %q: %s", key, err)
		return nil, false
	}
	if !found {
		return nil, false
	}
	if err := json.Unmarshal(raw, &collection); err != nil {
		a.log.Warnf("cache load %q: discarding malformed entry: %s", key, err)
		return nil, false
	}
	if collection == nil {
		collection = []T{}
	}
	return collection, true
}

// Save replaces the collection cached under key. On failure the previous
// entry is left as it was.
func (a *Adapter[T]) Save(key string, collection []T) {
	if collection == nil {
		collection = []T{}
	}
	raw, err := json.Marshal(collection)
	if err != nil {
		a.log.Errorf("cache save %q: encode: %s", key, err)
		return
	}
	if err := a.backend.Put(key, raw); err != nil {
		a.log.Errorf("cache save %q: %s", key, err)
		return
	}
	a.log.Debugf("cache save %q: %d entries, %d bytes", key, len(collection), len(raw))
}

// Remove drops the entry cached under key.
func (a *Adapter[T]) Remove(key string) {
	if err := a.backend.Delete(key); err != nil {
		a.log.Errorf("cache remove %q: %s", key, err)
	}
}

// Compile-time assertion that Adapter implements domain.Cache.
var _ domain.Cache[domain.Expense] = (*Adapter[domain.Expense])(nil)
