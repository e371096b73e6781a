package collection

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"time"

	"tripsync/internal/cache"
	"tripsync/internal/domain"
)

// Kind describes how a Store handles one entity type.
type Kind[T any] struct {
	Name     domain.Kind
	CacheKey string
	ID       func(T) domain.ID
	SetID    func(*T, domain.ID)
	// Stamp fills creation-time fields on a newly added entity.
	Stamp func(*T, time.Time)
	// Clone returns a copy sharing no mutable state. Nil means T is copied
	// by value.
	Clone func(T) T
	// Aliases maps alternative patch field names to T's JSON field names.
	Aliases map[string]string
}

func (k Kind[T]) clone(v T) T {
	if k.Clone == nil {
		return v
	}
	return k.Clone(v)
}

// Itineraries describes itinerary collections.
var Itineraries = Kind[domain.Itinerary]{
	Name:     domain.KindItinerary,
	CacheKey: cache.KeyItineraries,
	ID:       func(it domain.Itinerary) domain.ID { return it.ID },
	SetID:    func(it *domain.Itinerary, id domain.ID) { it.ID = id },
	Stamp: func(it *domain.Itinerary, now time.Time) {
		it.CreatedAt = domain.NewTimestamp(now)
	},
	Clone: func(it domain.Itinerary) domain.Itinerary {
		it.Interests = slices.Clone(it.Interests)
		return it
	},
	Aliases: domain.ItineraryAliases,
}

// Expenses describes expense collections. New expenses without a category
// are filed under misc.
var Expenses = Kind[domain.Expense]{
	Name:     domain.KindExpense,
	CacheKey: cache.KeyExpenses,
	ID:       func(e domain.Expense) domain.ID { return e.ID },
	SetID:    func(e *domain.Expense, id domain.ID) { e.ID = id },
	Stamp: func(e *domain.Expense, now time.Time) {
		if e.Category == "" {
			e.Category = domain.CategoryMisc
		}
		e.CreatedAt = domain.NewTimestamp(now)
	},
	Clone: func(e domain.Expense) domain.Expense {
		e.SplitAmong = slices.Clone(e.SplitAmong)
		return e
	},
}

// Bookings describes transport booking collections. New bookings are
// confirmed and, when no price was given, charged the mode's base price.
var Bookings = Kind[domain.Booking]{
	Name:     domain.KindBooking,
	CacheKey: cache.KeyBookings,
	ID:       func(b domain.Booking) domain.ID { return b.ID },
	SetID:    func(b *domain.Booking, id domain.ID) { b.ID = id },
	Stamp: func(b *domain.Booking, now time.Time) {
		if b.Status == "" {
			b.Status = domain.StatusConfirmed
		}
		if b.Price == 0 {
			if p, ok := b.Type.BasePrice(); ok {
				b.Price = p
			}
		}
		b.CreatedAt = domain.NewTimestamp(now)
	},
	Aliases: domain.BookingAliases,
}

// ErrUnknownField is returned for patches naming a field the entity lacks.
var ErrUnknownField = errors.New("unknown field")

// normalizePatch rewrites alias keys to field names and drops id. An
// explicit field name wins over its alias. Keys naming no field of T are
// rejected.
func (k Kind[T]) normalizePatch(patch domain.Patch) (domain.Patch, error) {
	fields := jsonFields(reflect.TypeFor[T]())
	out := make(domain.Patch, len(patch))
	for key, v := range patch {
		if key == "id" {
			continue
		}
		if field, ok := k.Aliases[key]; ok {
			if _, explicit := patch[field]; !explicit {
				out[field] = v
			}
			continue
		}
		if fields != nil && !fields[key] {
			return nil, fmt.Errorf("%w %q", ErrUnknownField, key)
		}
		out[key] = v
	}
	return out, nil
}

// withAliases returns patch plus the alias spelling of every patched field,
// so stores that read either name see the change.
func (k Kind[T]) withAliases(patch domain.Patch) domain.Patch {
	out := make(domain.Patch, len(patch))
	for key, v := range patch {
		out[key] = v
	}
	for alias, field := range k.Aliases {
		if v, ok := patch[field]; ok {
			out[alias] = v
		}
	}
	return out
}

// jsonFields returns the JSON names of t's fields, or nil when t is not a
// struct.
func jsonFields(t reflect.Type) map[string]bool {
	if t.Kind() != reflect.Struct {
		return nil
	}
	out := make(map[string]bool, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		switch name {
		case "-":
			continue
		case "":
			name = f.Name
		}
		out[name] = true
	}
	return out
}
