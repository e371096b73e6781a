package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ID identifies an entity within its collection. Entities reach us from the
// local cache and from the remote store, which do not agree on whether ids
// (and itineraryId references) are strings or numbers, so decoding accepts
// both and always yields the string form.
type ID string

// String returns the string form of the identifier.
func (id ID) String() string { return string(id) }

// IsZero reports whether the identifier is empty.
func (id ID) IsZero() bool { return id == "" }

// Normalize returns the canonical comparison form of the identifier.
func (id ID) Normalize() ID { return ID(strings.TrimSpace(string(id))) }

// Matches reports whether id and other refer to the same entity.
func (id ID) Matches(other ID) bool { return id.Normalize() == other.Normalize() }

// UnmarshalJSON accepts a JSON string, a JSON number or null.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id: want string or number, got %s", data)
	}
	*id = ID(n.String())
	return nil
}

// Username identifies the session user (an email address in practice).
type Username string

// String returns the string form of the username.
func (u Username) String() string { return string(u) }

// dateLayout is the calendar-date wire format.
const dateLayout = "2006-01-02"

// Date is a calendar date kept in its wire form (YYYY-MM-DD). Values are
// stored as given; parsing only happens when comparing.
type Date string

// NewDate returns the calendar date of t.
func NewDate(t time.Time) Date { return Date(t.Format(dateLayout)) }

// String returns the string form of the date.
func (d Date) String() string { return string(d) }

// Time parses d. ok is false for empty or malformed dates. Full RFC 3339
// timestamps are accepted and truncated to their date.
func (d Date) Time() (t time.Time, ok bool) {
	s := strings.TrimSpace(string(d))
	if s == "" {
		return time.Time{}, false
	}
	if len(s) > len(dateLayout) {
		s = s[:len(dateLayout)]
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Before reports whether d is strictly earlier than other. Unparsable dates
// are never before anything.
func (d Date) Before(other Date) bool {
	a, ok := d.Time()
	if !ok {
		return false
	}
	b, ok := other.Time()
	if !ok {
		return false
	}
	return a.Before(b)
}

// Patch is a partial update: JSON field name to new value. It is applied as
// a shallow overwrite of the entity's JSON form.
type Patch map[string]any

// Kind names an entity collection.
type Kind string

// String returns the string form of the kind.
func (k Kind) String() string { return string(k) }

const (
	KindItinerary Kind = "itinerary"
	KindExpense   Kind = "expense"
	KindBooking   Kind = "booking"
)

// timestampLayouts are tried in order when decoding a Timestamp. The remote
// store emits local ISO timestamps without a zone.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	dateLayout,
}

// Timestamp is an instant that tolerates the zone-less ISO forms produced by
// the remote store. It encodes as RFC 3339.
type Timestamp struct {
	time.Time
}

// NewTimestamp wraps t, dropping its monotonic reading.
func NewTimestamp(t time.Time) Timestamp { return Timestamp{Time: t.Round(0)} }

// MarshalJSON encodes the zero value as null.
func (ts Timestamp) MarshalJSON() ([]byte, error) {
	if ts.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(ts.Time.Format(time.RFC3339Nano))
}

// UnmarshalJSON accepts null, RFC 3339 and zone-less ISO timestamps. An
// unrecognised value decodes as the zero time.
func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*ts = Timestamp{}
		return nil
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			*ts = Timestamp{Time: t}
			return nil
		}
	}
	*ts = Timestamp{}
	return nil
}

// Equal reports whether both timestamps denote the same instant.
func (ts Timestamp) Equal(other Timestamp) bool { return ts.Time.Equal(other.Time) }
