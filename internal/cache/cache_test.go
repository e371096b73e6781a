package cache_test

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"tripsync/internal/cache"
	"tripsync/internal/domain"
	"tripsync/internal/logtest"
)

func sampleExpenses() []domain.Expense {
	at := domain.Timestamp{Time: time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)}
	return []domain.Expense{
		{
			ID:          "e-2",
			ItineraryID: "42",
			Description: "Dinner",
			Amount:      300,
			Category:    "food",
			PaidBy:      "A",
			SplitAmong:  []string{"A", "B"},
			CreatedAt:   at,
		},
		{
			ID:          "e-1",
			ItineraryID: "42",
			Description: "Museum",
			Amount:      100,
			Category:    "activities",
			PaidBy:      "A",
			SplitAmong:  []string{"A"},
			CreatedAt:   at,
		},
	}
}

func TestAdapter_SaveLoad_RoundTrip(t *testing.T) {
	backend, err := cache.NewFileBackend(t.TempDir())
	if err != nil {
		t.Fatalf("new file backend: %v", err)
	}
	log := &logtest.Recorder{}
	c := cache.New[domain.Expense](backend, log)

	want := sampleExpenses()
	c.Save(cache.KeyExpenses, want)
	c.Save(cache.KeyExpenses, want)

	got, ok := c.Load(cache.KeyExpenses)
	if !ok {
		t.Fatal("expected cached collection")
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
	if lines := log.Lines("error"); len(lines) != 0 {
		t.Fatalf("unexpected errors: %v", lines)
	}
}

func TestAdapter_Load_MissingIsAbsent(t *testing.T) {
	c := cache.New[domain.Expense](cache.NewMemoryBackend(0), &logtest.Recorder{})
	if got, ok := c.Load(cache.KeyExpenses); ok || got != nil {
		t.Fatalf("got %v, %v; want absent", got, ok)
	}
}

func TestAdapter_Load_MalformedIsAbsent(t *testing.T) {
	backend := cache.NewMemoryBackend(0)
	if err := backend.Put(cache.KeyExpenses, []byte(`[{"id": "e-1",`)); err != nil {
		t.Fatalf("put: %v", err)
	}
	log := &logtest.Recorder{}
	c := cache.New[domain.Expense](backend, log)

	if _, ok := c.Load(cache.KeyExpenses); ok {
		t.Fatal("malformed entry should load as absent")
	}
	if !log.Contains("warn", "malformed") {
		t.Fatalf("expected a warning, got %v", log.Lines(""))
	}
}

func TestAdapter_Save_EmptyCollectionIsPresent(t *testing.T) {
	c := cache.New[domain.Expense](cache.NewMemoryBackend(0), &logtest.Recorder{})
	c.Save(cache.KeyExpenses, nil)

	got, ok := c.Load(cache.KeyExpenses)
	if !ok {
		t.Fatal("expected an entry")
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("got %#v, want empty non-nil slice", got)
	}
}

func TestAdapter_Save_QuotaExceededKeepsPrevious(t *testing.T) {
	backend := cache.NewMemoryBackend(600)
	log := &logtest.Recorder{}
	c := cache.New[domain.Expense](backend, log)

	small := sampleExpenses()[:1]
	c.Save(cache.KeyExpenses, small)

	big := sampleExpenses()
	big[0].Description = strings.Repeat("x", 1000)
	c.Save(cache.KeyExpenses, big)

	if !log.Contains("error", "quota") {
		t.Fatalf("expected quota error to be logged, got %v", log.Lines(""))
	}
	got, ok := c.Load(cache.KeyExpenses)
	if !ok {
		t.Fatal("previous entry should still be cached")
	}
	if diff := cmp.Diff(small, got); diff != "" {
		t.Fatalf("previous entry changed (-want +got):\n%s", diff)
	}
}

func TestAdapter_Remove(t *testing.T) {
	c := cache.New[domain.Expense](cache.NewMemoryBackend(0), &logtest.Recorder{})
	c.Save(cache.KeyExpenses, sampleExpenses())
	c.Remove(cache.KeyExpenses)
	if _, ok := c.Load(cache.KeyExpenses); ok {
		t.Fatal("expected entry to be gone")
	}
}

func TestFileBackend_RejectsPathKeys(t *testing.T) {
	backend, err := cache.NewFileBackend(t.TempDir())
	if err != nil {
		t.Fatalf("new file backend: %v", err)
	}
	if err := backend.Put("../escape", []byte("[]")); err == nil {
		t.Fatal("expected invalid key error")
	}
}

func TestLevelDBBackend_RoundTrip(t *testing.T) {
	backend, err := cache.OpenLevelDB(filepath.Join(t.TempDir(), "cache.ldb"))
	if err != nil {
		t.Fatalf("open leveldb: %v", err)
	}
	defer backend.Close()

	c := cache.New[domain.Expense](backend, &logtest.Recorder{})
	want := sampleExpenses()
	c.Save(cache.KeyExpenses, want)

	got, ok := c.Load(cache.KeyExpenses)
	if !ok {
		t.Fatal("expected cached collection")
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}

	c.Remove(cache.KeyExpenses)
	if _, ok := c.Load(cache.KeyExpenses); ok {
		t.Fatal("expected entry to be gone")
	}
}

func TestSealed_RoundTrip(t *testing.T) {
	inner := cache.NewMemoryBackend(0)
	c := cache.New[domain.Expense](cache.NewSealed(inner, "correct horse"), &logtest.Recorder{})

	want := sampleExpenses()
	c.Save(cache.KeyExpenses, want)

	raw, _, _ := inner.Get(cache.KeyExpenses)
	if strings.Contains(string(raw), "Dinner") {
		t.Fatal("plaintext visible in sealed entry")
	}

	got, ok := c.Load(cache.KeyExpenses)
	if !ok {
		t.Fatal("expected cached collection")
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestSealed_WrongPassphraseIsAbsent(t *testing.T) {
	inner := cache.NewMemoryBackend(0)
	cache.New[domain.Expense](cache.NewSealed(inner, "correct"), &logtest.Recorder{}).
		Save(cache.KeyExpenses, sampleExpenses())

	log := &logtest.Recorder{}
	c := cache.New[domain.Expense](cache.NewSealed(inner, "wrong"), log)
	if _, ok := c.Load(cache.KeyExpenses); ok {
		t.Fatal("expected absent with wrong passphrase")
	}
	if !log.Contains("warn", "wrong passphrase") {
		t.Fatalf("expected warning, got %v", log.Lines(""))
	}
}

func TestSealed_RefusesInflatedKDFCost(t *testing.T) {
	inner := cache.NewMemoryBackend(0)
	cache.New[domain.Expense](cache.NewSealed(inner, "pw"), &logtest.Recorder{}).
		Save(cache.KeyExpenses, sampleExpenses())

	raw, _, _ := inner.Get(cache.KeyExpenses)
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		t.Fatalf("decode sealed entry: %v", err)
	}
	fields["scrypt_N"] = 1 << 30
	tampered, _ := json.Marshal(fields)
	if err := inner.Put(cache.KeyExpenses, tampered); err != nil {
		t.Fatalf("put: %v", err)
	}

	log := &logtest.Recorder{}
	start := time.Now()
	if _, ok := cache.New[domain.Expense](cache.NewSealed(inner, "pw"), log).Load(cache.KeyExpenses); ok {
		t.Fatal("expected absent for tampered cost")
	}
	if d := time.Since(start); d > 5*time.Second {
		t.Fatalf("rejection took %s", d)
	}
	if !log.Contains("warn", "cost exceeds limit") {
		t.Fatalf("expected warning, got %v", log.Lines(""))
	}
}
