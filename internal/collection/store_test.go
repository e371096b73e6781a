package collection_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"tripsync/internal/cache"
	"tripsync/internal/collection"
	"tripsync/internal/domain"
	"tripsync/internal/logtest"
)

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

type harness struct {
	remote  *fakeRemote[domain.Expense]
	backend *cache.MemoryBackend
	cache   *cache.Adapter[domain.Expense]
	log     *logtest.Recorder
}

func newHarness() *harness {
	log := &logtest.Recorder{}
	backend := cache.NewMemoryBackend(cache.DefaultQuota)
	return &harness{
		remote:  &fakeRemote[domain.Expense]{},
		backend: backend,
		cache:   cache.New[domain.Expense](backend, log),
		log:     log,
	}
}

func (h *harness) store(opts ...collection.Option) *collection.Store[domain.Expense] {
	seq := 0
	base := []collection.Option{
		collection.WithClock(func() time.Time { return fixedNow }),
		collection.WithIDGenerator(func() domain.ID {
			seq++
			return domain.ID(fmt.Sprintf("gen-%d", seq))
		}),
	}
	return collection.New(collection.Expenses, h.remote, h.cache, h.log, append(base, opts...)...)
}

func (h *harness) loaded(t *testing.T, opts ...collection.Option) *collection.Store[domain.Expense] {
	t.Helper()
	s := h.store(opts...)
	s.Load(context.Background())
	return s
}

func expense(id, description string, amount float64) domain.Expense {
	return domain.Expense{
		ID:          domain.ID(id),
		ItineraryID: "trip-1",
		Description: description,
		Amount:      amount,
		Category:    domain.CategoryFood,
		PaidBy:      "A",
		SplitAmong:  []string{"A", "B"},
	}
}

func wait(t *testing.T, s *collection.Store[domain.Expense]) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Wait(ctx); err != nil {
		t.Fatalf("wait: %v", err)
	}
}

func TestLoad_NonEmptyRemoteWins(t *testing.T) {
	h := newHarness()
	h.remote.fetch = []domain.Expense{expense("r1", "remote", 10)}
	h.cache.Save(cache.KeyExpenses, []domain.Expense{expense("c1", "cached", 20), expense("c2", "cached", 30)})

	s := h.store()
	if s.State() != collection.Loading {
		t.Fatalf("got state %s before load", s.State())
	}
	got := s.Load(context.Background())

	if diff := cmp.Diff(h.remote.fetch, got); diff != "" {
		t.Fatalf("published collection mismatch (-want +got):\n%s", diff)
	}
	if s.State() != collection.Ready || s.Source() != collection.SourceRemote || s.Diverged() {
		t.Fatalf("state=%s source=%s diverged=%v", s.State(), s.Source(), s.Diverged())
	}
	cached, ok := h.cache.Load(cache.KeyExpenses)
	if !ok {
		t.Fatal("chosen collection not persisted")
	}
	if diff := cmp.Diff(h.remote.fetch, cached); diff != "" {
		t.Fatalf("cache mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_EmptyRemoteFallsBackToCache(t *testing.T) {
	h := newHarness()
	h.remote.fetch = []domain.Expense{}
	want := []domain.Expense{expense("c1", "cached", 20)}
	h.cache.Save(cache.KeyExpenses, want)

	s := h.loaded(t)

	if diff := cmp.Diff(want, s.List()); diff != "" {
		t.Fatalf("published collection mismatch (-want +got):\n%s", diff)
	}
	if !s.Diverged() || s.Source() != collection.SourceCache {
		t.Fatalf("source=%s diverged=%v, want cache and diverged", s.Source(), s.Diverged())
	}
	if !h.log.Contains("warn", "remote returned no entries") {
		t.Fatalf("missing divergence warning: %v", h.log.Lines("warn"))
	}
}

func TestLoad_OutageUsesCache(t *testing.T) {
	h := newHarness()
	h.remote.fetchErr = errors.New("connection refused")
	want := []domain.Expense{expense("c1", "cached", 20)}
	h.cache.Save(cache.KeyExpenses, want)

	s := h.loaded(t)

	if diff := cmp.Diff(want, s.List()); diff != "" {
		t.Fatalf("published collection mismatch (-want +got):\n%s", diff)
	}
	if s.Diverged() {
		t.Fatal("outage must not be reported as divergence")
	}
	if !h.log.Contains("warn", "connection refused") {
		t.Fatalf("missing outage warning: %v", h.log.Lines("warn"))
	}
}

func TestLoad_OutageWithoutCacheIsEmpty(t *testing.T) {
	h := newHarness()
	h.remote.fetchErr = errors.New("timeout")

	s := h.loaded(t)

	if got := s.List(); got == nil || len(got) != 0 {
		t.Fatalf("got %#v, want empty collection", got)
	}
	if s.State() != collection.Ready {
		t.Fatalf("got state %s, want ready", s.State())
	}
	select {
	case <-s.Ready():
	default:
		t.Fatal("ready channel not closed")
	}
}

func TestLoad_SecondCallIsNoop(t *testing.T) {
	h := newHarness()
	h.remote.fetch = []domain.Expense{expense("r1", "remote", 10)}
	s := h.loaded(t)

	h.remote.fetch = []domain.Expense{expense("r2", "other", 99)}
	got := s.Load(context.Background())

	if len(got) != 1 || got[0].ID != "r1" {
		t.Fatalf("second load changed the collection: %+v", got)
	}
	if h.remote.fetches != 1 {
		t.Fatalf("got %d fetches, want 1", h.remote.fetches)
	}
}

func TestLoad_DropsDuplicateIDs(t *testing.T) {
	h := newHarness()
	h.remote.fetch = []domain.Expense{expense("r1", "first", 10), expense("r1", "second", 20)}
	s := h.loaded(t)

	got := s.List()
	if len(got) != 1 || got[0].Description != "first" {
		t.Fatalf("got %+v, want only the first r1", got)
	}
}

func TestMutations_NotReady(t *testing.T) {
	h := newHarness()
	s := h.store()

	if _, err := s.Add(expense("", "early", 5)); !errors.Is(err, collection.ErrNotReady) {
		t.Fatalf("add: got %v, want ErrNotReady", err)
	}
	if _, err := s.Update("x", domain.Patch{"amount": 1}); !errors.Is(err, collection.ErrNotReady) {
		t.Fatalf("update: got %v, want ErrNotReady", err)
	}
	if _, err := s.Delete("x"); !errors.Is(err, collection.ErrNotReady) {
		t.Fatalf("delete: got %v, want ErrNotReady", err)
	}
	if len(s.List()) != 0 || len(h.remote.recorded()) != 0 {
		t.Fatal("dropped mutation changed state or reached the remote")
	}
	if _, ok := h.cache.Load(cache.KeyExpenses); ok {
		t.Fatal("dropped mutation wrote the cache")
	}
}

func TestAdd_VisibleBeforeRemoteResolves(t *testing.T) {
	h := newHarness()
	s := h.loaded(t)
	h.remote.gate = make(chan struct{})

	draft := expense("", "Dinner", 60)
	got, err := s.Add(draft)
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	list := s.List()
	if len(list) != 1 {
		t.Fatalf("got %d entities, want 1", len(list))
	}
	want := draft
	want.ID = "gen-1"
	want.CreatedAt = domain.NewTimestamp(fixedNow)
	if diff := cmp.Diff(want, list[0]); diff != "" {
		t.Fatalf("added entity mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("returned entity mismatch (-want +got):\n%s", diff)
	}
	if n := len(h.remote.recorded()); n != 0 {
		t.Fatalf("remote call resolved early: %d", n)
	}

	close(h.remote.gate)
	wait(t, s)
	if calls := h.remote.recorded(); len(calls) != 1 || calls[0].Op != "create" {
		t.Fatalf("unexpected remote calls: %+v", calls)
	}
}

func TestAdd_PrependsAndPersists(t *testing.T) {
	h := newHarness()
	h.remote.fetch = []domain.Expense{expense("r1", "old", 10)}
	s := h.loaded(t)

	if _, err := s.Add(expense("", "new", 20)); err != nil {
		t.Fatalf("add: %v", err)
	}
	list := s.List()
	if len(list) != 2 || list[0].Description != "new" || list[1].ID != "r1" {
		t.Fatalf("unexpected order: %+v", list)
	}
	cached, _ := h.cache.Load(cache.KeyExpenses)
	if diff := cmp.Diff(list, cached); diff != "" {
		t.Fatalf("cache does not hold the full collection (-mem +cache):\n%s", diff)
	}
	wait(t, s)
}

func TestAdd_DefaultsCategory(t *testing.T) {
	h := newHarness()
	s := h.loaded(t)

	draft := expense("", "Souvenir", 12)
	draft.Category = ""
	got, err := s.Add(draft)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if got.Category != domain.CategoryMisc {
		t.Fatalf("got category %q, want misc", got.Category)
	}
	wait(t, s)
}

func TestAdd_KeepsGivenIDUnlessTaken(t *testing.T) {
	h := newHarness()
	s := h.loaded(t)

	first, _ := s.Add(expense("e-1", "one", 1))
	second, _ := s.Add(expense("e-1", "two", 2))
	if first.ID != "e-1" {
		t.Fatalf("got id %q, want e-1", first.ID)
	}
	if second.ID == "e-1" {
		t.Fatal("duplicate id accepted")
	}
	if len(s.List()) != 2 {
		t.Fatalf("got %d entities, want 2", len(s.List()))
	}
	wait(t, s)
}

func TestAdd_RemoteFailureDoesNotRollBack(t *testing.T) {
	h := newHarness()
	h.remote.err = errors.New("500 internal server error")
	var (
		mu       sync.Mutex
		reported []string
	)
	s := h.loaded(t, collection.WithRemoteErrorHandler(func(kind domain.Kind, op string, id domain.ID, err error) {
		mu.Lock()
		defer mu.Unlock()
		reported = append(reported, fmt.Sprintf("%s %s %s", kind, op, id))
	}))

	added, err := s.Add(expense("", "Hotel", 300))
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	wait(t, s)

	if _, ok := s.Get(added.ID); !ok {
		t.Fatal("entity rolled back after remote failure")
	}
	if !h.log.Contains("error", "500 internal server error") {
		t.Fatalf("remote failure not logged: %v", h.log.Lines("error"))
	}
	mu.Lock()
	defer mu.Unlock()
	if len(reported) != 1 || reported[0] != "expense create gen-1" {
		t.Fatalf("unexpected reports: %v", reported)
	}
}

func TestAdd_RemoteResponseNotMergedBack(t *testing.T) {
	h := newHarness()
	h.remote.created = func(e domain.Expense) domain.Expense {
		e.ID = "server-77"
		e.Description = "normalised by server"
		return e
	}
	s := h.loaded(t)

	added, _ := s.Add(expense("", "Taxi", 25))
	wait(t, s)

	got, ok := s.Get(added.ID)
	if !ok {
		t.Fatalf("local id %q no longer present", added.ID)
	}
	if got.Description != "Taxi" {
		t.Fatalf("server fields merged back: %+v", got)
	}
	if _, ok := s.Get("server-77"); ok {
		t.Fatal("server-assigned id merged back")
	}
}

func TestUpdate_MergesAndSends(t *testing.T) {
	h := newHarness()
	h.remote.fetch = []domain.Expense{expense("r1", "Lunch", 40)}
	s := h.loaded(t)

	ok, err := s.Update("r1", domain.Patch{"amount": 45.5, "id": "hijack"})
	if err != nil || !ok {
		t.Fatalf("update: ok=%v err=%v", ok, err)
	}
	got, _ := s.Get("r1")
	if got.Amount != 45.5 || got.Description != "Lunch" {
		t.Fatalf("unexpected entity after update: %+v", got)
	}
	if _, found := s.Get("hijack"); found {
		t.Fatal("patch changed the id")
	}
	cached, _ := h.cache.Load(cache.KeyExpenses)
	if len(cached) != 1 || cached[0].Amount != 45.5 {
		t.Fatalf("cache not updated: %+v", cached)
	}

	wait(t, s)
	calls := h.remote.recorded()
	if len(calls) != 1 || calls[0].Op != "update" || calls[0].ID != "r1" {
		t.Fatalf("unexpected remote calls: %+v", calls)
	}
	if _, sent := calls[0].Patch["id"]; sent {
		t.Fatal("id sent in remote patch")
	}
}

func TestUpdate_MatchesNumericLookingIDs(t *testing.T) {
	h := newHarness()
	h.remote.fetch = []domain.Expense{expense("42", "x", 1)}
	s := h.loaded(t)

	if ok, _ := s.Update(" 42 ", domain.Patch{"paidBy": "B"}); !ok {
		t.Fatal("update did not match normalised id")
	}
	wait(t, s)
}

func TestUpdate_InvalidPatchChangesNothing(t *testing.T) {
	h := newHarness()
	h.remote.fetch = []domain.Expense{expense("r1", "Lunch", 40)}
	s := h.loaded(t)

	ok, err := s.Update("r1", domain.Patch{"amount": "lots"})
	if err == nil || ok {
		t.Fatalf("got ok=%v err=%v, want rejection", ok, err)
	}
	got, _ := s.Get("r1")
	if got.Amount != 40 {
		t.Fatalf("entity changed: %+v", got)
	}
	if n := len(h.remote.recorded()); n != 0 {
		t.Fatalf("remote called %d times", n)
	}
}

func TestUnknownID_NoMatchNoRemoteCall(t *testing.T) {
	h := newHarness()
	h.remote.fetch = []domain.Expense{expense("r1", "Lunch", 40)}
	s := h.loaded(t)
	before := s.List()

	if ok, err := s.Update("missing", domain.Patch{"amount": 1}); ok || err != nil {
		t.Fatalf("update: ok=%v err=%v", ok, err)
	}
	if ok, err := s.Delete("missing"); ok || err != nil {
		t.Fatalf("delete: ok=%v err=%v", ok, err)
	}
	wait(t, s)

	if diff := cmp.Diff(before, s.List()); diff != "" {
		t.Fatalf("collection changed (-before +after):\n%s", diff)
	}
	if n := len(h.remote.recorded()); n != 0 {
		t.Fatalf("remote called %d times", n)
	}
}

func TestDelete_RemovesAndSends(t *testing.T) {
	h := newHarness()
	h.remote.fetch = []domain.Expense{expense("r1", "a", 1), expense("r2", "b", 2), expense("r3", "c", 3)}
	s := h.loaded(t)

	ok, err := s.Delete("r2")
	if err != nil || !ok {
		t.Fatalf("delete: ok=%v err=%v", ok, err)
	}
	list := s.List()
	if len(list) != 2 || list[0].ID != "r1" || list[1].ID != "r3" {
		t.Fatalf("unexpected collection: %+v", list)
	}
	cached, _ := h.cache.Load(cache.KeyExpenses)
	if diff := cmp.Diff(list, cached); diff != "" {
		t.Fatalf("cache mismatch (-mem +cache):\n%s", diff)
	}
	wait(t, s)
	if calls := h.remote.recorded(); len(calls) != 1 || calls[0].Op != "remove" || calls[0].ID != "r2" {
		t.Fatalf("unexpected remote calls: %+v", calls)
	}
}

func TestList_ReturnsCopies(t *testing.T) {
	h := newHarness()
	h.remote.fetch = []domain.Expense{expense("r1", "a", 1)}
	s := h.loaded(t)

	list := s.List()
	list[0].Description = "mutated"
	list[0].SplitAmong[0] = "Z"

	got, _ := s.Get("r1")
	if got.Description != "a" || got.SplitAmong[0] != "A" {
		t.Fatalf("caller mutation leaked into the store: %+v", got)
	}
}

func TestAdd_QuotaFailureKeepsMemoryState(t *testing.T) {
	log := &logtest.Recorder{}
	backend := cache.NewMemoryBackend(400)
	adapter := cache.New[domain.Expense](backend, log)
	remote := &fakeRemote[domain.Expense]{fetch: []domain.Expense{expense("r1", "a", 1)}}
	s := collection.New(collection.Expenses, remote, adapter, log)
	s.Load(context.Background())
	before, ok := adapter.Load(cache.KeyExpenses)
	if !ok {
		t.Fatal("initial collection not cached")
	}

	for i := 0; i < 5; i++ {
		if _, err := s.Add(expense("", "a fairly long description to fill the quota", float64(i))); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	if n := len(s.List()); n != 6 {
		t.Fatalf("got %d entities in memory, want 6", n)
	}
	after, ok := adapter.Load(cache.KeyExpenses)
	if !ok {
		t.Fatal("previous cache entry lost")
	}
	if len(after) >= 6 {
		t.Fatalf("cache unexpectedly holds %d entities", len(after))
	}
	if len(after) < len(before) {
		t.Fatalf("cache shrank from %d to %d", len(before), len(after))
	}
	if !log.Contains("error", "cache save") {
		t.Fatalf("quota failure not logged: %v", log.Lines("error"))
	}
	wait(t, s)
}

func TestConcurrentAdds(t *testing.T) {
	h := newHarness()
	s := collection.New(collection.Expenses, h.remote, h.cache, h.log)
	s.Load(context.Background())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := s.Add(expense("", fmt.Sprintf("e%d", i), 1)); err != nil {
				t.Errorf("add: %v", err)
			}
		}(i)
	}
	wg.Wait()
	wait(t, s)

	list := s.List()
	if len(list) != 20 {
		t.Fatalf("got %d entities, want 20", len(list))
	}
	seen := map[domain.ID]bool{}
	for _, e := range list {
		if seen[e.ID] {
			t.Fatalf("duplicate id %q", e.ID)
		}
		seen[e.ID] = true
	}
	cached, _ := h.cache.Load(cache.KeyExpenses)
	if len(cached) != 20 {
		t.Fatalf("cache holds %d entities, want 20", len(cached))
	}
}

func TestWait_HonoursContext(t *testing.T) {
	h := newHarness()
	s := h.loaded(t)
	h.remote.gate = make(chan struct{})
	defer close(h.remote.gate)

	if _, err := s.Add(expense("", "stuck", 1)); err != nil {
		t.Fatalf("add: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := s.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("got %v, want deadline exceeded", err)
	}
}

func TestNewID_Ordered(t *testing.T) {
	a := collection.NewID()
	b := collection.NewID()
	if a == b || a.IsZero() {
		t.Fatalf("ids %q and %q", a, b)
	}
	if !(a.String() < b.String()) {
		t.Fatalf("ids not time ordered: %q then %q", a, b)
	}
}

func TestUpdate_UnknownFieldRejected(t *testing.T) {
	h := newHarness()
	h.remote.fetch = []domain.Expense{expense("r1", "Lunch", 40)}
	s := h.loaded(t)
	before := s.List()

	ok, err := s.Update("r1", domain.Patch{"amount": 50, "colour": "red"})
	if ok || !errors.Is(err, collection.ErrUnknownField) {
		t.Fatalf("got ok=%v err=%v, want unknown field", ok, err)
	}
	wait(t, s)
	if diff := cmp.Diff(before, s.List()); diff != "" {
		t.Fatalf("collection changed (-before +after):\n%s", diff)
	}
	if n := len(h.remote.recorded()); n != 0 {
		t.Fatalf("remote called %d times", n)
	}
}

func TestWait_AlongsideMutations(t *testing.T) {
	h := newHarness()
	s := h.loaded(t)

	stop := make(chan struct{})
	var waiters sync.WaitGroup
	for i := 0; i < 4; i++ {
		waiters.Add(1)
		go func() {
			defer waiters.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				ctx, cancel := context.WithTimeout(context.Background(), time.Second)
				if err := s.Wait(ctx); err != nil {
					t.Errorf("wait: %v", err)
				}
				cancel()
			}
		}()
	}
	for i := 0; i < 50; i++ {
		if _, err := s.Add(expense("", fmt.Sprintf("e%d", i), 1)); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	close(stop)
	waiters.Wait()
	wait(t, s)

	if n := len(h.remote.recorded()); n != 50 {
		t.Fatalf("got %d remote calls after wait, want 50", n)
	}
}
