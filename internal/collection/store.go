package collection

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"tripsync/internal/domain"
)

// ErrNotReady is returned by mutations issued before Load has completed.
var ErrNotReady = errors.New("collection not loaded yet")

// State is the lifecycle position of a Store.
type State int

const (
	Loading State = iota
	Ready
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Source records where the collection published by Load came from.
type Source int

const (
	SourceNone Source = iota
	SourceRemote
	SourceCache
	SourceEmpty
)

func (s Source) String() string {
	switch s {
	case SourceRemote:
		return "remote"
	case SourceCache:
		return "cache"
	case SourceEmpty:
		return "empty"
	default:
		return "none"
	}
}

// RemoteErrorFunc is told about every remote call that failed after a
// mutation. op is one of "create", "update" or "remove".
type RemoteErrorFunc func(kind domain.Kind, op string, id domain.ID, err error)

// Option configures a Store.
type Option func(*options)

type options struct {
	now           func() time.Time
	newID         func() domain.ID
	timeout       time.Duration
	onRemoteError RemoteErrorFunc
}

// WithClock sets the clock used to stamp createdAt.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithIDGenerator sets how ids are synthesised for new entities.
func WithIDGenerator(newID func() domain.ID) Option {
	return func(o *options) { o.newID = newID }
}

// WithTimeout bounds every remote call. Zero means no bound.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithRemoteErrorHandler registers fn to be called after a failed remote
// call. fn runs on the goroutine that made the call.
func WithRemoteErrorHandler(fn RemoteErrorFunc) Option {
	return func(o *options) { o.onRemoteError = fn }
}

// NewID returns a time-ordered UUIDv7 identifier.
func NewID() domain.ID {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return domain.ID(id.String())
}

// Store is the authoritative in-memory collection of one entity kind.
type Store[T any] struct {
	kind   Kind[T]
	remote domain.RemoteClient[T]
	cache  domain.Cache[T]
	log    domain.Logger
	opts   options

	mu       sync.RWMutex
	state    State
	source   Source
	diverged bool
	items    []T

	// inflight counts background remote calls; idle is closed whenever it
	// drops to zero. Both are guarded by mu.
	inflight int
	idle     chan struct{}

	loadOnce sync.Once
	ready    chan struct{}
}

// New returns a Store in the Loading state.
func New[T any](
	kind Kind[T],
	remote domain.RemoteClient[T],
	cache domain.Cache[T],
	log domain.Logger,
	opts ...Option,
) *Store[T] {
	o := options{now: time.Now, newID: NewID}
	for _, opt := range opts {
		opt(&o)
	}
	return &Store[T]{
		kind:   kind,
		remote: remote,
		cache:  cache,
		log:    log,
		opts:   o,
		items:  []T{},
		idle:   closedChan(),
		ready:  make(chan struct{}),
	}
}

func closedChan() chan struct{} {
	c := make(chan struct{})
	close(c)
	return c
}

// Kind returns the descriptor of the entities held.
func (s *Store[T]) Kind() Kind[T] { return s.kind }

// State reports whether the store has been loaded.
func (s *Store[T]) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Ready returns a channel that is closed once Load has published.
func (s *Store[T]) Ready() <-chan struct{} { return s.ready }

// Source reports which collection Load published.
func (s *Store[T]) Source() Source {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.source
}

// Diverged reports whether Load kept the cached collection although the
// remote store answered with an empty one, so the two now disagree.
func (s *Store[T]) Diverged() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.diverged
}

// Load reconciles the remote and cached collections and moves the store to
// Ready. Only the first call does any work; later calls return the current
// collection.
func (s *Store[T]) Load(ctx context.Context) []T {
	s.loadOnce.Do(func() { s.load(ctx) })
	return s.List()
}

func (s *Store[T]) load(ctx context.Context) {
	var (
		wg        sync.WaitGroup
		fetched   []T
		fetchErr  error
		cached    []T
		hasCached bool
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		callCtx, cancel := s.callContext(ctx)
		defer cancel()
		fetched, fetchErr = s.remote.FetchAll(callCtx)
	}()
	go func() {
		defer wg.Done()
		cached, hasCached = s.cache.Load(s.kind.CacheKey)
	}()
	wg.Wait()

	items, source := reconcile(fetched, fetchErr, cached, hasCached)
	items = s.dedupe(items)
	name := s.kind.Name

	switch {
	case fetchErr != nil && source == SourceCache:
		s.log.Warnf("%s load: remote unavailable, using %d cached: %s", name, len(items), fetchErr)
	case fetchErr != nil:
		s.log.Warnf("%s load: remote unavailable and nothing cached: %s", name, fetchErr)
	case source == SourceCache:
		s.log.Warnf("%s load: remote returned no entries, keeping %d cached", name, len(items))
	default:
		s.log.Infof("%s load: %d from %s", name, len(items), source)
	}

	s.mu.Lock()
	s.items = items
	s.source = source
	s.diverged = fetchErr == nil && source == SourceCache
	s.state = Ready
	s.cache.Save(s.kind.CacheKey, s.snapshotLocked())
	s.mu.Unlock()
	close(s.ready)
}

// reconcile chooses the collection to publish. A non-empty remote collection
// always wins. Otherwise the cache is used when it holds anything.
func reconcile[T any](fetched []T, fetchErr error, cached []T, hasCached bool) ([]T, Source) {
	if fetchErr == nil && len(fetched) > 0 {
		return fetched, SourceRemote
	}
	if hasCached && len(cached) > 0 {
		return cached, SourceCache
	}
	if fetchErr != nil && hasCached {
		return []T{}, SourceCache
	}
	return []T{}, SourceEmpty
}

// dedupe drops later entries that repeat an earlier id.
func (s *Store[T]) dedupe(items []T) []T {
	seen := make(map[domain.ID]bool, len(items))
	out := make([]T, 0, len(items))
	for _, it := range items {
		id := s.kind.ID(it).Normalize()
		if seen[id] {
			s.log.Warnf("%s load: dropping duplicate id %q", s.kind.Name, id)
			continue
		}
		seen[id] = true
		out = append(out, it)
	}
	return out
}

// List returns a copy of the collection, newest first.
func (s *Store[T]) List() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Get returns a copy of the entity with the given id.
func (s *Store[T]) Get(id domain.ID) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexLocked(id); i >= 0 {
		return s.kind.clone(s.items[i]), true
	}
	var zero T
	return zero, false
}

// Add inserts draft at the front of the collection and returns the stored
// entity. An id is synthesised when the draft has none or its id is already
// taken. The remote create runs in the background and its response is not
// merged back.
func (s *Store[T]) Add(draft T) (T, error) {
	var zero T
	s.mu.Lock()
	if s.state != Ready {
		s.mu.Unlock()
		s.log.Warnf("%s add dropped: %s", s.kind.Name, ErrNotReady)
		return zero, ErrNotReady
	}

	entity := s.kind.clone(draft)
	id := s.kind.ID(entity).Normalize()
	if id.IsZero() || s.indexLocked(id) >= 0 {
		id = s.opts.newID()
	}
	s.kind.SetID(&entity, id)
	if s.kind.Stamp != nil {
		s.kind.Stamp(&entity, s.opts.now())
	}

	s.items = append([]T{entity}, s.items...)
	s.cache.Save(s.kind.CacheKey, s.snapshotLocked())
	s.mu.Unlock()

	sent := s.kind.clone(entity)
	s.send("create", id, func(ctx context.Context) error {
		_, err := s.remote.Create(ctx, sent)
		return err
	})
	return s.kind.clone(entity), nil
}

// Update overwrites the fields named in patch on the entity with the given
// id. It reports false, changing nothing, when no entity matches. The id
// field is never changed. Alias field names are accepted; any other name
// the entity lacks fails with ErrUnknownField before anything changes.
func (s *Store[T]) Update(id domain.ID, patch domain.Patch) (bool, error) {
	s.mu.Lock()
	if s.state != Ready {
		s.mu.Unlock()
		s.log.Warnf("%s update %s dropped: %s", s.kind.Name, id, ErrNotReady)
		return false, ErrNotReady
	}
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		s.log.Debugf("%s update %s: no such entity", s.kind.Name, id)
		return false, nil
	}

	patch, err := s.kind.normalizePatch(patch)
	if err != nil {
		s.mu.Unlock()
		return false, fmt.Errorf("%s update %s: %w", s.kind.Name, id, err)
	}
	patch = s.kind.withAliases(patch)
	current := s.items[i]
	merged, err := applyPatch(current, patch)
	if err != nil {
		s.mu.Unlock()
		return false, fmt.Errorf("%s update %s: %w", s.kind.Name, id, err)
	}
	s.kind.SetID(&merged, s.kind.ID(current))
	s.items[i] = merged
	s.cache.Save(s.kind.CacheKey, s.snapshotLocked())
	stored := s.kind.ID(current)
	s.mu.Unlock()

	s.send("update", stored, func(ctx context.Context) error {
		return s.remote.Update(ctx, stored, patch)
	})
	return true, nil
}

// Delete removes the entity with the given id. It reports false when no
// entity matches. Entities referring to it are left alone.
func (s *Store[T]) Delete(id domain.ID) (bool, error) {
	s.mu.Lock()
	if s.state != Ready {
		s.mu.Unlock()
		s.log.Warnf("%s delete %s dropped: %s", s.kind.Name, id, ErrNotReady)
		return false, ErrNotReady
	}
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		s.log.Debugf("%s delete %s: no such entity", s.kind.Name, id)
		return false, nil
	}
	stored := s.kind.ID(s.items[i])
	s.items = append(s.items[:i:i], s.items[i+1:]...)
	s.cache.Save(s.kind.CacheKey, s.snapshotLocked())
	s.mu.Unlock()

	s.send("remove", stored, func(ctx context.Context) error {
		return s.remote.Remove(ctx, stored)
	})
	return true, nil
}

// Wait blocks until no remote call is in flight or ctx is done. It may run
// alongside mutations; calls started while waiting are waited for too.
func (s *Store[T]) Wait(ctx context.Context) error {
	for {
		s.mu.RLock()
		idle, n := s.idle, s.inflight
		s.mu.RUnlock()
		if n == 0 {
			return nil
		}
		select {
		case <-idle:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// send runs call in the background. Failures are logged and passed to the
// remote error handler; local state is never touched.
func (s *Store[T]) send(op string, id domain.ID, call func(context.Context) error) {
	s.mu.Lock()
	if s.inflight == 0 {
		s.idle = make(chan struct{})
	}
	s.inflight++
	s.mu.Unlock()
	go func() {
		defer s.finish()
		ctx, cancel := s.callContext(context.Background())
		defer cancel()
		if err := call(ctx); err != nil {
			s.log.Errorf("%s %s %s: %s", s.kind.Name, op, id, err)
			if s.opts.onRemoteError != nil {
				s.opts.onRemoteError(s.kind.Name, op, id, err)
			}
			return
		}
		s.log.Debugf("%s %s %s: ok", s.kind.Name, op, id)
	}()
}

func (s *Store[T]) finish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inflight--
	if s.inflight == 0 {
		close(s.idle)
	}
}

func (s *Store[T]) callContext(parent context.Context) (context.Context, context.CancelFunc) {
	if s.opts.timeout > 0 {
		return context.WithTimeout(parent, s.opts.timeout)
	}
	return context.WithCancel(parent)
}

func (s *Store[T]) indexLocked(id domain.ID) int {
	for i, it := range s.items {
		if s.kind.ID(it).Matches(id) {
			return i
		}
	}
	return -1
}

func (s *Store[T]) snapshotLocked() []T {
	out := make([]T, len(s.items))
	for i, it := range s.items {
		out[i] = s.kind.clone(it)
	}
	return out
}

// applyPatch overwrites the top-level JSON fields of entity with patch.
func applyPatch[T any](entity T, patch domain.Patch) (T, error) {
	var zero T
	raw, err := json.Marshal(entity)
	if err != nil {
		return zero, fmt.Errorf("encode entity: %w", err)
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return zero, fmt.Errorf("decode entity: %w", err)
	}
	for k, v := range patch {
		b, err := json.Marshal(v)
		if err != nil {
			return zero, fmt.Errorf("encode field %q: %w", k, err)
		}
		fields[k] = b
	}
	raw, err = json.Marshal(fields)
	if err != nil {
		return zero, fmt.Errorf("encode patched entity: %w", err)
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return zero, fmt.Errorf("apply patch: %w", err)
	}
	return out, nil
}

// Compile-time assertions that Store implements domain.Collection.
var (
	_ domain.Collection[domain.Itinerary] = (*Store[domain.Itinerary])(nil)
	_ domain.Collection[domain.Expense]   = (*Store[domain.Expense])(nil)
	_ domain.Collection[domain.Booking]   = (*Store[domain.Booking])(nil)
)
