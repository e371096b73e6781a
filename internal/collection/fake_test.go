package collection_test

import (
	"context"
	"sync"

	"tripsync/internal/domain"
)

type remoteCall struct {
	Op    string
	ID    domain.ID
	Patch domain.Patch
}

// fakeRemote is an in-memory RemoteClient. When gate is non-nil every
// mutating call blocks until it is closed.
type fakeRemote[T any] struct {
	mu       sync.Mutex
	fetch    []T
	fetchErr error
	fetches  int
	err      error
	created  func(T) T
	gate     chan struct{}
	calls    []remoteCall
}

func (f *fakeRemote[T]) FetchAll(ctx context.Context) ([]T, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches++
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	out := make([]T, len(f.fetch))
	copy(out, f.fetch)
	return out, nil
}

func (f *fakeRemote[T]) wait() {
	f.mu.Lock()
	gate := f.gate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
}

func (f *fakeRemote[T]) Create(ctx context.Context, entity T) (T, error) {
	f.wait()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, remoteCall{Op: "create"})
	if f.err != nil {
		var zero T
		return zero, f.err
	}
	if f.created != nil {
		return f.created(entity), nil
	}
	return entity, nil
}

func (f *fakeRemote[T]) Update(ctx context.Context, id domain.ID, patch domain.Patch) error {
	f.wait()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, remoteCall{Op: "update", ID: id, Patch: patch})
	return f.err
}

func (f *fakeRemote[T]) Remove(ctx context.Context, id domain.ID) error {
	f.wait()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, remoteCall{Op: "remove", ID: id})
	return f.err
}

func (f *fakeRemote[T]) recorded() []remoteCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]remoteCall, len(f.calls))
	copy(out, f.calls)
	return out
}

var _ domain.RemoteClient[domain.Expense] = (*fakeRemote[domain.Expense])(nil)
