package interfaces

import (
	"context"

	domaintypes "tripsync/internal/domain/types"
)

// RemoteClient talks to the authoritative remote store for one entity kind.
// Every failure, transport or server side, comes back as an error; nothing
// panics and nothing is retried.
type RemoteClient[T any] interface {
	FetchAll(ctx context.Context) ([]T, error)
	Create(ctx context.Context, entity T) (T, error)
	Update(ctx context.Context, id domaintypes.ID, patch domaintypes.Patch) error
	Remove(ctx context.Context, id domaintypes.ID) error
}
