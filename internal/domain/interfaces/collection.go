package interfaces

import domaintypes "tripsync/internal/domain/types"

// Collection is the in-memory view of one entity kind that services and
// presentation read and mutate.
type Collection[T any] interface {
	List() []T
	Get(id domaintypes.ID) (T, bool)
	Add(draft T) (T, error)
	Update(id domaintypes.ID, patch domaintypes.Patch) (bool, error)
	Delete(id domaintypes.ID) (bool, error)
}
