package interfaces

// CacheBackend is durable key-value storage holding one encoded value per
// key. A missing key is reported with ok=false and a nil error.
type CacheBackend interface {
	Get(key string) (value []byte, ok bool, err error)
	Put(key string, value []byte) error
	Delete(key string) error
}

// Cache is the local cache as seen by collection stores. It never fails:
// read problems surface as a miss, write problems are logged.
type Cache[T any] interface {
	Load(key string) ([]T, bool)
	Save(key string, collection []T)
	Remove(key string)
}
