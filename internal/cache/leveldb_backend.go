package cache

import (
	"errors"
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
	ldb_opt "github.com/syndtr/goleveldb/leveldb/opt"

	"tripsync/internal/domain"
)

// LevelDBBackend keeps cache entries in a goleveldb database. Writes are
// synced so an entry survives a crash right after Put returns.
type LevelDBBackend struct {
	db *leveldb.DB
}

// OpenLevelDB opens (or creates) the database at path.
func OpenLevelDB(path string) (*LevelDBBackend, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("open leveldb %s: %w", path, err)
	}
	return &LevelDBBackend{db: db}, nil
}

// Get returns the stored bytes for key.
func (b *LevelDBBackend) Get(key string) ([]byte, bool, error) {
	value, err := b.db.Get([]byte(key), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

// Put replaces the stored bytes for key.
func (b *LevelDBBackend) Put(key string, value []byte) error {
	return b.db.Put([]byte(key), value, &ldb_opt.WriteOptions{Sync: true})
}

// Delete removes key; a missing key is not an error.
func (b *LevelDBBackend) Delete(key string) error {
	return b.db.Delete([]byte(key), &ldb_opt.WriteOptions{Sync: true})
}

// Close releases the database.
func (b *LevelDBBackend) Close() error {
	return b.db.Close()
}

// Compile-time assertion that LevelDBBackend implements domain.CacheBackend.
var _ domain.CacheBackend = (*LevelDBBackend)(nil)
