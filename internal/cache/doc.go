// Package cache is the local, durable copy of each entity collection.
//
// Adapter encodes a whole collection as JSON under one key per entity kind
// and never fails towards its caller: unreadable or corrupt entries load as
// absent, failed writes are logged and leave the previous entry in place.
//
// Storage is pluggable through domain.CacheBackend:
//   - FileBackend keeps one JSON file per key, written via temp file + rename.
//   - LevelDBBackend keeps entries in a goleveldb database.
//   - MemoryBackend keeps entries in process memory under a byte quota.
//
// Sealed wraps any backend and encrypts values with a passphrase.
package cache
