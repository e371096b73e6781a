// Package collection keeps one entity collection in memory and in step with
// the local cache and the remote store.
//
// A Store starts in Loading. Load fetches the remote collection and reads the
// cache concurrently, picks one of them (or the empty collection), persists
// the choice and moves to Ready. From then on mutations are optimistic: they
// change the in-memory collection, rewrite the cache synchronously and send
// the matching remote call in the background. Remote failures are logged and
// never roll back local state.
package collection
