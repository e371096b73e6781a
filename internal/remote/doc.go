// Package remote provides an HTTP implementation of domain.RemoteClient for
// each entity kind tripsync synchronises.
//
// The remote store answers every call with a JSON envelope:
//
//	{"success": true, "data": ...}
//	{"success": false, "error": "..."}
//
// Supported operations per kind:
//   - Fetching the whole collection.
//   - Creating an entity (the response echoes it, possibly with a new id).
//   - Applying a partial update by id.
//   - Deleting by id.
//
// All requests accept a context for cancellation and deadlines. Transport
// failures, non-2xx statuses and envelopes with success=false are returned
// as errors naming the HTTP method and path; nothing is retried.
package remote
