// Package devserver is an in-memory remote store speaking the same HTTP API
// as the production backend, for local development and tests.
//
// HTTP API (all under /api, one route set per kind, see remote.Routes)
//
//	GET    <list>          {"success":true,"data":[...]} in insertion order
//	POST   <create>        store the posted entity; 201 with the stored copy
//	PUT    <update>        shallow-merge the posted fields into the entity
//	DELETE <delete>        drop the entity
//
// Behaviour
//
//   - All state is held in memory and lost on process exit, like the
//     backend's in-memory fallback.
//   - A client-supplied id is kept; otherwise "<kind>-<n>" is assigned.
//   - Update and delete of an unknown id still report success.
//   - SetFailing makes every route answer 503, to simulate an outage.
//   - Each request is logged with method, path, status and duration.
package devserver
