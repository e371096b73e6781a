// Package main runs the in-memory HTTP entity store used by tripsync during
// development and tests. It serves the itinerary, expense and transport
// routes under /api.
//
// HTTP API
//
//	GET    /api/itinerary/                      list itineraries
//	POST   /api/itinerary/create                create an itinerary
//	PUT    /api/itinerary/{id}/update           overwrite fields
//	DELETE /api/itinerary/{id}/delete           delete
//
//	GET    /api/expenses                        list expenses
//	POST   /api/expenses/add                    create an expense
//	PUT    /api/expenses/{id}/update            overwrite fields
//	DELETE /api/expenses/{id}/delete            delete
//
//	GET    /api/transport/bookings              list bookings
//	POST   /api/transport/book                  create a booking
//	PUT    /api/transport/bookings/{id}/update  overwrite fields
//	DELETE /api/transport/bookings/{id}/delete  delete
//
// Behaviour
//
//   - All state is held in memory and lost on process exit, like a backend
//     that restarts empty.
//   - Responses are JSON envelopes {"success", "data", "error", "message"}.
//   - A client-supplied id is kept; otherwise the server assigns <kind>-<n>.
//   - Updating or deleting an unknown id still succeeds.
//   - A lightweight access log records method, path, remote, status, bytes and
//     duration for each request.
//   - The default listen address is :5000.
package main
