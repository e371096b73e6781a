// Package views derives read-only subsets of the entity collections: active
// and past itineraries, ownership, and the expenses or bookings that belong
// to one itinerary.
package views
