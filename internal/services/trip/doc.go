// Package trip implements operations that span the itinerary, expense and
// booking collections.
package trip
