// Package settlement computes how trip expenses split among travelers and
// who is over or under the equal share. It also produces the per-category
// and budget summaries shown next to a trip.
//
// All functions are pure and never fail.
package settlement
