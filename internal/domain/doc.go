// Package domain defines the entities and contracts shared across tripsync.
// It contains plain types (wire/state) and contracts (interfaces) only.
package domain
