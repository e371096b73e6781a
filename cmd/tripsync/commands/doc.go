// Package commands defines the tripsync CLI and wires dependencies for subcommands.
//
// Commands
//
//   - itinerary add|list|show|update|delete   Plan trips
//   - expense add|list|update|delete          Record shared spending
//   - booking add|list|update|delete          Book transport
//   - settle <itinerary-id> [traveler...]     Show who owes and who is owed
//   - orphans                                 List expenses and bookings without a trip
//
// # Implementation
//
// The root command reads the config file, applies flag overrides, starts
// logging and builds the dependency graph before any subcommand runs. Every
// store is loaded (remote and cache reconciled) up front. After the
// subcommand returns, the root waits for background remote writes so they
// are not cut off by process exit.
package commands
