// Package app wires application dependencies for the CLI.
//
// It builds the cache backend, remote clients, collection stores and the
// trip service from Config, exposing them via the Wire struct for commands
// to use. Config can be read from a YAML file; flags override it.
package app
