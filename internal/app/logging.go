package app

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bitmark-inc/logger"

	"tripsync/internal/domain"
)

// Logger channel tags, one per component.
const (
	TagItinerary = "itinerary"
	TagExpense   = "expense"
	TagBooking   = "booking"
	TagCache     = "cache"
	TagRemote    = "remote"
)

// InitLogging starts the rotating log under <home>/log. Call Finalise
// before exit.
func InitLogging(cfg Config) error {
	dir := filepath.Join(cfg.Home, "log")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}
	return logger.Initialise(logger.Configuration{
		Directory: dir,
		File:      "tripsync.log",
		Size:      cfg.Log.Size,
		Count:     cfg.Log.Count,
		Console:   cfg.Log.Console,
		Levels: map[string]string{
			logger.DefaultTag: cfg.Log.Level,
		},
	})
}

// Finalise flushes and closes the log.
func Finalise() { logger.Finalise() }

// NewLogger returns the tagged log channel for a component.
func NewLogger(tag string) domain.Logger { return logger.New(tag) }
