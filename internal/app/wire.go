package app

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"sync"

	"tripsync/internal/cache"
	"tripsync/internal/collection"
	"tripsync/internal/domain"
	"tripsync/internal/remote"
	tripsvc "tripsync/internal/services/trip"
)

// Wire bundles all stores, services, and clients for the CLI.
type Wire struct {
	Config      Config
	Itineraries *collection.Store[domain.Itinerary]
	Expenses    *collection.Store[domain.Expense]
	Bookings    *collection.Store[domain.Booking]
	Trips       *tripsvc.Service
	HTTP        *http.Client

	closers []func() error
}

// NewWire constructs the dependency graph from cfg. The stores are left in
// Loading; call Load before use.
func NewWire(cfg Config) (*Wire, error) {
	return NewWireWithLoggers(cfg, NewLogger)
}

// NewWireWithLoggers is NewWire with a custom source of log channels.
func NewWireWithLoggers(cfg Config, newLogger func(tag string) domain.Logger) (*Wire, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	w := &Wire{Config: cfg}
	backend, err := w.openBackend(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.Passphrase != "" {
		backend = cache.NewSealed(backend, cfg.Passphrase)
	}

	// Ensure an HTTP client is available for outbound calls
	httpClient := cfg.HTTP
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	w.HTTP = httpClient

	cacheLog := newLogger(TagCache)
	opts := []collection.Option{collection.WithTimeout(cfg.Timeout)}
	if cfg.OnRemoteError != nil {
		opts = append(opts, collection.WithRemoteErrorHandler(cfg.OnRemoteError))
	}

	w.Itineraries = collection.New(collection.Itineraries,
		remote.NewHTTP[domain.Itinerary](cfg.RemoteURL, remote.ItineraryRoutes, httpClient),
		cache.New[domain.Itinerary](backend, cacheLog),
		newLogger(TagItinerary), opts...)
	w.Expenses = collection.New(collection.Expenses,
		remote.NewHTTP[domain.Expense](cfg.RemoteURL, remote.ExpenseRoutes, httpClient),
		cache.New[domain.Expense](backend, cacheLog),
		newLogger(TagExpense), opts...)
	w.Bookings = collection.New(collection.Bookings,
		remote.NewHTTP[domain.Booking](cfg.RemoteURL, remote.BookingRoutes, httpClient),
		cache.New[domain.Booking](backend, cacheLog),
		newLogger(TagBooking), opts...)

	w.Trips = tripsvc.New(w.Itineraries, w.Expenses, w.Bookings)
	return w, nil
}

func (w *Wire) openBackend(cfg Config) (domain.CacheBackend, error) {
	switch cfg.Cache {
	case CacheLevelDB:
		db, err := cache.OpenLevelDB(filepath.Join(cfg.Home, "cache.ldb"))
		if err != nil {
			return nil, err
		}
		w.closers = append(w.closers, db.Close)
		return db, nil
	case CacheMemory:
		return cache.NewMemoryBackend(cache.DefaultQuota), nil
	default:
		return cache.NewFileBackend(filepath.Join(cfg.Home, "cache"))
	}
}

// Load reconciles the three stores concurrently and returns once all are
// Ready.
func (w *Wire) Load(ctx context.Context) {
	var wg sync.WaitGroup
	wg.Add(3)
	go func() { defer wg.Done(); w.Itineraries.Load(ctx) }()
	go func() { defer wg.Done(); w.Expenses.Load(ctx) }()
	go func() { defer wg.Done(); w.Bookings.Load(ctx) }()
	wg.Wait()
}

// Wait blocks until the remote calls of every store have finished.
func (w *Wire) Wait(ctx context.Context) error {
	for _, wait := range []func(context.Context) error{w.Itineraries.Wait, w.Expenses.Wait, w.Bookings.Wait} {
		if err := wait(ctx); err != nil {
			return fmt.Errorf("wait for remote calls: %w", err)
		}
	}
	return nil
}

// Close releases the cache backend.
func (w *Wire) Close() error {
	var first error
	for _, c := range w.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	w.closers = nil
	return first
}
