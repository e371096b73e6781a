package domain

import (
	interfaces "tripsync/internal/domain/interfaces"
	types "tripsync/internal/domain/types"
)

// Type aliases expose domain types from the types subpackage for compact imports.
type (
	ID            = types.ID
	Username      = types.Username
	Date          = types.Date
	Timestamp     = types.Timestamp
	Patch         = types.Patch
	Kind          = types.Kind
	Itinerary     = types.Itinerary
	Expense       = types.Expense
	Category      = types.Category
	Booking       = types.Booking
	TransportType = types.TransportType
	BookingStatus = types.BookingStatus
)

// Interface aliases expose domain interfaces from the interfaces subpackage.
type (
	CacheBackend = interfaces.CacheBackend
	Logger       = interfaces.Logger
)

type (
	Cache[T any]        = interfaces.Cache[T]
	RemoteClient[T any] = interfaces.RemoteClient[T]
	Collection[T any]   = interfaces.Collection[T]
)

const (
	KindItinerary = types.KindItinerary
	KindExpense   = types.KindExpense
	KindBooking   = types.KindBooking
)

const (
	CategoryAccommodation = types.CategoryAccommodation
	CategoryFood          = types.CategoryFood
	CategoryTransport     = types.CategoryTransport
	CategoryActivities    = types.CategoryActivities
	CategoryShopping      = types.CategoryShopping
	CategoryMisc          = types.CategoryMisc

	TransportJeep  = types.TransportJeep
	TransportBike  = types.TransportBike
	TransportCab   = types.TransportCab
	TransportCar   = types.TransportCar
	TransportBus   = types.TransportBus
	TransportTrain = types.TransportTrain

	StatusConfirmed = types.StatusConfirmed
	StatusCancelled = types.StatusCancelled
)

// Categories lists every known expense category.
var Categories = types.Categories

// Field aliases used by the remote store.
var (
	ItineraryAliases = types.ItineraryAliases
	BookingAliases   = types.BookingAliases
)

// Constructors re-exported from the types subpackage.
var (
	NewDate      = types.NewDate
	NewTimestamp = types.NewTimestamp
)
