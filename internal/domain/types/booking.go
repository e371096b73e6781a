package types

import "encoding/json"

// TransportType is the booked mode of transport.
type TransportType string

// String returns the string form of the transport type.
func (t TransportType) String() string { return string(t) }

const (
	TransportJeep  TransportType = "jeep"
	TransportBike  TransportType = "bike"
	TransportCab   TransportType = "cab"
	TransportCar   TransportType = "car"
	TransportBus   TransportType = "bus"
	TransportTrain TransportType = "train"
)

// basePrices holds the price applied when a booking is created without one.
var basePrices = map[TransportType]float64{
	TransportJeep: 150,
	TransportBike: 50,
	TransportCab:  80,
}

// BasePrice returns the default price for t, if it has one.
func (t TransportType) BasePrice() (float64, bool) {
	p, ok := basePrices[t]
	return p, ok
}

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	StatusConfirmed BookingStatus = "confirmed"
	StatusCancelled BookingStatus = "cancelled"
)

// Booking is a transport reservation attached to an itinerary.
type Booking struct {
	ID              ID            `json:"id"`
	ItineraryID     ID            `json:"itineraryId"`
	Type            TransportType `json:"type"`
	PickupLocation  string        `json:"pickupLocation"`
	DropoffLocation string        `json:"dropoffLocation"`
	Date            Date          `json:"date"`
	Passengers      int           `json:"passengers"`
	Price           float64       `json:"price"`
	Status          BookingStatus `json:"status"`
	CreatedAt       Timestamp     `json:"createdAt"`
}

// BookingAliases maps the remote store's field names to the JSON names of
// Booking.
var BookingAliases = map[string]string{
	"dropLocation": "dropoffLocation",
}

// MarshalJSON also writes dropLocation, the only drop-off name the remote
// store reads on create.
func (b Booking) MarshalJSON() ([]byte, error) {
	type alias Booking
	return json.Marshal(struct {
		alias
		DropLocation string `json:"dropLocation"`
	}{alias(b), b.DropoffLocation})
}

// UnmarshalJSON also accepts dropLocation, the remote store's name for the
// drop-off field.
func (b *Booking) UnmarshalJSON(data []byte) error {
	type alias Booking
	aux := struct {
		alias
		DropLocation string `json:"dropLocation"`
	}{}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*b = Booking(aux.alias)
	if b.DropoffLocation == "" {
		b.DropoffLocation = aux.DropLocation
	}
	return nil
}
