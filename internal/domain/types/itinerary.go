package types

import "encoding/json"

// Itinerary is a planned trip. Expenses and bookings point at it by ID.
type Itinerary struct {
	ID           ID        `json:"id"`
	Destination  string    `json:"destination"`
	Source       string    `json:"source,omitempty"`
	StartDate    Date      `json:"startDate"`
	EndDate      Date      `json:"endDate"`
	Budget       float64   `json:"budget"`
	Travelers    int       `json:"travelers"`
	Interests    []string  `json:"interests,omitempty"`
	CreatorEmail Username  `json:"creatorEmail,omitempty"`
	CreatedAt    Timestamp `json:"createdAt"`
}

// ItineraryAliases maps the remote store's snake_case field names to the
// JSON names of Itinerary.
var ItineraryAliases = map[string]string{
	"start_date":    "startDate",
	"end_date":      "endDate",
	"creator_email": "creatorEmail",
}

// MarshalJSON also writes the snake_case spellings, which are the only ones
// the remote store reads on create.
func (it Itinerary) MarshalJSON() ([]byte, error) {
	type alias Itinerary
	return json.Marshal(struct {
		alias
		StartDateSnake    Date     `json:"start_date"`
		EndDateSnake      Date     `json:"end_date"`
		CreatorEmailSnake Username `json:"creator_email,omitempty"`
	}{alias(it), it.StartDate, it.EndDate, it.CreatorEmail})
}

// UnmarshalJSON also accepts the snake_case spellings the remote store
// echoes back (start_date, end_date, creator_email). The camelCase field
// wins when both are present.
func (it *Itinerary) UnmarshalJSON(data []byte) error {
	type alias Itinerary
	aux := struct {
		alias
		StartDateSnake    Date     `json:"start_date"`
		EndDateSnake      Date     `json:"end_date"`
		CreatorEmailSnake Username `json:"creator_email"`
	}{}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*it = Itinerary(aux.alias)
	if it.StartDate == "" {
		it.StartDate = aux.StartDateSnake
	}
	if it.EndDate == "" {
		it.EndDate = aux.EndDateSnake
	}
	if it.CreatorEmail == "" {
		it.CreatorEmail = aux.CreatorEmailSnake
	}
	return nil
}
