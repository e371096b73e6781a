package types

// Category tags an expense.
type Category string

// String returns the string form of the category.
func (c Category) String() string { return string(c) }

const (
	CategoryAccommodation Category = "accommodation"
	CategoryFood          Category = "food"
	CategoryTransport     Category = "transport"
	CategoryActivities    Category = "activities"
	CategoryShopping      Category = "shopping"
	CategoryMisc          Category = "misc"
)

// Categories lists every known category.
var Categories = []Category{
	CategoryAccommodation,
	CategoryFood,
	CategoryTransport,
	CategoryActivities,
	CategoryShopping,
	CategoryMisc,
}

// Expense is money spent during a trip, paid by one traveler and shared
// among SplitAmong. An empty SplitAmong means the expense is undivided.
type Expense struct {
	ID          ID        `json:"id"`
	ItineraryID ID        `json:"itineraryId"`
	Description string    `json:"description"`
	Amount      float64   `json:"amount"`
	Category    Category  `json:"category"`
	PaidBy      string    `json:"paidBy"`
	SplitAmong  []string  `json:"splitAmong"`
	Currency    string    `json:"currency,omitempty"`
	CreatedAt   Timestamp `json:"createdAt"`
}
