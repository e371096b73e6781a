package views

import "tripsync/internal/domain"

// Active returns the itineraries that have not ended before today. An
// itinerary with a missing or unparsable end date is kept.
func Active(itineraries []domain.Itinerary, today domain.Date) []domain.Itinerary {
	out := []domain.Itinerary{}
	for _, it := range itineraries {
		if !ended(it, today) {
			out = append(out, it)
		}
	}
	return out
}

// Past returns the itineraries Active leaves out.
func Past(itineraries []domain.Itinerary, today domain.Date) []domain.Itinerary {
	out := []domain.Itinerary{}
	for _, it := range itineraries {
		if ended(it, today) {
			out = append(out, it)
		}
	}
	return out
}

func ended(it domain.Itinerary, today domain.Date) bool {
	return it.EndDate.Before(today)
}

// Partition splits the active itineraries into those created by identity
// and the rest.
func Partition(itineraries []domain.Itinerary, today domain.Date, identity domain.Username) (owned, others []domain.Itinerary) {
	owned, others = []domain.Itinerary{}, []domain.Itinerary{}
	for _, it := range Active(itineraries, today) {
		if it.CreatorEmail == identity {
			owned = append(owned, it)
		} else {
			others = append(others, it)
		}
	}
	return owned, others
}

// ExpensesFor returns the expenses that reference itineraryID.
func ExpensesFor(expenses []domain.Expense, itineraryID domain.ID) []domain.Expense {
	out := []domain.Expense{}
	for _, e := range expenses {
		if e.ItineraryID.Matches(itineraryID) {
			out = append(out, e)
		}
	}
	return out
}

// BookingsFor returns the bookings that reference itineraryID.
func BookingsFor(bookings []domain.Booking, itineraryID domain.ID) []domain.Booking {
	out := []domain.Booking{}
	for _, b := range bookings {
		if b.ItineraryID.Matches(itineraryID) {
			out = append(out, b)
		}
	}
	return out
}

// Orphaned lists expenses and bookings whose itinerary no longer exists.
type Orphaned struct {
	Expenses []domain.Expense `json:"expenses"`
	Bookings []domain.Booking `json:"bookings"`
}

// Orphans returns the expenses and bookings that reference no itinerary in
// itineraries.
func Orphans(itineraries []domain.Itinerary, expenses []domain.Expense, bookings []domain.Booking) Orphaned {
	live := make(map[domain.ID]bool, len(itineraries))
	for _, it := range itineraries {
		live[it.ID.Normalize()] = true
	}
	out := Orphaned{Expenses: []domain.Expense{}, Bookings: []domain.Booking{}}
	for _, e := range expenses {
		if !live[e.ItineraryID.Normalize()] {
			out.Expenses = append(out.Expenses, e)
		}
	}
	for _, b := range bookings {
		if !live[b.ItineraryID.Normalize()] {
			out.Bookings = append(out.Bookings, b)
		}
	}
	return out
}
