package trip

import (
	"errors"
	"fmt"
	"slices"

	"tripsync/internal/domain"
	"tripsync/internal/settlement"
	"tripsync/internal/views"
)

// ErrNotFound indicates there is no itinerary with the requested id.
var ErrNotFound = errors.New("itinerary not found")

// Service joins the three collections. It owns none of them.
type Service struct {
	itineraries domain.Collection[domain.Itinerary]
	expenses    domain.Collection[domain.Expense]
	bookings    domain.Collection[domain.Booking]
}

// New constructs a Trip Service over the given collections.
func New(
	itineraries domain.Collection[domain.Itinerary],
	expenses domain.Collection[domain.Expense],
	bookings domain.Collection[domain.Booking],
) *Service {
	return &Service{itineraries: itineraries, expenses: expenses, bookings: bookings}
}

// Overview is everything shown for one itinerary.
type Overview struct {
	Itinerary  domain.Itinerary           `json:"itinerary"`
	Expenses   []domain.Expense           `json:"expenses"`
	Bookings   []domain.Booking           `json:"bookings"`
	Budget     settlement.Budget          `json:"budget"`
	Categories []settlement.CategoryTotal `json:"categories"`
}

// Overview gathers the itinerary with the given id and what refers to it.
func (s *Service) Overview(id domain.ID) (Overview, bool) {
	it, ok := s.itineraries.Get(id)
	if !ok {
		return Overview{}, false
	}
	expenses := views.ExpensesFor(s.expenses.List(), it.ID)
	return Overview{
		Itinerary:  it,
		Expenses:   expenses,
		Bookings:   views.BookingsFor(s.bookings.List(), it.ID),
		Budget:     settlement.Overview(expenses, it.Budget),
		Categories: settlement.Summarize(expenses),
	}, true
}

// Settle computes balances for the expenses of one itinerary. When
// travelers is empty, everyone who paid for or shared an expense takes part,
// ordered by the oldest expense naming them.
func (s *Service) Settle(itineraryID domain.ID, travelers []string) (settlement.Result, error) {
	if _, ok := s.itineraries.Get(itineraryID); !ok {
		return settlement.Result{}, fmt.Errorf("settle %s: %w", itineraryID, ErrNotFound)
	}
	expenses := views.ExpensesFor(s.expenses.List(), itineraryID)
	if len(travelers) == 0 {
		travelers = Participants(chronological(expenses))
	}
	return settlement.Compute(expenses, travelers), nil
}

// chronological returns expenses oldest first. Collections list newest
// first, so equal timestamps keep their reversed list order.
func chronological(expenses []domain.Expense) []domain.Expense {
	out := slices.Clone(expenses)
	slices.Reverse(out)
	slices.SortStableFunc(out, func(a, b domain.Expense) int {
		return a.CreatedAt.Compare(b.CreatedAt.Time)
	})
	return out
}

// Participants returns every PaidBy and SplitAmong name in the order they
// first appear in expenses.
func Participants(expenses []domain.Expense) []string {
	seen := map[string]bool{}
	out := []string{}
	add := func(name string) {
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		out = append(out, name)
	}
	for _, e := range expenses {
		add(e.PaidBy)
		for _, name := range e.SplitAmong {
			add(name)
		}
	}
	return out
}

// Deleted reports what DeleteItinerary removed.
type Deleted struct {
	Itinerary bool `json:"itinerary"`
	Expenses  int  `json:"expenses"`
	Bookings  int  `json:"bookings"`
}

// DeleteItinerary deletes the itinerary with the given id. With cascade it
// also deletes the expenses and bookings that refer to it; otherwise they
// are left as orphans. Dependents are deleted even when the itinerary
// itself is already gone.
func (s *Service) DeleteItinerary(id domain.ID, cascade bool) (Deleted, error) {
	var out Deleted
	ok, err := s.itineraries.Delete(id)
	if err != nil {
		return out, err
	}
	out.Itinerary = ok
	if !cascade {
		return out, nil
	}

	for _, e := range views.ExpensesFor(s.expenses.List(), id) {
		ok, err := s.expenses.Delete(e.ID)
		if err != nil {
			return out, fmt.Errorf("delete expense %s: %w", e.ID, err)
		}
		if ok {
			out.Expenses++
		}
	}
	for _, b := range views.BookingsFor(s.bookings.List(), id) {
		ok, err := s.bookings.Delete(b.ID)
		if err != nil {
			return out, fmt.Errorf("delete booking %s: %w", b.ID, err)
		}
		if ok {
			out.Bookings++
		}
	}
	return out, nil
}

// Orphans lists expenses and bookings whose itinerary no longer exists.
func (s *Service) Orphans() views.Orphaned {
	return views.Orphans(s.itineraries.List(), s.expenses.List(), s.bookings.List())
}
