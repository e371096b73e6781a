package settlement

import (
	"github.com/shopspring/decimal"

	"tripsync/internal/domain"
)

// Epsilon is the smallest difference from the average that is reported.
const Epsilon = 0.01

// Direction tells whether a traveler pays into or receives from the group.
type Direction string

const (
	// Owes marks a traveler whose share is above the average.
	Owes Direction = "from"
	// Owed marks a traveler whose share is below the average.
	Owed Direction = "to"
)

// Entry is one traveler's imbalance.
type Entry struct {
	Person    string    `json:"person"`
	Direction Direction `json:"direction"`
	Amount    float64   `json:"amount"`
}

// Rounded returns Amount with exactly two decimals.
func (e Entry) Rounded() string {
	return decimal.NewFromFloat(e.Amount).StringFixed(2)
}

// Result is the outcome of Compute.
type Result struct {
	TotalAmount float64            `json:"totalAmount"`
	Splits      map[string]float64 `json:"splits"`
	// People lists the keys of Splits in report order.
	People           []string `json:"people"`
	AveragePerPerson float64  `json:"averagePerPerson"`
	Settlements      []Entry  `json:"settlements"`
}

// Compute splits every expense equally among its SplitAmong names and
// compares each traveler's share with the average over travelers.
//
// An expense with an empty SplitAmong still counts towards TotalAmount but
// is attributed to nobody. Names found in SplitAmong but not in travelers
// get a bucket too and are reported after the travelers, in the order they
// first appear. Balances are reported as is; debts are not netted between
// pairs of travelers.
func Compute(expenses []domain.Expense, travelers []string) Result {
	res := Result{
		Splits:      make(map[string]float64, len(travelers)),
		People:      make([]string, 0, len(travelers)),
		Settlements: []Entry{},
	}
	for _, t := range travelers {
		if _, ok := res.Splits[t]; ok {
			continue
		}
		res.Splits[t] = 0
		res.People = append(res.People, t)
	}

	for _, e := range expenses {
		res.TotalAmount += e.Amount
		divisor := len(e.SplitAmong)
		if divisor == 0 {
			divisor = 1
		}
		share := e.Amount / float64(divisor)
		for _, name := range e.SplitAmong {
			if _, ok := res.Splits[name]; !ok {
				res.People = append(res.People, name)
			}
			res.Splits[name] += share
		}
	}

	if len(travelers) == 0 {
		return res
	}
	var sum float64
	for _, name := range res.People {
		sum += res.Splits[name]
	}
	res.AveragePerPerson = sum / float64(len(travelers))

	for _, name := range res.People {
		diff := res.Splits[name] - res.AveragePerPerson
		switch {
		case diff > Epsilon:
			res.Settlements = append(res.Settlements, Entry{Person: name, Direction: Owes, Amount: diff})
		case diff < -Epsilon:
			res.Settlements = append(res.Settlements, Entry{Person: name, Direction: Owed, Amount: -diff})
		}
	}
	return res
}
