package settlement

import (
	"sort"

	"github.com/shopspring/decimal"

	"tripsync/internal/domain"
)

// CategoryTotal is the spend recorded under one category.
type CategoryTotal struct {
	Category domain.Category `json:"category"`
	Total    decimal.Decimal `json:"total"`
	Count    int             `json:"count"`
}

// Summarize totals expenses per category, sorted by category name.
// Expenses without a category are counted as misc.
func Summarize(expenses []domain.Expense) []CategoryTotal {
	byCategory := map[domain.Category]*CategoryTotal{}
	for _, e := range expenses {
		c := e.Category
		if c == "" {
			c = domain.CategoryMisc
		}
		ct, ok := byCategory[c]
		if !ok {
			ct = &CategoryTotal{Category: c}
			byCategory[c] = ct
		}
		ct.Total = ct.Total.Add(decimal.NewFromFloat(e.Amount))
		ct.Count++
	}

	out := make([]CategoryTotal, 0, len(byCategory))
	for _, ct := range byCategory {
		out = append(out, *ct)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out
}

// Budget compares spend with the planned budget.
type Budget struct {
	Budget    float64 `json:"budget"`
	Spent     float64 `json:"spent"`
	Remaining float64 `json:"remaining"`
}

// Overview returns the total spent and what is left of budget, never less
// than zero.
func Overview(expenses []domain.Expense, budget float64) Budget {
	spent := decimal.Zero
	for _, e := range expenses {
		spent = spent.Add(decimal.NewFromFloat(e.Amount))
	}
	remaining := decimal.NewFromFloat(budget).Sub(spent)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}
	return Budget{
		Budget:    budget,
		Spent:     spent.InexactFloat64(),
		Remaining: remaining.InexactFloat64(),
	}
}
