package settlement

import (
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// DefaultCurrency is used when no currency is configured.
const DefaultCurrency = "USD"

// Format renders amount in currency using the currency's symbol, separators
// and number of minor digits. Unknown codes render as "<amount> <code>"
// with two decimals.
func Format(amount float64, currency string) string {
	code := strings.ToUpper(strings.TrimSpace(currency))
	if code == "" {
		code = DefaultCurrency
	}
	value := decimal.NewFromFloat(amount)
	cur := money.GetCurrency(code)
	if cur == nil {
		return value.StringFixed(2) + " " + code
	}
	minor := value.Round(int32(cur.Fraction)).Shift(int32(cur.Fraction))
	return cur.Formatter().Format(minor.IntPart())
}
