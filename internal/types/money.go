// README: Money helpers shared by rating, deliveries and the HTTP layer.
package types

import (
	"math"

	"github.com/shopspring/decimal"
)

// Money amounts are carried as decimals and rounded to cents at the edges.
type Money = decimal.Decimal

var hundred = decimal.NewFromInt(100)

// MoneyFromFloat converts a float read from storage or JSON. NaN and Inf become zero.
func MoneyFromFloat(v float64) Money {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(v)
}

// Cents rounds half away from zero at the second decimal place.
func Cents(m Money) Money {
	return m.Round(2)
}

// Percent returns pct% of m.
func Percent(m Money, pct float64) Money {
	return m.Mul(MoneyFromFloat(pct)).Div(hundred)
}
