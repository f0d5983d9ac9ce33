package pricing

import (
	"github.com/shopspring/decimal"

	"freightdesk/internal/types"
)

// Basic fallback constants. These are invoiced amounts; keep them as they are.
var (
	fallbackStandardBase   = decimal.NewFromInt(15)
	fallbackPerishableBase = decimal.NewFromInt(25)
	fallbackFloor          = decimal.NewFromInt(50)
)

func weightTierMultiplier(weightKg float64) decimal.Decimal {
	switch {
	case weightKg <= 5:
		return decimal.NewFromInt(1)
	case weightKg <= 10:
		return decimal.RequireFromString("1.5")
	case weightKg <= 20:
		return decimal.NewFromInt(2)
	default:
		return decimal.NewFromInt(3)
	}
}

// BasicFallbackRate is the safety net used when a table yields nothing (or there is no table).
func BasicFallbackRate(weightKg float64, cargo CargoCategory) types.Money {
	base := fallbackStandardBase
	if cargo == CargoPerishable {
		base = fallbackPerishableBase
	}
	return types.Cents(decimal.Max(weightTierMultiplier(weightKg).Mul(base), fallbackFloor))
}
