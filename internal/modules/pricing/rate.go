// README: Rate resolver: table + request -> freight amount. Pure.
package pricing

import (
	"github.com/shopspring/decimal"

	"freightdesk/internal/modules/ratetable"
	"freightdesk/internal/types"
)

var (
	perishableSurcharge = decimal.RequireFromString("1.2")
	bothLegsFactor      = decimal.NewFromInt(2)
	collectionOnly      = decimal.RequireFromString("0.7")
)

// Rate prices a request against a normalized table. It never injects business
// minimums beyond the base rate; the result is floored at zero and rounded to cents.
func Rate(table *ratetable.RateTable, req RatingRequest) types.Money {
	category := req.ServiceCategory
	base := types.MoneyFromFloat(table.MinimumRate[category])
	limit := table.WeightLimitKg(category)

	amount := base
	if req.WeightKg > limit {
		excessRate := types.MoneyFromFloat(table.ExcessWeightRate[category.WeightClass()])
		excessKg := types.MoneyFromFloat(req.WeightKg).Sub(types.MoneyFromFloat(limit))
		amount = amount.Add(excessKg.Mul(excessRate))
	}

	// Distance is folded into the total, never itemized.
	if category == ratetable.ServiceDoorToDoorInterior && req.CityDistanceKm != nil && table.DoorToDoor != nil {
		perKm := types.MoneyFromFloat(table.DoorToDoor.RatePerKm)
		amount = amount.Add(types.MoneyFromFloat(*req.CityDistanceKm).Mul(perKm))
	}

	if req.Perishable() {
		amount = amount.Mul(perishableSurcharge)
	}

	if req.DeclaredValue > 0 {
		rate := types.MoneyFromFloat(table.InsuranceRate(req.Perishable()))
		amount = amount.Add(types.MoneyFromFloat(req.DeclaredValue).Mul(rate))
	}

	for _, charge := range req.AdditionalServiceCharges {
		amount = amount.Add(types.MoneyFromFloat(charge))
	}

	switch {
	case req.HasCollection && req.HasDelivery:
		amount = amount.Mul(bothLegsFactor)
	case req.HasCollection:
		amount = amount.Mul(collectionOnly)
	}

	if table.DiscountPercent > 0 {
		amount = amount.Sub(types.Percent(amount, table.DiscountPercent))
	}

	amount = amount.Mul(types.MoneyFromFloat(table.MultiplierOrDefault()))

	if amount.IsNegative() {
		return decimal.Zero
	}
	return types.Cents(amount)
}
