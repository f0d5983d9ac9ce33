// README: Folds the legacy flat shape into the canonical nested table.
package ratetable

import "math"

// Normalize returns the canonical form of t: every category and weight class carries
// a rate, insurance and door-to-door settings are filled with their defaults, adversarial
// values are clamped and the legacy flat fields are dropped. Normalize is idempotent
// and never mutates t.
func Normalize(t RateTable) RateTable {
	out := RateTable{
		ID:               t.ID,
		Name:             t.Name,
		Description:      t.Description,
		MinimumRate:      make(map[ServiceCategory]float64, len(Categories)),
		ExcessWeightRate: make(map[WeightRateClass]float64, len(WeightClasses)),
		DiscountPercent:  clamp(t.DiscountPercent, 0, maxDiscountPercent),
	}

	for _, c := range Categories {
		v := nonNegative(t.MinimumRate[c])
		if v == 0 && t.Legacy != nil {
			v = nonNegative(t.Legacy.minimum(c))
		}
		out.MinimumRate[c] = v
	}
	for _, w := range WeightClasses {
		v := nonNegative(t.ExcessWeightRate[w])
		if v == 0 && t.Legacy != nil {
			v = nonNegative(t.Legacy.excess(w))
		}
		out.ExcessWeightRate[w] = v
	}

	d2d := DoorToDoor{MaxWeight: DefaultDoorToDoorMaxKg}
	if t.DoorToDoor != nil {
		d2d.RatePerKm = nonNegative(t.DoorToDoor.RatePerKm)
		if w := nonNegative(t.DoorToDoor.MaxWeight); w > 0 {
			d2d.MaxWeight = w
		}
	}
	out.DoorToDoor = &d2d

	standard := DefaultInsuranceRate
	if t.Insurance != nil && t.Insurance.StandardRate != nil {
		standard = nonNegative(*t.Insurance.StandardRate)
	}
	perishable := standard
	if t.Insurance != nil && t.Insurance.PerishableRate != nil {
		perishable = nonNegative(*t.Insurance.PerishableRate)
	}
	out.Insurance = &Insurance{StandardRate: &standard, PerishableRate: &perishable}

	multiplier := t.MultiplierOrDefault()
	if math.IsNaN(multiplier) || math.IsInf(multiplier, 0) {
		multiplier = DefaultMultiplier
	}
	out.Multiplier = &multiplier
	return out
}

// nonNegative also maps NaN and +Inf to zero.
func nonNegative(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
