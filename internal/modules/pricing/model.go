// README: Rating request/result definitions and input validation.
package pricing

import (
	"errors"
	"fmt"
	"math"

	"freightdesk/internal/modules/ratetable"
	"freightdesk/internal/types"
)

type CargoCategory string

const (
	CargoStandard   CargoCategory = "standard"
	CargoPerishable CargoCategory = "perishable"
)

var (
	// ErrNoRateTableAssigned: the client has no usable pricing plan. Non-fatal.
	ErrNoRateTableAssigned = errors.New("no rate table assigned")
	// ErrInvalidRatingInput: NaN/negative weight, negative distance and similar. The edit is rejected.
	ErrInvalidRatingInput = errors.New("invalid rating input")
	// ErrLookupFailure: a table or city fetch failed. Non-fatal.
	ErrLookupFailure = errors.New("rating lookup failed")
)

// RatingRequest is built fresh for every computation.
type RatingRequest struct {
	ServiceCategory          ratetable.ServiceCategory
	CargoCategory            CargoCategory
	WeightKg                 float64
	DeclaredValue            float64
	CityID                   types.ID
	CityDistanceKm           *float64
	AdditionalServiceCharges []float64
	HasCollection            bool
	HasDelivery              bool
}

func (r RatingRequest) Perishable() bool {
	return r.CargoCategory == CargoPerishable
}

// Quote is what the calculator hands back to the form.
type Quote struct {
	Amount types.Money
	// Fallback is set when the basic fallback rate replaced the table result.
	Fallback bool
	// Warning carries a non-fatal condition the UI should surface
	// (ErrNoRateTableAssigned or an ErrLookupFailure wrap).
	Warning error
}

// Validate rejects malformed numeric input instead of coercing it.
func (r RatingRequest) Validate() error {
	if !r.ServiceCategory.Valid() {
		return fmt.Errorf("%w: unknown service category %q", ErrInvalidRatingInput, r.ServiceCategory)
	}
	switch r.CargoCategory {
	case "", CargoStandard, CargoPerishable:
	default:
		return fmt.Errorf("%w: unknown cargo category %q", ErrInvalidRatingInput, r.CargoCategory)
	}
	if !finiteNonNegative(r.WeightKg) {
		return fmt.Errorf("%w: weight %v", ErrInvalidRatingInput, r.WeightKg)
	}
	if !finiteNonNegative(r.DeclaredValue) {
		return fmt.Errorf("%w: declared value %v", ErrInvalidRatingInput, r.DeclaredValue)
	}
	if r.CityDistanceKm != nil && !finiteNonNegative(*r.CityDistanceKm) {
		return fmt.Errorf("%w: distance %v", ErrInvalidRatingInput, *r.CityDistanceKm)
	}
	for i, c := range r.AdditionalServiceCharges {
		if !finiteNonNegative(c) {
			return fmt.Errorf("%w: additional charge #%d is %v", ErrInvalidRatingInput, i+1, c)
		}
	}
	return nil
}

func finiteNonNegative(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}
