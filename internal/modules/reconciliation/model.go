// README: Freight reconciliation states, edits and session views.
package reconciliation

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/shopspring/decimal"

	"freightdesk/internal/modules/delivery"
	"freightdesk/internal/modules/pricing"
	"freightdesk/internal/modules/ratetable"
	"freightdesk/internal/types"
)

type State string

const (
	StateIdle           State = "idle"
	StateAutoComputing  State = "auto_computing"
	StateManualOverride State = "manual_override"
)

var (
	ErrInvalidFreightValue = errors.New("invalid freight value")
	ErrSessionNotFound     = errors.New("reconciliation session not found")
	ErrSessionClosed       = errors.New("reconciliation session closed")
)

// Edit is a partial update of the delivery form. Nil fields are left alone.
type Edit struct {
	MinuteNumber      *string                    `json:"minute_number,omitempty"`
	ClientID          *types.ID                  `json:"client_id,omitempty"`
	ServiceCategory   *ratetable.ServiceCategory `json:"service_category,omitempty"`
	CargoCategory     *pricing.CargoCategory     `json:"cargo_category,omitempty"`
	WeightKg          *float64                   `json:"weight_kg,omitempty"`
	DeclaredValue     *float64                   `json:"declared_value,omitempty"`
	CityID            *types.ID                  `json:"city_id,omitempty"`
	AdditionalCharges *[]float64                 `json:"additional_charges,omitempty"`
	HasCollection     *bool                      `json:"has_collection,omitempty"`
	HasDelivery       *bool                      `json:"has_delivery,omitempty"`
	ReceiverName      *string                    `json:"receiver_name,omitempty"`
	Notes             *string                    `json:"notes,omitempty"`
}

func (e Edit) validate() error {
	if e.ServiceCategory != nil && !e.ServiceCategory.Valid() {
		return fmt.Errorf("%w: unknown service category %q", pricing.ErrInvalidRatingInput, *e.ServiceCategory)
	}
	if e.CargoCategory != nil {
		switch *e.CargoCategory {
		case "", pricing.CargoStandard, pricing.CargoPerishable:
		default:
			return fmt.Errorf("%w: unknown cargo category %q", pricing.ErrInvalidRatingInput, *e.CargoCategory)
		}
	}
	if e.WeightKg != nil && !validAmount(*e.WeightKg) {
		return fmt.Errorf("%w: weight %v", pricing.ErrInvalidRatingInput, *e.WeightKg)
	}
	if e.DeclaredValue != nil && !validAmount(*e.DeclaredValue) {
		return fmt.Errorf("%w: declared value %v", pricing.ErrInvalidRatingInput, *e.DeclaredValue)
	}
	if e.AdditionalCharges != nil {
		for i, c := range *e.AdditionalCharges {
			if !validAmount(c) {
				return fmt.Errorf("%w: additional charge #%d is %v", pricing.ErrInvalidRatingInput, i+1, c)
			}
		}
	}
	return nil
}

// apply writes the edit into r and reports whether a pricing-relevant field changed.
func (e Edit) apply(r *delivery.Record) bool {
	changed := false
	if e.ClientID != nil && *e.ClientID != r.ClientID {
		r.ClientID = *e.ClientID
		changed = true
	}
	if e.ServiceCategory != nil && *e.ServiceCategory != r.ServiceCategory {
		r.ServiceCategory = *e.ServiceCategory
		changed = true
	}
	if e.CargoCategory != nil && *e.CargoCategory != r.CargoCategory {
		r.CargoCategory = *e.CargoCategory
		changed = true
	}
	if e.WeightKg != nil && *e.WeightKg != r.WeightKg {
		r.WeightKg = *e.WeightKg
		changed = true
	}
	if e.DeclaredValue != nil && *e.DeclaredValue != r.DeclaredValue {
		r.DeclaredValue = *e.DeclaredValue
		changed = true
	}
	if e.CityID != nil && *e.CityID != r.CityID {
		r.CityID = *e.CityID
		changed = true
	}
	if e.AdditionalCharges != nil && !slices.Equal(*e.AdditionalCharges, r.AdditionalCharges) {
		r.AdditionalCharges = slices.Clone(*e.AdditionalCharges)
		changed = true
	}
	if e.HasCollection != nil && *e.HasCollection != r.HasCollection {
		r.HasCollection = *e.HasCollection
		changed = true
	}
	if e.HasDelivery != nil && *e.HasDelivery != r.HasDelivery {
		r.HasDelivery = *e.HasDelivery
		changed = true
	}

	if e.MinuteNumber != nil {
		r.MinuteNumber = *e.MinuteNumber
	}
	if e.ReceiverName != nil {
		r.ReceiverName = *e.ReceiverName
	}
	if e.Notes != nil {
		r.Notes = *e.Notes
	}
	return changed
}

func validAmount(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}

// View is a consistent snapshot of a session.
type View struct {
	ID           types.ID         `json:"id"`
	State        State            `json:"state"`
	Displayed    decimal.Decimal  `json:"displayed"`
	LastComputed *decimal.Decimal `json:"last_computed,omitempty"`
	Fallback     bool             `json:"fallback"`
	Warning      string           `json:"warning,omitempty"`
	Pending      bool             `json:"pending"`
	Record       delivery.Record  `json:"record"`
}

// SubmitOutcome mirrors delivery.SubmitResult for a session.
type SubmitOutcome struct {
	NeedsConfirmation bool
	Record            *delivery.Record
}
