// README: Delivery record persisted with its final freight value.
package delivery

import (
	"time"

	"github.com/shopspring/decimal"

	"freightdesk/internal/modules/pricing"
	"freightdesk/internal/modules/ratetable"
	"freightdesk/internal/types"
)

type Record struct {
	ID                types.ID                  `json:"id"`
	MinuteNumber      string                    `json:"minute_number"`
	ClientID          types.ID                  `json:"client_id"`
	ServiceCategory   ratetable.ServiceCategory `json:"service_category"`
	CargoCategory     pricing.CargoCategory     `json:"cargo_category"`
	WeightKg          float64                   `json:"weight_kg"`
	DeclaredValue     float64                   `json:"declared_value"`
	CityID            types.ID                  `json:"city_id,omitempty"`
	AdditionalCharges []float64                 `json:"additional_charges"`
	HasCollection     bool                      `json:"has_collection"`
	HasDelivery       bool                      `json:"has_delivery"`
	ReceiverName      string                    `json:"receiver_name"`
	Notes             string                    `json:"notes"`
	TotalFreight      decimal.Decimal           `json:"total_freight"`
	CreatedAt         time.Time                 `json:"created_at"`
	UpdatedAt         time.Time                 `json:"updated_at"`
}

// RatingRequest extracts the pricing-relevant fields of the record.
func (r *Record) RatingRequest() pricing.RatingRequest {
	charges := make([]float64, len(r.AdditionalCharges))
	copy(charges, r.AdditionalCharges)
	return pricing.RatingRequest{
		ServiceCategory:          r.ServiceCategory,
		CargoCategory:            r.CargoCategory,
		WeightKg:                 r.WeightKg,
		DeclaredValue:            r.DeclaredValue,
		CityID:                   r.CityID,
		AdditionalServiceCharges: charges,
		HasCollection:            r.HasCollection,
		HasDelivery:              r.HasDelivery,
	}
}

// Clone returns a deep copy.
func (r *Record) Clone() Record {
	cp := *r
	if r.AdditionalCharges != nil {
		cp.AdditionalCharges = append([]float64(nil), r.AdditionalCharges...)
	}
	return cp
}
