// README: Rate table definition shared by every client pricing plan.
package ratetable

import (
	"errors"

	"freightdesk/internal/types"
)

type ServiceCategory string

const (
	ServiceStandard             ServiceCategory = "standard"
	ServiceEmergency            ServiceCategory = "emergency"
	ServiceSaturday             ServiceCategory = "saturday"
	ServiceExclusive            ServiceCategory = "exclusive"
	ServiceDifficultAccess      ServiceCategory = "difficultAccess"
	ServiceMetropolitanRegion   ServiceCategory = "metropolitanRegion"
	ServiceSundayHoliday        ServiceCategory = "sundayHoliday"
	ServiceNormalBiological     ServiceCategory = "normalBiological"
	ServiceInfectiousBiological ServiceCategory = "infectiousBiological"
	ServiceTrackedVehicle       ServiceCategory = "trackedVehicle"
	ServiceDoorToDoorInterior   ServiceCategory = "doorToDoorInterior"
	ServiceReshipment           ServiceCategory = "reshipment"
)

type WeightRateClass string

const (
	WeightStandard   WeightRateClass = "standard"
	WeightPremium    WeightRateClass = "premium"
	WeightBiological WeightRateClass = "biological"
	WeightReshipment WeightRateClass = "reshipment"
)

var ErrNotFound = errors.New("rate table not found")

const (
	DefaultInsuranceRate   = 0.01
	DefaultDoorToDoorMaxKg = 100.0
	DefaultMultiplier      = 1.0
	maxDiscountPercent     = 100.0
)

type DoorToDoor struct {
	RatePerKm float64 `json:"ratePerKm"`
	// MaxWeight is the free-weight allowance for door-to-door interior service.
	// Weight above it is charged at the excess rate; unset means 100 kg.
	MaxWeight float64 `json:"maxWeight"`
}

// Insurance rates are fractions of the declared value. Nil means "not configured".
type Insurance struct {
	StandardRate   *float64 `json:"standardRate,omitempty"`
	PerishableRate *float64 `json:"perishableRate,omitempty"`
}

// LegacyRates is the flat historical table shape. Tables created before the nested
// layout still carry their constants here; Normalize folds them into the nested maps.
type LegacyRates struct {
	StandardMinimum             float64 `json:"standardMinimum,omitempty"`
	EmergencyMinimum            float64 `json:"emergencyMinimum,omitempty"`
	SaturdayMinimum             float64 `json:"saturdayMinimum,omitempty"`
	ExclusiveMinimum            float64 `json:"exclusiveMinimum,omitempty"`
	DifficultAccessMinimum      float64 `json:"difficultAccessMinimum,omitempty"`
	MetropolitanRegionMinimum   float64 `json:"metropolitanRegionMinimum,omitempty"`
	SundayHolidayMinimum        float64 `json:"sundayHolidayMinimum,omitempty"`
	NormalBiologicalMinimum     float64 `json:"normalBiologicalMinimum,omitempty"`
	InfectiousBiologicalMinimum float64 `json:"infectiousBiologicalMinimum,omitempty"`
	TrackedVehicleMinimum       float64 `json:"trackedVehicleMinimum,omitempty"`
	DoorToDoorInteriorMinimum   float64 `json:"doorToDoorInteriorMinimum,omitempty"`
	ReshipmentMinimum           float64 `json:"reshipmentMinimum,omitempty"`

	StandardExcessKg   float64 `json:"standardExcessKg,omitempty"`
	PremiumExcessKg    float64 `json:"premiumExcessKg,omitempty"`
	BiologicalExcessKg float64 `json:"biologicalExcessKg,omitempty"`
	ReshipmentExcessKg float64 `json:"reshipmentExcessKg,omitempty"`
}

// RateTable holds every constant needed to price a delivery for one pricing plan.
// The rating engine treats it as read-only.
type RateTable struct {
	ID               types.ID                    `json:"id"`
	Name             string                      `json:"name"`
	Description      string                      `json:"description,omitempty"`
	MinimumRate      map[ServiceCategory]float64 `json:"minimumRate"`
	ExcessWeightRate map[WeightRateClass]float64 `json:"excessWeightRate"`
	DoorToDoor       *DoorToDoor                 `json:"doorToDoor,omitempty"`
	Insurance        *Insurance                  `json:"insurance,omitempty"`
	DiscountPercent  float64                     `json:"discountPercent,omitempty"`
	Multiplier       *float64                    `json:"multiplier,omitempty"`
	Legacy           *LegacyRates                `json:"legacy,omitempty"`
}

// MultiplierOrDefault returns the configured multiplier, or 1.
func (t *RateTable) MultiplierOrDefault() float64 {
	if t.Multiplier == nil || *t.Multiplier <= 0 {
		return DefaultMultiplier
	}
	return *t.Multiplier
}

// InsuranceRate returns the rate applied to the declared value for the cargo kind.
func (t *RateTable) InsuranceRate(perishable bool) float64 {
	if t.Insurance == nil || t.Insurance.StandardRate == nil {
		return DefaultInsuranceRate
	}
	if perishable && t.Insurance.PerishableRate != nil {
		return *t.Insurance.PerishableRate
	}
	return *t.Insurance.StandardRate
}

func (l *LegacyRates) minimum(c ServiceCategory) float64 {
	switch c {
	case ServiceStandard:
		return l.StandardMinimum
	case ServiceEmergency:
		return l.EmergencyMinimum
	case ServiceSaturday:
		return l.SaturdayMinimum
	case ServiceExclusive:
		return l.ExclusiveMinimum
	case ServiceDifficultAccess:
		return l.DifficultAccessMinimum
	case ServiceMetropolitanRegion:
		return l.MetropolitanRegionMinimum
	case ServiceSundayHoliday:
		return l.SundayHolidayMinimum
	case ServiceNormalBiological:
		return l.NormalBiologicalMinimum
	case ServiceInfectiousBiological:
		return l.InfectiousBiologicalMinimum
	case ServiceTrackedVehicle:
		return l.TrackedVehicleMinimum
	case ServiceDoorToDoorInterior:
		return l.DoorToDoorInteriorMinimum
	case ServiceReshipment:
		return l.ReshipmentMinimum
	}
	return 0
}

func (l *LegacyRates) excess(w WeightRateClass) float64 {
	switch w {
	case WeightStandard:
		return l.StandardExcessKg
	case WeightPremium:
		return l.PremiumExcessKg
	case WeightBiological:
		return l.BiologicalExcessKg
	case WeightReshipment:
		return l.ReshipmentExcessKg
	}
	return 0
}
