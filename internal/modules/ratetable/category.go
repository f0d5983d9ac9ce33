// README: Static service category -> weight class / free weight allowance table.
package ratetable

type categoryRule struct {
	Class         WeightRateClass
	WeightLimitKg float64
}

// Bulk services (tracked vehicle, door-to-door interior) get a 100kg free allowance.
var categoryRules = map[ServiceCategory]categoryRule{
	ServiceStandard:             {WeightStandard, 10},
	ServiceEmergency:            {WeightStandard, 10},
	ServiceSaturday:             {WeightStandard, 10},
	ServiceExclusive:            {WeightStandard, 10},
	ServiceDifficultAccess:      {WeightStandard, 10},
	ServiceMetropolitanRegion:   {WeightStandard, 10},
	ServiceSundayHoliday:        {WeightStandard, 10},
	ServiceNormalBiological:     {WeightBiological, 10},
	ServiceInfectiousBiological: {WeightBiological, 10},
	ServiceTrackedVehicle:       {WeightStandard, 100},
	ServiceDoorToDoorInterior:   {WeightStandard, 100},
	ServiceReshipment:           {WeightReshipment, 10},
}

// Categories lists every supported service category in a stable order.
var Categories = []ServiceCategory{
	ServiceStandard,
	ServiceEmergency,
	ServiceSaturday,
	ServiceExclusive,
	ServiceDifficultAccess,
	ServiceMetropolitanRegion,
	ServiceSundayHoliday,
	ServiceNormalBiological,
	ServiceInfectiousBiological,
	ServiceTrackedVehicle,
	ServiceDoorToDoorInterior,
	ServiceReshipment,
}

var WeightClasses = []WeightRateClass{WeightStandard, WeightPremium, WeightBiological, WeightReshipment}

func (c ServiceCategory) Valid() bool {
	_, ok := categoryRules[c]
	return ok
}

// WeightClass returns the excess-weight bucket the category is billed under.
func (c ServiceCategory) WeightClass() WeightRateClass {
	if r, ok := categoryRules[c]; ok {
		return r.Class
	}
	return WeightStandard
}

// WeightLimitKg is the weight up to which only the base rate applies.
// For door-to-door interior the table's configured maximum weight wins.
func (t *RateTable) WeightLimitKg(c ServiceCategory) float64 {
	if c == ServiceDoorToDoorInterior && t.DoorToDoor != nil && t.DoorToDoor.MaxWeight > 0 {
		return t.DoorToDoor.MaxWeight
	}
	if r, ok := categoryRules[c]; ok {
		return r.WeightLimitKg
	}
	return 10
}
