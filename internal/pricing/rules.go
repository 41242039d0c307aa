package pricing

import "shipdesk/internal/domain"

// CustomsRule is the clearance fee schedule for one destination country.
type CustomsRule struct {
	Base                float64 `json:"base"`
	Threshold           float64 `json:"threshold"`
	FormalFee           float64 `json:"formalFee"`
	ExtraLineItemFee    float64 `json:"extraLineItemFee"`
	SpecialCommodityFee float64 `json:"specialCommodityFee"`
}

// Rules holds every constant the calculator uses.
type Rules struct {
	BaseRate            float64
	TaxRate             float64
	InsuranceRate       float64
	FreeLineItems       int
	ServiceMultipliers  map[string]float64
	Customs             map[string]CustomsRule
	DefaultCustoms      CustomsRule
	PickupFees          map[string]float64
	DefaultPickupFee    float64
	ScheduledPickupType string
}

// DefaultRules returns the static rule tables.
func DefaultRules() Rules {
	return Rules{
		BaseRate:      0.05,
		TaxRate:       0.18,
		InsuranceRate: 0.01,
		FreeLineItems: 5,
		ServiceMultipliers: map[string]float64{
			domain.ServiceLevelStandard: 1.0,
			domain.ServiceLevelExpress:  1.5,
			domain.ServiceLevelEconomy:  0.8,
			domain.ServiceLevelFreight:  0.7,
		},
		Customs: map[string]CustomsRule{
			"US": {Base: 35, Threshold: 2500, FormalFee: 150, ExtraLineItemFee: 10, SpecialCommodityFee: 75},
			"CA": {Base: 30, Threshold: 3300, FormalFee: 120, ExtraLineItemFee: 10, SpecialCommodityFee: 60},
			"GB": {Base: 25, Threshold: 1000, FormalFee: 95, ExtraLineItemFee: 8, SpecialCommodityFee: 60},
			"DE": {Base: 25, Threshold: 1000, FormalFee: 90, ExtraLineItemFee: 8, SpecialCommodityFee: 55},
			"AU": {Base: 40, Threshold: 1000, FormalFee: 110, ExtraLineItemFee: 12, SpecialCommodityFee: 80},
			"CN": {Base: 30, Threshold: 5000, FormalFee: 300, ExtraLineItemFee: 20, SpecialCommodityFee: 150},
			"IN": {Base: 50, Threshold: 10000, FormalFee: 2000, ExtraLineItemFee: 100, SpecialCommodityFee: 500},
		},
		DefaultCustoms: CustomsRule{Base: 25, Threshold: 2500, FormalFee: 100, ExtraLineItemFee: 10, SpecialCommodityFee: 50},
		PickupFees: map[string]float64{
			"US": 35,
			"CA": 30,
			"GB": 25,
			"DE": 25,
			"AU": 40,
			"CN": 20,
			"IN": 15,
		},
		DefaultPickupFee:    30,
		ScheduledPickupType: domain.PickupTypeScheduled,
	}
}
