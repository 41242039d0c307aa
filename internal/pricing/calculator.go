// Package pricing derives the quote for a shipment draft.
package pricing

import (
	"math"
	"strings"

	"shipdesk/internal/domain"
)

// Calculator prices drafts against a fixed set of rules. It holds no state
// beyond the rules and is safe for concurrent use.
type Calculator struct {
	rules Rules
}

// NewCalculator creates a Calculator. A zero Rules value is replaced by
// DefaultRules.
func NewCalculator(rules Rules) *Calculator {
	if rules.ServiceMultipliers == nil && rules.Customs == nil {
		rules = DefaultRules()
	}
	return &Calculator{rules: rules}
}

// Price derives the breakdown for d. The customs value is the sum of product
// line values; a draft without products is priced on its declared
// customsValue instead. A non-positive customs value yields the all-zero
// breakdown.
func (c *Calculator) Price(d domain.ShipmentDraft) domain.PriceBreakdown {
	customsValue, lineItems := DeclaredValue(d)
	if lineItems == 0 {
		customsValue = d.CustomsValue
	}
	if customsValue <= 0 || math.IsNaN(customsValue) || math.IsInf(customsValue, 0) {
		return domain.PriceBreakdown{}
	}

	b := domain.PriceBreakdown{
		CustomsValue:  customsValue,
		LineItemCount: lineItems,
	}
	b.BasePrice = customsValue * c.rules.BaseRate
	b.ServiceCharge = b.BasePrice * c.serviceMultiplier(d.ServiceLevel)
	b.CustomsClearance = c.customsClearance(d, customsValue, lineItems)
	if d.PickupType == c.rules.ScheduledPickupType {
		b.PickupCharge = c.pickupFee(d.Shipper.Country)
	}
	if d.InsuranceRequired {
		b.Insurance = customsValue * c.rules.InsuranceRate
	}
	b.Subtotal = b.BasePrice + b.ServiceCharge + b.CustomsClearance + b.PickupCharge + b.Insurance
	b.Tax = b.Subtotal * c.rules.TaxRate
	b.Total = b.Subtotal + b.Tax
	return b
}

// DeclaredValue sums every product's line value and counts the products.
// Non-finite values contribute nothing.
func DeclaredValue(d domain.ShipmentDraft) (float64, int) {
	var total float64
	var count int
	for _, pkg := range d.Packages {
		for i := range pkg.Products {
			count++
			v := pkg.Products[i].LineValue()
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			total += v
		}
	}
	return total, count
}

func (c *Calculator) serviceMultiplier(level string) float64 {
	for name, m := range c.rules.ServiceMultipliers {
		if strings.EqualFold(name, strings.TrimSpace(level)) {
			return m
		}
	}
	return 1.0
}

func (c *Calculator) customsClearance(d domain.ShipmentDraft, customsValue float64, lineItems int) float64 {
	rule, ok := c.rules.Customs[strings.ToUpper(d.Consignee.Country)]
	if !ok {
		rule = c.rules.DefaultCustoms
	}
	fee := rule.Base
	if customsValue > rule.Threshold {
		fee += rule.FormalFee
	}
	if extra := lineItems - c.rules.FreeLineItems; extra > 0 {
		fee += rule.ExtraLineItemFee * float64(extra)
	}
	if d.SpecialCommodity || d.DangerousGoods {
		fee += rule.SpecialCommodityFee
	}
	return math.Round(fee)
}

func (c *Calculator) pickupFee(origin string) float64 {
	if fee, ok := c.rules.PickupFees[strings.ToUpper(origin)]; ok {
		return fee
	}
	return c.rules.DefaultPickupFee
}
