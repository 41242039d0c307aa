// Package reconcile merges best-effort extraction payloads into the canonical
// shipment draft.
//
// Merge is a total function: malformed parts of a payload are treated as
// absent and never fail the merge. Identical inputs produce identical drafts;
// the only exception is identifiers synthesized for brand-new packages and
// products.
package reconcile

import (
	"strings"

	"shipdesk/internal/domain"
	"shipdesk/internal/payload"
)

var (
	shipperKeys      = []string{"shipper", "sender", "exporter"}
	consigneeKeys    = []string{"consignee", "receiver", "recipient", "importer"}
	customsValueKeys = []string{"customsValue", "declaredValue", "invoiceTotal"}
)

type stringScalar struct {
	path    string
	aliases []string
	ref     func(*domain.ShipmentDraft) *string
	norm    func(string) string
}

var stringScalars = []stringScalar{
	{"title", []string{"title", "shipmentTitle", "reference"}, func(d *domain.ShipmentDraft) *string { return &d.Title }, nil},
	{"mode", []string{"mode", "transportMode", "modeOfTransport", "shippingMode"}, func(d *domain.ShipmentDraft) *string { return &d.TransportMode }, nil},
	{"shipmentType", []string{"shipmentType"}, func(d *domain.ShipmentDraft) *string { return &d.ShipmentType }, nil},
	{"currency", []string{"currency", "currencyCode"}, func(d *domain.ShipmentDraft) *string { return &d.Currency }, NormalizeCurrency},
	{"serviceLevel", []string{"serviceLevel", "service"}, func(d *domain.ShipmentDraft) *string { return &d.ServiceLevel }, NormalizeServiceLevel},
	{"pickupType", []string{"pickupType"}, func(d *domain.ShipmentDraft) *string { return &d.PickupType }, nil},
	{"pickupDate", []string{"pickupDate"}, func(d *domain.ShipmentDraft) *string { return &d.PickupDate }, nil},
	{"pickupTime", []string{"pickupTime", "pickupWindow"}, func(d *domain.ShipmentDraft) *string { return &d.PickupTime }, nil},
	{"dropoffDate", []string{"dropoffDate"}, func(d *domain.ShipmentDraft) *string { return &d.DropoffDate }, nil},
	{"dropoffTime", []string{"dropoffTime", "dropoffWindow"}, func(d *domain.ShipmentDraft) *string { return &d.DropoffTime }, nil},
	{"incoterm", []string{"incoterm", "incoterms"}, func(d *domain.ShipmentDraft) *string { return &d.Incoterm }, strings.ToUpper},
	{"billTo", []string{"billTo"}, func(d *domain.ShipmentDraft) *string { return &d.BillTo }, nil},
	{"paymentTiming", []string{"paymentTiming", "paymentTerms"}, func(d *domain.ShipmentDraft) *string { return &d.PaymentTiming }, nil},
	{"paymentMethod", []string{"paymentMethod"}, func(d *domain.ShipmentDraft) *string { return &d.PaymentMethod }, nil},
	{"reasonForExport", []string{"reasonForExport", "exportReason"}, func(d *domain.ShipmentDraft) *string { return &d.ReasonForExport }, NormalizeExportReason},
	{"specialInstructions", []string{"specialInstructions", "instructions", "notes"}, func(d *domain.ShipmentDraft) *string { return &d.SpecialInstructions }, nil},
}

type boolScalar struct {
	path    string
	aliases []string
	ref     func(*domain.ShipmentDraft) *bool
}

var boolScalars = []boolScalar{
	{"insuranceRequired", []string{"insuranceRequired", "insurance"}, func(d *domain.ShipmentDraft) *bool { return &d.InsuranceRequired }},
	{"dangerousGoods", []string{"dangerousGoods", "hazmat", "isDangerous"}, func(d *domain.ShipmentDraft) *bool { return &d.DangerousGoods }},
	{"specialCommodity", []string{"specialCommodity"}, func(d *domain.ShipmentDraft) *bool { return &d.SpecialCommodity }},
}

// TopLevelKeys lists every top-level payload key Merge reads, aliases
// included. Boolean flags are left out: on their own they do not describe a
// shipment.
func TopLevelKeys() []string {
	var keys []string
	for _, group := range [][]string{
		shipperKeys, consigneeKeys, customsValueKeys,
		packagesKeys, productsKeys, productKeys, packageKeys,
	} {
		keys = append(keys, group...)
	}
	for _, s := range stringScalars {
		keys = append(keys, s.aliases...)
	}
	return keys
}

// Merge folds an extracted payload into current and returns the new draft
// together with every field path the payload overwrote. The path list is
// meant to replace the previous provenance map, not to be unioned with it.
//
// Parties merge field by field. Packages follow exactly one detected shape
// (see DetectShape); the winning shape replaces the current packages.
func Merge(current domain.ShipmentDraft, p payload.Payload) (domain.ShipmentDraft, []string) {
	prov := NewProvenance()
	merged := current.Clone()
	merged.Normalize()

	obj, ok := payload.AsObject(p)
	if !ok {
		return merged, prov.Paths()
	}

	shipper, _ := obj.Object(shipperKeys...)
	merged.Shipper = mergeParty(merged.Shipper, shipper, "shipper", false, prov)

	consignee, _ := obj.Object(consigneeKeys...)
	merged.Consignee = mergeParty(merged.Consignee, consignee, "consignee", true, prov)

	merged.Packages = mergePackages(merged.Packages, DetectShape(obj), merged.Shipper.Country, prov)

	if v, ok := obj.Number(customsValueKeys...); ok {
		merged.CustomsValue = v
		prov.Mark("customsValue")
	}

	for _, s := range stringScalars {
		v, ok := obj.String(s.aliases...)
		if !ok {
			continue
		}
		if s.norm != nil {
			v = s.norm(v)
		}
		*s.ref(&merged) = v
		prov.Mark(s.path)
	}

	// Presence of the key decides, so an explicit false is still a fill.
	for _, b := range boolScalars {
		v, ok := obj.Bool(b.aliases...)
		if !ok {
			continue
		}
		*b.ref(&merged) = v
		prov.Mark(b.path)
	}

	return merged, prov.Paths()
}
