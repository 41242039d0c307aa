package domain

import (
	"math"
	"time"
)

// Party is a shipper or consignee contact/address record.
type Party struct {
	Company     string `json:"company"`
	ContactName string `json:"contactName"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	Address1    string `json:"address1"`
	Address2    string `json:"address2"`
	City        string `json:"city"`
	State       string `json:"state"`
	PostalCode  string `json:"postalCode"`
	Country     string `json:"country"`
	TaxID       string `json:"taxId"`
}

// Product is a single line item packed inside a Package.
type Product struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Description     string  `json:"description"`
	HSCode          string  `json:"hsCode"`
	Category        string  `json:"category"`
	UOM             string  `json:"uom"`
	Qty             float64 `json:"qty"`
	UnitPrice       float64 `json:"unitPrice"`
	TotalValue      float64 `json:"totalValue"`
	TotalOverridden bool    `json:"totalOverridden,omitempty"`
	OriginCountry   string  `json:"originCountry"`
	ReasonForExport string  `json:"reasonForExport"`
}

// LineValue returns the declared value of the line: the stored total when it
// is finite, otherwise qty*unitPrice.
func (p *Product) LineValue() float64 {
	if !math.IsNaN(p.TotalValue) && !math.IsInf(p.TotalValue, 0) {
		return p.TotalValue
	}
	return p.Qty * p.UnitPrice
}

// Recompute refreshes TotalValue from qty and unit price unless the total
// was supplied explicitly.
func (p *Product) Recompute() {
	if p.TotalOverridden {
		return
	}
	p.TotalValue = p.Qty * p.UnitPrice
}

// Package is a physical package with dimensions and its contents.
type Package struct {
	ID            string    `json:"id"`
	Type          string    `json:"type"`
	Length        float64   `json:"length"`
	Width         float64   `json:"width"`
	Height        float64   `json:"height"`
	DimensionUnit string    `json:"dimensionUnit"`
	Weight        float64   `json:"weight"`
	WeightUnit    string    `json:"weightUnit"`
	Stackable     bool      `json:"stackable"`
	Products      []Product `json:"products"`
}

// ShipmentDraft is the in-progress, unsubmitted shipment record.
type ShipmentDraft struct {
	Title               string    `json:"title"`
	TransportMode       string    `json:"mode"`
	ShipmentType        string    `json:"shipmentType"`
	Shipper             Party     `json:"shipper"`
	Consignee           Party     `json:"consignee"`
	Packages            []Package `json:"packages"`
	CustomsValue        float64   `json:"customsValue"`
	Currency            string    `json:"currency"`
	ServiceLevel        string    `json:"serviceLevel"`
	PickupType          string    `json:"pickupType"`
	PickupDate          string    `json:"pickupDate"`
	PickupTime          string    `json:"pickupTime"`
	DropoffDate         string    `json:"dropoffDate"`
	DropoffTime         string    `json:"dropoffTime"`
	Incoterm            string    `json:"incoterm"`
	BillTo              string    `json:"billTo"`
	PaymentTiming       string    `json:"paymentTiming"`
	PaymentMethod       string    `json:"paymentMethod"`
	ReasonForExport     string    `json:"reasonForExport"`
	SpecialInstructions string    `json:"specialInstructions"`
	InsuranceRequired   bool      `json:"insuranceRequired"`
	DangerousGoods      bool      `json:"dangerousGoods"`
	SpecialCommodity    bool      `json:"specialCommodity"`
}

// NewShipmentDraft returns the canonical empty draft.
func NewShipmentDraft() ShipmentDraft {
	return ShipmentDraft{Packages: []Package{}}
}

// Normalize restores structural invariants after an external write: packages
// and product lists are never nil and derived product totals are current.
func (d *ShipmentDraft) Normalize() {
	if d.Packages == nil {
		d.Packages = []Package{}
	}
	for i := range d.Packages {
		if d.Packages[i].Products == nil {
			d.Packages[i].Products = []Product{}
		}
		for j := range d.Packages[i].Products {
			d.Packages[i].Products[j].Recompute()
		}
	}
}

// Clone returns a deep copy of the draft.
func (d ShipmentDraft) Clone() ShipmentDraft {
	out := d
	out.Packages = make([]Package, len(d.Packages))
	for i, pkg := range d.Packages {
		out.Packages[i] = pkg
		out.Packages[i].Products = append([]Product{}, pkg.Products...)
	}
	return out
}

// Products returns every product across all packages in package order.
func (d *ShipmentDraft) Products() []Product {
	var out []Product
	for _, pkg := range d.Packages {
		out = append(out, pkg.Products...)
	}
	return out
}

// ProvenanceMap records which field paths were auto-filled by extraction.
type ProvenanceMap map[string]bool

// Clone returns a copy of the map.
func (p ProvenanceMap) Clone() ProvenanceMap {
	out := make(ProvenanceMap, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// DraftState is everything the draft store owns.
type DraftState struct {
	Mode       EntryMode     `json:"mode"`
	Draft      ShipmentDraft `json:"shipmentDraft"`
	Provenance ProvenanceMap `json:"provenanceMap"`
}

// NewDraftState returns the canonical empty state.
func NewDraftState() DraftState {
	return DraftState{
		Mode:       EntryModeManual,
		Draft:      NewShipmentDraft(),
		Provenance: ProvenanceMap{},
	}
}

// Clone returns a deep copy of the state.
func (s DraftState) Clone() DraftState {
	return DraftState{
		Mode:       s.Mode,
		Draft:      s.Draft.Clone(),
		Provenance: s.Provenance.Clone(),
	}
}

// DraftRecord is the persisted form of a DraftState.
type DraftRecord struct {
	SchemaVersion int           `json:"schemaVersion"`
	Mode          EntryMode     `json:"mode"`
	Draft         ShipmentDraft `json:"shipmentDraft"`
	Provenance    ProvenanceMap `json:"provenanceMap"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

// PriceBreakdown is the derived quote for a draft.
type PriceBreakdown struct {
	CustomsValue     float64 `json:"customsValue"`
	LineItemCount    int     `json:"lineItemCount"`
	BasePrice        float64 `json:"basePrice"`
	ServiceCharge    float64 `json:"serviceCharge"`
	CustomsClearance float64 `json:"customsClearance"`
	PickupCharge     float64 `json:"pickupCharge"`
	Insurance        float64 `json:"insurance"`
	Subtotal         float64 `json:"subtotal"`
	Tax              float64 `json:"tax"`
	Total            float64 `json:"total"`
}
