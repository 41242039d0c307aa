package reconcile

import (
	"strings"

	"shipdesk/internal/domain"
	"shipdesk/internal/payload"
)

// partyField binds a Party field to its path suffix and accepted aliases.
type partyField struct {
	name    string
	aliases []string
	ref     func(*domain.Party) *string
}

var partyFields = []partyField{
	{"company", []string{"company", "companyName", "name", "businessName"}, func(p *domain.Party) *string { return &p.Company }},
	{"contactName", []string{"contactName", "contact", "contactPerson", "attention"}, func(p *domain.Party) *string { return &p.ContactName }},
	{"phone", []string{"phone", "phoneNumber", "telephone", "tel"}, func(p *domain.Party) *string { return &p.Phone }},
	{"email", []string{"email", "emailAddress"}, func(p *domain.Party) *string { return &p.Email }},
	{"address1", []string{"address1", "addressLine1", "line1", "address", "street"}, func(p *domain.Party) *string { return &p.Address1 }},
	{"address2", []string{"address2", "addressLine2", "line2"}, func(p *domain.Party) *string { return &p.Address2 }},
	{"city", []string{"city", "town"}, func(p *domain.Party) *string { return &p.City }},
	{"state", []string{"state", "province", "region"}, func(p *domain.Party) *string { return &p.State }},
	{"postalCode", []string{"postalCode", "zip", "zipCode", "postcode"}, func(p *domain.Party) *string { return &p.PostalCode }},
	{"country", []string{"country", "countryCode"}, func(p *domain.Party) *string { return &p.Country }},
	{"taxId", []string{"taxId", "vat", "vatNumber", "gstin", "ein"}, func(p *domain.Party) *string { return &p.TaxID }},
}

// mergeParty takes each known field from the extracted object when present
// and keeps the current value otherwise. Countries are stored as codes; for
// the consignee the result is additionally upper-cased.
func mergeParty(current domain.Party, extracted payload.Object, prefix string, upperCountry bool, prov *Provenance) domain.Party {
	merged := current
	if extracted == nil {
		return merged
	}
	extracted = flattenAddress(extracted)
	for _, f := range partyFields {
		v, ok := extracted.String(f.aliases...)
		if !ok {
			continue
		}
		if f.name == "country" {
			v = NormalizeCountry(v)
			if upperCountry {
				v = strings.ToUpper(v)
			}
		}
		*f.ref(&merged) = v
		prov.Mark(prefix + "." + f.name)
	}
	return merged
}

// flattenAddress lifts the keys of a nested "address" object to the party
// level. Keys already present on the party win.
func flattenAddress(obj payload.Object) payload.Object {
	addr, ok := obj.Object("address")
	if !ok {
		return obj
	}
	out := make(payload.Object, len(obj)+len(addr))
	for k, v := range obj {
		if k != payload.Fold("address") {
			out[k] = v
		}
	}
	for k, v := range addr {
		if _, exists := out[k]; !exists {
			out[k] = v
		}
	}
	return out
}
