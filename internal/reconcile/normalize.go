package reconcile

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"shipdesk/internal/domain"
)

// lower folds case with Unicode rules. Casers carry state, so one is built
// per call.
func lower(s string) string {
	return cases.Lower(language.Und).String(s)
}

// uomRules are checked in order; the first substring hit wins.
var uomRules = []struct {
	needles []string
	uom     string
}{
	{[]string{"kg", "kilo"}, domain.UOMKilograms},
	{[]string{"lb", "pound"}, domain.UOMPounds},
	{[]string{"piece", "pcs", "pc"}, domain.UOMPieces},
	{[]string{"meter", "metre"}, domain.UOMMeters},
	{[]string{"unit", "each"}, domain.UOMUnits},
	{[]string{"set"}, domain.UOMSets},
}

// NormalizeUOM maps a unit of measure onto the canonical vocabulary by
// case-insensitive substring. Unrecognized values are returned unchanged.
func NormalizeUOM(raw string) string {
	l := lower(strings.TrimSpace(raw))
	if l == "" {
		return raw
	}
	if l == "m" {
		return domain.UOMMeters
	}
	for _, r := range uomRules {
		for _, n := range r.needles {
			if strings.Contains(l, n) {
				return r.uom
			}
		}
	}
	return raw
}

var exportReasons = map[string]string{
	"sale":              domain.ExportReasonSale,
	"sold":              domain.ExportReasonSale,
	"commercial":        domain.ExportReasonSale,
	"commercial sale":   domain.ExportReasonSale,
	"purchase":          domain.ExportReasonSale,
	"gift":              domain.ExportReasonGift,
	"sample":            domain.ExportReasonSample,
	"samples":           domain.ExportReasonSample,
	"commercial sample": domain.ExportReasonSample,
	"repair":            domain.ExportReasonRepair,
	"repair and return": domain.ExportReasonRepair,
	"return":            domain.ExportReasonReturn,
	"returned goods":    domain.ExportReasonReturn,
	"personal use":      domain.ExportReasonPersonalUse,
	"personal_use":      domain.ExportReasonPersonalUse,
	"personal effects":  domain.ExportReasonPersonalUse,
	"temporary":         domain.ExportReasonTemporary,
	"temporary export":  domain.ExportReasonTemporary,
	"exhibition":        domain.ExportReasonTemporary,
}

// NormalizeExportReason maps an export reason onto the canonical vocabulary by
// exact lowercase match. Unrecognized values are returned unchanged.
func NormalizeExportReason(raw string) string {
	if r, ok := exportReasons[lower(strings.TrimSpace(raw))]; ok {
		return r
	}
	return raw
}

var serviceLevels = map[string]string{
	"standard": domain.ServiceLevelStandard,
	"express":  domain.ServiceLevelExpress,
	"economy":  domain.ServiceLevelEconomy,
	"freight":  domain.ServiceLevelFreight,
}

// NormalizeServiceLevel restores the canonical casing of known service levels.
func NormalizeServiceLevel(raw string) string {
	if s, ok := serviceLevels[lower(strings.TrimSpace(raw))]; ok {
		return s
	}
	return raw
}

// NormalizeCurrency upper-cases ISO 4217 codes; anything else passes through.
func NormalizeCurrency(raw string) string {
	u, err := currency.ParseISO(strings.TrimSpace(raw))
	if err != nil {
		return raw
	}
	return u.String()
}

var countryAliases = map[string]string{
	"usa":                      "US",
	"america":                  "US",
	"united states of america": "US",
	"u.s.a.":                   "US",
	"u.s.":                     "US",
	"uk":                       "GB",
	"u.k.":                     "GB",
	"great britain":            "GB",
	"britain":                  "GB",
	"england":                  "GB",
	"uae":                      "AE",
	"south korea":              "KR",
	"korea":                    "KR",
	"republic of korea":        "KR",
	"russia":                   "RU",
	"russian federation":       "RU",
	"czech republic":           "CZ",
	"holland":                  "NL",
	"turkey":                   "TR",
	"hong kong":                "HK",
	"macau":                    "MO",
	"macao":                    "MO",
	"ivory coast":              "CI",
	"taiwan":                   "TW",
	"vietnam":                  "VN",
	"viet nam":                 "VN",
}

// countryNames maps lowercase English country names to ISO alpha-2 codes.
var countryNames = buildCountryNames()

func buildCountryNames() map[string]string {
	names := make(map[string]string, 300)
	namer := display.Regions(language.English)
	for a := 'A'; a <= 'Z'; a++ {
		for b := 'A'; b <= 'Z'; b++ {
			r, err := language.ParseRegion(string([]rune{a, b}))
			if err != nil || !r.IsCountry() {
				continue
			}
			if n := namer.Name(r); n != "" {
				names[lower(n)] = r.String()
			}
		}
	}
	for k, v := range countryAliases {
		names[k] = v
	}
	return names
}

// NormalizeCountry converts a country name, alpha-3 code or any-case alpha-2
// code to an upper-case ISO alpha-2 code. Unknown names are returned trimmed
// but otherwise unchanged.
func NormalizeCountry(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	if code, ok := countryNames[lower(s)]; ok {
		return code
	}
	if len(s) == 2 || len(s) == 3 {
		up := strings.ToUpper(s)
		if r, err := language.ParseRegion(up); err == nil && r.IsCountry() {
			return r.String()
		}
		if len(s) == 2 {
			return up
		}
	}
	return s
}
