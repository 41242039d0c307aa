package reconcile_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"shipdesk/internal/reconcile"
)

func TestNormalizeUOM(t *testing.T) {
	tests := map[string]string{
		"KGS":       "kg",
		"Kilograms": "kg",
		"lbs":       "lb",
		"Pounds":    "lb",
		"PCS":       "pieces",
		"Pieces":    "pieces",
		"pc":        "pieces",
		"Metres":    "meters",
		"m":         "meters",
		"Units":     "units",
		"each":      "units",
		"Sets":      "sets",
		"dozen":     "dozen",
		"":          "",
	}
	for in, want := range tests {
		assert.Equal(t, want, reconcile.NormalizeUOM(in), "input %q", in)
	}
}

func TestNormalizeExportReason(t *testing.T) {
	assert.Equal(t, "sale", reconcile.NormalizeExportReason("Sale"))
	assert.Equal(t, "sample", reconcile.NormalizeExportReason("Commercial Sample"))
	assert.Equal(t, "personal_use", reconcile.NormalizeExportReason("Personal Use"))
	assert.Equal(t, "repair", reconcile.NormalizeExportReason(" REPAIR "))
	// Exact match only: partial phrases pass through untouched.
	assert.Equal(t, "sale of goods", reconcile.NormalizeExportReason("sale of goods"))
}

func TestNormalizeCountry(t *testing.T) {
	tests := map[string]string{
		"India":                    "IN",
		"india":                    "IN",
		"in":                       "IN",
		"IND":                      "IN",
		"United States":            "US",
		"USA":                      "US",
		"United Kingdom":           "GB",
		"uk":                       "GB",
		"Germany":                  "DE",
		"DEU":                      "DE",
		"  us ":                    "US",
		"Atlantis":                 "Atlantis",
		"":                         "",
		"United States of America": "US",
	}
	for in, want := range tests {
		assert.Equal(t, want, reconcile.NormalizeCountry(in), "input %q", in)
	}
}

func TestNormalizeServiceLevel(t *testing.T) {
	assert.Equal(t, "Express", reconcile.NormalizeServiceLevel("express"))
	assert.Equal(t, "Freight", reconcile.NormalizeServiceLevel("FREIGHT"))
	assert.Equal(t, "Overnight", reconcile.NormalizeServiceLevel("Overnight"))
}

func TestNormalizeCurrency(t *testing.T) {
	assert.Equal(t, "USD", reconcile.NormalizeCurrency("USD"))
	assert.Equal(t, "INR", reconcile.NormalizeCurrency(" INR "))
	assert.Equal(t, "dollars", reconcile.NormalizeCurrency("dollars"))
}
