package reconcile_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shipdesk/internal/domain"
	"shipdesk/internal/payload"
	"shipdesk/internal/reconcile"
)

func baseDraft() domain.ShipmentDraft {
	d := domain.NewShipmentDraft()
	d.Title = "Spring order"
	d.Shipper = domain.Party{Company: "Old Co", City: "Pune", Country: "IN"}
	d.Consignee = domain.Party{Company: "Buyer LLC", Country: "US"}
	d.Packages = []domain.Package{{
		ID:         "pkg-1",
		Type:       "box",
		Weight:     10,
		WeightUnit: "kg",
		Products: []domain.Product{
			{ID: "prod-1", Name: "Old widget", Qty: 1, UnitPrice: 4, TotalValue: 4},
		},
	}}
	return d
}

func richPayload() payload.Payload {
	return payload.Payload{
		"shipper": map[string]any{
			"name":    "ACME Exports",
			"address": map[string]any{"line1": "1 Main St", "zip": "411001", "city": "Mumbai"},
			"country": "India",
		},
		"consignee": map[string]any{
			"company_name": "Globex",
			"country":      "us",
		},
		"packages": []any{
			map[string]any{
				"type":       "pallet",
				"weight":     "120 kgs",
				"dimensions": "120 x 80 x 100 cm",
				"products": []any{
					map[string]any{"name": "Valve", "hs_code": "8481.80", "qty": 3.0, "unit_price": 25.0, "uom": "PCS", "reason_for_export": "Sale"},
					map[string]any{"name": "Gasket", "quantity": "10", "price": "2.5", "total_value": 30.0, "country_of_origin": "Germany"},
				},
			},
		},
		"currency":          "USD",
		"service_level":     "express",
		"incoterm":          "dap",
		"insuranceRequired": true,
	}
}

func TestMerge_PartyPrecedenceAndAliases(t *testing.T) {
	merged, paths := reconcile.Merge(baseDraft(), payload.Payload{
		"shipper": map[string]any{
			"name":    "ACME Exports",
			"address": map[string]any{"line1": "1 Main St", "zip": "411001"},
			"country": "India",
		},
	})

	assert.Equal(t, domain.Party{
		Company:    "ACME Exports",
		Address1:   "1 Main St",
		City:       "Pune",
		PostalCode: "411001",
		Country:    "IN",
	}, merged.Shipper)
	assert.Equal(t, baseDraft().Consignee, merged.Consignee)
	assert.Equal(t, []string{"shipper.company", "shipper.address1", "shipper.postalCode", "shipper.country"}, paths)
}

func TestMerge_AddressAsString(t *testing.T) {
	merged, _ := reconcile.Merge(domain.NewShipmentDraft(), payload.Payload{
		"consignee": map[string]any{"address": "22 Harbour Rd", "postcode": "SW1A 1AA", "country": "united kingdom"},
	})
	assert.Equal(t, "22 Harbour Rd", merged.Consignee.Address1)
	assert.Equal(t, "SW1A 1AA", merged.Consignee.PostalCode)
	assert.Equal(t, "GB", merged.Consignee.Country)
}

func TestMerge_ConsigneeCountryUpperCased(t *testing.T) {
	merged, _ := reconcile.Merge(domain.NewShipmentDraft(), payload.Payload{
		"consignee": map[string]any{"country": "zz"},
	})
	assert.Equal(t, "ZZ", merged.Consignee.Country)
}

func TestMerge_NestedShapeWinsAndReplacesPackages(t *testing.T) {
	merged, paths := reconcile.Merge(baseDraft(), payload.Payload{
		"packages": []any{
			map[string]any{"weight": 5.0, "products": []any{map[string]any{"name": "Nested"}}},
			map[string]any{"weight": 7.0},
		},
		"products": []any{map[string]any{"name": "Flat"}},
		"product":  map[string]any{"name": "Single"},
	})

	require.Len(t, merged.Packages, 2)
	first, second := merged.Packages[0], merged.Packages[1]

	assert.Equal(t, "pkg-1", first.ID, "id at the same position is kept")
	assert.Empty(t, first.Type, "nested packages are mapped in full")
	assert.Equal(t, 5.0, first.Weight)
	require.Len(t, first.Products, 1)
	assert.Equal(t, "Nested", first.Products[0].Name)
	assert.Equal(t, "prod-1", first.Products[0].ID)

	assert.NotEmpty(t, second.ID)
	assert.NotEqual(t, first.ID, second.ID)
	assert.NotNil(t, second.Products)
	assert.Empty(t, second.Products)

	assert.NotContains(t, paths, "packages[0].products[1].name")
	for _, p := range merged.Products() {
		assert.NotEqual(t, "Flat", p.Name)
		assert.NotEqual(t, "Single", p.Name)
	}
}

func TestMerge_FlatShapeWrapsIntoFirstPackage(t *testing.T) {
	merged, paths := reconcile.Merge(baseDraft(), payload.Payload{
		"items": []any{
			map[string]any{"name": "Widget", "qty": 2.0, "unitPrice": 5.0},
			map[string]any{"name": "Bolt", "qty": 100.0, "unitPrice": 0.1},
		},
	})

	require.Len(t, merged.Packages, 1)
	pkg := merged.Packages[0]
	assert.Equal(t, "pkg-1", pkg.ID)
	assert.Equal(t, "box", pkg.Type)
	assert.Equal(t, 10.0, pkg.Weight)
	require.Len(t, pkg.Products, 2)
	assert.Equal(t, "Widget", pkg.Products[0].Name)
	assert.InDelta(t, 10.0, pkg.Products[0].TotalValue, 1e-9)
	assert.InDelta(t, 10.0, pkg.Products[1].TotalValue, 1e-9)
	assert.Contains(t, paths, "packages[0].products[1].name")
}

func TestMerge_SingularShapeSynthesizesPackage(t *testing.T) {
	merged, paths := reconcile.Merge(domain.NewShipmentDraft(), payload.Payload{
		"product": map[string]any{"name": "Lamp", "qty": 1.0, "unitPrice": 40.0},
	})

	require.Len(t, merged.Packages, 1)
	assert.NotEmpty(t, merged.Packages[0].ID)
	require.Len(t, merged.Packages[0].Products, 1)
	assert.Equal(t, "Lamp", merged.Packages[0].Products[0].Name)
	assert.NotEmpty(t, merged.Packages[0].Products[0].ID)
	assert.Equal(t, []string{
		"packages[0].products[0].name",
		"packages[0].products[0].qty",
		"packages[0].products[0].unitPrice",
	}, paths)
}

func TestMerge_DimsOnlyPackagePatchesFirstPackage(t *testing.T) {
	before := baseDraft()
	merged, paths := reconcile.Merge(before, payload.Payload{
		"package": map[string]any{"weight": "12.5 lbs", "dimensions": "40 x 30 x 20 CM"},
	})

	require.Len(t, merged.Packages, 1)
	pkg := merged.Packages[0]
	assert.Equal(t, "pkg-1", pkg.ID)
	assert.Equal(t, 12.5, pkg.Weight)
	assert.Equal(t, "lb", pkg.WeightUnit)
	assert.Equal(t, 40.0, pkg.Length)
	assert.Equal(t, 30.0, pkg.Width)
	assert.Equal(t, 20.0, pkg.Height)
	assert.Equal(t, "cm", pkg.DimensionUnit)
	assert.Equal(t, before.Packages[0].Products, pkg.Products, "products are untouched")
	assert.ElementsMatch(t, []string{
		"packages[0].weight", "packages[0].weightUnit",
		"packages[0].length", "packages[0].width", "packages[0].height",
		"packages[0].dimensionUnit",
	}, paths)

	assert.Equal(t, 10.0, before.Packages[0].Weight, "input draft is not mutated")
}

func TestMerge_DimsOnlyPackageWithoutPackages(t *testing.T) {
	merged, _ := reconcile.Merge(domain.NewShipmentDraft(), payload.Payload{
		"package": map[string]any{"weight": 3.0, "length": 10.0, "width": 10.0, "height": 5.0, "dimensionUnit": "IN"},
	})
	require.Len(t, merged.Packages, 1)
	assert.NotEmpty(t, merged.Packages[0].ID)
	assert.Equal(t, 3.0, merged.Packages[0].Weight)
	assert.Equal(t, "in", merged.Packages[0].DimensionUnit)
	assert.Empty(t, merged.Packages[0].Products)
}

func TestMerge_WeightThousandsSeparator(t *testing.T) {
	tests := []struct {
		name     string
		weight   any
		want     float64
		wantUnit string
	}{
		{"with unit", "1,200 kg", 1200, "kg"},
		{"bare", "1,200", 1200, ""},
		{"decimal with unit", "1,200.5 lbs", 1200.5, "lb"},
		{"number", 1200.0, 1200, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			merged, _ := reconcile.Merge(domain.NewShipmentDraft(), payload.Payload{
				"package": map[string]any{"weight": tt.weight},
			})
			require.Len(t, merged.Packages, 1)
			assert.Equal(t, tt.want, merged.Packages[0].Weight)
			assert.Equal(t, tt.wantUnit, merged.Packages[0].WeightUnit)
		})
	}
}

func TestMerge_ProductNormalizationAndTotals(t *testing.T) {
	merged, paths := reconcile.Merge(domain.NewShipmentDraft(), richPayload())

	require.Len(t, merged.Packages, 1)
	pkg := merged.Packages[0]
	assert.Equal(t, "pallet", pkg.Type)
	assert.Equal(t, 120.0, pkg.Weight)
	assert.Equal(t, "kg", pkg.WeightUnit)
	require.Len(t, pkg.Products, 2)

	valve, gasket := pkg.Products[0], pkg.Products[1]
	assert.Equal(t, "8481.80", valve.HSCode)
	assert.Equal(t, "pieces", valve.UOM)
	assert.Equal(t, "sale", valve.ReasonForExport)
	assert.Equal(t, "IN", valve.OriginCountry, "origin defaults to the shipper country")
	assert.InDelta(t, 75.0, valve.TotalValue, 1e-9)
	assert.False(t, valve.TotalOverridden)

	assert.Equal(t, "DE", gasket.OriginCountry)
	assert.Equal(t, 10.0, gasket.Qty)
	assert.Equal(t, 2.5, gasket.UnitPrice)
	assert.Equal(t, 30.0, gasket.TotalValue, "explicit total wins over qty*unitPrice")
	assert.True(t, gasket.TotalOverridden)

	assert.Contains(t, paths, "packages[0].products[0].originCountry")
	assert.NotContains(t, paths, "packages[0].products[0].totalValue")
	assert.Contains(t, paths, "packages[0].products[1].totalValue")

	assert.Equal(t, "USD", merged.Currency)
	assert.Equal(t, "Express", merged.ServiceLevel)
	assert.Equal(t, "DAP", merged.Incoterm)
	assert.True(t, merged.InsuranceRequired)
	assert.Equal(t, "US", merged.Consignee.Country)
	assert.Equal(t, "Mumbai", merged.Shipper.City)
}

func TestMerge_Idempotent(t *testing.T) {
	once, pathsOnce := reconcile.Merge(baseDraft(), richPayload())
	twice, pathsTwice := reconcile.Merge(once, richPayload())

	assert.Equal(t, once, twice)
	assert.Equal(t, pathsOnce, pathsTwice)
}

func TestMerge_Deterministic(t *testing.T) {
	a, pathsA := reconcile.Merge(baseDraft(), richPayload())
	b, pathsB := reconcile.Merge(baseDraft(), richPayload())

	// Existing ids are reused, so even the identifiers agree here.
	assert.Equal(t, a.Packages[0].ID, b.Packages[0].ID)
	assert.Equal(t, a.Packages[0].Products[0].ID, b.Packages[0].Products[0].ID)
	assert.Equal(t, a.Shipper, b.Shipper)
	assert.Equal(t, pathsA, pathsB)
}

func TestMerge_ProvenanceCompleteness(t *testing.T) {
	merged, paths := reconcile.Merge(baseDraft(), richPayload())
	require.NotEmpty(t, paths)

	seen := map[string]bool{}
	for _, p := range paths {
		assert.False(t, seen[p], "duplicate path %s", p)
		seen[p] = true
		_, ok := merged.ValueAt(p)
		assert.True(t, ok, "path %s does not resolve on the merged draft", p)
	}
	assert.NotContains(t, paths, "shipper.contactName", "untouched fields are not marked")
	assert.NotContains(t, paths, "title")
}

func TestMerge_PartialPayload(t *testing.T) {
	before := baseDraft()
	merged, paths := reconcile.Merge(before, payload.Payload{"customsValue": 500.0})

	assert.Equal(t, before.Shipper, merged.Shipper)
	assert.Equal(t, before.Consignee, merged.Consignee)
	assert.Equal(t, before.Packages, merged.Packages)
	assert.Equal(t, 500.0, merged.CustomsValue)
	assert.Equal(t, []string{"customsValue"}, paths)
}

func TestMerge_BooleansByPresence(t *testing.T) {
	before := baseDraft()
	before.InsuranceRequired = true
	before.DangerousGoods = true

	merged, paths := reconcile.Merge(before, payload.Payload{
		"insuranceRequired": false,
		"dangerousGoods":    nil,
	})

	assert.False(t, merged.InsuranceRequired, "explicit false is applied")
	assert.True(t, merged.DangerousGoods, "null leaves the value alone")
	assert.Equal(t, []string{"insuranceRequired"}, paths)
}

func TestMerge_MalformedInputIsAbsent(t *testing.T) {
	before := baseDraft()
	merged, paths := reconcile.Merge(before, payload.Payload{
		"shipper":      42.0,
		"consignee":    []any{"x"},
		"packages":     "three cartons",
		"products":     []any{1.0, 2.0},
		"customsValue": "about a thousand",
		"currency":     map[string]any{"code": "USD"},
	})

	assert.Equal(t, before, merged)
	assert.Empty(t, paths)
}

func TestMerge_EmptyPayload(t *testing.T) {
	before := baseDraft()

	merged, paths := reconcile.Merge(before, nil)
	assert.Equal(t, before, merged)
	assert.Empty(t, paths)

	merged, paths = reconcile.Merge(before, payload.Payload{"shipper": map[string]any{"name": "  "}})
	assert.Equal(t, before, merged)
	assert.Empty(t, paths)
}

func TestMerge_DoesNotMutateInput(t *testing.T) {
	before := baseDraft()
	snapshot := before.Clone()

	_, _ = reconcile.Merge(before, richPayload())
	assert.Equal(t, snapshot, before)
}
