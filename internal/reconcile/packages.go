package reconcile

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"shipdesk/internal/domain"
	"shipdesk/internal/payload"
)

// dimsRe matches free-text dimensions such as "40 x 30 x 20 cm" or "12x8x4in".
var dimsRe = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*[x×*]\s*(\d+(?:\.\d+)?)\s*[x×*]\s*(\d+(?:\.\d+)?)\s*([a-z]+)?`)

// measureRe splits "1,200.5 kg" into a number and a unit. Commas in the number
// are thousands separators, as in payload.AsNumber.
var measureRe = regexp.MustCompile(`^\s*(\d[\d,]*(?:\.\d+)?)\s*([A-Za-z]+)?\s*$`)

// mergePackages resolves the extracted package/product layout into the
// canonical package list. The winning shape replaces the current packages;
// with no shape the dims-only package patches the first package.
func mergePackages(current []domain.Package, shape Shape, shipperCountry string, prov *Provenance) []domain.Package {
	switch shape.Kind {
	case ShapeNested:
		out := make([]domain.Package, 0, len(shape.Packages))
		for i, obj := range shape.Packages {
			var prior *domain.Package
			if i < len(current) {
				prior = &current[i]
			}
			out = append(out, mapPackage(obj, prior, i, shipperCountry, prov))
		}
		return out

	case ShapeFlat, ShapeSingular:
		var pkg domain.Package
		if len(current) > 0 {
			pkg = current[0]
		} else {
			pkg = domain.Package{ID: uuid.NewString()}
		}
		pkg.Products = mapProducts(shape.Products, pkg.Products, 0, shipperCountry, prov)
		return []domain.Package{pkg}

	default:
		if shape.Dimensions == nil {
			return current
		}
		out := clonePackages(current)
		if len(out) == 0 {
			out = append(out, domain.Package{ID: uuid.NewString(), Products: []domain.Product{}})
		}
		applyMeasurements(&out[0], shape.Dimensions, 0, prov)
		return out
	}
}

// mapPackage builds a package entirely from an extracted object. Identifiers
// missing from the payload are taken from the package previously at the same
// position, or synthesized.
func mapPackage(obj payload.Object, prior *domain.Package, idx int, shipperCountry string, prov *Provenance) domain.Package {
	pkg := domain.Package{Products: []domain.Product{}}
	var priorProducts []domain.Product

	if id, ok := obj.String("id", "packageId"); ok {
		pkg.ID = id
	} else if prior != nil && prior.ID != "" {
		pkg.ID = prior.ID
	} else {
		pkg.ID = uuid.NewString()
	}
	if prior != nil {
		priorProducts = prior.Products
	}

	prefix := packagePath(idx)
	if v, ok := obj.String("type", "packageType", "packaging"); ok {
		pkg.Type = v
		prov.Mark(prefix + ".type")
	}
	if v, ok := obj.Bool("stackable", "isStackable"); ok {
		pkg.Stackable = v
		prov.Mark(prefix + ".stackable")
	}
	applyMeasurements(&pkg, obj, idx, prov)

	if prods, ok := obj.Objects(productsKeys...); ok {
		pkg.Products = mapProducts(prods, priorProducts, idx, shipperCountry, prov)
	}
	return pkg
}

// applyMeasurements patches weight and dimensions from explicit fields or a
// free-text "L x W x H unit" string. Products are never touched.
func applyMeasurements(pkg *domain.Package, obj payload.Object, idx int, prov *Provenance) {
	prefix := packagePath(idx)

	if v, ok := obj.Lookup("weight", "grossWeight"); ok {
		if w, unit, ok := parseMeasure(v); ok {
			pkg.Weight = w
			prov.Mark(prefix + ".weight")
			if unit != "" {
				pkg.WeightUnit = NormalizeUOM(unit)
				prov.Mark(prefix + ".weightUnit")
			}
		}
	}
	if u, ok := obj.String("weightUnit", "weightUom"); ok {
		pkg.WeightUnit = NormalizeUOM(u)
		prov.Mark(prefix + ".weightUnit")
	}

	if s, ok := obj.String("dimensions", "dims", "size"); ok {
		if m := dimsRe.FindStringSubmatch(s); m != nil {
			pkg.Length, _ = strconv.ParseFloat(m[1], 64)
			pkg.Width, _ = strconv.ParseFloat(m[2], 64)
			pkg.Height, _ = strconv.ParseFloat(m[3], 64)
			prov.Mark(prefix + ".length")
			prov.Mark(prefix + ".width")
			prov.Mark(prefix + ".height")
			if m[4] != "" {
				pkg.DimensionUnit = strings.ToLower(m[4])
				prov.Mark(prefix + ".dimensionUnit")
			}
		}
	}
	for _, d := range []struct {
		name string
		dst  *float64
	}{
		{"length", &pkg.Length},
		{"width", &pkg.Width},
		{"height", &pkg.Height},
	} {
		if v, ok := obj.Number(d.name); ok {
			*d.dst = v
			prov.Mark(prefix + "." + d.name)
		}
	}
	if u, ok := obj.String("dimensionUnit", "dimensionsUnit", "dimUnit", "lengthUnit"); ok {
		pkg.DimensionUnit = strings.ToLower(u)
		prov.Mark(prefix + ".dimensionUnit")
	}
}

// parseMeasure accepts a bare number or a "12.5 kg" style string.
func parseMeasure(v any) (float64, string, bool) {
	if n, ok := payload.AsNumber(v); ok {
		return n, "", true
	}
	s, ok := v.(string)
	if !ok {
		return 0, "", false
	}
	m := measureRe.FindStringSubmatch(s)
	if m == nil {
		return 0, "", false
	}
	n, ok := payload.AsNumber(m[1])
	if !ok {
		return 0, "", false
	}
	return n, m[2], true
}

func mapProducts(objs []payload.Object, prior []domain.Product, pkgIdx int, shipperCountry string, prov *Provenance) []domain.Product {
	out := make([]domain.Product, 0, len(objs))
	for j, obj := range objs {
		priorID := ""
		if j < len(prior) {
			priorID = prior[j].ID
		}
		out = append(out, mapProduct(obj, priorID, productPath(pkgIdx, j), shipperCountry, prov))
	}
	return out
}

// mapProduct builds a product from an extracted object, normalizing the unit
// of measure and export reason, defaulting the origin country to the shipper's
// and deriving the line total unless one was given explicitly.
func mapProduct(obj payload.Object, priorID, prefix, shipperCountry string, prov *Provenance) domain.Product {
	var p domain.Product

	switch id, ok := obj.String("id", "productId", "sku"); {
	case ok:
		p.ID = id
	case priorID != "":
		p.ID = priorID
	default:
		p.ID = uuid.NewString()
	}

	for _, f := range []struct {
		name    string
		aliases []string
		dst     *string
		norm    func(string) string
	}{
		{"name", []string{"name", "productName", "itemName", "title"}, &p.Name, nil},
		{"description", []string{"description", "desc", "goodsDescription"}, &p.Description, nil},
		{"hsCode", []string{"hsCode", "hs", "hsn", "hsnCode", "htsCode", "tariffCode"}, &p.HSCode, nil},
		{"category", []string{"category", "productCategory"}, &p.Category, nil},
		{"uom", []string{"uom", "unit", "unitOfMeasure", "units"}, &p.UOM, NormalizeUOM},
		{"reasonForExport", []string{"reasonForExport", "exportReason", "purpose"}, &p.ReasonForExport, NormalizeExportReason},
		{"originCountry", []string{"originCountry", "countryOfOrigin", "origin", "madeIn"}, &p.OriginCountry, NormalizeCountry},
	} {
		v, ok := obj.String(f.aliases...)
		if !ok {
			continue
		}
		if f.norm != nil {
			v = f.norm(v)
		}
		*f.dst = v
		prov.Mark(prefix + "." + f.name)
	}

	if p.OriginCountry == "" && shipperCountry != "" {
		p.OriginCountry = shipperCountry
		prov.Mark(prefix + ".originCountry")
	}

	if v, ok := obj.Number("qty", "quantity"); ok {
		p.Qty = v
		prov.Mark(prefix + ".qty")
	}
	if v, ok := obj.Number("unitPrice", "price", "unitValue", "rate"); ok {
		p.UnitPrice = v
		prov.Mark(prefix + ".unitPrice")
	}
	if v, ok := obj.Number("totalValue", "total", "lineTotal", "amount", "value"); ok {
		p.TotalValue = v
		p.TotalOverridden = true
		prov.Mark(prefix + ".totalValue")
	} else {
		p.Recompute()
	}
	return p
}

func clonePackages(pkgs []domain.Package) []domain.Package {
	out := make([]domain.Package, len(pkgs))
	for i, pkg := range pkgs {
		out[i] = pkg
		out[i].Products = append([]domain.Product{}, pkg.Products...)
	}
	return out
}
