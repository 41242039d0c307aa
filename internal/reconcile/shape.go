package reconcile

import "shipdesk/internal/payload"

// ShapeKind names the package/product layout an extracted payload used.
type ShapeKind int

const (
	// ShapeNone means no product data; a dims-only package may still apply.
	ShapeNone ShapeKind = iota
	// ShapeNested is packages[] each carrying an optional products[].
	ShapeNested
	// ShapeFlat is a legacy top-level products[] with no packaging.
	ShapeFlat
	// ShapeSingular is a legacy single product object.
	ShapeSingular
)

func (k ShapeKind) String() string {
	switch k {
	case ShapeNested:
		return "nested"
	case ShapeFlat:
		return "flat"
	case ShapeSingular:
		return "singular"
	default:
		return "none"
	}
}

// Shape is the detected layout together with the objects it selected. Only
// the fields matching Kind are set.
type Shape struct {
	Kind       ShapeKind
	Packages   []payload.Object
	Products   []payload.Object
	Dimensions payload.Object
}

var (
	packagesKeys = []string{"packages", "packageList"}
	productsKeys = []string{"products", "items", "lineItems"}
	productKeys  = []string{"product", "item"}
	packageKeys  = []string{"package", "packageDetails", "packageInfo"}
)

// DetectShape picks exactly one layout in the fixed precedence
// nested > flat > singular. A payload offering several never blends them.
func DetectShape(obj payload.Object) Shape {
	if pkgs, ok := obj.Objects(packagesKeys...); ok {
		return Shape{Kind: ShapeNested, Packages: pkgs}
	}
	if prods, ok := obj.Objects(productsKeys...); ok {
		return Shape{Kind: ShapeFlat, Products: prods}
	}
	if prod, ok := obj.Object(productKeys...); ok {
		return Shape{Kind: ShapeSingular, Products: []payload.Object{prod}}
	}
	shape := Shape{Kind: ShapeNone}
	if dims, ok := obj.Object(packageKeys...); ok {
		shape.Dimensions = dims
	}
	return shape
}
