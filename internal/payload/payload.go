// Package payload gives typed, forgiving access to the JSON objects returned
// by the extraction service.
package payload

import (
	"sort"
	"strconv"
	"strings"
)

// Payload is the raw top-level object returned by the extraction service.
type Payload map[string]any

// Object is a JSON object whose keys have been folded by Fold.
type Object map[string]any

// Fold canonicalizes a key so that casing and separator variants compare
// equal: "postal_code", "PostalCode" and "postal-code" all fold to "postalcode".
func Fold(key string) string {
	var b strings.Builder
	b.Grow(len(key))
	for _, r := range strings.ToLower(key) {
		switch r {
		case '_', '-', ' ', '.':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// AsObject folds the keys of a decoded JSON object. When two raw keys fold to
// the same key, a present value beats an absent one and ties go to the
// lexically smaller raw key, so the result never depends on map order.
func AsObject(v any) (Object, bool) {
	var raw map[string]any
	switch t := v.(type) {
	case map[string]any:
		raw = t
	case Payload:
		raw = t
	case Object:
		return t, true
	default:
		return nil, false
	}

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make(Object, len(raw))
	for _, k := range keys {
		f := Fold(k)
		if existing, ok := out[f]; ok && (Present(existing) || !Present(raw[k])) {
			continue
		}
		out[f] = raw[k]
	}
	return out, true
}

// Lookup returns the first alias whose value is present.
func (o Object) Lookup(aliases ...string) (any, bool) {
	for _, a := range aliases {
		if v, ok := o[Fold(a)]; ok && Present(v) {
			return v, true
		}
	}
	return nil, false
}

// Has returns the first alias whose key exists with a non-null value,
// regardless of whether the value is "present". It is used for booleans where
// an explicit false still counts.
func (o Object) Has(aliases ...string) (any, bool) {
	for _, a := range aliases {
		if v, ok := o[Fold(a)]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

// String returns the first present alias as a trimmed string.
func (o Object) String(aliases ...string) (string, bool) {
	v, ok := o.Lookup(aliases...)
	if !ok {
		return "", false
	}
	return AsString(v)
}

// Number returns the first present alias coerced to a number.
func (o Object) Number(aliases ...string) (float64, bool) {
	v, ok := o.Lookup(aliases...)
	if !ok {
		return 0, false
	}
	return AsNumber(v)
}

// Bool returns the first alias holding a boolean-like value.
func (o Object) Bool(aliases ...string) (bool, bool) {
	v, ok := o.Has(aliases...)
	if !ok {
		return false, false
	}
	return AsBool(v)
}

// Object returns the first present alias as a folded object.
func (o Object) Object(aliases ...string) (Object, bool) {
	v, ok := o.Lookup(aliases...)
	if !ok {
		return nil, false
	}
	return AsObject(v)
}

// Objects returns the object elements of the first present alias that is a
// list. Non-object elements are dropped; a non-list value counts as absent.
func (o Object) Objects(aliases ...string) ([]Object, bool) {
	v, ok := o.Lookup(aliases...)
	if !ok {
		return nil, false
	}
	list, ok := v.([]any)
	if !ok {
		return nil, false
	}
	var out []Object
	for _, el := range list {
		if obj, ok := AsObject(el); ok && Present(obj) {
			out = append(out, obj)
		}
	}
	return out, len(out) > 0
}

// Present reports whether v carries usable data: a non-whitespace string, any
// number, a non-empty array, or an object with at least one present value.
// Booleans and null are not data on their own.
func Present(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(t) != ""
	case float64, float32, int, int32, int64, uint, uint32, uint64:
		return true
	case []any:
		return len(t) > 0
	case map[string]any:
		for _, el := range t {
			if Present(el) {
				return true
			}
		}
		return false
	case Payload:
		return Present(map[string]any(t))
	case Object:
		return Present(map[string]any(t))
	default:
		return false
	}
}

// AsString renders a scalar as a trimmed string. Numbers are formatted without
// trailing zeros so that an HS code extracted as 8471.3 survives.
func AsString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		s := strings.TrimSpace(t)
		return s, s != ""
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	default:
		return "", false
	}
}

// AsNumber coerces numbers and numeric strings. Thousands separators and a
// leading currency symbol are tolerated; anything else is not a number.
func AsNumber(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case string:
		s := strings.TrimSpace(t)
		s = strings.TrimLeft(s, "$€£₹¥")
		s = strings.ReplaceAll(s, ",", "")
		s = strings.TrimSpace(s)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// AsBool accepts JSON booleans and the common textual spellings.
func AsBool(v any) (bool, bool) {
	switch t := v.(type) {
	case bool:
		return t, true
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "yes", "y", "1":
			return true, true
		case "false", "no", "n", "0":
			return false, true
		}
	}
	return false, false
}
