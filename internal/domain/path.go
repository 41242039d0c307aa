package domain

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

var pathSegmentRe = regexp.MustCompile(`^([A-Za-z0-9_]+)((?:\[\d+\])*)$`)
var pathIndexRe = regexp.MustCompile(`\[(\d+)\]`)

// ValueAt resolves a flattened field path such as
// "packages[0].products[1].hsCode" against the draft's JSON form.
func (d ShipmentDraft) ValueAt(path string) (any, bool) {
	raw, err := json.Marshal(d)
	if err != nil {
		return nil, false
	}
	var cur any
	if err := json.Unmarshal(raw, &cur); err != nil {
		return nil, false
	}

	for _, seg := range strings.Split(path, ".") {
		m := pathSegmentRe.FindStringSubmatch(seg)
		if m == nil {
			return nil, false
		}
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		if cur, ok = obj[m[1]]; !ok {
			return nil, false
		}
		for _, idx := range pathIndexRe.FindAllStringSubmatch(m[2], -1) {
			i, _ := strconv.Atoi(idx[1])
			list, ok := cur.([]any)
			if !ok || i >= len(list) {
				return nil, false
			}
			cur = list[i]
		}
	}
	return cur, true
}
