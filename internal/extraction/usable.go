package extraction

import (
	"shipdesk/internal/payload"
	"shipdesk/internal/reconcile"
)

// fieldsOfInterest are the top-level payload keys that can feed the draft.
var fieldsOfInterest = reconcile.TopLevelKeys()

// HasUsableData reports whether p carries at least one non-empty field the
// draft can take. Boolean flags alone do not count.
func HasUsableData(p payload.Payload) bool {
	obj, ok := payload.AsObject(p)
	if !ok {
		return false
	}
	_, found := obj.Lookup(fieldsOfInterest...)
	return found
}
