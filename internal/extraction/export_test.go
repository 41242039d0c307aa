package extraction

import "time"

// SetClock replaces the fallback extractor's time source.
func (f *FallbackExtractor) SetClock(now func() time.Time) {
	f.now = now
}
