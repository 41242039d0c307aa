package extraction

import (
	"time"

	"shipdesk/internal/config"
	"shipdesk/internal/port"
)

// New assembles the extractor chain described by cfg: the primary endpoint,
// an optional secondary behind a fallback, and an optional result cache.
func New(cfg *config.ExtractionConfig) port.Extractor {
	primary := NewClient(&cfg.Primary)

	var ext port.Extractor = primary
	if sec := cfg.SecondaryConfig(); sec != nil {
		secondary := NewClient(sec)
		ext = NewFallbackExtractor(
			[]port.Extractor{primary, secondary},
			[]string{primary.Name(), secondary.Name()},
		)
	}

	if cfg.CacheTTLSecs > 0 {
		ext = NewCachingExtractor(ext, time.Duration(cfg.CacheTTLSecs)*time.Second)
	}
	return ext
}
