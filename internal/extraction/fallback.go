package extraction

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"shipdesk/internal/payload"
	"shipdesk/internal/port"
)

// endpoint is one link of the fallback chain with its rate-limit cooldown.
type endpoint struct {
	name string
	ext  port.Extractor

	mu        sync.Mutex
	coolUntil time.Time
}

func (e *endpoint) cooling(now time.Time) (time.Time, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.coolUntil, now.Before(e.coolUntil)
}

func (e *endpoint) coolDown(until time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if until.After(e.coolUntil) {
		e.coolUntil = until
	}
}

// next is what a failed attempt means for the rest of the chain.
type next int

const (
	nextStop     next = iota // the error is final
	nextEndpoint             // another endpoint may succeed
	nextCoolDown             // rest this endpoint, then try another
)

// afterFailure classifies err. Rate limits rest the endpoint. Transport and
// 5xx failures move on. Anything else describes the request or the
// documents, so another endpoint would fail the same way.
func afterFailure(err error) (next, time.Duration) {
	var rl *RateLimitError
	if errors.As(err, &rl) {
		return nextCoolDown, rl.RetryAfter
	}
	var xe *Error
	if errors.As(err, &xe) && xe.Retryable() {
		return nextEndpoint, 0
	}
	return nextStop, 0
}

// FallbackExtractor tries extractors in order, skipping endpoints that are
// cooling down after a rate limit.
type FallbackExtractor struct {
	endpoints []*endpoint
	now       func() time.Time
}

// NewFallbackExtractor creates a FallbackExtractor from an ordered list of
// extractors and their names.
func NewFallbackExtractor(extractors []port.Extractor, names []string) *FallbackExtractor {
	eps := make([]*endpoint, len(extractors))
	for i, e := range extractors {
		eps[i] = &endpoint{name: names[i], ext: e}
	}
	return &FallbackExtractor{endpoints: eps, now: time.Now}
}

func (f *FallbackExtractor) Extract(ctx context.Context, files []port.UploadFile) (payload.Payload, error) {
	now := f.now()
	var (
		lastErr   error
		earliest  time.Time
		onlyLimit = true
	)
	wait := func(until time.Time) {
		if earliest.IsZero() || until.Before(earliest) {
			earliest = until
		}
	}

	for _, ep := range f.endpoints {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if until, cooling := ep.cooling(now); cooling {
			log.Printf("extraction.FallbackExtractor: skipping %s until %s", ep.name, until.Format(time.RFC3339))
			wait(until)
			continue
		}

		out, err := ep.ext.Extract(ctx, files)
		if err == nil {
			return out, nil
		}

		step, retryAfter := afterFailure(err)
		switch step {
		case nextStop:
			return nil, err
		case nextCoolDown:
			ep.coolDown(now.Add(retryAfter))
			wait(now.Add(retryAfter))
		default:
			onlyLimit = false
		}
		log.Printf("extraction.FallbackExtractor: %s failed, trying next endpoint: %v", ep.name, err)
		lastErr = err
	}

	if lastErr != nil && !onlyLimit {
		return nil, fmt.Errorf("all extraction endpoints failed: %w", lastErr)
	}
	retryAfter := earliest.Sub(now)
	if retryAfter < time.Second {
		retryAfter = time.Second
	}
	return nil, NewRateLimitError("all", errors.New("all extraction endpoints rate limited"), int(retryAfter.Seconds()))
}
