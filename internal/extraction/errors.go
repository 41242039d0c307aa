package extraction

import (
	"fmt"
	"strconv"
	"time"

	"shipdesk/internal/domain"
)

// Kind classifies a hard extraction failure.
type Kind string

const (
	KindTransport Kind = "transport"
	KindStatus    Kind = "status"
	KindDecode    Kind = "decode"
	KindRejected  Kind = "rejected"
)

// Error is a hard extraction failure. It unwraps to domain.ErrExtractionFailed
// for transport and status failures and to domain.ErrInvalidExtractionResponse
// for undecodable or rejected responses.
type Error struct {
	Kind       Kind
	Endpoint   string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s extraction %s error (status %d): %v", e.Endpoint, e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s extraction %s error: %v", e.Endpoint, e.Kind, e.Err)
}

func (e *Error) Unwrap() []error {
	return []error{e.sentinel(), e.Err}
}

func (e *Error) sentinel() error {
	switch e.Kind {
	case KindDecode, KindRejected:
		return domain.ErrInvalidExtractionResponse
	default:
		return domain.ErrExtractionFailed
	}
}

// Retryable reports whether the same request may succeed if sent again.
func (e *Error) Retryable() bool {
	return e.Kind == KindTransport || (e.Kind == KindStatus && e.StatusCode >= 500)
}

// RateLimitError indicates an extraction endpoint returned HTTP 429.
type RateLimitError struct {
	Err        error
	RetryAfter time.Duration
	Endpoint   string
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s rate limited (retry after %s): %v", e.Endpoint, e.RetryAfter, e.Err)
}

func (e *RateLimitError) Unwrap() []error {
	return []error{domain.ErrExtractionFailed, e.Err}
}

// NewRateLimitError creates a RateLimitError. If retryAfterSecs is 0, defaults to 60s.
func NewRateLimitError(endpoint string, err error, retryAfterSecs int) *RateLimitError {
	if retryAfterSecs <= 0 {
		retryAfterSecs = 60
	}
	return &RateLimitError{
		Err:        err,
		RetryAfter: time.Duration(retryAfterSecs) * time.Second,
		Endpoint:   endpoint,
	}
}

// ParseRetryAfterHeader parses a Retry-After header value into seconds.
// Returns 0 if the value is empty or not a valid integer.
func ParseRetryAfterHeader(val string) int {
	if val == "" {
		return 0
	}
	secs, err := strconv.Atoi(val)
	if err != nil {
		return 0
	}
	return secs
}
