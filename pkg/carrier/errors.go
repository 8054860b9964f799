package carrier

import (
	"errors"
	"fmt"
	"time"
)

// Category classifies a carrier failure. The set is closed: retry policy
// and HTTP status mapping switch exhaustively on it, so a new category
// must be added to retryableByCategory and every mapping site.
type Category int

const (
	CategoryValidation Category = iota
	CategoryAuth
	CategoryRateLimit
	CategoryTransient
	CategoryPermanent
)

// String returns the canonical lowercase name of the category.
func (c Category) String() string {
	switch c {
	case CategoryValidation:
		return "validation"
	case CategoryAuth:
		return "auth"
	case CategoryRateLimit:
		return "rate_limit"
	case CategoryTransient:
		return "transient"
	case CategoryPermanent:
		return "permanent"
	default:
		return fmt.Sprintf("category(%d)", int(c))
	}
}

// retryableByCategory is the single source of truth for retry decisions.
// Kept as an explicit table so adding a category forces a revisit here.
var retryableByCategory = map[Category]bool{
	CategoryValidation: false,
	CategoryAuth:       false,
	CategoryRateLimit:  true,
	CategoryTransient:  true,
	CategoryPermanent:  false,
}

// DefaultRetryAfter is the advisory backoff used for rate-limited
// responses that carry no Retry-After header.
const DefaultRetryAfter = 60 * time.Second

// Error is the normalized failure raised by every carrier adapter.
// Adapters never leak raw transport errors past their public operations;
// anything that is not already an *Error gets wrapped into one at the
// boundary. Category is set at construction and never changes.
type Error struct {
	Carrier     string
	Message     string
	Category    Category
	CarrierCode string        // carrier's own error code, for diagnostics
	Raw         any           // original carrier payload, never interpreted
	RetryAfter  time.Duration // advisory, meaningful only for CategoryRateLimit
	Cause       error
}

// NewError creates a carrier error with the given category.
func NewError(carrier, message string, category Category) *Error {
	return &Error{
		Carrier:  carrier,
		Message:  message,
		Category: category,
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.CarrierCode != "" {
		return fmt.Sprintf("%s error (%s/%s): %s", e.Carrier, e.Category, e.CarrierCode, e.Message)
	}
	return fmt.Sprintf("%s error (%s): %s", e.Carrier, e.Category, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches two carrier errors by category, so callers can test
// errors.Is(err, &carrier.Error{Category: carrier.CategoryAuth}).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Category == t.Category
}

// Retryable reports whether a caller may retry the failed operation.
// This is the only place retryability is derived from the category.
func (e *Error) Retryable() bool {
	return retryableByCategory[e.Category]
}

// WithCode attaches the carrier's own error code.
func (e *Error) WithCode(code string) *Error {
	e.CarrierCode = code
	return e
}

// WithRaw attaches the original carrier payload for forensic use.
func (e *Error) WithRaw(raw any) *Error {
	e.Raw = raw
	return e
}

// WithRetryAfter attaches an advisory backoff hint.
func (e *Error) WithRetryAfter(d time.Duration) *Error {
	e.RetryAfter = d
	return e
}

// WithCause attaches the underlying error.
func (e *Error) WithCause(err error) *Error {
	e.Cause = err
	return e
}

// Retryable reports whether err carries a retryable carrier error.
func Retryable(err error) bool {
	var cerr *Error
	if errors.As(err, &cerr) {
		return cerr.Retryable()
	}
	return false
}

// AsError extracts a carrier error from err, or wraps err as a new one.
// Used at adapter boundaries so public operations only ever surface
// taxonomy errors. Wrapped unknown errors are classified Transient since
// at that point they are almost always network-level failures.
func AsError(carrierName string, err error) *Error {
	var cerr *Error
	if errors.As(err, &cerr) {
		return cerr
	}
	return NewError(carrierName, err.Error(), CategoryTransient).WithCause(err)
}
