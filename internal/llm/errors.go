package llm

import (
	"errors"
	"fmt"

	"google.golang.org/api/googleapi"
)

// Kind classifies a generation failure so callers can dispatch on the error
// category instead of matching message substrings.
type Kind int

// Generation error kinds
const (
	// KindInternal is any non-retryable service or client failure.
	KindInternal Kind = iota
	// KindRateLimited is a rate-limit or quota failure; the client retries
	// these with exponential backoff.
	KindRateLimited
	// KindNoContent means the service answered but produced an empty or
	// unusable structured payload.
	KindNoContent
	// KindBlocked means the prompt or response was blocked by the service's
	// safety filters.
	KindBlocked
	// KindUnavailable means the service is temporarily unreachable or
	// overloaded.
	KindUnavailable
)

// String returns a stable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindRateLimited:
		return "rate_limited"
	case KindNoContent:
		return "no_content"
	case KindBlocked:
		return "blocked"
	case KindUnavailable:
		return "unavailable"
	default:
		return "internal"
	}
}

// Error is a classified generation failure.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("generation failed (%s): %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("generation failed (%s): %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// KindOf extracts the error kind from err, classifying raw service errors on
// the way. Unrecognized errors are KindInternal.
func KindOf(err error) Kind {
	var genErr *Error
	if errors.As(err, &genErr) {
		return genErr.Kind
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case 429:
			return KindRateLimited
		case 500, 502, 503, 504:
			return KindUnavailable
		}
	}

	return KindInternal
}

// wrap classifies a raw backend error into an *Error, preserving an existing
// classification if the backend already produced one.
func wrap(err error, message string) *Error {
	var genErr *Error
	if errors.As(err, &genErr) {
		return genErr
	}
	return &Error{Kind: KindOf(err), Message: message, Cause: err}
}
