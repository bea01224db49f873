package redhat

import (
	"errors"
	"fmt"
)

// AuthError reports a failed client-credentials exchange. Authentication
// failures abort the whole run; they are never retried.
type AuthError struct {
	Status int
	Err    error
}

func (e *AuthError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("authentication failed: status %d: %v", e.Status, e.Err)
	}
	return fmt.Sprintf("authentication failed: %v", e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// FetchError reports a request that still failed after the retry budget, or a
// non-retryable API status.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string { return fmt.Sprintf("fetch %s: %v", e.URL, e.Err) }

func (e *FetchError) Unwrap() error { return e.Err }

// ErrMalformedPage marks a response body without the expected {data, meta}
// shape. Such a page counts as zero items and ends its pagination loop; rows
// accumulated from earlier pages are kept.
var ErrMalformedPage = errors.New("response body missing data/meta")
