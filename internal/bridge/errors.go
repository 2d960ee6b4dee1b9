package bridge

import (
	"errors"
	"fmt"
)

// Sentinel errors carry the exact user-facing messages the UI renders.
var (
	// ErrUnsupportedSite rejects every request when the page host is not an
	// Amazon-family host. Surfaced immediately, never retried.
	ErrUnsupportedSite = errors.New("Not on an Amazon cart page.")

	// ErrEmptyCart means the scan ran but found zero items.
	ErrEmptyCart = errors.New("No cart items found. Open cart page.")

	// ErrMissingCredential blocks a suggestion before any network call.
	ErrMissingCredential = errors.New("No Gemini API key set.")

	// ErrMissingSnapshot means suggest was called without a prior scan.
	ErrMissingSnapshot = errors.New("No cart data. Scan first.")
)

// TransportError means request delivery to the page-side router failed
// after the bounded retries were exhausted, usually because the receiving
// context was not ready.
type TransportError struct {
	Attempts int
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("could not reach the cart page after %d attempts (%v); reload the page and try again", e.Attempts, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
