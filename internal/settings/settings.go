package settings

import (
	"context"
	"errors"
)

// ErrEmptyKey rejects attempts to store a blank credential.
var ErrEmptyKey = errors.New("api key must not be empty")

// Store holds the single persisted setting: the generative-language API
// credential. The scan pipeline only ever reads it; writes come from the
// settings surface.
type Store interface {
	// APIKey returns the stored credential, or "" when none is set.
	APIKey(ctx context.Context) (string, error)
	SetAPIKey(ctx context.Context, key string) error
}
