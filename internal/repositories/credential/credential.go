package credential

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("credential not found")

// Repository is the credential store: token values keyed by platform
// domain and name. The resolver core only reads and conditionally
// rewrites a fixed pair of keys per platform.
type Repository interface {
	Get(ctx context.Context, domain, name string) (string, error)
	Set(ctx context.Context, domain, name, value string) error
}
