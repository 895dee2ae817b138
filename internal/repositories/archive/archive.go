package archive

import (
	"context"
	"errors"
)

var ErrCannotCreate = errors.New("error creating archive entry")

// Repository records keys of already-emitted files so repeated runs skip
// them.
type Repository interface {
	Exists(ctx context.Context, key string) (bool, error)
	Create(ctx context.Context, key string) error
}
