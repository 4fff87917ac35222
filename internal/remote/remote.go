package remote

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("remote object not found")

// Provider is the source of truth for object ETags.
type Provider interface {
	// Head returns the raw ETag of the object, as reported by the provider
	// (typically wrapped in double quotes).
	Head(ctx context.Context, bucket string, key string) (string, error)
}
