package store

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("object record not found")

// Record is a persisted ETag of a single object, keyed by its storage key.
//
// ETag and ConfirmedAt are set and cleared together: an empty ETag
// comes with a zero ConfirmedAt and vice versa.
type Record struct {
	Key         string
	ETag        string
	ConfirmedAt time.Time
}

func (record *Record) Confirmed() bool {
	return !record.ConfirmedAt.IsZero()
}

type Store interface {
	// Get returns ErrNotFound when no record exists for the key.
	Get(ctx context.Context, key string) (*Record, error)

	// FindOrCreate returns the existing record for the key or atomically
	// creates one from defaults. The boolean reports whether it was created.
	FindOrCreate(ctx context.Context, key string, defaults Record) (*Record, bool, error)

	// Update overwrites both the ETag and its confirmation time.
	Update(ctx context.Context, key string, etag string, confirmedAt time.Time) error
}
