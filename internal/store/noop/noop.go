package noop

import (
	"context"
	storepkg "github.com/cirruslabs/etagd/internal/store"
	"time"
)

// NoOp is a store that remembers nothing, so that
// every resolution ends up querying the remote provider.
type NoOp struct{}

func New() *NoOp {
	return &NoOp{}
}

func (noop *NoOp) Get(_ context.Context, _ string) (*storepkg.Record, error) {
	return nil, storepkg.ErrNotFound
}

func (noop *NoOp) FindOrCreate(_ context.Context, key string, defaults storepkg.Record) (*storepkg.Record, bool, error) {
	defaults.Key = key

	return &defaults, true, nil
}

func (noop *NoOp) Update(_ context.Context, _ string, _ string, _ time.Time) error {
	return storepkg.ErrNotFound
}
