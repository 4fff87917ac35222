package memory

import (
	"context"
	storepkg "github.com/cirruslabs/etagd/internal/store"
	"github.com/puzpuzpuz/xsync/v3"
	"time"
)

// Memory keeps records in a concurrent map, which makes it
// suitable for tests and single-process deployments without a database.
type Memory struct {
	records *xsync.MapOf[string, storepkg.Record]
}

func New() *Memory {
	return &Memory{
		records: xsync.NewMapOf[string, storepkg.Record](),
	}
}

func (memory *Memory) Get(_ context.Context, key string) (*storepkg.Record, error) {
	record, ok := memory.records.Load(key)
	if !ok {
		return nil, storepkg.ErrNotFound
	}

	return &record, nil
}

func (memory *Memory) FindOrCreate(
	_ context.Context,
	key string,
	defaults storepkg.Record,
) (*storepkg.Record, bool, error) {
	defaults.Key = key

	record, loaded := memory.records.LoadOrStore(key, defaults)

	return &record, !loaded, nil
}

func (memory *Memory) Update(_ context.Context, key string, etag string, confirmedAt time.Time) error {
	_, ok := memory.records.Compute(key, func(record storepkg.Record, loaded bool) (storepkg.Record, bool) {
		if !loaded {
			// Nothing to update, make sure we don't create an entry
			return record, true
		}

		record.ETag = etag
		record.ConfirmedAt = confirmedAt

		return record, false
	})
	if !ok {
		return storepkg.ErrNotFound
	}

	return nil
}

func (memory *Memory) Len() int {
	return memory.records.Size()
}
