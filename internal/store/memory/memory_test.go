package memory_test

import (
	"context"
	storepkg "github.com/cirruslabs/etagd/internal/store"
	"github.com/cirruslabs/etagd/internal/store/memory"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"sync"
	"testing"
	"time"
)

func TestSimple(t *testing.T) {
	ctx := context.Background()
	key := uuid.NewString()
	now := time.Now()

	store := memory.New()

	// Retrieval of a non-existent key should fail
	_, err := store.Get(ctx, key)
	require.ErrorIs(t, err, storepkg.ErrNotFound)

	// Update of a non-existent key should fail and shouldn't create a record
	require.ErrorIs(t, store.Update(ctx, key, "abc", now), storepkg.ErrNotFound)
	require.Zero(t, store.Len())

	// FindOrCreate() of a non-existent key should create a record
	record, created, err := store.FindOrCreate(ctx, key, storepkg.Record{ETag: "abc", ConfirmedAt: now})
	require.NoError(t, err)
	require.True(t, created)
	require.Equal(t, &storepkg.Record{Key: key, ETag: "abc", ConfirmedAt: now}, record)

	// FindOrCreate() of an existent key should leave it untouched
	record, created, err = store.FindOrCreate(ctx, key, storepkg.Record{ETag: "def", ConfirmedAt: now.Add(time.Hour)})
	require.NoError(t, err)
	require.False(t, created)
	require.Equal(t, "abc", record.ETag)

	// Update of an existent key should overwrite both fields
	later := now.Add(time.Minute)
	require.NoError(t, store.Update(ctx, key, "ghi", later))

	record, err = store.Get(ctx, key)
	require.NoError(t, err)
	require.Equal(t, &storepkg.Record{Key: key, ETag: "ghi", ConfirmedAt: later}, record)
}

func TestFindOrCreateConcurrent(t *testing.T) {
	ctx := context.Background()
	key := uuid.NewString()

	store := memory.New()

	var wg sync.WaitGroup
	var mtx sync.Mutex
	var numCreated int
	etags := map[string]struct{}{}

	for i := 0; i < 32; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			record, created, err := store.FindOrCreate(ctx, key, storepkg.Record{
				ETag:        uuid.NewString(),
				ConfirmedAt: time.Now(),
			})
			if !assert.NoError(t, err) {
				return
			}

			mtx.Lock()
			defer mtx.Unlock()

			if created {
				numCreated++
			}
			etags[record.ETag] = struct{}{}
		}()
	}

	wg.Wait()

	// Exactly one caller wins and everyone observes the winning record
	require.Equal(t, 1, numCreated)
	require.Len(t, etags, 1)
	require.Equal(t, 1, store.Len())
}
