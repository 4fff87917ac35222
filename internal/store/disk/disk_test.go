package disk_test

import (
	"context"
	storepkg "github.com/cirruslabs/etagd/internal/store"
	"github.com/cirruslabs/etagd/internal/store/disk"
	"github.com/stretchr/testify/require"
	"os"
	"testing"
	"time"
)

func TestSimple(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, time.October, 16, 12, 0, 0, 0, time.UTC)

	store, err := disk.New(t.TempDir())
	require.NoError(t, err)

	// Retrieval and update of a non-existent key should fail
	_, err = store.Get(ctx, "test")
	require.ErrorIs(t, err, storepkg.ErrNotFound)

	require.ErrorIs(t, store.Update(ctx, "test", "abc", now), storepkg.ErrNotFound)

	// FindOrCreate() of a non-existent key should create a record
	record, created, err := store.FindOrCreate(ctx, "test", storepkg.Record{ETag: "abc", ConfirmedAt: now})
	require.NoError(t, err)
	require.True(t, created)
	require.Equal(t, &storepkg.Record{Key: "test", ETag: "abc", ConfirmedAt: now}, record)

	// FindOrCreate() of an existent key should leave it untouched
	record, created, err = store.FindOrCreate(ctx, "test", storepkg.Record{ETag: "def", ConfirmedAt: now})
	require.NoError(t, err)
	require.False(t, created)
	require.Equal(t, "abc", record.ETag)

	// Update of an existent key should overwrite both fields
	later := now.Add(time.Minute)
	require.NoError(t, store.Update(ctx, "test", "ghi", later))

	record, err = store.Get(ctx, "test")
	require.NoError(t, err)
	require.Equal(t, &storepkg.Record{Key: "test", ETag: "ghi", ConfirmedAt: later}, record)
}

func TestUnconfirmed(t *testing.T) {
	ctx := context.Background()

	store, err := disk.New(t.TempDir())
	require.NoError(t, err)

	_, _, err = store.FindOrCreate(ctx, "test", storepkg.Record{})
	require.NoError(t, err)

	record, err := store.Get(ctx, "test")
	require.NoError(t, err)
	require.Empty(t, record.ETag)
	require.False(t, record.Confirmed())
}

func TestSecure(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	store, err := disk.New(dir)
	require.NoError(t, err)

	// Ensure that insecure keys are hashed and don't escape the directory
	_, _, err = store.FindOrCreate(ctx, "../../../../../etc/passwd", storepkg.Record{
		ETag:        "abc",
		ConfirmedAt: time.Now(),
	})
	require.NoError(t, err)

	dirEntries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, dirEntries, 1)
	require.Regexp(t, `^[0-9a-f]{64}\.json$`, dirEntries[0].Name())

	record, err := store.Get(ctx, "../../../../../etc/passwd")
	require.NoError(t, err)
	require.Equal(t, "abc", record.ETag)
}

func TestReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	now := time.Date(2026, time.October, 16, 12, 0, 0, 0, time.UTC)

	store, err := disk.New(dir)
	require.NoError(t, err)

	_, _, err = store.FindOrCreate(ctx, "test", storepkg.Record{ETag: "abc", ConfirmedAt: now})
	require.NoError(t, err)

	// Records should survive re-opening
	store, err = disk.New(dir)
	require.NoError(t, err)

	record, err := store.Get(ctx, "test")
	require.NoError(t, err)
	require.Equal(t, &storepkg.Record{Key: "test", ETag: "abc", ConfirmedAt: now}, record)
}
