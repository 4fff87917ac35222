package app_test

import (
	"context"
	"github.com/cirruslabs/etagd/internal/app"
	"github.com/cirruslabs/etagd/internal/config"
	storepkg "github.com/cirruslabs/etagd/internal/store"
	"github.com/cirruslabs/etagd/internal/store/disk"
	"github.com/cirruslabs/etagd/internal/store/memory"
	"github.com/cirruslabs/etagd/internal/store/noop"
	"github.com/cirruslabs/etagd/internal/store/sqlite"
	"github.com/stretchr/testify/require"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "etagd.yml")
	require.NoError(t, os.WriteFile(configPath, []byte("s3:\n  default-bucket: assets\n"), 0600))

	t.Setenv("ETAGD_STORE_DRIVER", "noop")

	actualConfig, err := app.LoadConfig(configPath)
	require.NoError(t, err)
	require.Equal(t, "assets", actualConfig.S3.DefaultBucket)
	require.Equal(t, config.StoreDriverNoOp, actualConfig.StoreDriver())
}

func TestLoadConfigEnvOnly(t *testing.T) {
	t.Setenv("ETAGD_S3_DEFAULT_BUCKET", "media")

	actualConfig, err := app.LoadConfig("")
	require.NoError(t, err)
	require.Equal(t, "media", actualConfig.S3.DefaultBucket)
}

func TestLoadConfigInvalid(t *testing.T) {
	// Missing file
	_, err := app.LoadConfig(filepath.Join(t.TempDir(), "missing.yml"))
	require.Error(t, err)

	// Missing default bucket
	configPath := filepath.Join(t.TempDir(), "etagd.yml")
	require.NoError(t, os.WriteFile(configPath, []byte("addr: 127.0.0.1:8080\n"), 0600))

	_, err = app.LoadConfig(configPath)
	require.Error(t, err)
}

func TestNewStore(t *testing.T) {
	ctx := context.Background()

	store, closeStore, err := app.NewStore(ctx, &config.Config{})
	require.NoError(t, err)
	require.IsType(t, &memory.Memory{}, store)
	require.NoError(t, closeStore())

	store, closeStore, err = app.NewStore(ctx, &config.Config{Store: config.Store{Driver: "noop"}})
	require.NoError(t, err)
	require.IsType(t, &noop.NoOp{}, store)
	require.NoError(t, closeStore())

	store, closeStore, err = app.NewStore(ctx, &config.Config{Store: config.Store{Driver: "disk", Path: t.TempDir()}})
	require.NoError(t, err)
	require.IsType(t, &disk.Disk{}, store)
	require.NoError(t, closeStore())

	path := filepath.Join(t.TempDir(), "etagd.db")

	store, closeStore, err = app.NewStore(ctx, &config.Config{Store: config.Store{Path: path}})
	require.NoError(t, err)
	require.IsType(t, &sqlite.SQLite{}, store)

	_, _, err = store.FindOrCreate(ctx, "k", storepkg.Record{ETag: "abc", ConfirmedAt: time.Now()})
	require.NoError(t, err)
	require.NoError(t, closeStore())

	_, _, err = app.NewStore(ctx, &config.Config{Store: config.Store{Driver: "redis"}})
	require.Error(t, err)
}

func TestNewResolver(t *testing.T) {
	resolver, closeStore, err := app.NewResolver(context.Background(), &config.Config{
		Coalesce: true,
		S3: config.S3{
			Region:          "us-east-1",
			DefaultBucket:   "assets",
			Endpoint:        "http://127.0.0.1:4566/",
			AccessKeyID:     "key-id",
			AccessKeySecret: "key-secret",
		},
	}, nil)
	require.NoError(t, err)
	require.NoError(t, closeStore())

	require.Equal(t, "assets", resolver.DefaultBucket())
}
