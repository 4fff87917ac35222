package app

import (
	"context"
	"fmt"
	configpkg "github.com/cirruslabs/etagd/internal/config"
	"github.com/cirruslabs/etagd/internal/etag"
	"github.com/cirruslabs/etagd/internal/remote/s3"
	storepkg "github.com/cirruslabs/etagd/internal/store"
	"github.com/cirruslabs/etagd/internal/store/disk"
	"github.com/cirruslabs/etagd/internal/store/memory"
	"github.com/cirruslabs/etagd/internal/store/noop"
	"github.com/cirruslabs/etagd/internal/store/sqlite"
	"go.uber.org/zap"
	"os"
)

// LoadConfig parses the configuration file at path (if any),
// applies the environment overrides and validates the result.
func LoadConfig(path string) (*configpkg.Config, error) {
	config := &configpkg.Config{}

	if path != "" {
		configFile, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read configuration file at path %s: %w", path, err)
		}
		defer configFile.Close()

		config, err = configpkg.Parse(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to parse configuration file at path %s: %w", path, err)
		}
	}

	if err := config.OverrideFromEnv(nil); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// NewStore opens the configured store. The returned function releases it.
func NewStore(ctx context.Context, config *configpkg.Config) (storepkg.Store, func() error, error) {
	nopClose := func() error { return nil }

	switch config.StoreDriver() {
	case configpkg.StoreDriverSQLite:
		store, err := sqlite.Open(ctx, config.Store.Path)
		if err != nil {
			return nil, nil, err
		}

		return store, store.Close, nil
	case configpkg.StoreDriverDisk:
		store, err := disk.New(config.Store.Path)
		if err != nil {
			return nil, nil, err
		}

		return store, nopClose, nil
	case configpkg.StoreDriverNoOp:
		return noop.New(), nopClose, nil
	case configpkg.StoreDriverMemory:
		return memory.New(), nopClose, nil
	default:
		return nil, nil, fmt.Errorf("unsupported store driver %q", config.Store.Driver)
	}
}

// NewResolver wires the configured store and S3 into a resolver.
// The returned function releases the store.
func NewResolver(
	ctx context.Context,
	config *configpkg.Config,
	logger *zap.SugaredLogger,
) (*etag.Resolver, func() error, error) {
	provider, err := s3.NewFromConfig(ctx, &s3.Config{
		Endpoint:        config.S3.Endpoint,
		Region:          config.S3.Region,
		AccessKeyID:     config.S3.AccessKeyID,
		AccessKeySecret: config.S3.AccessKeySecret,
	})
	if err != nil {
		return nil, nil, err
	}

	store, closeStore, err := NewStore(ctx, config)
	if err != nil {
		return nil, nil, err
	}

	opts := []etag.Option{
		etag.WithLogger(logger),
	}

	if config.Coalesce {
		opts = append(opts, etag.WithCoalescing())
	}

	resolver, err := etag.New(store, provider, config.S3.DefaultBucket, opts...)
	if err != nil {
		_ = closeStore()

		return nil, nil, err
	}

	return resolver, closeStore, nil
}
