package config

import (
	"errors"
	"fmt"
	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
	"io"
)

const EnvPrefix = "ETAGD_"

const (
	StoreDriverSQLite = "sqlite"
	StoreDriverDisk   = "disk"
	StoreDriverMemory = "memory"
	StoreDriverNoOp   = "noop"
)

type Config struct {
	Addr     string `yaml:"addr" env:"ADDR"`
	Secret   string `yaml:"secret" env:"SECRET"`
	Coalesce bool   `yaml:"coalesce" env:"COALESCE"`
	S3       S3     `yaml:"s3" envPrefix:"S3_"`
	Store    Store  `yaml:"store" envPrefix:"STORE_"`
}

type S3 struct {
	Region          string `yaml:"region" env:"REGION"`
	DefaultBucket   string `yaml:"default-bucket" env:"DEFAULT_BUCKET"`
	Endpoint        string `yaml:"endpoint" env:"ENDPOINT"`
	AccessKeyID     string `yaml:"access-key-id" env:"ACCESS_KEY_ID"`
	AccessKeySecret string `yaml:"access-key-secret" env:"ACCESS_KEY_SECRET"`
}

type Store struct {
	Driver string `yaml:"driver" env:"DRIVER"`
	Path   string `yaml:"path" env:"PATH"`
}

func Parse(r io.Reader) (*Config, error) {
	var config Config

	if err := yaml.NewDecoder(r).Decode(&config); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	return &config, nil
}

// OverrideFromEnv overwrites the values that have a corresponding ETAGD_-prefixed
// environment variable set. A nil environment means the process environment.
func (config *Config) OverrideFromEnv(environment map[string]string) error {
	if err := env.ParseWithOptions(config, env.Options{
		Prefix:      EnvPrefix,
		Environment: environment,
	}); err != nil {
		return fmt.Errorf("failed to parse environment variables: %w", err)
	}

	return nil
}

// StoreDriver returns the configured store driver, defaulting
// to SQLite when a path is given and to memory otherwise.
func (config *Config) StoreDriver() string {
	if config.Store.Driver != "" {
		return config.Store.Driver
	}

	if config.Store.Path != "" {
		return StoreDriverSQLite
	}

	return StoreDriverMemory
}

func (config *Config) Validate() error {
	if config.S3.DefaultBucket == "" {
		return fmt.Errorf("default bucket (s3.default-bucket) needs to be specified")
	}

	switch config.StoreDriver() {
	case StoreDriverSQLite, StoreDriverDisk:
		if config.Store.Path == "" {
			return fmt.Errorf("store path (store.path) needs to be specified when using the %q driver",
				config.StoreDriver())
		}
	case StoreDriverMemory, StoreDriverNoOp:
		// nothing to check
	default:
		return fmt.Errorf("unsupported store driver %q", config.Store.Driver)
	}

	return nil
}
