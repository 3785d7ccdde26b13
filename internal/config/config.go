// Package config loads kittycore settings from an optional config file and
// KITTYCORE_ environment variables.
package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/viper"

	"kittycore/internal/blob"
	"kittycore/internal/core"
)

const (
	// EnvPrefix prefixes every environment override.
	EnvPrefix = "KITTYCORE"
	// DefaultFSRoot is where the fs blob driver keeps archives.
	DefaultFSRoot = "./blobdata"
)

// Config holds all configuration for kittycore.
type Config struct {
	Storage         StorageConfig `mapstructure:"storage"`
	NewKittyReserve uint64        `mapstructure:"new_kitty_reserve"`
	Blob            BlobConfig    `mapstructure:"blob"`
	Logging         LoggingConfig `mapstructure:"logging"`
	Genesis         GenesisConfig `mapstructure:"genesis"`
}

// StorageConfig selects the state backend.
type StorageConfig struct {
	Driver      string `mapstructure:"driver"`
	SQLitePath  string `mapstructure:"sqlite_path"`
	PostgresDSN string `mapstructure:"postgres_dsn"`
}

// BlobConfig selects where snapshot archives are written.
type BlobConfig struct {
	Driver string        `mapstructure:"driver"`
	FSRoot string        `mapstructure:"fs_root"`
	Prefix string        `mapstructure:"prefix"`
	S3     blob.S3Config `mapstructure:"s3"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// GenesisConfig lists free balances credited to accounts when a store holds
// no accounts yet. Keys are folded to lower case by the loader.
type GenesisConfig struct {
	Balances map[string]uint64 `mapstructure:"balances"`
}

// Load reads configuration. When path is empty a kittycore.{yaml,toml,json}
// in the working directory is used if present.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("storage.driver", string(core.StorageSQLite))
	v.SetDefault("storage.sqlite_path", "kittycore.db")
	v.SetDefault("storage.postgres_dsn", "")
	v.SetDefault("new_kitty_reserve", uint64(core.DefaultNewKittyReserve))
	v.SetDefault("blob.driver", string(blob.DriverFilesystem))
	v.SetDefault("blob.fs_root", DefaultFSRoot)
	v.SetDefault("blob.prefix", core.DefaultArchivePrefix)
	v.SetDefault("blob.s3.region", "us-east-1")
	v.SetDefault("blob.s3.bucket", "")
	v.SetDefault("blob.s3.endpoint", "")
	v.SetDefault("blob.s3.access_key_id", "")
	v.SetDefault("blob.s3.secret_access_key", "")
	v.SetDefault("blob.s3.session_token", "")
	v.SetDefault("blob.s3.path_style", false)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("kittycore")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// short aliases for the common storage knobs
	_ = v.BindEnv("storage.driver", "KITTYCORE_STORAGE_DRIVER")
	_ = v.BindEnv("storage.sqlite_path", "KITTYCORE_SQLITE_PATH", "KITTYCORE_STORAGE_SQLITE_PATH")
	_ = v.BindEnv("storage.postgres_dsn", "KITTYCORE_POSTGRES_DSN", "KITTYCORE_STORAGE_POSTGRES_DSN")
	_ = v.BindEnv("logging.level", "KITTYCORE_LOG_LEVEL", "KITTYCORE_LOGGING_LEVEL")
	_ = v.BindEnv("logging.format", "KITTYCORE_LOG_FORMAT", "KITTYCORE_LOGGING_FORMAT")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return &cfg, nil
}

// Validate checks driver names and logging settings.
func (c *Config) Validate() error {
	switch core.StorageDriver(c.Storage.Driver) {
	case core.StorageMemory, core.StorageSQLite:
	case core.StoragePostgres:
		if c.Storage.PostgresDSN == "" {
			return fmt.Errorf("storage.postgres_dsn must be set for the postgres driver")
		}
	default:
		return fmt.Errorf("storage.driver %q is not one of memory, sqlite, postgres", c.Storage.Driver)
	}
	switch blob.Driver(c.Blob.Driver) {
	case blob.DriverMemory, blob.DriverFilesystem:
	case blob.DriverS3:
		if c.Blob.S3.Bucket == "" {
			return fmt.Errorf("blob.s3.bucket must be set for the s3 driver")
		}
	default:
		return fmt.Errorf("blob.driver %q is not one of memory, fs, s3", c.Blob.Driver)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("logging.format must be json or console")
	}
	for account := range c.Genesis.Balances {
		if account == "" {
			return fmt.Errorf("genesis.balances contains an empty account")
		}
	}
	return nil
}

// StorageOptions converts the storage section for core.OpenPersistentStore.
func (c *Config) StorageOptions() core.StorageConfig {
	return core.StorageConfig{
		Driver:      core.StorageDriver(c.Storage.Driver),
		SQLitePath:  c.Storage.SQLitePath,
		PostgresDSN: c.Storage.PostgresDSN,
	}
}

// BlobOptions converts the blob section for blob.Open.
func (c *Config) BlobOptions() blob.Config {
	return blob.Config{
		Driver: blob.Driver(c.Blob.Driver),
		FSRoot: c.Blob.FSRoot,
		S3:     c.Blob.S3,
	}
}

// Endowments returns the genesis balances ordered by account.
func (c *Config) Endowments() []core.Endowment {
	out := make([]core.Endowment, 0, len(c.Genesis.Balances))
	for account, amount := range c.Genesis.Balances {
		out = append(out, core.Endowment{Account: core.AccountID(account), Amount: core.Balance(amount)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Account < out[j].Account })
	return out
}
