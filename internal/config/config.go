// Package config handles configuration management for salesdw.
// Configuration is loaded from a YAML config file; CLI flags take precedence
// over config file values.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds all configuration for salesdw.
type Config struct {
	// LogLevel controls logging verbosity (debug, info, warn, error).
	LogLevel string `mapstructure:"log_level"`

	// Data holds filesystem locations for raw and prepared CSV files.
	Data DataConfig `mapstructure:"data"`

	// Storage selects and configures the warehouse sink.
	Storage StorageConfig `mapstructure:"storage"`

	// Metrics configures the optional metrics backend.
	Metrics MetricsConfig `mapstructure:"metrics"`

	// Seed holds configuration for the seed subcommand.
	Seed SeedConfig `mapstructure:"seed"`
}

// DataConfig holds the data directory layout.
type DataConfig struct {
	// RawDir is where raw entity CSVs are read from (and seeded to).
	RawDir string `mapstructure:"raw_dir"`

	// PreparedDir is where cleaned entity CSVs are written.
	PreparedDir string `mapstructure:"prepared_dir"`
}

// StorageConfig selects the warehouse backend.
type StorageConfig struct {
	// Kind is the backend kind: sqlite, postgres or mssql.
	Kind string `mapstructure:"kind"`

	// DSN is the backend connection string. Environment variables in the
	// form $VAR are expanded before use.
	DSN string `mapstructure:"dsn"`
}

// MetricsConfig configures the metrics backend.
type MetricsConfig struct {
	// Backend is the metrics backend: datadog or none.
	Backend string `mapstructure:"backend"`

	// FlushSeconds is how often buffered metrics are submitted.
	FlushSeconds int `mapstructure:"flush_seconds"`

	// Tags are extra tags attached to every metric (e.g. "env:dev").
	Tags []string `mapstructure:"tags"`
}

// SeedConfig holds row counts for the seed subcommand.
type SeedConfig struct {
	Customers int `mapstructure:"customers"`
	Products  int `mapstructure:"products"`
	Sales     int `mapstructure:"sales"`

	// RandomSeed makes fixture generation reproducible when non-zero.
	RandomSeed uint64 `mapstructure:"random_seed"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		Data: DataConfig{
			RawDir:      filepath.Join("data", "raw"),
			PreparedDir: filepath.Join("data", "prepared"),
		},
		Storage: StorageConfig{
			Kind: "sqlite",
			DSN:  filepath.Join("data", "dw", "smart_sales.db"),
		},
		Metrics: MetricsConfig{
			Backend:      "none",
			FlushSeconds: 60,
		},
		Seed: SeedConfig{
			Customers: 200,
			Products:  100,
			Sales:     2000,
		},
	}
}

// Load reads configuration from config files.
// Config file locations (in order of precedence):
// 1. Path specified by configFile parameter
// 2. ./salesdw.yaml
// 3. ~/.config/salesdw/config.yaml
func Load(configFile string) (*Config, error) {
	v := viper.New()

	v.SetConfigName("salesdw")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "salesdw"))
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	}

	cfg := DefaultConfig()
	setDefaults(v, cfg)

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; defaults apply. An explicit
		// --config path that does not exist is a user error.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			if configFile != "" {
				return nil, fmt.Errorf("read config %s: %w", configFile, err)
			}
			if _, statErr := os.Stat(v.ConfigFileUsed()); statErr == nil {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.Storage.DSN = os.ExpandEnv(cfg.Storage.DSN)

	return cfg, nil
}

func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("log_level", cfg.LogLevel)
	v.SetDefault("data.raw_dir", cfg.Data.RawDir)
	v.SetDefault("data.prepared_dir", cfg.Data.PreparedDir)
	v.SetDefault("storage.kind", cfg.Storage.Kind)
	v.SetDefault("storage.dsn", cfg.Storage.DSN)
	v.SetDefault("metrics.backend", cfg.Metrics.Backend)
	v.SetDefault("metrics.flush_seconds", cfg.Metrics.FlushSeconds)
	v.SetDefault("seed.customers", cfg.Seed.Customers)
	v.SetDefault("seed.products", cfg.Seed.Products)
	v.SetDefault("seed.sales", cfg.Seed.Sales)
}

// Validate checks configuration consistency for commands that touch the
// warehouse sink.
func (c *Config) Validate() error {
	switch c.Storage.Kind {
	case "sqlite", "postgres", "mssql":
	case "":
		return fmt.Errorf("storage.kind must be set")
	default:
		return fmt.Errorf("unsupported storage.kind=%q (expected sqlite, postgres or mssql)", c.Storage.Kind)
	}
	if c.Storage.DSN == "" {
		return fmt.Errorf("storage.dsn must be set")
	}
	return nil
}
