package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/okian/birthprofile/internal/adapters/ephemeris"
	"github.com/okian/birthprofile/pkg/logger"
)

// Environment variable names.
const (
	EnvPrefix = "BIRTHPROFILE_"
	EnvFile   = EnvPrefix + "CONFIG"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New(ctx))
//  2. file (YAML) if BIRTHPROFILE_CONFIG is set
//  3. env (prefix BIRTHPROFILE_)
func Load(ctx context.Context) (*Config, error) {
	base := New(ctx)

	k := koanf.New(".")

	if path := os.Getenv(EnvFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// BIRTHPROFILE_HOUSE_SYSTEM -> house_system. Underscores are kept to
	// match the flat koanf tags on the struct.
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, strings.ToLower(EnvPrefix))
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}
	// The file path variable is not a config key.
	k.Delete("config")

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that would otherwise fail later at startup.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if _, err := ephemeris.ParseHouseSystem(c.HouseSystem); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if !logger.ValidFormat(c.LogFormat) {
		return fmt.Errorf("%w: unknown log format: %s", ErrInvalidConfig, c.LogFormat)
	}
	if c.MaxBodyBytes <= 0 {
		return fmt.Errorf("%w: max_body_bytes must be positive", ErrInvalidConfig)
	}
	if c.WorkerCount < 0 {
		return fmt.Errorf("%w: worker_count must not be negative", ErrInvalidConfig)
	}
	if c.QueueSize <= 0 {
		return fmt.Errorf("%w: queue_size must be positive", ErrInvalidConfig)
	}
	if c.BatchMaxItems <= 0 || c.BatchMaxItems > c.QueueSize {
		return fmt.Errorf("%w: batch_max_items must be between 1 and queue_size", ErrInvalidConfig)
	}
	return nil
}
