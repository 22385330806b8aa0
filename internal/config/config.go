// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) initializer to build a Config with defaults.
// - Load layers a YAML file and environment variables over the defaults.
// - External errors are wrapped with this package's sentinel kinds.
package config

import (
	"context"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log encoding: text or json.
	LogFormat string `koanf:"log_format"`

	// LogFile, when set, receives a copy of every log record.
	LogFile string `koanf:"log_file"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// HouseSystem is one of equal, whole_sign or porphyry.
	HouseSystem string `koanf:"house_system"`

	// EphemerisPath points at a directory of VSOP87B files. Without it
	// Mercury through Neptune come from mean orbital elements.
	EphemerisPath string `koanf:"ephemeris_path"`

	// CORSOrigins lists allowed browser origins; "*" allows any.
	CORSOrigins []string `koanf:"cors_origins"`

	// MaxBodyBytes caps the size of a diagnose request body.
	MaxBodyBytes int64 `koanf:"max_body_bytes"`

	// WorkerCount is the number of batch workers; 0 means one per CPU.
	WorkerCount int `koanf:"worker_count"`

	// QueueSize bounds the batch job queue.
	QueueSize int `koanf:"queue_size"`

	// BatchMaxItems caps the number of inputs in one batch request.
	BatchMaxItems int `koanf:"batch_max_items"`

	// MetricsEnabled turns Prometheus recording on or off. /healthz still
	// serves the registry either way.
	MetricsEnabled bool `koanf:"metrics_enabled"`
}

// New creates a Config with defaults. Context is accepted first to satisfy
// the project-wide convention and is currently unused.
func New(_ context.Context) *Config {
	c := &Config{
		LogLevel:       "info",
		LogFormat:      "text",
		Addr:           ":9080",
		HouseSystem:    "equal",
		CORSOrigins:    []string{"*"},
		MaxBodyBytes:   64 << 10,
		QueueSize:      1024,
		BatchMaxItems:  100,
		MetricsEnabled: true,
	}
	return c
}
