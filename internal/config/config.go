// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Keep fields koanf-tagged and load through Load().
// - External errors are wrapped via this package's error kinds.
package config

import "context"

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// FrameQueueSize bounds the in-memory frame queue between the pose
	// callback and the tracker.
	FrameQueueSize int `koanf:"frame_queue_size"`

	// CatalogPath optionally points at a YAML file replacing the
	// built-in exercise/disease catalogs.
	CatalogPath string `koanf:"catalog_path"`

	// RecommendationLimit caps the assembled recommendation list.
	RecommendationLimit int `koanf:"recommendation_limit"`
}

// New creates a Config with defaults. Context is accepted first to
// satisfy the project-wide convention; it is reserved for future use.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:            "info",
		Addr:                ":9080",
		FrameQueueSize:      10_000,
		RecommendationLimit: 5,
	}
}
