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
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New(ctx))
//  2. file (YAML) if POSEKIT_CONFIG is set
//  3. env (prefix POSEKIT_)
func Load(ctx context.Context) (*Config, error) {
	base := New(ctx)

	k := koanf.New(".")

	if path := os.Getenv("POSEKIT_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: POSEKIT_ADDR, POSEKIT_FRAME_QUEUE_SIZE, ...
	// Underscores are preserved so env keys match the koanf tags.
	envProvider := env.Provider("POSEKIT_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "posekit_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if c.FrameQueueSize <= 0 {
		return fmt.Errorf("%w: frame_queue_size must be positive", ErrInvalidConfig)
	}
	if c.RecommendationLimit <= 0 {
		return fmt.Errorf("%w: recommendation_limit must be positive", ErrInvalidConfig)
	}
	return nil
}
