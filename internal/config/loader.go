package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/formlab/motionscore/internal/domain/weights"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if MOTIONSCORE_CONFIG is set
//  3. env (prefix MOTIONSCORE_)
func Load() (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("MOTIONSCORE_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: MOTIONSCORE_ADDR, MOTIONSCORE_STORE_PATH, ...
	// Map env keys like MOTIONSCORE_STORE_PATH -> store_path (flat keys),
	// preserving underscores to match koanf tags on the struct.
	envProvider := env.Provider("MOTIONSCORE_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "motionscore_")
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
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.StorePath == "":
		return fmt.Errorf("%w: store_path must not be empty", ErrInvalidConfig)
	case c.VisibleThreshold < 0 || c.VisibleThreshold > 1:
		return fmt.Errorf("%w: visible_threshold must be in [0,1]", ErrInvalidConfig)
	case c.VisibilityCutoffRatio < 0 || c.VisibilityCutoffRatio > 1:
		return fmt.Errorf("%w: visibility_cutoff_ratio must be in [0,1]", ErrInvalidConfig)
	case c.Epsilon <= 0:
		return fmt.Errorf("%w: epsilon must be positive", ErrInvalidConfig)
	}
	if _, err := weights.ParseSource(c.VisibilitySource); err != nil {
		return fmt.Errorf("%w: visibility_source must be reference, user, or both", ErrInvalidConfig)
	}
	return nil
}
