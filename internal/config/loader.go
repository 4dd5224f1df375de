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
	"golang.org/x/text/language"
)

// Environment variable names.
const (
	envPrefix     = "STOREFRONT_"
	envConfigFile = "STOREFRONT_CONFIG"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if STOREFRONT_CONFIG is set
//  3. env (prefix STOREFRONT_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv(envConfigFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// STOREFRONT_ENGINE_QUEUE_SIZE -> engine_queue_size (flat keys, underscores kept).
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, strings.ToLower(envPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the values Load cannot coerce.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.EnginePath == "":
		return fmt.Errorf("%w: engine_path must not be empty", ErrInvalidConfig)
	case c.EngineQueueSize < 1:
		return fmt.Errorf("%w: engine_queue_size must be positive", ErrInvalidConfig)
	case c.ResponseTimeoutMS < 1:
		return fmt.Errorf("%w: response_timeout_ms must be positive", ErrInvalidConfig)
	case c.AdminSessionTTLSeconds < 1:
		return fmt.Errorf("%w: admin_session_ttl_seconds must be positive", ErrInvalidConfig)
	}
	if _, err := language.Parse(c.SortLocale); err != nil {
		return fmt.Errorf("%w %q: %w", ErrInvalidLocale, c.SortLocale, err)
	}
	return nil
}
