// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Defaults live in New; Load layers a YAML file and the environment on top.
// - External errors are wrapped with this package's sentinel kinds.
package config

import "time"

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log encoding: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// MetricsEnabled toggles Prometheus recording.
	MetricsEnabled bool `koanf:"metrics_enabled"`

	// EnginePath is the entry point the dispatcher resolves to a compute engine.
	EnginePath string `koanf:"engine_path"`

	// EngineQueueSize bounds each engine's inbound queue.
	EngineQueueSize int `koanf:"engine_queue_size"`

	// ResponseTimeoutMS is how long HTTP callers wait for an engine reply.
	ResponseTimeoutMS int `koanf:"response_timeout_ms"`

	// StrictSend makes sends to an unavailable engine return an error.
	StrictSend bool `koanf:"strict_send"`

	// SortLocale is the BCP 47 tag used for name collation.
	SortLocale string `koanf:"sort_locale"`

	// CatalogPath optionally seeds the catalog at startup (.json, .msgpack, .lz4).
	CatalogPath string `koanf:"catalog_path"`

	// AdminPassword guards /admin/login. Empty disables admin login.
	AdminPassword string `koanf:"admin_password"`

	// AdminSessionTTLSeconds is the lifetime of an admin session cookie.
	AdminSessionTTLSeconds int `koanf:"admin_session_ttl_seconds"`

	// AdminMaxSessions bounds the in-memory session store.
	AdminMaxSessions int `koanf:"admin_max_sessions"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:               "info",
		LogFormat:              "text",
		Addr:                   ":9080",
		MetricsEnabled:         true,
		EnginePath:             "workers/product",
		EngineQueueSize:        1024,
		ResponseTimeoutMS:      2000,
		StrictSend:             false,
		SortLocale:             "en",
		AdminSessionTTLSeconds: 30 * 60,
		AdminMaxSessions:       1000,
	}
}

// ResponseTimeout returns ResponseTimeoutMS as a duration.
func (c *Config) ResponseTimeout() time.Duration {
	return time.Duration(c.ResponseTimeoutMS) * time.Millisecond
}

// AdminSessionTTL returns AdminSessionTTLSeconds as a duration.
func (c *Config) AdminSessionTTL() time.Duration {
	return time.Duration(c.AdminSessionTTLSeconds) * time.Second
}
