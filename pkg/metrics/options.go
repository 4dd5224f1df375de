package metrics

import (
	"maps"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures a Manager before its collectors are registered.
type Option func(*Manager)

// WithNamespace overrides the "storefront" metric name prefix.
func WithNamespace(namespace string) Option {
	return func(m *Manager) {
		if namespace != "" {
			m.namespace = namespace
		}
	}
}

// WithSubsystem overrides the "offload" metric subsystem.
func WithSubsystem(subsystem string) Option {
	return func(m *Manager) {
		if subsystem != "" {
			m.subsystem = subsystem
		}
	}
}

// WithEngineLatencyBuckets sets the buckets, in milliseconds, of the
// per-message engine processing histogram.
func WithEngineLatencyBuckets(buckets []float64) Option {
	return func(m *Manager) {
		if len(buckets) > 0 {
			m.engineBuckets = buckets
		}
	}
}

// WithHTTPLatencyBuckets sets the buckets, in milliseconds, of the HTTP
// request duration histogram.
func WithHTTPLatencyBuckets(buckets []float64) Option {
	return func(m *Manager) {
		if len(buckets) > 0 {
			m.httpBuckets = buckets
		}
	}
}

// WithQueueDepthBuckets sets the buckets of the engine inbox depth histogram.
func WithQueueDepthBuckets(buckets []float64) Option {
	return func(m *Manager) {
		if len(buckets) > 0 {
			m.queueBuckets = buckets
		}
	}
}

// WithMetricsEnabled starts the manager recording or muted.
func WithMetricsEnabled(enabled bool) Option {
	return func(m *Manager) {
		m.enabled = enabled
	}
}

// WithRefreshInterval sets how often system gauges are polled.
func WithRefreshInterval(interval time.Duration) Option {
	return func(m *Manager) {
		if interval > 0 {
			m.refreshInterval = interval
		}
	}
}

// WithConstLabel attaches a constant label to every collector. Repeated
// calls accumulate; the last value for a key wins.
func WithConstLabel(key, value string) Option {
	return func(m *Manager) {
		if key != "" {
			m.constLabels[key] = value
		}
	}
}

// WithConstLabels merges labels into the constant label set.
func WithConstLabels(labels map[string]string) Option {
	return func(m *Manager) {
		maps.Copy(m.constLabels, labels)
	}
}

// WithPrometheusRegistry registers collectors on registry instead of the
// Prometheus default registerer.
func WithPrometheusRegistry(registry prometheus.Registerer) Option {
	return func(m *Manager) {
		if registry != nil {
			m.registry = registry
		}
	}
}
