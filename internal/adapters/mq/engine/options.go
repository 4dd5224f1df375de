package engine

import (
	"github.com/okian/storefront/internal/domain/compute"
	"github.com/okian/storefront/pkg/logger"
)

// Option applies a configuration option to the ProductEngine.
type Option func(*ProductEngine)

// WithName sets the engine name for identification and logging.
func WithName(name string) Option {
	return func(e *ProductEngine) {
		if name != "" {
			e.name = name
		}
	}
}

// WithLogger sets a custom logger for the engine.
func WithLogger(l logger.Logger) Option {
	return func(e *ProductEngine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithQueueCapacity bounds the engine inbox and response buffer.
func WithQueueCapacity(capacity int) Option {
	return func(e *ProductEngine) {
		if capacity > 0 {
			e.capacity = capacity
		}
	}
}

// WithComputer sets the computer the engine runs operations with. The engine
// takes ownership; a Computer must not be shared between engines.
func WithComputer(c *compute.Computer) Option {
	return func(e *ProductEngine) {
		if c != nil {
			e.computer = c
		}
	}
}
