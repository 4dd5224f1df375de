package dispatcher

import (
	"time"

	"github.com/okian/storefront/pkg/logger"
)

// Option applies a configuration option to the Dispatcher.
type Option func(*Dispatcher)

// WithStrictSend makes sends without a live engine return
// ErrEngineUnavailable instead of being dropped silently.
func WithStrictSend(strict bool) Option {
	return func(d *Dispatcher) {
		d.strictSend = strict
	}
}

// WithLogger sets a custom logger for the dispatcher.
func WithLogger(l logger.Logger) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithTerminateTimeout bounds how long Close waits for the engine to stop.
func WithTerminateTimeout(timeout time.Duration) Option {
	return func(d *Dispatcher) {
		if timeout > 0 {
			d.terminateTimeout = timeout
		}
	}
}
