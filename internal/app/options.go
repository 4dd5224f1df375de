package service

import (
	"time"

	"github.com/okian/storefront/internal/adapters/mq/engine"
	"github.com/okian/storefront/internal/domain/product"
	"github.com/okian/storefront/pkg/logger"
	"golang.org/x/text/language"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithEnginePath sets the engine entry point every dispatcher initializes.
func WithEnginePath(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.enginePath = path
		}
	}
}

// WithRegistry replaces the default engine registry.
func WithRegistry(r *engine.Registry) Option {
	return func(s *Service) {
		if r != nil {
			s.registry = r
		}
	}
}

// WithQueueSize sets the inbox capacity of each engine.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithLocale sets the collation locale for name sorting.
func WithLocale(tag language.Tag) Option {
	return func(s *Service) {
		s.locale = tag
	}
}

// WithResponseTimeout bounds how long a call waits for the engine.
func WithResponseTimeout(timeout time.Duration) Option {
	return func(s *Service) {
		if timeout > 0 {
			s.responseTimeout = timeout
		}
	}
}

// WithStrictSend makes sends without a live engine fail instead of being
// dropped.
func WithStrictSend(strict bool) Option {
	return func(s *Service) {
		s.strictSend = strict
	}
}

// WithAdminPassword sets the admin password. Empty disables admin login.
func WithAdminPassword(password string) Option {
	return func(s *Service) {
		s.adminPassword = password
	}
}

// WithSessionTTL sets the admin session lifetime.
func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.sessionTTL = ttl
		}
	}
}

// WithMaxSessions bounds concurrent admin sessions.
func WithMaxSessions(n int) Option {
	return func(s *Service) {
		s.maxSessions = n
	}
}

// WithCatalog seeds the catalog loaded at Start.
func WithCatalog(products []product.Product) Option {
	return func(s *Service) {
		s.seed = products
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
