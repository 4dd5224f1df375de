// Package service provides the storefront service that implements the
// dependencies required by the HTTP API and the CLI.
package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/storefront/internal/adapters/catalog"
	"github.com/okian/storefront/internal/adapters/http/auth"
	"github.com/okian/storefront/internal/adapters/mq/dispatcher"
	"github.com/okian/storefront/internal/adapters/mq/engine"
	"github.com/okian/storefront/internal/adapters/mq/message"
	"github.com/okian/storefront/internal/domain/product"
	"github.com/okian/storefront/pkg/logger"
	"github.com/okian/storefront/pkg/metrics"
	"golang.org/x/text/language"
)

// Default service configuration constants.
const (
	defaultQueueSize       = 1024
	defaultResponseTimeout = 2 * time.Second
	defaultSessionTTL      = 30 * time.Minute
	defaultMaxSessions     = 1000
)

// Service owns the catalog, the engine registry and the admin gate. Every
// computation runs on a dispatcher mounted for that call.
type Service struct {
	mu sync.RWMutex

	// Core components
	catalog  *catalog.Store
	registry *engine.Registry
	gate     *auth.Gate

	// Configuration
	enginePath      string
	queueSize       int
	locale          language.Tag
	responseTimeout time.Duration
	strictSend      bool
	adminPassword   string
	sessionTTL      time.Duration
	maxSessions     int
	seed            []product.Product

	// State
	started      bool
	computations atomic.Int64
	timeouts     atomic.Int64

	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		enginePath:      engine.DefaultEnginePath,
		queueSize:       defaultQueueSize,
		locale:          language.English,
		responseTimeout: defaultResponseTimeout,
		sessionTTL:      defaultSessionTTL,
		maxSessions:     defaultMaxSessions,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes the service components. It fails when the configured
// engine entry point cannot be resolved.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	s.logger.Info(ctx, "starting storefront service...")

	if s.registry == nil {
		s.registry = engine.NewDefaultRegistry(s.locale,
			engine.WithQueueCapacity(s.queueSize),
			engine.WithLogger(s.logger),
		)
	}
	if _, err := s.registry.Resolve(s.enginePath); err != nil {
		return fmt.Errorf("%w: %w", ErrStart, err)
	}

	s.catalog = catalog.NewStore(s.seed)
	s.seed = nil
	s.gate = auth.NewGate(
		auth.WithPassword(s.adminPassword),
		auth.WithSessionTTL(s.sessionTTL),
		auth.WithSessionStore(auth.NewSessionStore(auth.WithMaxSessions(s.maxSessions))),
	)

	s.started = true
	s.logger.Info(ctx, "storefront service started",
		logger.String("enginePath", s.enginePath),
		logger.Int("queueSize", s.queueSize),
		logger.String("locale", s.locale.String()),
		logger.Int("products", s.catalog.Count()),
	)
	return nil
}

// Stop marks the service stopped. Dispatchers are call scoped, so nothing
// outlives the call that mounted it.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.started = false
	s.logger.Info(context.Background(), "storefront service stopped")
}

// Products filters the catalog by criteria and, when key is set, sorts the
// result.
func (s *Service) Products(ctx context.Context, criteria product.Criteria, key product.SortKey) ([]product.Product, error) {
	store, err := s.store()
	if err != nil {
		return nil, err
	}

	var out []product.Product
	err = s.mount(ctx, func(c *call) error {
		resp, err := c.roundTrip(ctx, message.FilterRequest{Products: store.All(), Criteria: criteria})
		if err != nil {
			return err
		}
		filtered, ok := resp.(message.FilterResult)
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnexpectedResponse, resp.Type())
		}
		out = filtered.Products
		if key == "" {
			return nil
		}

		resp, err = c.roundTrip(ctx, message.SortRequest{Products: out, SortKey: key})
		if err != nil {
			return err
		}
		sorted, ok := resp.(message.SortResult)
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnexpectedResponse, resp.Type())
		}
		out = sorted.Products
		return nil
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []product.Product{}
	}
	return out, nil
}

// Statistics aggregates the catalog.
func (s *Service) Statistics(ctx context.Context) (product.Report, error) {
	store, err := s.store()
	if err != nil {
		return product.Report{}, err
	}

	var report product.Report
	err = s.mount(ctx, func(c *call) error {
		resp, err := c.roundTrip(ctx, message.StatisticsRequest{Products: store.All()})
		if err != nil {
			return err
		}
		stats, ok := resp.(message.StatisticsResult)
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnexpectedResponse, resp.Type())
		}
		report = stats.Report
		return nil
	})
	return report, err
}

// Compute forwards a raw wire message and returns the engine's answer.
// Unrecognized types get ErrNoResponse once the wait window closes.
func (s *Service) Compute(ctx context.Context, env message.Envelope) (message.Response, error) {
	if _, err := s.store(); err != nil {
		return nil, err
	}

	var out message.Response
	err := s.mount(ctx, func(c *call) error {
		if err := c.d.SendEnvelope(ctx, env); err != nil {
			return err
		}
		resp, err := c.wait(ctx, env.Type)
		out = resp
		return err
	})
	return out, err
}

// ReplaceCatalog swaps the catalog contents and returns the new version.
func (s *Service) ReplaceCatalog(products []product.Product) (uint64, error) {
	store, err := s.store()
	if err != nil {
		return 0, err
	}
	version := store.Replace(products)
	s.logger.Info(context.Background(), "catalog replaced",
		logger.Int("products", len(products)),
		logger.Int64("version", int64(version)),
	)
	return version, nil
}

// Gate returns the admin auth gate. It is nil before Start.
func (s *Service) Gate() *auth.Gate {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gate
}

// RefreshGauges resyncs the catalog and admin session gauges with the
// service state. It does nothing before Start.
func (s *Service) RefreshGauges() {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return
	}
	metrics.UpdateCatalogProducts(s.catalog.Count())
	metrics.UpdateAdminSessions(int(s.gate.Sessions()))
}

// GetStats returns service statistics for monitoring. It has no side
// effects.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]any{
		"started":      s.started,
		"enginePath":   s.enginePath,
		"queueSize":    s.queueSize,
		"locale":       s.locale.String(),
		"computations": s.computations.Load(),
		"timeouts":     s.timeouts.Load(),
	}
	if s.started {
		stats["products"] = s.catalog.Count()
		stats["catalogVersion"] = s.catalog.Version()
		stats["catalogUpdatedAt"] = s.catalog.UpdatedAt().UTC().Format(time.RFC3339)
		stats["adminSessions"] = s.gate.Sessions()
	}
	return stats
}

func (s *Service) store() (*catalog.Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	return s.catalog, nil
}

// mount runs fn against a dispatcher that lives only for this call.
func (s *Service) mount(ctx context.Context, fn func(*call) error) error {
	s.computations.Add(1)
	return dispatcher.Mount(ctx, s.registry, s.enginePath, func(d *dispatcher.Dispatcher) error {
		c := &call{d: d, responses: make(chan message.Response, 1), timeout: s.responseTimeout}
		id := d.Subscribe(func(resp message.Response) {
			select {
			case c.responses <- resp:
			default:
			}
		})
		defer d.Unsubscribe(id)

		err := fn(c)
		if err != nil && isTimeout(err) {
			s.timeouts.Add(1)
		}
		return err
	},
		dispatcher.WithStrictSend(s.strictSend),
		dispatcher.WithLogger(s.logger),
	)
}

// call is one mounted dispatcher plus the channel its listener feeds.
type call struct {
	d         *dispatcher.Dispatcher
	responses chan message.Response
	timeout   time.Duration
}

func (c *call) roundTrip(ctx context.Context, req message.Request) (message.Response, error) {
	if err := c.d.Send(ctx, req); err != nil {
		return nil, err
	}
	return c.wait(ctx, req.Type())
}

func (c *call) wait(ctx context.Context, t message.Type) (message.Response, error) {
	timer := time.NewTimer(c.timeout)
	defer timer.Stop()

	select {
	case resp := <-c.responses:
		if resp.Type() != t.Done() {
			return nil, fmt.Errorf("%w: %s answering %s", ErrUnexpectedResponse, resp.Type(), t)
		}
		return resp, nil
	case <-timer.C:
		return nil, fmt.Errorf("%w: %s after %s", ErrNoResponse, t, c.timeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
