// Package dispatcher owns the lifecycle of one compute engine on behalf of a
// caller. It forwards requests to the engine and fans responses out to
// subscribed listeners.
package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/okian/storefront/internal/adapters/mq/engine"
	"github.com/okian/storefront/internal/adapters/mq/message"
	"github.com/okian/storefront/internal/adapters/mq/queue"
	"github.com/okian/storefront/pkg/logger"
	"github.com/okian/storefront/pkg/metrics"
)

// Default dispatcher configuration constants.
const (
	defaultTerminateTimeout = 5 * time.Second
)

// Send outcomes reported to metrics.
const (
	outcomeDelivered    = "delivered"
	outcomeUnavailable  = "unavailable"
	outcomeBackpressure = "backpressure"
	outcomeFailed       = "failed"
)

// Resolver locates the engine factory for an entry-point reference.
type Resolver interface {
	Resolve(path string) (engine.Factory, error)
}

// Listener receives one engine response. Each listener gets its own decoded
// copy.
type Listener func(resp message.Response)

// SubscriptionID identifies a registered listener.
type SubscriptionID uint64

type subscription struct {
	id SubscriptionID
	fn Listener
}

// Dispatcher manages at most one live engine.
type Dispatcher struct {
	resolver Resolver

	mu        sync.RWMutex
	engine    engine.Engine
	path      string
	listeners []subscription
	nextID    SubscriptionID

	strictSend       bool
	terminateTimeout time.Duration
	logger           logger.Logger
}

// New creates an idle dispatcher resolving engines through resolver.
func New(resolver Resolver, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		resolver:         resolver,
		terminateTimeout: defaultTerminateTimeout,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = logger.Get()
	}
	d.logger = d.logger.Named("dispatcher")
	return d
}

// Initialize starts the engine at path. It is a no-op while an engine for the
// same path is live; a different path replaces the running engine.
func (d *Dispatcher) Initialize(ctx context.Context, path string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.engine != nil && d.path == path {
		return nil
	}
	if d.engine != nil {
		d.terminateLocked(ctx)
		metrics.RecordDispatcherLifecycle("replace")
	}

	if d.resolver == nil {
		return fmt.Errorf("%w: no resolver", engine.ErrEngineNotFound)
	}
	factory, err := d.resolver.Resolve(path)
	if err != nil {
		metrics.RecordDispatcherLifecycle("init_failed")
		return fmt.Errorf("initialize %q: %w", path, err)
	}
	eng, err := factory(ctx)
	if err != nil {
		metrics.RecordDispatcherLifecycle("init_failed")
		return fmt.Errorf("%w: %q: %w", ErrEngineStart, path, err)
	}

	d.engine = eng
	d.path = path
	go d.deliver(eng)

	metrics.RecordDispatcherLifecycle("initialize")
	d.logger.Debug(ctx, "engine started", logger.String("path", path))
	return nil
}

// Send copies req to the live engine.
func (d *Dispatcher) Send(ctx context.Context, req message.Request) error {
	env, err := message.EncodeRequest(req)
	if err != nil {
		metrics.RecordDispatcherSend(outcomeFailed)
		return err
	}
	return d.SendEnvelope(ctx, env)
}

// SendEnvelope forwards env as is. Without a live engine the message is
// dropped and nil returned, unless strict send is enabled.
func (d *Dispatcher) SendEnvelope(ctx context.Context, env message.Envelope) error {
	d.mu.RLock()
	eng := d.engine
	d.mu.RUnlock()

	if eng == nil {
		return d.unavailable(ctx, env.Type)
	}

	err := eng.Post(ctx, env)
	switch {
	case err == nil:
		metrics.RecordDispatcherSend(outcomeDelivered)
		return nil
	case errors.Is(err, queue.ErrClosed):
		return d.unavailable(ctx, env.Type)
	case errors.Is(err, queue.ErrFull):
		metrics.RecordDispatcherSend(outcomeBackpressure)
		return fmt.Errorf("%w: %s", ErrBackpressure, env.Type)
	default:
		metrics.RecordDispatcherSend(outcomeFailed)
		return fmt.Errorf("send %s: %w", env.Type, err)
	}
}

func (d *Dispatcher) unavailable(ctx context.Context, t message.Type) error {
	metrics.RecordDispatcherSend(outcomeUnavailable)
	d.logger.Debug(ctx, "no live engine, message dropped", logger.String("type", string(t)))
	if d.strictSend {
		return fmt.Errorf("%w: %s", ErrEngineUnavailable, t)
	}
	return nil
}

// Subscribe registers fn for every subsequent response. A nil fn is not
// registered and yields the zero SubscriptionID.
func (d *Dispatcher) Subscribe(fn Listener) SubscriptionID {
	if fn == nil {
		return 0
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nextID++
	d.listeners = append(d.listeners, subscription{id: d.nextID, fn: fn})
	return d.nextID
}

// Unsubscribe removes the listener registered under id. Unknown ids are
// ignored.
func (d *Dispatcher) Unsubscribe(id SubscriptionID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, s := range d.listeners {
		if s.id == id {
			d.listeners = append(d.listeners[:i:i], d.listeners[i+1:]...)
			return
		}
	}
}

// Live reports whether an engine is running.
func (d *Dispatcher) Live() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.engine != nil
}

// Close terminates the engine. Pending work is discarded and later sends
// are dropped. A listener call already under way may still complete. Close
// is idempotent.
func (d *Dispatcher) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.engine == nil {
		return nil
	}
	d.terminateLocked(context.Background())
	metrics.RecordDispatcherLifecycle("close")
	return nil
}

func (d *Dispatcher) terminateLocked(ctx context.Context) {
	eng := d.engine
	d.engine = nil
	d.path = ""

	tctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.terminateTimeout)
	defer cancel()
	if err := eng.Terminate(tctx); err != nil {
		d.logger.Warn(ctx, "engine did not stop in time", logger.Error(err))
	}
}

// deliver fans responses from eng out to listeners until eng stops. Responses
// that race a teardown of eng are dropped.
func (d *Dispatcher) deliver(eng engine.Engine) {
	for env := range eng.Responses() {
		d.mu.RLock()
		current := d.engine == eng
		listeners := make([]subscription, len(d.listeners))
		copy(listeners, d.listeners)
		d.mu.RUnlock()

		if !current {
			continue
		}
		metrics.RecordDispatcherDelivery()
		for _, s := range listeners {
			resp, err := message.DecodeResponse(env)
			if err != nil {
				d.logger.Error(context.Background(), "failed to decode response",
					logger.String("type", string(env.Type)), logger.Error(err))
				break
			}
			d.call(s, resp)
		}
	}
}

// call runs one listener. A panic is logged and counted; delivery to the
// remaining listeners goes on.
func (d *Dispatcher) call(s subscription, resp message.Response) {
	defer func() {
		if r := recover(); r != nil {
			metrics.RecordDispatcherListenerPanic()
			d.logger.Error(context.Background(), "listener panicked",
				logger.Any("subscription", s.id),
				logger.String("type", string(resp.Type())),
				logger.Any("panic", r))
		}
	}()
	s.fn(resp)
}

// Mount runs fn with a dispatcher initialized at path and closes it on every
// exit path.
func Mount(ctx context.Context, resolver Resolver, path string, fn func(*Dispatcher) error, opts ...Option) error {
	d := New(resolver, opts...)
	defer func() { _ = d.Close() }()

	if err := d.Initialize(ctx, path); err != nil {
		return err
	}
	return fn(d)
}
