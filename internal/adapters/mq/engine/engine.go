// Package engine runs compute engines: isolated, single-goroutine actors that
// take product requests off a FIFO inbox, process each to completion, and
// emit one response per recognized request.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/okian/storefront/internal/adapters/mq/message"
	"github.com/okian/storefront/internal/adapters/mq/queue"
	"github.com/okian/storefront/internal/domain/compute"
	"github.com/okian/storefront/pkg/logger"
	"github.com/okian/storefront/pkg/metrics"
)

// Default engine configuration constants.
const (
	defaultQueueCapacity = 1024
	defaultName          = "engine"
)

// Engine is a running compute engine instance owned by a single dispatcher.
type Engine interface {
	// Post enqueues env without blocking. It returns queue.ErrFull or
	// queue.ErrClosed when the message cannot be accepted.
	Post(ctx context.Context, env message.Envelope) error

	// Responses yields response envelopes in processing order. It is closed
	// when the engine stops.
	Responses() <-chan message.Envelope

	// Terminate stops the engine, discarding queued and in-flight work, and
	// waits for its goroutine to exit or ctx to end.
	Terminate(ctx context.Context) error

	// Done is closed once the engine goroutine has exited.
	Done() <-chan struct{}
}

// ProductEngine implements Engine over the product compute operations.
type ProductEngine struct {
	name     string
	capacity int
	computer *compute.Computer
	inbox    *queue.InMemoryQueue
	out      chan message.Envelope

	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once

	logger logger.Logger
}

// Start creates a ProductEngine and runs it until Terminate or until ctx is
// cancelled.
func Start(ctx context.Context, opts ...Option) *ProductEngine {
	e := &ProductEngine{
		name:     defaultName,
		capacity: defaultQueueCapacity,
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = logger.Get()
	}
	e.logger = e.logger.Named(e.name)
	if e.computer == nil {
		e.computer = compute.New()
	}
	e.inbox = queue.NewInMemoryQueue(queue.WithCapacity(e.capacity))
	e.out = make(chan message.Envelope, e.capacity)

	runCtx, cancel := context.WithCancel(ctx)
	e.cancel = cancel

	metrics.AddEngineInstances(1)
	e.logger.Debug(ctx, "engine started",
		logger.Int("capacity", e.capacity),
		logger.String("locale", e.computer.Locale().String()))
	go e.run(runCtx)
	return e
}

// Post enqueues a message for the engine.
func (e *ProductEngine) Post(ctx context.Context, env message.Envelope) error {
	return e.inbox.Enqueue(ctx, env)
}

// Responses returns the response channel.
func (e *ProductEngine) Responses() <-chan message.Envelope { return e.out }

// Done returns a channel closed when the engine has stopped.
func (e *ProductEngine) Done() <-chan struct{} { return e.done }

// Terminate stops the engine. Queued messages are dropped without a reply.
func (e *ProductEngine) Terminate(ctx context.Context) error {
	e.once.Do(func() {
		e.cancel()
		_ = e.inbox.Close()
		if dropped := e.inbox.Drain(); dropped > 0 {
			e.logger.Debug(ctx, "discarded queued messages", logger.Int("dropped", dropped))
		}
	})

	select {
	case <-e.done:
		return nil
	case <-ctx.Done():
		e.logger.Warn(ctx, "terminate timed out")
		return fmt.Errorf("terminate %s: %w", e.name, ctx.Err())
	}
}

// run is the engine loop. One message is processed to completion before the
// next is received.
func (e *ProductEngine) run(ctx context.Context) {
	defer close(e.done)
	defer close(e.out)
	defer metrics.AddEngineInstances(-1)

	for {
		env, err := e.inbox.Receive(ctx)
		if err != nil {
			return
		}
		if ctx.Err() != nil {
			return
		}
		e.handle(ctx, env)
	}
}

// handle processes one envelope. Failures are logged and counted; they never
// stop the loop.
func (e *ProductEngine) handle(ctx context.Context, env message.Envelope) {
	msgType := string(env.Type)
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			metrics.RecordEngineFailure(msgType, "panic")
			e.logger.Error(ctx, "operation panicked", logger.String("type", msgType), logger.Any("panic", r))
		}
		metrics.RecordEngineProcessingLatency(msgType, float64(time.Since(start).Microseconds())/1000)
	}()

	req, err := message.DecodeRequest(env)
	switch {
	case errors.Is(err, message.ErrUnknownType):
		metrics.RecordEngineUnknownMessage()
		e.logger.Warn(ctx, "unknown message type", logger.String("type", msgType))
		return
	case err != nil:
		metrics.RecordEngineFailure(msgType, "decode")
		e.logger.Error(ctx, "failed to decode message", logger.String("type", msgType), logger.Error(err))
		return
	}
	metrics.RecordEngineMessage(msgType)

	reply, err := message.EncodeResponse(e.process(req))
	if err != nil {
		metrics.RecordEngineFailure(msgType, "encode")
		e.logger.Error(ctx, "failed to encode response", logger.String("type", msgType), logger.Error(err))
		return
	}
	e.emit(ctx, reply)
}

// process runs the pure operation selected by req.
func (e *ProductEngine) process(req message.Request) message.Response {
	switch r := req.(type) {
	case message.FilterRequest:
		return message.FilterResult{Products: e.computer.Filter(r.Products, r.Criteria)}
	case message.SortRequest:
		return message.SortResult{Products: e.computer.Sort(r.Products, r.SortKey)}
	case message.StatisticsRequest:
		return message.StatisticsResult{Report: e.computer.Statistics(r.Products)}
	default:
		panic(fmt.Sprintf("unhandled request %T", req))
	}
}

// emit hands reply to the owning dispatcher unless the engine is stopping.
func (e *ProductEngine) emit(ctx context.Context, reply message.Envelope) {
	if ctx.Err() != nil {
		return
	}
	select {
	case e.out <- reply:
		metrics.RecordEngineResponse(string(reply.Type))
	case <-ctx.Done():
	}
}
