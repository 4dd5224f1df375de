// Package queue provides the bounded FIFO inbox a compute engine drains.
//
// Enqueue never blocks: a full or closed queue rejects the message at once.
// Messages are handed out strictly in arrival order.
package queue

import (
	"context"
	"sync"

	"github.com/okian/storefront/internal/adapters/mq/message"
	"github.com/okian/storefront/pkg/metrics"
)

// Default queue configuration constants.
const (
	defaultCapacity = 1024
)

// Queue provides non-blocking enqueue and blocking, cancellable receive.
type Queue interface {
	// Enqueue adds env to the tail. It returns ErrFull or ErrClosed instead
	// of waiting.
	Enqueue(ctx context.Context, env message.Envelope) error

	// Receive waits for the head message. It returns ErrClosed once the
	// queue is closed and empty, or the context error.
	Receive(ctx context.Context) (message.Envelope, error)

	// Len returns the current number of queued messages.
	Len() int

	// Close stops accepting messages. Queued messages stay receivable.
	Close() error

	// Drain discards every queued message and returns how many were dropped.
	Drain() int
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	events   chan message.Envelope
	capacity int

	mu     sync.RWMutex
	closed bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		capacity: defaultCapacity,
	}
	for _, opt := range opts {
		opt(q)
	}
	q.events = make(chan message.Envelope, q.capacity)
	return q
}

// Enqueue adds a message to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, env message.Envelope) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueEnqueueError("closed")
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		metrics.RecordQueueEnqueueError("context_cancelled")
		return err
	}

	select {
	case q.events <- env:
		metrics.RecordQueueEnqueue(len(q.events))
		return nil
	default:
		metrics.RecordQueueEnqueueError("full")
		return ErrFull
	}
}

// Receive returns the next message in arrival order.
func (q *InMemoryQueue) Receive(ctx context.Context) (message.Envelope, error) {
	select {
	case env, ok := <-q.events:
		if !ok {
			return message.Envelope{}, ErrClosed
		}
		metrics.RecordQueueDequeue()
		return env, nil
	case <-ctx.Done():
		return message.Envelope{}, ctx.Err()
	}
}

// Len returns the current number of queued messages.
func (q *InMemoryQueue) Len() int {
	return len(q.events)
}

// Capacity returns the maximum number of queued messages.
func (q *InMemoryQueue) Capacity() int {
	return q.capacity
}

// Close gracefully shuts down the queue.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.events)
	q.closed = true
	return nil
}

// Drain discards whatever is still queued.
func (q *InMemoryQueue) Drain() int {
	dropped := 0
	for {
		select {
		case _, ok := <-q.events:
			if !ok {
				return dropped
			}
			dropped++
		default:
			return dropped
		}
	}
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
