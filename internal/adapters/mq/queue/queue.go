// Package queue buffers game notifications between the game lock and the
// dispatchers that fan them out to subscribers.
//
// Enqueue never blocks: it runs while a game holds its lock, so a full queue
// drops the notification instead of stalling play.
package queue

import (
	"context"
	"sync"
	"time"

	"github.com/okian/concentration/internal/domain/model"
	"github.com/okian/concentration/pkg/metrics"
)

const defaultQueueCapacity = 1024

// Message is a notification plus the time it entered the queue.
type Message struct {
	Notification model.Notification
	EnqueuedAt   time.Time
}

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a message. Returns ErrFull or ErrClosed when it was not added.
	Enqueue(ctx context.Context, m Message) error

	// Dequeue returns the channel messages are delivered on, in enqueue order.
	// The channel is closed when the queue is closed and drained.
	Dequeue() <-chan Message

	// Len returns the current number of queued messages.
	Len() int

	// Close stops accepting messages.
	Close() error

	// IsClosed returns true if the queue has been closed.
	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	name     string
	messages chan Message
	capacity int

	mu     sync.RWMutex
	closed bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		name:     "0",
		capacity: defaultQueueCapacity,
	}
	for _, opt := range opts {
		opt(q)
	}
	q.messages = make(chan Message, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(q.name, 0)
	return q
}

// Enqueue adds a message without blocking.
func (q *InMemoryQueue) Enqueue(ctx context.Context, m Message) error { //nolint:gocritic // hugeParam: Message is passed by value for channel semantics
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordErrorByComponent("queue", "closed")
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		metrics.RecordErrorByComponent("queue", "context_cancelled")
		return err
	}

	select {
	case q.messages <- m:
		metrics.RecordNotificationEnqueued()
		metrics.UpdateQueueSize(q.name, len(q.messages))
		return nil
	default:
		metrics.RecordNotificationDropped()
		metrics.RecordErrorByComponent("queue", "queue_full")
		return ErrFull
	}
}

// Dequeue returns the delivery channel.
func (q *InMemoryQueue) Dequeue() <-chan Message { return q.messages }

// Len returns the current number of queued messages.
func (q *InMemoryQueue) Len() int {
	size := len(q.messages)
	metrics.UpdateQueueSize(q.name, size)
	return size
}

// Close stops accepting messages. Queued messages stay readable.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.messages)
	q.closed = true
	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
