// Package worker dispatches game notifications from the shard queues to subscribers.
package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/concentration/internal/adapters/mq/queue"
	"github.com/okian/concentration/internal/domain/deck"
	"github.com/okian/concentration/internal/domain/model"
	"github.com/okian/concentration/pkg/logger"
	"github.com/okian/concentration/pkg/metrics"
)

// DefaultMismatchVariants matches the three mismatch sounds the browser board ships.
const DefaultMismatchVariants = 3

// Sink receives notifications after dispatch.
type Sink interface {
	Deliver(ctx context.Context, n model.Notification)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, n model.Notification)

// Deliver calls f(ctx, n).
func (f SinkFunc) Deliver(ctx context.Context, n model.Notification) { f(ctx, n) }

// Queue defines how dispatchers receive messages.
type Queue interface {
	Dequeue() <-chan queue.Message
}

// Dispatcher drains one queue in order. It picks the sound variant for
// mismatch cues and hands each notification to the sink.
type Dispatcher struct {
	queue    Queue
	sink     Sink
	source   deck.Source
	variants int
	name     string

	done chan struct{}

	logger logger.Logger
}

// NewDispatcher creates a dispatcher for one queue.
func NewDispatcher(q Queue, sink Sink, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		queue:    q,
		sink:     sink,
		source:   deck.DefaultSource(),
		variants: DefaultMismatchVariants,
		name:     "dispatcher",
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = logger.Get().Named(d.name)
	}
	return d
}

// Run delivers messages until the queue is closed and drained or ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context) {
	defer close(d.done)

	messages := d.queue.Dequeue()
	for {
		select {
		case <-ctx.Done():
			return
		case m, ok := <-messages:
			if !ok {
				return
			}
			d.dispatch(ctx, m)
		}
	}
}

// Done is closed once Run returns.
func (d *Dispatcher) Done() <-chan struct{} { return d.done }

// Shutdown waits for Run to return. Callers close the queue first.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		d.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

func (d *Dispatcher) dispatch(ctx context.Context, m queue.Message) { //nolint:gocritic // hugeParam: Message is passed by value for channel semantics
	n := m.Notification
	if n.Cue == model.CueMismatch && d.variants > 1 {
		n.CueVariant = d.source.IntN(d.variants)
	}

	defer func() {
		if r := recover(); r != nil {
			metrics.RecordErrorByComponent("dispatcher", "sink_panic")
			d.logger.Error(ctx, "sink panicked",
				logger.GameID(n.GameID),
				logger.Uint64("seq", n.Seq),
				logger.Any("panic", r),
			)
		}
	}()

	d.sink.Deliver(ctx, n)
	metrics.RecordNotificationDelivered(time.Since(m.EnqueuedAt))
	d.logger.Debug(ctx, "notification delivered",
		logger.GameID(n.GameID),
		logger.String("kind", string(n.Kind)),
		logger.Uint64("seq", n.Seq),
	)
}
