package worker

import (
	"context"
	"runtime"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/okian/concentration/internal/adapters/mq/queue"
	"github.com/okian/concentration/internal/domain/model"
	"github.com/okian/concentration/pkg/logger"
	"github.com/okian/concentration/pkg/metrics"
)

const poolShutdownTimeout = 5 * time.Second

// Pool shards notifications across dispatchers by game id, so every game's
// notifications are delivered by a single dispatcher in emission order.
type Pool struct {
	queues      []*queue.InMemoryQueue
	dispatchers []*Dispatcher
	now         func() time.Time

	logger logger.Logger
}

// NewPool creates count shards, each with its own queue of queueSize.
func NewPool(count, queueSize int, sink Sink, opts ...Option) *Pool {
	if count < 1 {
		count = runtime.NumCPU()
	}

	p := &Pool{
		queues:      make([]*queue.InMemoryQueue, count),
		dispatchers: make([]*Dispatcher, count),
		now:         time.Now,
		logger:      logger.Get().Named("dispatch-pool"),
	}
	for i := range count {
		name := strconv.Itoa(i)
		p.queues[i] = queue.NewInMemoryQueue(queue.WithCapacity(queueSize), queue.WithName(name))
		shardOpts := append([]Option{WithName("dispatcher-" + name)}, opts...)
		p.dispatchers[i] = NewDispatcher(p.queues[i], sink, shardOpts...)
	}
	return p
}

// Start runs every dispatcher.
func (p *Pool) Start(ctx context.Context) {
	for _, d := range p.dispatchers {
		go d.Run(ctx)
	}
	metrics.UpdateDispatcherCount(len(p.dispatchers))
}

// Shard returns the dispatcher index for a game id.
func (p *Pool) Shard(gameID string) int {
	return int(xxhash.Sum64String(gameID) % uint64(len(p.queues)))
}

// Notify enqueues n on its game's shard without blocking. It satisfies the
// game notifier contract and is safe to call with a game lock held.
func (p *Pool) Notify(n model.Notification) { //nolint:gocritic // hugeParam: matches the notifier signature
	shard := p.Shard(n.GameID)
	err := p.queues[shard].Enqueue(context.Background(), queue.Message{Notification: n, EnqueuedAt: p.now()})
	if err != nil {
		p.logger.Warn(context.Background(), "notification dropped",
			logger.GameID(n.GameID),
			logger.String("kind", string(n.Kind)),
			logger.Int("shard", shard),
			logger.Error(err),
		)
	}
}

// Len returns the total backlog across shards.
func (p *Pool) Len() int {
	total := 0
	for _, q := range p.queues {
		total += q.Len()
	}
	return total
}

// Size returns the number of shards.
func (p *Pool) Size() int { return len(p.queues) }

// Shutdown closes every queue and waits for the dispatchers to drain them.
func (p *Pool) Shutdown(ctx context.Context) error {
	for _, q := range p.queues {
		if err := q.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	var firstErr error
	for i, d := range p.dispatchers {
		if err := d.Shutdown(shutdownCtx); err != nil {
			p.logger.Warn(ctx, "dispatcher shutdown timed out", logger.Int("dispatcher", i))
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	metrics.UpdateDispatcherCount(0)
	return firstErr
}
