package worker_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/okian/concentration/internal/adapters/mq/queue"
	"github.com/okian/concentration/internal/adapters/mq/worker"
	"github.com/okian/concentration/internal/domain/model"
	"github.com/okian/concentration/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	_ = logger.Init()
}

type collectSink struct {
	mu    sync.Mutex
	items []model.Notification
	got   chan struct{}
}

func newCollectSink() *collectSink { return &collectSink{got: make(chan struct{}, 1024)} }

func (s *collectSink) Deliver(_ context.Context, n model.Notification) {
	s.mu.Lock()
	s.items = append(s.items, n)
	s.mu.Unlock()
	s.got <- struct{}{}
}

func (s *collectSink) wait(n int) bool {
	for range n {
		select {
		case <-s.got:
		case <-time.After(2 * time.Second):
			return false
		}
	}
	return true
}

func (s *collectSink) byGame() map[string][]uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := map[string][]uint64{}
	for _, n := range s.items {
		out[n.GameID] = append(out[n.GameID], n.Seq)
	}
	return out
}

// fixedSource always returns the same pick.
type fixedSource int

func (f fixedSource) IntN(n int) int { return int(f) % n }

func TestDispatcher(t *testing.T) {
	Convey("Given a dispatcher over a queue", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		q := queue.NewInMemoryQueue(queue.WithCapacity(8))
		sink := newCollectSink()
		d := worker.NewDispatcher(q, sink, worker.WithSource(fixedSource(2)), worker.WithMismatchVariants(3))
		go d.Run(ctx)

		Convey("When a mismatch and a flip are dispatched", func() {
			So(q.Enqueue(ctx, queue.Message{Notification: model.Notification{GameID: "g", Seq: 1, Cue: model.CueFlip}, EnqueuedAt: time.Now()}), ShouldBeNil)
			So(q.Enqueue(ctx, queue.Message{Notification: model.Notification{GameID: "g", Seq: 2, Cue: model.CueMismatch}, EnqueuedAt: time.Now()}), ShouldBeNil)
			So(sink.wait(2), ShouldBeTrue)

			Convey("Then only the mismatch carries a picked variant", func() {
				sink.mu.Lock()
				defer sink.mu.Unlock()
				So(sink.items[0].CueVariant, ShouldEqual, 0)
				So(sink.items[1].CueVariant, ShouldEqual, 2)
			})
		})

		Convey("When the queue is closed", func() {
			So(q.Enqueue(ctx, queue.Message{Notification: model.Notification{GameID: "g", Seq: 1}}), ShouldBeNil)
			So(q.Close(), ShouldBeNil)

			Convey("Then the backlog is delivered and the dispatcher stops", func() {
				sctx, scancel := context.WithTimeout(ctx, 2*time.Second)
				defer scancel()
				So(d.Shutdown(sctx), ShouldBeNil)
				So(len(sink.byGame()["g"]), ShouldEqual, 1)
			})
		})
	})

	Convey("Given a sink that panics", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		q := queue.NewInMemoryQueue(queue.WithCapacity(4))
		calls := make(chan uint64, 4)
		d := worker.NewDispatcher(q, worker.SinkFunc(func(_ context.Context, n model.Notification) {
			calls <- n.Seq
			if n.Seq == 1 {
				panic("boom")
			}
		}))
		go d.Run(ctx)

		Convey("Then the dispatcher keeps running", func() {
			So(q.Enqueue(ctx, queue.Message{Notification: model.Notification{Seq: 1}}), ShouldBeNil)
			So(q.Enqueue(ctx, queue.Message{Notification: model.Notification{Seq: 2}}), ShouldBeNil)
			So(<-calls, ShouldEqual, 1)
			So(<-calls, ShouldEqual, 2)
		})
	})
}

func TestPool(t *testing.T) {
	Convey("Given a pool of four shards", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		sink := newCollectSink()
		p := worker.NewPool(4, 256, sink)
		p.Start(ctx)

		Convey("Then a game always maps to the same shard", func() {
			So(p.Size(), ShouldEqual, 4)
			So(p.Shard("g-1"), ShouldEqual, p.Shard("g-1"))
			So(p.Shard("g-1"), ShouldBeBetweenOrEqual, 0, 3)
		})

		Convey("When several games emit interleaved notifications", func() {
			const games, perGame = 8, 20
			for seq := 1; seq <= perGame; seq++ {
				for g := range games {
					p.Notify(model.Notification{GameID: fmt.Sprintf("g-%d", g), Seq: uint64(seq)})
				}
			}
			So(sink.wait(games*perGame), ShouldBeTrue)

			Convey("Then each game's notifications arrive in order", func() {
				for _, seqs := range sink.byGame() {
					So(len(seqs), ShouldEqual, perGame)
					for i, s := range seqs {
						So(s, ShouldEqual, uint64(i+1))
					}
				}
			})

			Convey("Then shutdown drains cleanly", func() {
				So(p.Shutdown(ctx), ShouldBeNil)
				So(p.Len(), ShouldEqual, 0)
			})
		})
	})

	Convey("Given a pool whose shard queue is full", t, func() {
		block := make(chan struct{})
		p := worker.NewPool(1, 1, worker.SinkFunc(func(context.Context, model.Notification) { <-block }))
		ctx, cancel := context.WithCancel(context.Background())
		p.Start(ctx)

		Convey("Then Notify drops instead of blocking", func() {
			done := make(chan struct{})
			go func() {
				for i := range 10 {
					p.Notify(model.Notification{GameID: "g", Seq: uint64(i)})
				}
				close(done)
			}()
			select {
			case <-done:
				So(true, ShouldBeTrue)
			case <-time.After(2 * time.Second):
				So("notify blocked", ShouldBeEmpty)
			}
			close(block)
			cancel()
		})
	})
}
