// Package broadcast fans dispatched notifications out to the subscribers of each game.
package broadcast

import (
	"context"
	"sync"

	"github.com/okian/concentration/internal/domain/model"
	"github.com/okian/concentration/pkg/logger"
	"github.com/okian/concentration/pkg/metrics"
)

// DefaultBuffer is the per-subscriber channel size.
const DefaultBuffer = 64

// Subscription is one subscriber's view of a game's notifications.
// C is closed when the subscriber falls behind, the game goes away, or
// Close is called.
type Subscription struct {
	C <-chan model.Notification

	hub    *Hub
	gameID string
	ch     chan model.Notification
	once   sync.Once
	lagged bool
}

// Close unsubscribes. It is safe to call more than once.
func (s *Subscription) Close() { s.hub.remove(s) }

// Lagged reports whether the hub closed the subscription because its buffer filled up.
func (s *Subscription) Lagged() bool {
	s.hub.mu.RLock()
	defer s.hub.mu.RUnlock()
	return s.lagged
}

// Hub keeps subscribers per game.
type Hub struct {
	mu     sync.RWMutex
	rooms  map[string]map[*Subscription]struct{}
	buffer int

	logger logger.Logger
}

// Option applies a configuration option to the Hub.
type Option func(*Hub)

// WithBuffer sets the per-subscriber buffer size.
func WithBuffer(n int) Option {
	return func(h *Hub) {
		if n > 0 {
			h.buffer = n
		}
	}
}

// WithLogger sets a custom logger for the hub.
func WithLogger(l logger.Logger) Option {
	return func(h *Hub) {
		if l != nil {
			h.logger = l
		}
	}
}

// NewHub creates an empty hub.
func NewHub(opts ...Option) *Hub {
	h := &Hub{
		rooms:  make(map[string]map[*Subscription]struct{}),
		buffer: DefaultBuffer,
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.logger == nil {
		h.logger = logger.Get().Named("broadcast")
	}
	return h
}

// Subscribe registers a subscriber for gameID.
func (h *Hub) Subscribe(gameID string) *Subscription {
	ch := make(chan model.Notification, h.buffer)
	s := &Subscription{C: ch, hub: h, gameID: gameID, ch: ch}

	h.mu.Lock()
	room, ok := h.rooms[gameID]
	if !ok {
		room = make(map[*Subscription]struct{})
		h.rooms[gameID] = room
	}
	room[s] = struct{}{}
	h.mu.Unlock()

	metrics.AddSubscribers(1)
	return s
}

// Deliver sends n to every subscriber of its game without blocking. A
// subscriber whose buffer is full is dropped so it can resync from a snapshot.
func (h *Hub) Deliver(ctx context.Context, n model.Notification) { //nolint:gocritic // hugeParam: matches the sink signature
	var lagging []*Subscription

	h.mu.RLock()
	for s := range h.rooms[n.GameID] {
		select {
		case s.ch <- n:
		default:
			lagging = append(lagging, s)
		}
	}
	h.mu.RUnlock()

	for _, s := range lagging {
		h.logger.Warn(ctx, "subscriber lagging, disconnecting", logger.GameID(n.GameID))
		metrics.RecordErrorByComponent("broadcast", "subscriber_lagging")
		h.mu.Lock()
		s.lagged = true
		h.mu.Unlock()
		h.remove(s)
	}
}

// CloseGame disconnects every subscriber of gameID.
func (h *Hub) CloseGame(gameID string) {
	h.mu.Lock()
	room := h.rooms[gameID]
	delete(h.rooms, gameID)
	h.mu.Unlock()

	for s := range room {
		s.once.Do(func() {
			close(s.ch)
			metrics.AddSubscribers(-1)
		})
	}
}

// Count returns the number of subscribers of gameID.
func (h *Hub) Count(gameID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[gameID])
}

// Total returns the number of subscribers across games.
func (h *Hub) Total() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	total := 0
	for _, room := range h.rooms {
		total += len(room)
	}
	return total
}

// CloseAll disconnects every subscriber.
func (h *Hub) CloseAll() {
	h.mu.RLock()
	ids := make([]string, 0, len(h.rooms))
	for id := range h.rooms {
		ids = append(ids, id)
	}
	h.mu.RUnlock()
	for _, id := range ids {
		h.CloseGame(id)
	}
}

func (h *Hub) remove(s *Subscription) {
	h.mu.Lock()
	if room, ok := h.rooms[s.gameID]; ok {
		delete(room, s)
		if len(room) == 0 {
			delete(h.rooms, s.gameID)
		}
	}
	h.mu.Unlock()

	s.once.Do(func() {
		close(s.ch)
		metrics.AddSubscribers(-1)
	})
}
