package repository

import (
	"context"
	"sync"
	"time"

	"github.com/okian/concentration/internal/domain/game"
	"github.com/okian/concentration/pkg/logger"
	"github.com/okian/concentration/pkg/metrics"
)

// DefaultMaxGames is the default cap on concurrently stored games.
const DefaultMaxGames = 1000

// MemoryStore is a map-backed Store.
type MemoryStore struct {
	mu       sync.RWMutex
	games    map[string]*Entry
	maxGames int
	now      func() time.Time
}

// NewMemoryStore creates an empty store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{
		games:    make(map[string]*Entry),
		maxGames: DefaultMaxGames,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStore) Put(_ context.Context, g *game.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.games[g.ID()]; ok {
		return ErrExists
	}
	if s.maxGames > 0 && len(s.games) >= s.maxGames {
		metrics.RecordErrorByComponent("repository", "capacity")
		return ErrCapacity
	}
	now := s.now()
	s.games[g.ID()] = &Entry{Game: g, CreatedAt: now, LastActive: now}
	metrics.UpdateActiveGames(len(s.games))
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*game.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.games[id]
	if !ok {
		return nil, ErrNotFound
	}
	e.LastActive = s.now()
	return e.Game, nil
}

// Peek returns the entry without marking the game active.
func (s *MemoryStore) Peek(_ context.Context, id string) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.games[id]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

func (s *MemoryStore) Delete(_ context.Context, id string) (*game.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.games[id]
	if !ok {
		return nil, ErrNotFound
	}
	delete(s.games, id)
	metrics.UpdateActiveGames(len(s.games))
	return e.Game, nil
}

func (s *MemoryStore) Sweep(_ context.Context, idle time.Duration) []*game.Game {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-idle)
	var evicted []*game.Game
	for id, e := range s.games {
		if e.LastActive.Before(cutoff) {
			evicted = append(evicted, e.Game)
			delete(s.games, id)
		}
	}
	if len(evicted) > 0 {
		metrics.UpdateActiveGames(len(s.games))
	}
	return evicted
}

// Clear removes and returns every game.
func (s *MemoryStore) Clear(_ context.Context) []*game.Game {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*game.Game, 0, len(s.games))
	for _, e := range s.games {
		out = append(out, e.Game)
	}
	s.games = make(map[string]*Entry)
	metrics.UpdateActiveGames(0)
	return out
}

func (s *MemoryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.games)
}

// StartSweeper evicts idle games every interval until ctx is done. Each
// evicted game is passed to onEvict outside the store lock.
func (s *MemoryStore) StartSweeper(ctx context.Context, interval, idle time.Duration, onEvict func(*game.Game)) {
	if interval <= 0 || idle <= 0 {
		return
	}
	log := logger.Get().Named("repository")
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				evicted := s.Sweep(ctx, idle)
				for _, g := range evicted {
					metrics.RecordGameEvicted()
					if onEvict != nil {
						onEvict(g)
					}
				}
				if len(evicted) > 0 {
					log.Info(ctx, "evicted idle games", logger.Int("count", len(evicted)), logger.Duration("idle", idle))
				}
			}
		}
	}()
}
