// Package service owns the live games and wires them to the notification
// pipeline. It implements the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/concentration/internal/adapters/mq/broadcast"
	"github.com/okian/concentration/internal/adapters/mq/worker"
	"github.com/okian/concentration/internal/adapters/repository"
	"github.com/okian/concentration/internal/domain/dedupe"
	"github.com/okian/concentration/internal/domain/deck"
	"github.com/okian/concentration/internal/domain/game"
	"github.com/okian/concentration/internal/domain/types"
	"github.com/okian/concentration/pkg/logger"
	"github.com/okian/concentration/pkg/metrics"
)

// Service manages game lifecycles for the API.
type Service struct {
	mu sync.RWMutex

	// Core components
	store   *repository.MemoryStore
	deduper dedupe.Deduper
	pool    *worker.Pool
	hub     *broadcast.Hub

	// Configuration
	alphabet         []deck.Symbol
	mismatchDelay    time.Duration
	volume           float64
	mismatchVariants int
	queueSize        int
	dispatcherCount  int
	dedupeSize       int
	maxGames         int
	idleTTL          time.Duration
	subscriberBuffer int
	scheduler        game.Scheduler
	shuffler         game.Shuffler
	source           deck.Source
	newID            func() string

	// State
	started bool
	cancel  context.CancelFunc

	// Logging
	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		alphabet:         append([]deck.Symbol(nil), deck.DefaultAlphabet...),
		mismatchDelay:    game.DefaultMismatchDelay,
		volume:           game.DefaultVolume,
		mismatchVariants: worker.DefaultMismatchVariants,
		queueSize:        1024,
		dispatcherCount:  runtime.NumCPU(),
		dedupeSize:       dedupe.DefaultMaxSize,
		maxGames:         repository.DefaultMaxGames,
		idleTTL:          30 * time.Minute,
		subscriberBuffer: broadcast.DefaultBuffer,
		scheduler:        game.WallClock(),
		newID:            uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	if err := deck.ValidateAlphabet(s.alphabet); err != nil {
		return fmt.Errorf("alphabet: %w", err)
	}

	s.logger.Info(ctx, "starting game service...")

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel

	s.store = repository.NewMemoryStore(repository.WithMaxGames(s.maxGames))
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.hub = broadcast.NewHub(broadcast.WithBuffer(s.subscriberBuffer))
	s.pool = worker.NewPool(s.dispatcherCount, s.queueSize, s.hub,
		worker.WithMismatchVariants(s.mismatchVariants),
	)
	s.pool.Start(runCtx)

	s.store.StartSweeper(runCtx, sweepInterval(s.idleTTL), s.idleTTL, func(g *game.Game) {
		g.Close()
		s.hub.CloseGame(g.ID())
		s.logger.Info(runCtx, "game evicted", logger.GameID(g.ID()))
	})

	s.started = true
	s.logger.Info(ctx, "game service started",
		logger.Int("dispatchers", s.dispatcherCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("maxGames", s.maxGames),
		logger.Duration("mismatchDelay", s.mismatchDelay),
		logger.Duration("idleTTL", s.idleTTL),
	)
	return nil
}

func sweepInterval(idle time.Duration) time.Duration {
	if idle <= 0 {
		return 0
	}
	return min(max(idle/4, time.Second), time.Minute)
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx := context.Background()
	s.logger.Info(ctx, "stopping game service...")

	for _, g := range s.store.Clear(ctx) {
		g.Close()
	}
	if err := s.pool.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "dispatch pool shutdown incomplete", logger.Error(err))
	}
	s.hub.CloseAll()
	s.cancel()

	s.started = false
	s.logger.Info(ctx, "game service stopped")
}

// components returns the running components or ErrNotStarted.
func (s *Service) components() (*repository.MemoryStore, *broadcast.Hub, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, nil, ErrNotStarted
	}
	return s.store, s.hub, nil
}

func (s *Service) lookup(ctx context.Context, id string) (*game.Game, error) {
	store, _, err := s.components()
	if err != nil {
		return nil, err
	}
	g, err := store.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrGameNotFound, id)
	}
	return g, err
}

// NewGame deals a fresh game and stores it.
func (s *Service) NewGame(ctx context.Context) (types.Board, error) {
	store, _, err := s.components()
	if err != nil {
		return types.Board{}, err
	}

	id := s.newID()
	opts := []game.Option{
		game.WithAlphabet(s.alphabet),
		game.WithMismatchDelay(s.mismatchDelay),
		game.WithVolume(s.volume),
		game.WithScheduler(s.scheduler),
		game.WithNotifier(s.pool),
		game.WithLogger(s.logger.Named("game")),
	}
	if s.shuffler != nil {
		opts = append(opts, game.WithShuffler(s.shuffler))
	}
	if s.source != nil {
		opts = append(opts, game.WithSource(s.source))
	}

	g, err := game.New(id, opts...)
	if err != nil {
		metrics.RecordErrorByComponent("service", "deal")
		return types.Board{}, fmt.Errorf("deal game: %w", err)
	}
	if err := store.Put(ctx, g); err != nil {
		g.Close()
		if errors.Is(err, repository.ErrCapacity) {
			return types.Board{}, ErrCapacity
		}
		return types.Board{}, err
	}

	metrics.RecordGameStarted()
	s.logger.Info(ctx, "game created", logger.GameID(id))
	return g.Snapshot(), nil
}

// Restart redeals an existing game under the same id.
func (s *Service) Restart(ctx context.Context, id string) (types.Board, error) {
	g, err := s.lookup(ctx, id)
	if err != nil {
		return types.Board{}, err
	}
	g.Reset(ctx)
	metrics.RecordGameStarted()
	s.logger.Info(ctx, "game restarted", logger.GameID(id), logger.Generation(g.Generation()))
	return g.Snapshot(), nil
}

// Reveal applies one reveal. A non-empty requestID makes the call idempotent:
// a repeat of an earlier request is acknowledged as a duplicate and not applied.
func (s *Service) Reveal(ctx context.Context, id string, card int, requestID string) (types.RevealAck, error) {
	g, err := s.lookup(ctx, id)
	if err != nil {
		return types.RevealAck{}, err
	}

	if requestID != "" && s.deduper.SeenAndRecord(ctx, dedupe.Key(id, requestID)) {
		metrics.RecordDuplicateReveal()
		s.logger.Debug(ctx, "duplicate reveal", logger.GameID(id), logger.String("request_id", requestID))
		return types.RevealAck{Duplicate: true, Board: g.Snapshot()}, nil
	}

	res, board := g.RevealSnapshot(ctx, card)
	ack := types.RevealAck{Accepted: res.Accepted, Reason: string(res.Reason), Board: board}

	if !res.Accepted {
		metrics.RecordReveal(string(res.Reason))
		return ack, nil
	}
	metrics.RecordReveal("accepted")

	switch res.Phase {
	case game.PhaseResolving:
		metrics.RecordMismatch()
	case game.PhaseRoundComplete:
		metrics.RecordMatch()
		if board.Result != nil {
			result := board.Result.String()
			metrics.RecordGameCompleted(result, g.Elapsed())
			s.logger.Info(ctx, "game completed", logger.GameID(id), logger.String("result", result))
		}
	case game.PhaseAwaitingFirstPick:
		// Only a matching second pick lands back on the first phase.
		metrics.RecordMatch()
	}
	return ack, nil
}

// SetVolume changes a game's feedback volume. v must be within [0,1].
func (s *Service) SetVolume(ctx context.Context, id string, v float64) error {
	if v < 0 || v > 1 {
		return fmt.Errorf("%w: %v", ErrInvalidVolume, v)
	}
	g, err := s.lookup(ctx, id)
	if err != nil {
		return err
	}
	g.SetVolume(v)
	s.logger.Debug(ctx, "volume changed", logger.GameID(id), logger.Float64("volume", v))
	return nil
}

// Board returns a game's current snapshot.
func (s *Service) Board(ctx context.Context, id string) (types.Board, error) {
	g, err := s.lookup(ctx, id)
	if err != nil {
		return types.Board{}, err
	}
	return g.Snapshot(), nil
}

// Subscribe registers for a game's notifications and returns the board at
// subscription time. Notifications with Seq at or below the board's Seq are
// already reflected in it.
func (s *Service) Subscribe(ctx context.Context, id string) (*broadcast.Subscription, types.Board, error) {
	g, err := s.lookup(ctx, id)
	if err != nil {
		return nil, types.Board{}, err
	}
	_, hub, err := s.components()
	if err != nil {
		return nil, types.Board{}, err
	}
	sub := hub.Subscribe(id)
	return sub, g.Snapshot(), nil
}

// DeleteGame removes a game, cancels its pending work and disconnects its subscribers.
func (s *Service) DeleteGame(ctx context.Context, id string) error {
	store, hub, err := s.components()
	if err != nil {
		return err
	}
	g, err := store.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrGameNotFound, id)
	}
	if err != nil {
		return err
	}
	g.Close()
	hub.CloseGame(id)
	s.logger.Info(ctx, "game deleted", logger.GameID(id))
	return nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":         s.started,
		"dispatcherCount": s.dispatcherCount,
		"queueSize":       s.queueSize,
		"dedupeSize":      s.dedupeSize,
		"maxGames":        s.maxGames,
		"mismatchDelayMs": s.mismatchDelay.Milliseconds(),
		"pairs":           len(s.alphabet),
	}

	if s.started {
		ctx := context.Background()
		games := s.store.Count(ctx)
		stats["activeGames"] = games
		stats["queueLength"] = s.pool.Len()
		stats["subscribers"] = s.hub.Total()
		stats["dedupeEntries"] = s.deduper.Size()
		metrics.UpdateActiveGames(games)
	}
	return stats
}
