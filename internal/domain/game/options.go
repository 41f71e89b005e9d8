package game

import (
	"time"

	"github.com/okian/concentration/internal/domain/deck"
	"github.com/okian/concentration/pkg/logger"
)

// Default game configuration constants.
const (
	DefaultMismatchDelay = time.Second
	DefaultVolume        = 0.5
)

// Shuffler turns the unshuffled deck into the dealt order.
type Shuffler func(cards []deck.Symbol) []deck.Symbol

// Option applies a configuration option to a Game.
type Option func(*Game)

// WithAlphabet sets the symbols dealt as pairs.
func WithAlphabet(alphabet []deck.Symbol) Option {
	return func(g *Game) {
		if len(alphabet) > 0 {
			g.alphabet = append([]deck.Symbol(nil), alphabet...)
		}
	}
}

// WithSource sets the random source used by the default shuffler.
func WithSource(src deck.Source) Option {
	return func(g *Game) {
		if src != nil {
			g.source = src
		}
	}
}

// WithShuffler replaces the Fisher–Yates shuffle, e.g. to deal a fixed layout.
func WithShuffler(s Shuffler) Option {
	return func(g *Game) {
		if s != nil {
			g.shuffle = s
		}
	}
}

// WithMismatchDelay sets how long a mismatched pair stays face up.
func WithMismatchDelay(d time.Duration) Option {
	return func(g *Game) {
		if d >= 0 {
			g.delay = d
		}
	}
}

// WithScheduler sets the scheduler for delayed continuations.
func WithScheduler(s Scheduler) Option {
	return func(g *Game) {
		if s != nil {
			g.scheduler = s
		}
	}
}

// WithNotifier sets the notification sink.
func WithNotifier(n Notifier) Option {
	return func(g *Game) {
		if n != nil {
			g.notifier = n
		}
	}
}

// WithClock sets the time source stamped on notifications.
func WithClock(now func() time.Time) Option {
	return func(g *Game) {
		if now != nil {
			g.now = now
		}
	}
}

// WithVolume sets the initial feedback volume passed through to renderers.
func WithVolume(v float64) Option {
	return func(g *Game) {
		g.volume = v
	}
}

// WithLogger sets a custom logger for the game.
func WithLogger(l logger.Logger) Option {
	return func(g *Game) {
		if l != nil {
			g.logger = l
		}
	}
}
