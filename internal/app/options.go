package service

import (
	"time"

	"github.com/okian/concentration/internal/domain/deck"
	"github.com/okian/concentration/internal/domain/game"
	"github.com/okian/concentration/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithAlphabet sets the symbols dealt in every new game.
func WithAlphabet(alphabet []deck.Symbol) Option {
	return func(s *Service) {
		if len(alphabet) > 0 {
			s.alphabet = append([]deck.Symbol(nil), alphabet...)
		}
	}
}

// WithMismatchDelay sets how long mismatched pairs stay face up.
func WithMismatchDelay(d time.Duration) Option {
	return func(s *Service) {
		if d >= 0 {
			s.mismatchDelay = d
		}
	}
}

// WithVolume sets the initial volume of new games.
func WithVolume(v float64) Option {
	return func(s *Service) {
		if v >= 0 && v <= 1 {
			s.volume = v
		}
	}
}

// WithMismatchVariants sets how many mismatch sounds dispatchers choose between.
func WithMismatchVariants(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.mismatchVariants = n
		}
	}
}

// WithQueueSize sets the capacity of each dispatcher queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDispatcherCount sets the number of notification dispatchers.
func WithDispatcherCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.dispatcherCount = count
		}
	}
}

// WithDedupeSize sets the size of the reveal request id cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithMaxGames caps concurrently held games.
func WithMaxGames(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxGames = n
		}
	}
}

// WithIdleTTL evicts games untouched for d. Zero disables eviction.
func WithIdleTTL(d time.Duration) Option {
	return func(s *Service) {
		if d >= 0 {
			s.idleTTL = d
		}
	}
}

// WithSubscriberBuffer sizes each event stream subscriber's channel.
func WithSubscriberBuffer(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.subscriberBuffer = n
		}
	}
}

// WithScheduler sets the scheduler for mismatch reverts.
func WithScheduler(sched game.Scheduler) Option {
	return func(s *Service) {
		if sched != nil {
			s.scheduler = sched
		}
	}
}

// WithShuffler deals every game with the given shuffler.
func WithShuffler(sh game.Shuffler) Option {
	return func(s *Service) {
		s.shuffler = sh
	}
}

// WithSource sets the random source for shuffles.
func WithSource(src deck.Source) Option {
	return func(s *Service) {
		s.source = src
	}
}

// WithIDGenerator replaces the UUID game id generator.
func WithIDGenerator(f func() string) Option {
	return func(s *Service) {
		if f != nil {
			s.newID = f
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
