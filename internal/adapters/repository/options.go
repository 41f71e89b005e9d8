package repository

import "time"

// Option applies a configuration option to the MemoryStore.
type Option func(*MemoryStore)

// WithMaxGames caps the number of stored games. Zero or less means no cap.
func WithMaxGames(n int) Option {
	return func(s *MemoryStore) {
		s.maxGames = n
	}
}

// WithClock sets the time source used for activity tracking.
func WithClock(now func() time.Time) Option {
	return func(s *MemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}
