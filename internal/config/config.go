// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - Durations are stored as integer milliseconds or seconds so every layer
//   (YAML, dotenv, environment) can set them the same way.
// - Validation errors wrap ErrInvalidConfig; load errors wrap ErrLoadConfig.
package config

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/okian/concentration/internal/domain/deck"
	"github.com/okian/concentration/pkg/logger"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log encoding: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// Symbols is the alphabet dealt as pairs.
	Symbols []string `koanf:"symbols"`

	// MismatchDelayMS is how long a mismatched pair stays face up.
	MismatchDelayMS int `koanf:"mismatch_delay_ms"`

	// Volume is the initial feedback volume of new games, in [0,1].
	Volume float64 `koanf:"volume"`

	// MismatchVariants is the number of mismatch sounds renderers choose between.
	MismatchVariants int `koanf:"mismatch_variants"`

	// QueueSize bounds each dispatcher's notification queue.
	QueueSize int `koanf:"queue_size"`

	// DispatcherCount sets the number of notification dispatchers.
	DispatcherCount int `koanf:"dispatcher_count"`

	// DedupeSize bounds the reveal request id cache.
	DedupeSize int `koanf:"dedupe_size"`

	// MaxGames caps concurrently held games.
	MaxGames int `koanf:"max_games"`

	// GameIdleTTLSec evicts games untouched for this long. Zero disables eviction.
	GameIdleTTLSec int `koanf:"game_idle_ttl_sec"`

	// SubscriberBuffer sizes each event stream subscriber's channel.
	SubscriberBuffer int `koanf:"subscriber_buffer"`
}

// New creates a Config with defaults. Context is accepted first to satisfy
// the project-wide convention.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:         "info",
		LogFormat:        "text",
		Addr:             ":9080",
		Symbols:          []string{"A", "B", "C", "D", "E", "F", "G", "H"},
		MismatchDelayMS:  1000,
		Volume:           0.5,
		MismatchVariants: 3,
		QueueSize:        1024,
		DispatcherCount:  runtime.NumCPU(),
		DedupeSize:       10_000,
		MaxGames:         1000,
		GameIdleTTLSec:   1800,
		SubscriberBuffer: 64,
	}
}

// MismatchDelay returns the mismatch delay as a duration.
func (c *Config) MismatchDelay() time.Duration {
	return time.Duration(c.MismatchDelayMS) * time.Millisecond
}

// IdleTTL returns the game idle timeout as a duration.
func (c *Config) IdleTTL() time.Duration {
	return time.Duration(c.GameIdleTTLSec) * time.Second
}

// Alphabet parses Symbols.
func (c *Config) Alphabet() ([]deck.Symbol, error) {
	return deck.ParseAlphabet(c.Symbols)
}

// Validate checks every field and reports the first problem.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.LogFormat != "text" && c.LogFormat != "json":
		return fmt.Errorf("%w: log_format must be text or json, got %q", ErrInvalidConfig, c.LogFormat)
	case c.MismatchDelayMS < 0:
		return fmt.Errorf("%w: mismatch_delay_ms must not be negative", ErrInvalidConfig)
	case c.Volume < 0 || c.Volume > 1:
		return fmt.Errorf("%w: volume must be within [0,1], got %v", ErrInvalidConfig, c.Volume)
	case c.MismatchVariants < 1:
		return fmt.Errorf("%w: mismatch_variants must be positive", ErrInvalidConfig)
	case c.QueueSize < 1:
		return fmt.Errorf("%w: queue_size must be positive", ErrInvalidConfig)
	case c.DispatcherCount < 1:
		return fmt.Errorf("%w: dispatcher_count must be positive", ErrInvalidConfig)
	case c.GameIdleTTLSec < 0:
		return fmt.Errorf("%w: game_idle_ttl_sec must not be negative", ErrInvalidConfig)
	case c.SubscriberBuffer < 1:
		return fmt.Errorf("%w: subscriber_buffer must be positive", ErrInvalidConfig)
	}
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: log_level: %w", ErrInvalidConfig, err)
	}
	if _, err := c.Alphabet(); err != nil {
		return fmt.Errorf("%w: symbols: %w", ErrInvalidConfig, err)
	}
	return nil
}
