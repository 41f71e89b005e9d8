package worker

import (
	"github.com/okian/concentration/internal/domain/deck"
	"github.com/okian/concentration/pkg/logger"
)

// Option applies a configuration option to a Dispatcher.
type Option func(*Dispatcher)

// WithName sets the dispatcher name for identification and logging.
func WithName(name string) Option {
	return func(d *Dispatcher) {
		if name != "" {
			d.name = name
		}
	}
}

// WithLogger sets a custom logger for the dispatcher.
func WithLogger(l logger.Logger) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithMismatchVariants sets how many mismatch sounds renderers can play.
func WithMismatchVariants(n int) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.variants = n
		}
	}
}

// WithSource sets the random source for variant picks. A pool shares it
// across dispatchers, so it must be safe for concurrent use.
func WithSource(src deck.Source) Option {
	return func(d *Dispatcher) {
		if src != nil {
			d.source = src
		}
	}
}
