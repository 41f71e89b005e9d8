// Package gametest provides deterministic helpers for driving games in tests.
package gametest

import (
	"sort"
	"sync"
	"time"

	"github.com/okian/concentration/internal/domain/deck"
	"github.com/okian/concentration/internal/domain/game"
	"github.com/okian/concentration/internal/domain/model"
)

// ManualScheduler runs continuations only when Advance moves its clock past them.
type ManualScheduler struct {
	mu      sync.Mutex
	now     time.Duration
	seq     int
	pending []*manualTimer
}

type manualTimer struct {
	s       *ManualScheduler
	due     time.Duration
	order   int
	f       func()
	stopped bool
	fired   bool
}

// NewManualScheduler returns a scheduler whose clock starts at zero.
func NewManualScheduler() *ManualScheduler { return &ManualScheduler{} }

// AfterFunc implements game.Scheduler.
func (s *ManualScheduler) AfterFunc(d time.Duration, f func()) game.Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	t := &manualTimer{s: s, due: s.now + d, order: s.seq, f: f}
	s.pending = append(s.pending, t)
	return t
}

// Stop implements game.Timer.
func (t *manualTimer) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// Advance moves the clock forward by d and runs every continuation now due,
// in due order, on the calling goroutine.
func (s *ManualScheduler) Advance(d time.Duration) int {
	s.mu.Lock()
	s.now += d
	var due, rest []*manualTimer
	for _, t := range s.pending {
		switch {
		case t.stopped:
		case t.due <= s.now:
			t.fired = true
			due = append(due, t)
		default:
			rest = append(rest, t)
		}
	}
	s.pending = rest
	s.mu.Unlock()

	sort.Slice(due, func(i, j int) bool {
		if due[i].due == due[j].due {
			return due[i].order < due[j].order
		}
		return due[i].due < due[j].due
	})
	for _, t := range due {
		t.f()
	}
	return len(due)
}

// RunStale runs a continuation even if it was stopped, simulating a timer
// that had already fired when Stop was called.
func (s *ManualScheduler) RunStale() int {
	s.mu.Lock()
	all := s.pending
	s.pending = nil
	s.mu.Unlock()
	for _, t := range all {
		t.f()
	}
	return len(all)
}

// Pending reports how many continuations are waiting, stopped ones excluded.
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.pending {
		if !t.stopped {
			n++
		}
	}
	return n
}

// Fixed returns a shuffler that always deals layout, ignoring the input order.
func Fixed(layout ...deck.Symbol) game.Shuffler {
	return func([]deck.Symbol) []deck.Symbol {
		return append([]deck.Symbol(nil), layout...)
	}
}

// Recorder collects notifications in emission order.
type Recorder struct {
	mu   sync.Mutex
	list []model.Notification
}

// Notify implements game.Notifier.
func (r *Recorder) Notify(n model.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.list = append(r.list, n)
}

// All returns a copy of everything recorded so far.
func (r *Recorder) All() []model.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.Notification(nil), r.list...)
}

// Kinds returns the recorded notification kinds in order.
func (r *Recorder) Kinds() []model.Kind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Kind, len(r.list))
	for i, n := range r.list {
		out[i] = n.Kind
	}
	return out
}

// Count returns how many notifications of kind were recorded.
func (r *Recorder) Count(kind model.Kind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, x := range r.list {
		if x.Kind == kind {
			n++
		}
	}
	return n
}

// Reset drops everything recorded.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.list = nil
}
