package game

import (
	"time"

	"github.com/okian/concentration/internal/domain/model"
)

// Timer is a handle on a scheduled continuation.
type Timer interface {
	// Stop prevents the continuation from running. It reports whether the call stopped it.
	Stop() bool
}

// Scheduler runs f once after d. Implementations must never run f on the
// calling goroutine before AfterFunc returns.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type wallScheduler struct{}

func (wallScheduler) AfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }

// WallClock returns a Scheduler backed by time.AfterFunc.
func WallClock() Scheduler { return wallScheduler{} }

// Notifier receives game notifications. Notify is called with the game lock
// held and in transition order, so it must return promptly and must not call
// back into the game.
type Notifier interface {
	Notify(n model.Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(n model.Notification)

// Notify calls f(n).
func (f NotifierFunc) Notify(n model.Notification) { f(n) }

type nopNotifier struct{}

func (nopNotifier) Notify(model.Notification) {}
