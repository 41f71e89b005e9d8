package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/okian/concentration/internal/domain/deck"
	"github.com/okian/concentration/internal/domain/model"
)

// notificationMsg carries one game notification into the update loop.
type notificationMsg model.Notification

// Feed is a game notifier that hands notifications to the bubbletea loop.
// Notify never blocks; when the buffer is full the notification is dropped
// and the next one repaints from a fresh snapshot anyway.
// Without a dispatcher in between, the feed picks the mismatch cue variant itself.
type Feed struct {
	ch chan model.Notification

	mu       sync.Mutex
	source   deck.Source
	variants int
}

// FeedOption configures a Feed.
type FeedOption func(*Feed)

// WithMismatchVariants sets how many mismatch cues the feed chooses between.
func WithMismatchVariants(n int) FeedOption {
	return func(f *Feed) {
		if n > 0 {
			f.variants = n
		}
	}
}

// WithSource sets the random source for variant selection.
func WithSource(src deck.Source) FeedOption {
	return func(f *Feed) {
		if src != nil {
			f.source = src
		}
	}
}

// NewFeed returns a feed buffering up to size notifications.
func NewFeed(size int, opts ...FeedOption) *Feed {
	if size <= 0 {
		size = 64
	}
	f := &Feed{
		ch:       make(chan model.Notification, size),
		source:   deck.DefaultSource(),
		variants: 1,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Notify implements game.Notifier.
func (f *Feed) Notify(n model.Notification) { //nolint:gocritic // hugeParam: notifier signature
	if n.Cue == model.CueMismatch && f.variants > 1 {
		f.mu.Lock()
		n.CueVariant = f.source.IntN(f.variants)
		f.mu.Unlock()
	}
	select {
	case f.ch <- n:
	default:
	}
}

// Wait returns a command that blocks until the next notification.
func (f *Feed) Wait() tea.Cmd {
	return func() tea.Msg {
		return notificationMsg(<-f.ch)
	}
}
