// Package repository holds live games in memory.
package repository

import (
	"context"
	"time"

	"github.com/okian/concentration/internal/domain/game"
)

// Entry is a stored game plus its bookkeeping.
type Entry struct {
	Game       *game.Game
	CreatedAt  time.Time
	LastActive time.Time
}

// Store provides access to live games.
type Store interface {
	// Put adds a game. Returns ErrCapacity when the store is full and
	// ErrExists when the id is taken.
	Put(ctx context.Context, g *game.Game) error

	// Get returns a game and marks it active. Returns ErrNotFound if unknown.
	Get(ctx context.Context, id string) (*game.Game, error)

	// Delete removes a game and returns it. Returns ErrNotFound if unknown.
	Delete(ctx context.Context, id string) (*game.Game, error)

	// Sweep removes and returns games idle for longer than idle.
	Sweep(ctx context.Context, idle time.Duration) []*game.Game

	// Count returns the number of stored games.
	Count(ctx context.Context) int
}
