package game

import (
	"fmt"

	"github.com/okian/concentration/internal/domain/deck"
)

// Status is the visibility of one card.
type Status int

const (
	Hidden Status = iota
	Revealed
	Matched
)

func (s Status) String() string {
	switch s {
	case Hidden:
		return "hidden"
	case Revealed:
		return "revealed"
	case Matched:
		return "matched"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// FaceUp reports whether the symbol is visible to players.
func (s Status) FaceUp() bool { return s == Revealed || s == Matched }

// Card is one positional slot on the board. ID equals its position.
type Card struct {
	ID     int
	Symbol deck.Symbol
	Status Status
}

// IgnoreReason explains why a reveal was a no-op.
type IgnoreReason string

const (
	ReasonNone        IgnoreReason = ""
	ReasonLocked      IgnoreReason = "locked"
	ReasonNotHidden   IgnoreReason = "not_hidden"
	ReasonGameOver    IgnoreReason = "game_over"
	ReasonUnknownCard IgnoreReason = "unknown_card"
)

// RevealResult reports what a reveal event did.
type RevealResult struct {
	Accepted bool
	Reason   IgnoreReason
	Phase    string
}
