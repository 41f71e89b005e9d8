package selfplay

import (
	"fmt"

	"github.com/okian/concentration/internal/domain/scoring"
	"github.com/okian/concentration/internal/domain/types"
)

const (
	statusHidden   = "hidden"
	statusRevealed = "revealed"
	statusMatched  = "matched"
)

// verifyBoard checks the invariants every snapshot must hold.
func verifyBoard(b types.Board) []string {
	var out []string
	fail := func(format string, args ...any) { out = append(out, fmt.Sprintf(format, args...)) }

	if len(b.Cards) != 2*b.TotalPairs {
		fail("board has %d cards for %d pairs", len(b.Cards), b.TotalPairs)
	}
	var revealed, matched int
	for i, c := range b.Cards {
		if c.ID != i {
			fail("card at index %d has id %d", i, c.ID)
		}
		switch c.Status {
		case statusHidden:
			if c.Symbol != "" {
				fail("hidden card %d exposes its symbol", c.ID)
			}
		case statusRevealed:
			revealed++
		case statusMatched:
			matched++
		default:
			fail("card %d has unknown status %q", c.ID, c.Status)
		}
	}
	if revealed > 2 {
		fail("%d cards face up at once", revealed)
	}
	if matched != 2*b.MatchedPairs {
		fail("%d matched cards for %d matched pairs", matched, b.MatchedPairs)
	}
	if b.Scores.Total() != b.MatchedPairs {
		fail("scores %v do not add up to %d matched pairs", b.Scores, b.MatchedPairs)
	}
	if b.Locked && revealed != 2 {
		fail("board locked with %d cards face up", revealed)
	}
	if !b.CurrentPlayer.Valid() {
		fail("invalid current player %d", b.CurrentPlayer)
	}

	done := b.MatchedPairs == b.TotalPairs
	switch {
	case done && b.Result == nil:
		fail("all pairs matched but no result")
	case !done && b.Result != nil:
		fail("result %s with %d of %d pairs matched", *b.Result, b.MatchedPairs, b.TotalPairs)
	case b.Result != nil && *b.Result != scoring.Classify(b.Scores):
		fail("result %s disagrees with scores %v", *b.Result, b.Scores)
	}
	return out
}

// verifyTurn checks who plays next after a resolved pair.
func verifyTurn(before, after types.Board, matched bool) []string {
	want := before.CurrentPlayer
	if !matched {
		want = before.CurrentPlayer.Next()
	}
	if after.CurrentPlayer != want {
		return []string{fmt.Sprintf("after a %s player %d is up, want %d",
			map[bool]string{true: "match", false: "mismatch"}[matched], after.CurrentPlayer, want)}
	}
	return nil
}
