// Package scoring tracks per-player matched-pair counts and classifies results.
package scoring

import "fmt"

// Player identifies one of the two seats. Seats are zero-based.
type Player int

const (
	PlayerOne Player = 0
	PlayerTwo Player = 1

	// Seats is the number of players in a game.
	Seats = 2
)

// Next returns the player whose turn follows p.
func (p Player) Next() Player { return (p + 1) % Seats }

// Valid reports whether p names a seat.
func (p Player) Valid() bool { return p == PlayerOne || p == PlayerTwo }

// Scores holds matched-pair counts indexed by Player.
type Scores [Seats]int

// Total returns the sum of both counts.
func (s Scores) Total() int { return s[PlayerOne] + s[PlayerTwo] }

// Tracker owns the two counters of one game. The zero value is ready to use.
type Tracker struct {
	counts Scores
}

// RecordMatch credits one pair to p and returns the updated scores.
// An invalid player leaves the counts unchanged.
func (t *Tracker) RecordMatch(p Player) Scores {
	if p.Valid() {
		t.counts[p]++
	}
	return t.counts
}

// Reset zeroes both counters.
func (t *Tracker) Reset() { t.counts = Scores{} }

// Scores returns a copy of the current counts.
func (t *Tracker) Scores() Scores { return t.counts }

// Result classifies a finished game.
type Result int

const (
	Tie Result = iota
	Player1Wins
	Player2Wins
)

var resultNames = map[Result]string{ //nolint:gochecknoglobals // lookup table
	Tie:         "tie",
	Player1Wins: "player1_wins",
	Player2Wins: "player2_wins",
}

func (r Result) String() string {
	if s, ok := resultNames[r]; ok {
		return s
	}
	return fmt.Sprintf("result(%d)", int(r))
}

// MarshalText renders the result name for JSON payloads.
func (r Result) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

// UnmarshalText parses a result name.
func (r *Result) UnmarshalText(b []byte) error {
	for k, v := range resultNames {
		if v == string(b) {
			*r = k
			return nil
		}
	}
	return fmt.Errorf("unknown result %q", string(b))
}

// Classify derives the result from final scores. Equal scores are a tie.
func Classify(s Scores) Result {
	switch {
	case s[PlayerOne] > s[PlayerTwo]:
		return Player1Wins
	case s[PlayerOne] < s[PlayerTwo]:
		return Player2Wins
	default:
		return Tie
	}
}
