// Package types contains read shapes shared by the service and its renderers.
package types

import "github.com/okian/concentration/internal/domain/scoring"

// Card is the client-facing view of one board slot. Symbol is empty while hidden.
type Card struct {
	ID     int    `json:"id"`
	Status string `json:"status"`
	Symbol string `json:"symbol,omitempty"`
}

// Board is a read-only snapshot of one game. Seq is the sequence number of the
// last notification the snapshot reflects.
type Board struct {
	GameID        string          `json:"game_id"`
	Generation    uint64          `json:"generation"`
	Seq           uint64          `json:"seq"`
	Phase         string          `json:"phase"`
	Cards         []Card          `json:"cards"`
	CurrentPlayer scoring.Player  `json:"current_player"`
	Scores        scoring.Scores  `json:"scores"`
	MatchedPairs  int             `json:"matched_pairs"`
	TotalPairs    int             `json:"total_pairs"`
	Locked        bool            `json:"locked"`
	Volume        float64         `json:"volume"`
	Result        *scoring.Result `json:"result,omitempty"`
}

// Finished reports whether the snapshot shows a completed game.
func (b Board) Finished() bool { return b.Result != nil }

// RevealAck answers a reveal request.
type RevealAck struct {
	Accepted  bool   `json:"accepted"`
	Duplicate bool   `json:"duplicate"`
	Reason    string `json:"reason,omitempty"`
	Board     Board  `json:"board"`
}
