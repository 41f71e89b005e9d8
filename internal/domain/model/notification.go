// Package model contains domain models passed between layers.
package model

import (
	"time"

	"github.com/okian/concentration/internal/domain/scoring"
)

// Kind names what happened inside a game.
type Kind string

const (
	KindGameStarted  Kind = "game_started"
	KindCardRevealed Kind = "card_revealed"
	KindPairMatched  Kind = "pair_matched"
	KindPairHidden   Kind = "pair_hidden"
	KindScoreChanged Kind = "score_changed"
	KindGameEnded    Kind = "game_ended"
)

// Cue is the category of audible feedback a renderer should play.
// The core only names the category; variants are the renderer's concern.
type Cue string

const (
	CueNone     Cue = ""
	CueFlip     Cue = "flip"
	CueMatch    Cue = "match"
	CueMismatch Cue = "mismatch"
	CueGameOver Cue = "game_over"
)

// CardFace is a card id plus its symbol. Symbol is only set when the card is face up.
type CardFace struct {
	ID     int    `json:"id"`
	Symbol string `json:"symbol,omitempty"`
}

// Notification is emitted by a game on every observable transition.
type Notification struct {
	GameID        string          `json:"game_id"`
	Generation    uint64          `json:"generation"`
	Seq           uint64          `json:"seq"`
	Kind          Kind            `json:"kind"`
	Cue           Cue             `json:"cue,omitempty"`
	CueVariant    int             `json:"cue_variant,omitempty"`
	Volume        float64         `json:"volume"`
	Cards         []CardFace      `json:"cards,omitempty"`
	Scores        scoring.Scores  `json:"scores"`
	CurrentPlayer scoring.Player  `json:"current_player"`
	MatchedPairs  int             `json:"matched_pairs"`
	Result        *scoring.Result `json:"result,omitempty"`
	At            time.Time       `json:"at"`
}
