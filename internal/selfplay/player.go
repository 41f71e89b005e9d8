package selfplay

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/okian/concentration/internal/domain/types"
	"github.com/okian/concentration/pkg/logger"
)

// bot plays one game over the API as both seats, with imperfect memory.
type bot struct {
	client *Client
	rng    *rand.Rand
	recall float64
	poll   time.Duration
	log    logger.Logger

	memory     map[int]string
	report     GameReport
	duplicates int
}

func newBot(client *Client, rng *rand.Rand, cfg *Config) *bot {
	return &bot{
		client: client,
		rng:    rng,
		recall: cfg.Recall,
		poll:   cfg.PollInterval,
		log:    logger.Named("selfplay"),
		memory: make(map[int]string),
	}
}

// play deals a game and plays it to the end, verifying every snapshot.
func (b *bot) play(ctx context.Context) (*GameReport, error) {
	start := time.Now()
	board, err := b.client.NewGame(ctx)
	if err != nil {
		return nil, fmt.Errorf("new game: %w", err)
	}
	b.report.GameID = board.GameID
	b.check(board)

	limit := maxRevealsPerCard * len(board.Cards)
	for !board.Finished() {
		if b.report.Reveals >= limit {
			return &b.report, fmt.Errorf("game %s not finished after %d reveals", board.GameID, b.report.Reveals)
		}
		board, err = b.turn(ctx, board)
		if err != nil {
			return &b.report, err
		}
	}

	b.report.Result = board.Result.String()
	b.report.Scores = board.Scores
	b.report.Duration = time.Since(start)
	return &b.report, nil
}

// turn plays one pair of picks.
func (b *bot) turn(ctx context.Context, before types.Board) (types.Board, error) {
	first := b.pickFirst(before)
	board, accepted, err := b.reveal(ctx, before, first)
	if err != nil || !accepted {
		return board, err
	}

	second := b.pickSecond(board, first)
	after, accepted, err := b.reveal(ctx, board, second)
	if err != nil || !accepted {
		return after, err
	}

	if after.MatchedPairs > before.MatchedPairs {
		b.report.Matches++
		delete(b.memory, first)
		delete(b.memory, second)
		b.violate(verifyTurn(before, after, true)...)
		return after, nil
	}

	b.report.Mismatches++
	if !after.Locked {
		b.violate(fmt.Sprintf("board not locked after mismatching cards %d and %d", first, second))
	}
	settled, err := b.waitUnlocked(ctx, after)
	if err != nil {
		return settled, err
	}
	for _, id := range []int{first, second} {
		if settled.Cards[id].Status != statusHidden {
			b.violate(fmt.Sprintf("mismatched card %d is %s after the delay", id, settled.Cards[id].Status))
		}
	}
	b.violate(verifyTurn(before, settled, false)...)
	return settled, nil
}

// reveal sends one reveal. The very first reveal of a game is sent twice with
// the same request id to check that the repeat is recognized.
func (b *bot) reveal(ctx context.Context, board types.Board, card int) (types.Board, bool, error) {
	reqID := uuid.NewString()
	ack, err := b.client.Reveal(ctx, board.GameID, card, reqID)
	if err != nil {
		return board, false, fmt.Errorf("reveal %d: %w", card, err)
	}
	b.report.Reveals++
	b.check(ack.Board)

	if b.report.Reveals == 1 {
		dup, err := b.client.Reveal(ctx, board.GameID, card, reqID)
		if err != nil {
			return ack.Board, false, fmt.Errorf("repeat reveal %d: %w", card, err)
		}
		if !dup.Duplicate || dup.Accepted {
			b.violate(fmt.Sprintf("repeated request id was not a duplicate: %+v", dup))
		}
		if dup.Board.Seq != ack.Board.Seq {
			b.violate("repeated request id changed the board")
		}
		b.duplicates++
	}

	if !ack.Accepted {
		b.report.Ignored++
		b.log.Debug(ctx, "reveal ignored", logger.GameID(board.GameID), logger.Card(card), logger.String("reason", ack.Reason))
		return ack.Board, false, nil
	}
	if sym := ack.Board.Cards[card].Symbol; sym != "" {
		b.remember(card, sym)
	} else {
		b.violate(fmt.Sprintf("accepted reveal of card %d shows no symbol", card))
	}
	return ack.Board, true, nil
}

func (b *bot) waitUnlocked(ctx context.Context, board types.Board) (types.Board, error) {
	ticker := time.NewTicker(b.poll)
	defer ticker.Stop()
	for board.Locked {
		select {
		case <-ctx.Done():
			return board, ctx.Err()
		case <-ticker.C:
		}
		next, err := b.client.Board(ctx, board.GameID)
		if err != nil {
			return board, fmt.Errorf("poll board: %w", err)
		}
		if next.Generation != board.Generation {
			return next, errors.New("game was redealt while resolving")
		}
		b.check(next)
		board = next
	}
	return board, nil
}

func (b *bot) remember(card int, symbol string) {
	if b.rng.Float64() < b.recall {
		b.memory[card] = symbol
	}
}

func hiddenCards(board types.Board) []int {
	var out []int
	for _, c := range board.Cards {
		if c.Status == statusHidden {
			out = append(out, c.ID)
		}
	}
	return out
}

// pickFirst opens a remembered pair if there is one, otherwise an unseen card.
func (b *bot) pickFirst(board types.Board) int {
	hidden := hiddenCards(board)
	bySymbol := make(map[string]int)
	for _, id := range hidden {
		sym, ok := b.memory[id]
		if !ok {
			continue
		}
		if _, twin := bySymbol[sym]; twin {
			return bySymbol[sym]
		}
		bySymbol[sym] = id
	}
	var unseen []int
	for _, id := range hidden {
		if _, ok := b.memory[id]; !ok {
			unseen = append(unseen, id)
		}
	}
	if len(unseen) > 0 {
		return unseen[b.rng.IntN(len(unseen))]
	}
	return hidden[b.rng.IntN(len(hidden))]
}

// pickSecond completes a remembered pair for first, otherwise guesses,
// preferring cards it has not seen.
func (b *bot) pickSecond(board types.Board, first int) int {
	sym := board.Cards[first].Symbol
	var unseen, others []int
	for _, id := range hiddenCards(board) {
		if id == first {
			continue
		}
		known, ok := b.memory[id]
		switch {
		case ok && known == sym:
			return id
		case ok:
			others = append(others, id)
		default:
			unseen = append(unseen, id)
		}
	}
	if len(unseen) > 0 {
		return unseen[b.rng.IntN(len(unseen))]
	}
	return others[b.rng.IntN(len(others))]
}

func (b *bot) check(board types.Board) {
	b.violate(verifyBoard(board)...)
}

func (b *bot) violate(msgs ...string) {
	b.report.Violations = append(b.report.Violations, msgs...)
}
