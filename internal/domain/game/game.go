// Package game implements the two-player turn and match state machine.
//
// A Game owns its cards, turn state, score tracker and match progress. Every
// transition happens synchronously inside Reveal, except a mismatch, whose
// revert is scheduled after a delay and guarded by the game generation so a
// reset always invalidates it.
package game

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/looplab/fsm"

	"github.com/okian/concentration/internal/domain/deck"
	"github.com/okian/concentration/internal/domain/model"
	"github.com/okian/concentration/internal/domain/scoring"
	"github.com/okian/concentration/internal/domain/types"
	"github.com/okian/concentration/pkg/logger"
)

// Phases of the turn machine.
const (
	PhaseAwaitingFirstPick  = "awaiting_first_pick"
	PhaseAwaitingSecondPick = "awaiting_second_pick"
	PhaseResolving          = "resolving"
	PhaseRoundComplete      = "round_complete"
)

const (
	eventPickFirst        = "pick_first"
	eventPickSecond       = "pick_second"
	eventMatch            = "match"
	eventFinish           = "finish"
	eventMismatchResolved = "mismatch_resolved"

	noPick = -1
)

// ErrInvalidDeal is returned when a shuffler does not return a permutation of the deck.
var ErrInvalidDeal = errors.New("shuffler returned an invalid deal")

func newMachine() *fsm.FSM {
	return fsm.NewFSM(
		PhaseAwaitingFirstPick,
		fsm.Events{
			{Name: eventPickFirst, Src: []string{PhaseAwaitingFirstPick}, Dst: PhaseAwaitingSecondPick},
			{Name: eventPickSecond, Src: []string{PhaseAwaitingSecondPick}, Dst: PhaseResolving},
			{Name: eventMatch, Src: []string{PhaseResolving}, Dst: PhaseAwaitingFirstPick},
			{Name: eventFinish, Src: []string{PhaseResolving}, Dst: PhaseRoundComplete},
			{Name: eventMismatchResolved, Src: []string{PhaseResolving}, Dst: PhaseAwaitingFirstPick},
		},
		fsm.Callbacks{},
	)
}

// Game is one concentration game. It is safe for concurrent use.
type Game struct {
	mu sync.Mutex

	id        string
	alphabet  []deck.Symbol
	source    deck.Source
	shuffle   Shuffler
	delay     time.Duration
	scheduler Scheduler
	notifier  Notifier
	now       func() time.Time
	logger    logger.Logger

	machine    *fsm.FSM
	cards      []Card
	first      int
	second     int
	locked     bool
	current    scoring.Player
	scores     scoring.Tracker
	matched    int
	generation uint64
	seq        uint64
	pending    Timer
	volume     float64
	result     *scoring.Result
	startedAt  time.Time
	finishedAt time.Time
}

// New deals a fresh game. The first deal is generation 1.
func New(id string, opts ...Option) (*Game, error) {
	g := &Game{
		id:        id,
		alphabet:  append([]deck.Symbol(nil), deck.DefaultAlphabet...),
		delay:     DefaultMismatchDelay,
		scheduler: WallClock(),
		notifier:  nopNotifier{},
		now:       time.Now,
		volume:    DefaultVolume,
		first:     noPick,
		second:    noPick,
	}

	for _, opt := range opts {
		opt(g)
	}

	if g.logger == nil {
		g.logger = logger.Get().Named("game")
	}
	g.logger = g.logger.With(logger.GameID(id))

	if err := deck.ValidateAlphabet(g.alphabet); err != nil {
		return nil, err
	}
	if g.shuffle == nil {
		src := g.source
		if src == nil {
			src = deck.DefaultSource()
		}
		g.shuffle = func(cards []deck.Symbol) []deck.Symbol { return deck.Shuffle(src, cards) }
	}
	symbols, err := g.dealt()
	if err != nil {
		return nil, err
	}

	g.machine = newMachine()
	g.mu.Lock()
	g.redeal(context.Background(), symbols)
	g.mu.Unlock()
	return g, nil
}

// ID returns the game identifier.
func (g *Game) ID() string { return g.id }

// dealt builds and shuffles the deck and checks the shuffler kept the multiset.
func (g *Game) dealt() ([]deck.Symbol, error) {
	base, err := deck.New(g.alphabet)
	if err != nil {
		return nil, err
	}
	cards := g.shuffle(base)
	if len(cards) != len(base) || deck.Validate(cards) != nil || !sameMultiset(base, cards) {
		return base, ErrInvalidDeal
	}
	return cards, nil
}

func sameMultiset(a, b []deck.Symbol) bool {
	counts := make(map[deck.Symbol]int, len(a))
	for _, s := range a {
		counts[s]++
	}
	for _, s := range b {
		counts[s]--
	}
	for _, n := range counts {
		if n != 0 {
			return false
		}
	}
	return true
}

// Reset starts a new game on the same instance: reshuffles, clears the turn
// state, scores and progress, and invalidates any pending mismatch revert.
func (g *Game) Reset(ctx context.Context) {
	g.mu.Lock()
	defer g.mu.Unlock()

	symbols, err := g.dealt()
	if err != nil {
		g.logger.Error(ctx, "shuffle produced an invalid deal; dealing unshuffled", logger.Error(err))
	}
	g.redeal(ctx, symbols)
}

// redeal runs with the lock held.
func (g *Game) redeal(ctx context.Context, symbols []deck.Symbol) {
	g.generation++
	if g.pending != nil {
		g.pending.Stop()
		g.pending = nil
	}

	g.cards = make([]Card, len(symbols))
	for i, s := range symbols {
		g.cards[i] = Card{ID: i, Symbol: s, Status: Hidden}
	}

	g.clearPicks()
	g.locked = false
	g.current = scoring.PlayerOne
	g.scores.Reset()
	g.matched = 0
	g.result = nil
	g.startedAt = g.now()
	g.finishedAt = time.Time{}
	g.machine.SetState(PhaseAwaitingFirstPick)

	g.logger.Debug(ctx, "game dealt", logger.Generation(g.generation), logger.Int("cards", len(g.cards)))
	g.emit(model.KindGameStarted, model.CueNone, nil)
	g.emit(model.KindScoreChanged, model.CueNone, nil)
}

// Reveal feeds one reveal event into the machine. Invalid input is a no-op
// reported through the result, never an error.
func (g *Game) Reveal(ctx context.Context, cardID int) RevealResult {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.reveal(ctx, cardID)
}

// RevealSnapshot is Reveal followed by Snapshot under the same lock, so the
// board reflects exactly this reveal and nothing scheduled after it.
func (g *Game) RevealSnapshot(ctx context.Context, cardID int) (RevealResult, types.Board) {
	g.mu.Lock()
	defer g.mu.Unlock()
	res := g.reveal(ctx, cardID)
	return res, g.snapshot()
}

func (g *Game) reveal(ctx context.Context, cardID int) RevealResult {
	switch {
	case cardID < 0 || cardID >= len(g.cards):
		return g.ignored(ReasonUnknownCard)
	case g.machine.Is(PhaseRoundComplete):
		return g.ignored(ReasonGameOver)
	case g.locked:
		return g.ignored(ReasonLocked)
	case g.cards[cardID].Status != Hidden:
		return g.ignored(ReasonNotHidden)
	}

	switch g.machine.Current() {
	case PhaseAwaitingFirstPick:
		g.cards[cardID].Status = Revealed
		g.first = cardID
		g.fire(ctx, eventPickFirst)
		g.emit(model.KindCardRevealed, model.CueFlip, g.faces(cardID))

	case PhaseAwaitingSecondPick:
		g.cards[cardID].Status = Revealed
		g.second = cardID
		g.locked = true
		g.fire(ctx, eventPickSecond)
		g.emit(model.KindCardRevealed, model.CueFlip, g.faces(cardID))
		g.resolve(ctx)

	default:
		// Resolving is always locked; reaching here means the lock and phase disagree.
		g.logger.Warn(ctx, "reveal in unexpected phase", logger.String("phase", g.machine.Current()))
		return g.ignored(ReasonLocked)
	}

	g.logger.Debug(ctx, "card revealed", logger.Card(cardID), logger.String("phase", g.machine.Current()))
	return RevealResult{Accepted: true, Phase: g.machine.Current()}
}

func (g *Game) ignored(reason IgnoreReason) RevealResult {
	return RevealResult{Reason: reason, Phase: g.machine.Current()}
}

// resolve runs with the lock held, right after the second pick.
func (g *Game) resolve(ctx context.Context) {
	a, b := g.first, g.second
	if g.cards[a].Symbol == g.cards[b].Symbol {
		g.cards[a].Status = Matched
		g.cards[b].Status = Matched
		scores := g.scores.RecordMatch(g.current)
		g.matched++
		g.clearPicks()
		g.locked = false

		if g.matched == len(g.alphabet) {
			g.fire(ctx, eventFinish)
			result := scoring.Classify(scores)
			g.result = &result
			g.finishedAt = g.now()
		} else {
			g.fire(ctx, eventMatch)
		}

		g.emit(model.KindPairMatched, model.CueMatch, g.faces(a, b))
		g.emit(model.KindScoreChanged, model.CueNone, nil)
		if g.result != nil {
			g.logger.Info(ctx, "game finished",
				logger.String("result", g.result.String()),
				logger.Int("player1", scores[scoring.PlayerOne]),
				logger.Int("player2", scores[scoring.PlayerTwo]),
			)
			g.emit(model.KindGameEnded, model.CueGameOver, nil)
		}
		return
	}

	gen := g.generation
	g.pending = g.scheduler.AfterFunc(g.delay, func() { g.concealPair(gen, a, b) })
}

// concealPair is the delayed mismatch continuation.
func (g *Game) concealPair(gen uint64, a, b int) {
	g.mu.Lock()
	defer g.mu.Unlock()

	ctx := context.Background()
	if gen != g.generation || !g.machine.Is(PhaseResolving) || g.first != a || g.second != b {
		g.logger.Debug(ctx, "dropping stale mismatch revert", logger.Generation(gen))
		return
	}

	g.pending = nil
	g.cards[a].Status = Hidden
	g.cards[b].Status = Hidden
	g.clearPicks()
	g.locked = false
	g.current = g.current.Next()
	g.fire(ctx, eventMismatchResolved)
	g.emit(model.KindPairHidden, model.CueMismatch, g.faces(a, b))
}

func (g *Game) fire(ctx context.Context, event string) {
	if err := g.machine.Event(ctx, event); err != nil {
		g.logger.Error(ctx, "turn machine rejected event", logger.String("event", event), logger.Error(err))
	}
}

func (g *Game) clearPicks() {
	g.first = noPick
	g.second = noPick
}

// faces lists cards with their symbols when face up.
func (g *Game) faces(ids ...int) []model.CardFace {
	out := make([]model.CardFace, len(ids))
	for i, id := range ids {
		out[i] = model.CardFace{ID: id}
		if c := g.cards[id]; c.Status.FaceUp() {
			out[i].Symbol = string(c.Symbol)
		}
	}
	return out
}

func (g *Game) emit(kind model.Kind, cue model.Cue, cards []model.CardFace) {
	g.seq++
	n := model.Notification{
		GameID:        g.id,
		Generation:    g.generation,
		Seq:           g.seq,
		Kind:          kind,
		Cue:           cue,
		Volume:        g.volume,
		Cards:         cards,
		Scores:        g.scores.Scores(),
		CurrentPlayer: g.current,
		MatchedPairs:  g.matched,
		At:            g.now(),
	}
	if g.result != nil {
		r := *g.result
		n.Result = &r
	}
	g.notifier.Notify(n)
}

// SetVolume stores the feedback volume. The value is passed through to
// renderers untouched; range checks belong to the caller.
func (g *Game) SetVolume(v float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.volume = v
}

// Close invalidates any pending continuation. The game stays readable.
func (g *Game) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.generation++
	if g.pending != nil {
		g.pending.Stop()
		g.pending = nil
	}
}

// Snapshot returns the read-only view handed to renderers. Symbols of hidden
// cards are omitted.
func (g *Game) Snapshot() types.Board {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.snapshot()
}

func (g *Game) snapshot() types.Board {
	cards := make([]types.Card, len(g.cards))
	for i, c := range g.cards {
		cards[i] = types.Card{ID: c.ID, Status: c.Status.String()}
		if c.Status.FaceUp() {
			cards[i].Symbol = string(c.Symbol)
		}
	}
	b := types.Board{
		GameID:        g.id,
		Generation:    g.generation,
		Seq:           g.seq,
		Phase:         g.machine.Current(),
		Cards:         cards,
		CurrentPlayer: g.current,
		Scores:        g.scores.Scores(),
		MatchedPairs:  g.matched,
		TotalPairs:    len(g.alphabet),
		Locked:        g.locked,
		Volume:        g.volume,
	}
	if g.result != nil {
		r := *g.result
		b.Result = &r
	}
	return b
}

// Card returns the full state of one card, symbol included.
func (g *Game) Card(id int) (Card, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if id < 0 || id >= len(g.cards) {
		return Card{}, false
	}
	return g.cards[id], true
}

// Phase returns the current machine phase.
func (g *Game) Phase() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.machine.Current()
}

// Generation returns how many times the board has been dealt.
func (g *Game) Generation() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.generation
}

// Outcome returns final scores and result once the round is complete.
func (g *Game) Outcome() (scoring.Scores, scoring.Result, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.result == nil {
		return g.scores.Scores(), scoring.Tie, false
	}
	return g.scores.Scores(), *g.result, true
}

// Elapsed returns the play time of the current deal, up to completion when finished.
func (g *Game) Elapsed() time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.finishedAt.IsZero() {
		return g.now().Sub(g.startedAt)
	}
	return g.finishedAt.Sub(g.startedAt)
}
