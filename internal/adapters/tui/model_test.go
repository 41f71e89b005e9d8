package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/okian/concentration/internal/domain/deck"
	"github.com/okian/concentration/internal/domain/game"
	"github.com/okian/concentration/internal/domain/game/gametest"
	"github.com/okian/concentration/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

var (
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyRight = tea.KeyMsg{Type: tea.KeyRight}
	keyLeft  = tea.KeyMsg{Type: tea.KeyLeft}
	keyUp    = tea.KeyMsg{Type: tea.KeyUp}
	keyDown  = tea.KeyMsg{Type: tea.KeyDown}
)

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func newModel(sched *gametest.ManualScheduler, layout ...deck.Symbol) Model {
	feed := NewFeed(64)
	g, err := game.New("tui",
		game.WithAlphabet([]deck.Symbol{"A", "B"}),
		game.WithShuffler(gametest.Fixed(layout...)),
		game.WithScheduler(sched),
		game.WithNotifier(feed),
	)
	So(err, ShouldBeNil)
	return New(g, feed)
}

func press(m Model, msgs ...tea.Msg) Model {
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

// drain feeds every queued notification through Update.
func drain(m Model) Model {
	for {
		select {
		case n := <-m.feed.ch:
			next, cmd := m.Update(notificationMsg(n))
			So(cmd, ShouldNotBeNil)
			m = next.(Model)
		default:
			return m
		}
	}
}

func TestModelNavigation(t *testing.T) {
	Convey("Given a 2x2 board", t, func() {
		m := newModel(gametest.NewManualScheduler(), "A", "B", "B", "A")
		So(m.cols, ShouldEqual, 2)
		So(m.Cursor(), ShouldEqual, 0)

		Convey("Then the cursor moves within the grid", func() {
			So(press(m, keyRight).Cursor(), ShouldEqual, 1)
			So(press(m, keyRight, keyRight).Cursor(), ShouldEqual, 1)
			So(press(m, keyDown).Cursor(), ShouldEqual, 2)
			So(press(m, keyDown, keyRight, keyUp).Cursor(), ShouldEqual, 1)
			So(press(m, keyLeft, keyUp).Cursor(), ShouldEqual, 0)
			So(press(m, runes("l"), runes("j"), runes("h")).Cursor(), ShouldEqual, 2)
		})
	})
}

func TestModelPlay(t *testing.T) {
	Convey("Given a model over a fresh game", t, func() {
		sched := gametest.NewManualScheduler()
		m := newModel(sched, "A", "B", "B", "A")

		Convey("When two matching cards are revealed", func() {
			m = press(m, keyEnter, keyDown, keyRight, keyEnter)
			m = drain(m)

			Convey("Then they show as matched and player one keeps the turn", func() {
				b := m.Board()
				So(b.Cards[0].Status, ShouldEqual, "matched")
				So(b.Cards[3].Status, ShouldEqual, "matched")
				So(b.Scores, ShouldResemble, scoring.Scores{1, 0})
				So(b.CurrentPlayer, ShouldEqual, scoring.PlayerOne)
				So(m.Status(), ShouldEqual, "♪ match!")
			})

			Convey("And finishing the board shows the result", func() {
				m = press(m, keyUp, keyEnter, keyDown, keyLeft, keyEnter)
				m = drain(m)
				So(m.Board().Finished(), ShouldBeTrue)
				So(m.View(), ShouldContainSubstring, "Player 1 wins!")
				So(m.Status(), ShouldEqual, "♪ game over")
			})
		})

		Convey("When two different cards are revealed", func() {
			m = press(m, keyEnter, keyRight, keyEnter)
			So(m.Board().Locked, ShouldBeTrue)

			Convey("Then further reveals are ignored while locked", func() {
				m = press(m, keyDown, keyEnter)
				So(m.Status(), ShouldEqual, "ignored: locked")
			})

			Convey("Then the pair hides after the delay and the turn passes", func() {
				So(sched.Advance(game.DefaultMismatchDelay), ShouldEqual, 1)
				m = drain(m)
				b := m.Board()
				So(b.Cards[0].Status, ShouldEqual, "hidden")
				So(b.Cards[1].Status, ShouldEqual, "hidden")
				So(b.CurrentPlayer, ShouldEqual, scoring.PlayerTwo)
				So(m.Status(), ShouldEqual, "♪ no match (1)")
			})

			Convey("Then a new game cancels the pending revert", func() {
				m = press(m, runes("n"))
				So(m.Board().Generation, ShouldEqual, 2)
				So(m.Board().Locked, ShouldBeFalse)
				So(m.Cursor(), ShouldEqual, 0)
				So(sched.Pending(), ShouldEqual, 0)
			})
		})

		Convey("When revealing a card that is already face up", func() {
			m = press(m, keyEnter, keyEnter)
			So(m.Status(), ShouldEqual, "ignored: not hidden")
		})
	})
}

func TestModelVolumeAndQuit(t *testing.T) {
	Convey("Given a model at the default volume", t, func() {
		m := newModel(gametest.NewManualScheduler(), "A", "B", "B", "A")
		So(m.Board().Volume, ShouldAlmostEqual, game.DefaultVolume)

		Convey("Then + and - step the volume within [0,1]", func() {
			So(press(m, runes("+")).Board().Volume, ShouldAlmostEqual, 0.6)
			So(press(m, runes("-"), runes("-")).Board().Volume, ShouldAlmostEqual, 0.3)
			up := m
			for range 8 {
				up = press(up, runes("+"))
			}
			So(up.Board().Volume, ShouldAlmostEqual, 1.0)
			down := m
			for range 8 {
				down = press(down, runes("-"))
			}
			So(down.Board().Volume, ShouldAlmostEqual, 0.0)
		})

		Convey("Then q quits", func() {
			_, cmd := m.Update(runes("q"))
			So(cmd, ShouldNotBeNil)
			So(cmd(), ShouldHaveSameTypeAs, tea.QuitMsg{})
		})

		Convey("Then the view shows both seats and the help line", func() {
			view := m.View()
			So(view, ShouldContainSubstring, "Player 1: 0")
			So(view, ShouldContainSubstring, "Player 2: 0")
			So(view, ShouldContainSubstring, "reveal")
		})
	})
}
