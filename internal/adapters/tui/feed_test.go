package tui

import (
	"testing"

	"github.com/okian/concentration/internal/domain/deck"
	"github.com/okian/concentration/internal/domain/game"
	"github.com/okian/concentration/internal/domain/game/gametest"
	"github.com/okian/concentration/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

// lastSource always picks the highest value.
type lastSource struct{}

func (lastSource) IntN(n int) int { return n - 1 }

func TestFeedVariants(t *testing.T) {
	Convey("Given a feed choosing between three mismatch cues", t, func() {
		feed := NewFeed(8, WithMismatchVariants(3), WithSource(lastSource{}))

		Convey("When a mismatch cue passes through", func() {
			feed.Notify(model.Notification{Kind: model.KindPairHidden, Cue: model.CueMismatch})
			msg := feed.Wait()()

			Convey("Then the variant comes from the source", func() {
				So(model.Notification(msg.(notificationMsg)).CueVariant, ShouldEqual, 2)
			})
		})

		Convey("When another cue passes through", func() {
			feed.Notify(model.Notification{Kind: model.KindPairMatched, Cue: model.CueMatch})
			msg := feed.Wait()()

			Convey("Then no variant is set", func() {
				So(model.Notification(msg.(notificationMsg)).CueVariant, ShouldEqual, 0)
			})
		})

		Convey("When a board mismatches", func() {
			sched := gametest.NewManualScheduler()
			g, err := game.New("tui",
				game.WithAlphabet([]deck.Symbol{"A", "B"}),
				game.WithShuffler(gametest.Fixed("A", "B", "B", "A")),
				game.WithScheduler(sched),
				game.WithNotifier(feed),
			)
			So(err, ShouldBeNil)
			m := drain(New(g, feed))
			m = press(m, keyEnter, keyRight, keyEnter)
			So(sched.Advance(game.DefaultMismatchDelay), ShouldEqual, 1)
			m = drain(m)

			Convey("Then the status names the chosen variant", func() {
				So(m.Status(), ShouldEqual, "♪ no match (3)")
			})
		})
	})

	Convey("Given a feed with default options", t, func() {
		feed := NewFeed(0, WithMismatchVariants(0), WithSource(nil))

		Convey("Then every mismatch uses the first cue", func() {
			feed.Notify(model.Notification{Kind: model.KindPairHidden, Cue: model.CueMismatch})
			msg := feed.Wait()()
			So(model.Notification(msg.(notificationMsg)).CueVariant, ShouldEqual, 0)
			So(cap(feed.ch), ShouldEqual, 64)
		})
	})
}
