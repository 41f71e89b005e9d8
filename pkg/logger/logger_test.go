package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLoggerInit(t *testing.T) {
	Convey("Given the global logger", t, func() {
		So(SetFormat(FormatText), ShouldBeNil)

		Convey("When initialized", func() {
			err := Init()

			Convey("Then Get returns a usable logger", func() {
				So(err, ShouldBeNil)
				So(Get(), ShouldNotBeNil)
				So(Sync(), ShouldBeNil)
			})
		})

		Convey("When initialized with a nil writer", func() {
			Convey("Then it fails", func() {
				So(InitWithWriter(nil), ShouldNotBeNil)
			})
		})
	})
}

func TestLoggerOutput(t *testing.T) {
	Convey("Given a logger writing to a buffer", t, func() {
		var buf bytes.Buffer
		So(SetFormat(FormatText), ShouldBeNil)
		So(InitWithWriter(&buf), ShouldBeNil)
		ctx := context.Background()

		Convey("When logging at info with game fields", func() {
			Get().Info(ctx, "card revealed", GameID("g-1"), Card(3), Player(1))

			Convey("Then the record carries the fields and the caller", func() {
				out := buf.String()
				So(out, ShouldContainSubstring, "card revealed")
				So(out, ShouldContainSubstring, "game_id=g-1")
				So(out, ShouldContainSubstring, "card=3")
				So(out, ShouldContainSubstring, "player=1")
				So(out, ShouldContainSubstring, "logger_test.go")
			})
		})

		Convey("When logging below the current level", func() {
			Get().Debug(ctx, "hidden")

			Convey("Then nothing is written", func() {
				So(buf.Len(), ShouldEqual, 0)
			})
		})

		Convey("When the level is lowered to debug", func() {
			So(SetLevelString("debug"), ShouldBeNil)
			defer func() { _ = SetLevelString("info") }()
			Get().Debug(ctx, "visible")

			Convey("Then debug records are written", func() {
				So(buf.String(), ShouldContainSubstring, "visible")
			})
		})

		Convey("When using a named logger with attached fields", func() {
			Named("game").With(GameID("g-2")).Warn(ctx, "stale revert", Error(errors.New("boom")))

			Convey("Then the group and fields appear", func() {
				out := buf.String()
				So(out, ShouldContainSubstring, "game.game_id=g-2")
				So(out, ShouldContainSubstring, "boom")
			})
		})
	})
}

func TestLoggerJSONFormat(t *testing.T) {
	Convey("Given a json logger", t, func() {
		var buf bytes.Buffer
		So(InitWithWriter(&buf), ShouldBeNil)
		So(SetFormat("JSON"), ShouldBeNil)
		defer func() { _ = SetFormat(FormatText) }()

		Get().Info(context.Background(), "game started", GameID("g-3"), Generation(2))

		Convey("Then each record is a JSON object", func() {
			var rec map[string]any
			So(json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &rec), ShouldBeNil)
			So(rec["msg"], ShouldEqual, "game started")
			So(rec["game_id"], ShouldEqual, "g-3")
			So(rec["generation"], ShouldEqual, float64(2))
		})
	})
}

func TestSetLevelAndFormatValidation(t *testing.T) {
	Convey("Given invalid level and format strings", t, func() {
		Convey("Then both setters reject them", func() {
			So(SetLevelString("loud"), ShouldNotBeNil)
			So(SetFormat("xml"), ShouldNotBeNil)
		})

		Convey("Then the accepted spellings pass", func() {
			for _, lvl := range []string{"debug", "INFO", " warn ", "warning", "error", ""} {
				So(SetLevelString(lvl), ShouldBeNil)
			}
			_ = SetLevelString("info")
		})

		Convey("Then ParseLevel maps names to slog levels", func() {
			lvl, err := ParseLevel("WARNING")
			So(err, ShouldBeNil)
			So(lvl, ShouldEqual, slog.LevelWarn)
			lvl, err = ParseLevel("")
			So(err, ShouldBeNil)
			So(lvl, ShouldEqual, slog.LevelInfo)
			_, err = ParseLevel("verbose")
			So(err, ShouldNotBeNil)
		})
	})
}

func TestNop(t *testing.T) {
	Convey("Given the nop logger", t, func() {
		l := Nop()

		Convey("Then logging does not panic", func() {
			So(func() {
				l.Error(context.Background(), "dropped")
				l.Named("x").With(Bool("b", true)).Info(context.Background(), "dropped")
			}, ShouldNotPanic)
		})
	})
}
