package selfplay

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/concentration/internal/adapters/http/api"
	service "github.com/okian/concentration/internal/app"
	"github.com/okian/concentration/internal/domain/deck"
	"github.com/okian/concentration/internal/domain/scoring"
	"github.com/okian/concentration/internal/domain/types"
	"github.com/okian/concentration/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func startServer() (*httptest.Server, func()) {
	svc := service.New(
		service.WithAlphabet([]deck.Symbol{"A", "B", "C", "D"}),
		service.WithMismatchDelay(20*time.Millisecond),
		service.WithDispatcherCount(2),
	)
	So(svc.Start(context.Background()), ShouldBeNil)
	mux := http.NewServeMux()
	api.NewServer(svc, svc).Register(context.Background(), mux)
	srv := httptest.NewServer(mux)
	return srv, func() {
		srv.Close()
		svc.Stop()
	}
}

func TestRun(t *testing.T) {
	Convey("Given a running server", t, func() {
		srv, stop := startServer()
		defer stop()

		Convey("When bots play several games concurrently", func() {
			report := filepath.Join(t.TempDir(), "out", "games.json")
			stats, err := Run(context.Background(), &Config{
				BaseURL:      srv.URL,
				Games:        6,
				Workers:      3,
				PollInterval: 5 * time.Millisecond,
				Recall:       0.7,
				Seed:         42,
				ReportFile:   report,
			})

			Convey("Then every game finishes without violations", func() {
				So(err, ShouldBeNil)
				So(stats.GamesPlayed, ShouldEqual, 6)
				So(stats.GamesFailed, ShouldEqual, 0)
				So(stats.Violations, ShouldEqual, 0)
				So(stats.Matches, ShouldEqual, 6*4)
				So(stats.Duplicates, ShouldEqual, 6)
				total := 0
				for _, n := range stats.Results {
					total += n
				}
				So(total, ShouldEqual, 6)
			})

			Convey("Then the reports are written", func() {
				data, rerr := os.ReadFile(report)
				So(rerr, ShouldBeNil)
				var reports []GameReport
				So(json.Unmarshal(data, &reports), ShouldBeNil)
				So(reports, ShouldHaveLength, 6)
				for _, r := range reports {
					So(r.Scores.Total(), ShouldEqual, 4)
				}
			})

			Convey("Then finished games are deleted", func() {
				resp, gerr := http.Get(srv.URL + "/stats")
				So(gerr, ShouldBeNil)
				defer resp.Body.Close()
				var body map[string]any
				So(json.NewDecoder(resp.Body).Decode(&body), ShouldBeNil)
				So(body["activeGames"], ShouldEqual, 0)
			})
		})

		Convey("When a bot has perfect recall", func() {
			stats, err := Run(context.Background(), &Config{
				BaseURL: srv.URL, Games: 1, PollInterval: 5 * time.Millisecond, Recall: 1, Seed: 7,
			})

			Convey("Then it only mismatches cards it had never seen", func() {
				So(err, ShouldBeNil)
				So(stats.Mismatches, ShouldBeLessThanOrEqualTo, 4)
				So(stats.Reveals, ShouldBeLessThanOrEqualTo, 16)
			})
		})
	})

	Convey("Given no server", t, func() {
		_, err := Run(context.Background(), &Config{BaseURL: "http://127.0.0.1:1", Timeout: time.Second})
		So(err, ShouldNotBeNil)
	})
}

func board(statuses []string, symbols []string) types.Board {
	b := types.Board{GameID: "g", TotalPairs: len(statuses) / 2}
	for i, s := range statuses {
		b.Cards = append(b.Cards, types.Card{ID: i, Status: s, Symbol: symbols[i]})
	}
	return b
}

func TestVerifyBoard(t *testing.T) {
	Convey("Given a fresh board", t, func() {
		b := board([]string{"hidden", "hidden", "hidden", "hidden"}, []string{"", "", "", ""})

		Convey("Then it holds every invariant", func() {
			So(verifyBoard(b), ShouldBeEmpty)
		})

		Convey("Then an exposed hidden symbol is flagged", func() {
			b.Cards[0].Symbol = "A"
			So(verifyBoard(b), ShouldHaveLength, 1)
		})

		Convey("Then three face-up cards are flagged", func() {
			for i := range 3 {
				b.Cards[i].Status = "revealed"
				b.Cards[i].Symbol = "A"
			}
			So(verifyBoard(b), ShouldNotBeEmpty)
		})

		Convey("Then scores that disagree with matched pairs are flagged", func() {
			b.Scores = scoring.Scores{1, 0}
			So(verifyBoard(b), ShouldNotBeEmpty)
		})
	})

	Convey("Given a finished board", t, func() {
		b := board([]string{"matched", "matched", "matched", "matched"}, []string{"A", "B", "B", "A"})
		b.MatchedPairs = 2
		b.Scores = scoring.Scores{1, 1}

		Convey("Then a missing result is flagged", func() {
			So(verifyBoard(b), ShouldHaveLength, 1)
		})

		Convey("Then the right result passes", func() {
			r := scoring.Tie
			b.Result = &r
			So(verifyBoard(b), ShouldBeEmpty)
		})

		Convey("Then a wrong result is flagged", func() {
			r := scoring.Player1Wins
			b.Result = &r
			So(verifyBoard(b), ShouldHaveLength, 1)
		})
	})
}

func TestVerifyTurn(t *testing.T) {
	Convey("Given player one to move", t, func() {
		before := types.Board{CurrentPlayer: scoring.PlayerOne}
		same := types.Board{CurrentPlayer: scoring.PlayerOne}
		next := types.Board{CurrentPlayer: scoring.PlayerTwo}

		So(verifyTurn(before, same, true), ShouldBeEmpty)
		So(verifyTurn(before, next, true), ShouldHaveLength, 1)
		So(verifyTurn(before, next, false), ShouldBeEmpty)
		So(verifyTurn(before, same, false), ShouldHaveLength, 1)
	})
}
