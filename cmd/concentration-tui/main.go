// Command concentration-tui plays one hot-seat game in the terminal.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/okian/concentration/internal/adapters/tui"
	"github.com/okian/concentration/internal/config"
	"github.com/okian/concentration/internal/domain/game"
	"github.com/okian/concentration/pkg/logger"
)

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// The board owns the terminal; logs go to a file only when asked for.
	var logOut io.Writer = io.Discard
	if path := os.Getenv("CONCENTRATION_TUI_LOG"); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return fmt.Errorf("open log: %w", err)
		}
		defer f.Close()
		logOut = f
	}
	if err := logger.InitWithWriter(logOut); err != nil {
		return fmt.Errorf("init logging: %w", err)
	}

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	setLogLevel(ctx, cfg.LogLevel)

	g, feed, err := newGame(cfg)
	if err != nil {
		return err
	}
	defer g.Close()

	if _, err := tea.NewProgram(tui.New(g, feed), tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("run board: %w", err)
	}
	return nil
}

// setLogLevel applies level, warning and falling back to info when it is unknown.
func setLogLevel(ctx context.Context, level string) {
	if err := logger.SetLevelString(level); err != nil {
		logger.Get().Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", level), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
}

// newGame deals a game wired to a feed the board drains.
func newGame(cfg *config.Config) (*game.Game, *tui.Feed, error) {
	alphabet, err := cfg.Alphabet()
	if err != nil {
		return nil, nil, fmt.Errorf("symbols: %w", err)
	}
	feed := tui.NewFeed(cfg.SubscriberBuffer, tui.WithMismatchVariants(cfg.MismatchVariants))
	g, err := game.New(uuid.NewString(),
		game.WithAlphabet(alphabet),
		game.WithMismatchDelay(cfg.MismatchDelay()),
		game.WithVolume(cfg.Volume),
		game.WithNotifier(feed),
		game.WithLogger(logger.Named("game")),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("deal: %w", err)
	}
	return g, feed, nil
}
