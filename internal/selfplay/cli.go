package selfplay

import (
	"fmt"
	"io"
	"os"

	"github.com/okian/concentration/pkg/logger"
)

// SetupLogging sends logs to stdout and, when logFile is set, to that file too.
func SetupLogging(logFile string, verbose bool) error {
	var out io.Writer = os.Stdout
	if logFile != "" {
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
		if err != nil {
			return fmt.Errorf("failed to create log file: %w", err)
		}
		out = io.MultiWriter(os.Stdout, file)
	}
	if err := logger.InitWithWriter(out); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if verbose {
		return logger.SetLevelString("debug")
	}
	return nil
}

// ShowHelp prints usage information for the self-play tool.
func ShowHelp() {
	os.Stdout.WriteString(`Concentration Self-Play
=======================

Plays complete games against a running server and checks every board it
sees: card counts, face-up limits, score totals, turn order after matches
and mismatches, the final result and duplicate request handling.

Usage:
  go run ./cmd/selfplay [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -games int
        Number of games to play (default 20)
  -workers int
        Number of games played concurrently (default CPU cores)
  -timeout duration
        HTTP request timeout (default 10s)
  -poll duration
        Board poll interval while a mismatch resolves (default 50ms)
  -recall float
        Probability that a bot remembers a seen card (default 0.8)
  -seed uint
        Seed for the bots (default random)
  -report string
        Write per-game reports as JSON to this file
  -log string
        Also write logs to this file
  -keep
        Keep finished games on the server
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  go run ./cmd/selfplay -games 100 -workers 8
  go run ./cmd/selfplay -recall 1 -seed 42 -report out/games.json
`)
}
