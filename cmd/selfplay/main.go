// Command selfplay plays complete games against a running server and checks
// every board it sees.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/concentration/internal/selfplay"
)

const defaultRunTimeout = 10 * time.Minute

func main() {
	var (
		baseURL = flag.String("url", "http://localhost:9080", "Base URL of the service")
		games   = flag.Int("games", selfplay.DefaultGames, "Number of games to play")
		workers = flag.Int("workers", runtime.NumCPU(), "Number of games played concurrently")
		timeout = flag.Duration("timeout", selfplay.DefaultTimeout, "HTTP request timeout")
		poll    = flag.Duration("poll", selfplay.DefaultPollInterval, "Board poll interval while a mismatch resolves")
		recall  = flag.Float64("recall", selfplay.DefaultRecall, "Probability that a bot remembers a seen card")
		seed    = flag.Uint64("seed", 0, "Seed for the bots (default random)")
		report  = flag.String("report", "", "Write per-game reports as JSON to this file")
		logFile = flag.String("log", "", "Also write logs to this file")
		keep    = flag.Bool("keep", false, "Keep finished games on the server")
		verbose = flag.Bool("verbose", false, "Enable verbose logging")
		help    = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		selfplay.ShowHelp()
		return
	}

	if err := selfplay.SetupLogging(*logFile, *verbose); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, defaultRunTimeout)
	defer cancel()

	cfg := &selfplay.Config{
		BaseURL:      *baseURL,
		Games:        *games,
		Workers:      *workers,
		Timeout:      *timeout,
		PollInterval: *poll,
		Recall:       *recall,
		Seed:         *seed,
		ReportFile:   *report,
		LogFile:      *logFile,
		Keep:         *keep,
		Verbose:      *verbose,
	}
	if _, err := selfplay.Run(ctx, cfg); err != nil {
		os.Stderr.WriteString("Self-play failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
