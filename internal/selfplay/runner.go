// Package selfplay drives the game API with bots that play complete games
// and check every board they see against the game's invariants.
package selfplay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/okian/concentration/pkg/logger"
)

// ErrViolations is returned when any game broke an invariant.
var ErrViolations = errors.New("invariant violations")

const (
	directoryPermission = 0o750
	percent             = 100
)

// Run plays cfg.Games games and verifies them.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	applyDefaults(cfg)
	stats := &Stats{StartTime: time.Now(), Results: make(map[string]int)}
	log := logger.Named("selfplay")

	log.Info(ctx, "starting concentration self-play",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("games", cfg.Games),
		logger.Int("workers", cfg.Workers),
		logger.Float64("recall", cfg.Recall),
		logger.Uint64("seed", cfg.Seed))

	client := NewClient(cfg.BaseURL, cfg.Timeout)
	if err := client.Health(ctx); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	reports := playGames(ctx, cfg, client, stats)

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, stats)

	if cfg.ReportFile != "" {
		if err := saveReports(ctx, cfg.ReportFile, reports); err != nil {
			log.Warn(ctx, "failed to save reports", logger.Error(err))
		}
	}

	if stats.Violations > 0 {
		for _, r := range reports {
			for _, v := range r.Violations {
				log.Error(ctx, "violation", logger.GameID(r.GameID), logger.String("detail", v))
			}
		}
		return stats, fmt.Errorf("%w: %d across %d games", ErrViolations, stats.Violations, stats.GamesPlayed)
	}
	if stats.GamesFailed > 0 {
		return stats, fmt.Errorf("%d of %d games failed", stats.GamesFailed, cfg.Games)
	}
	log.Info(ctx, "self-play completed successfully")
	return stats, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Games <= 0 {
		cfg.Games = DefaultGames
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.Recall < 0 || cfg.Recall > 1 {
		cfg.Recall = DefaultRecall
	}
	if cfg.Seed == 0 {
		cfg.Seed = rand.Uint64()
	}
}

// playGames runs the games on a worker pool and folds their reports into stats.
func playGames(ctx context.Context, cfg *Config, client *Client, stats *Stats) []*GameReport {
	log := logger.Named("selfplay")
	jobs := make(chan int, cfg.Workers*2)
	var (
		mu      sync.Mutex
		reports []*GameReport
		wg      sync.WaitGroup
	)

	for range cfg.Workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				rng := rand.New(rand.NewPCG(cfg.Seed, uint64(i)))
				bot := newBot(client, rng, cfg)
				report, err := bot.play(ctx)
				if report != nil && report.GameID != "" && !cfg.Keep {
					if derr := client.Delete(context.WithoutCancel(ctx), report.GameID); derr != nil {
						log.Warn(ctx, "failed to delete game", logger.GameID(report.GameID), logger.Error(derr))
					}
				}

				mu.Lock()
				stats.Duplicates += bot.duplicates
				if err != nil {
					stats.GamesFailed++
					log.Warn(ctx, "game failed", logger.Int("game", i), logger.Error(err))
				}
				if report != nil {
					if err == nil {
						stats.add(report)
					} else {
						stats.Violations += len(report.Violations)
					}
					reports = append(reports, report)
				}
				mu.Unlock()

				if cfg.Verbose && report != nil {
					log.Info(ctx, "game finished",
						logger.GameID(report.GameID),
						logger.String("result", report.Result),
						logger.Int("reveals", report.Reveals))
				}
			}
		}()
	}

	func() {
		defer close(jobs)
		for i := range cfg.Games {
			select {
			case <-ctx.Done():
				return
			case jobs <- i:
			}
		}
	}()
	wg.Wait()
	return reports
}

// saveReports writes the per-game reports as a JSON array.
func saveReports(ctx context.Context, filename string, reports []*GameReport) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(reports, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal reports: %w", err)
	}
	if err := os.WriteFile(filename, data, logFilePermission); err != nil {
		return fmt.Errorf("failed to write reports: %w", err)
	}
	logger.Get().Info(ctx, "reports saved to file", logger.String("filename", filename))
	return nil
}

// displayFinalStats logs the run statistics.
func displayFinalStats(ctx context.Context, stats *Stats) {
	var matchRate, gamesPerSecond float64
	if resolved := stats.Matches + stats.Mismatches; resolved > 0 {
		matchRate = float64(stats.Matches) / float64(resolved) * percent
	}
	if stats.Duration > 0 {
		gamesPerSecond = float64(stats.GamesPlayed) / stats.Duration.Seconds()
	}

	logger.Get().Info(ctx, "final statistics",
		logger.Int("gamesPlayed", stats.GamesPlayed),
		logger.Int("gamesFailed", stats.GamesFailed),
		logger.Int("reveals", stats.Reveals),
		logger.Int("ignored", stats.Ignored),
		logger.Int("duplicates", stats.Duplicates),
		logger.Int("matches", stats.Matches),
		logger.Int("mismatches", stats.Mismatches),
		logger.Int("violations", stats.Violations),
		logger.Any("results", stats.Results),
		logger.Duration("duration", stats.Duration),
		logger.Float64("matchRate", matchRate),
		logger.Float64("gamesPerSecond", gamesPerSecond))
}
