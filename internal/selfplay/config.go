package selfplay

import (
	"time"

	"github.com/okian/concentration/internal/domain/scoring"
)

// Config holds configuration for a self-play run.
type Config struct {
	BaseURL      string        // Base URL of the service
	Games        int           // Number of games to play
	Workers      int           // Number of games played concurrently
	Timeout      time.Duration // HTTP request timeout
	PollInterval time.Duration // Wait between board polls while a mismatch resolves
	Recall       float64       // Probability a bot remembers a card it has seen, in [0,1]
	Seed         uint64        // Seed for the bots' choices; zero picks one
	ReportFile   string        // Output file for per-game reports
	LogFile      string        // Log file for run output
	Keep         bool          // Keep finished games instead of deleting them
	Verbose      bool          // Enable verbose logging
}

// GameReport describes one finished game.
type GameReport struct {
	GameID     string         `json:"game_id"`
	Result     string         `json:"result"`
	Scores     scoring.Scores `json:"scores"`
	Reveals    int            `json:"reveals"`
	Ignored    int            `json:"ignored"`
	Matches    int            `json:"matches"`
	Mismatches int            `json:"mismatches"`
	Violations []string       `json:"violations,omitempty"`
	Duration   time.Duration  `json:"duration_ns"`
}

// Stats holds run statistics.
type Stats struct {
	GamesPlayed int
	GamesFailed int
	Reveals     int
	Ignored     int
	Duplicates  int
	Matches     int
	Mismatches  int
	Violations  int
	Results     map[string]int
	StartTime   time.Time
	EndTime     time.Time
	Duration    time.Duration
}

func (s *Stats) add(r *GameReport) {
	if s.Results == nil {
		s.Results = make(map[string]int)
	}
	s.GamesPlayed++
	s.Reveals += r.Reveals
	s.Ignored += r.Ignored
	s.Matches += r.Matches
	s.Mismatches += r.Mismatches
	s.Violations += len(r.Violations)
	s.Results[r.Result]++
}
