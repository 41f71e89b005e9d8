package selfplay

import "time"

// Defaults applied when a Config field is zero.
const (
	DefaultGames        = 20
	DefaultTimeout      = 10 * time.Second
	DefaultPollInterval = 50 * time.Millisecond
	DefaultRecall       = 0.8
)

// maxRevealsPerCard bounds a game so a stuck board cannot loop forever.
const maxRevealsPerCard = 50

const logFilePermission = 0o600
