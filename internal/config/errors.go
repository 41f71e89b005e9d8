package config

import (
	"errors"
)

// Sentinel error kinds. Validate wraps ErrInvalidConfig; a failing YAML,
// dotenv or environment layer wraps ErrLoadConfig.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")
)
