package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrNotStarted    = errors.New("service not started")
	ErrGameNotFound  = errors.New("game not found")
	ErrCapacity      = errors.New("too many games")
	ErrInvalidVolume = errors.New("volume must be within [0,1]")
)
