package repository

import "errors"

// Sentinel kinds for game store errors.
var (
	ErrNotFound = errors.New("game not found")
	ErrExists   = errors.New("game already exists")
	ErrCapacity = errors.New("game store is full")
)
