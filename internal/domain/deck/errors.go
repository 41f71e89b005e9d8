package deck

import "errors"

// Sentinel kinds for deck construction.
var (
	ErrEmptyAlphabet   = errors.New("alphabet is empty")
	ErrEmptySymbol     = errors.New("symbol is blank")
	ErrDuplicateSymbol = errors.New("duplicate symbol in alphabet")
	ErrUnpaired        = errors.New("deck symbol is not paired")
)
