// Package deck builds and shuffles the paired symbol deck.
package deck

import (
	"fmt"
	"math/rand/v2"
	"strings"
)

// Symbol is an opaque card label. Symbols compare by equality only.
type Symbol string

// DefaultAlphabet is the eight-pair alphabet of the classic board.
var DefaultAlphabet = []Symbol{"A", "B", "C", "D", "E", "F", "G", "H"} //nolint:gochecknoglobals // read-only default

// Source supplies uniform integers in [0, n). *rand.Rand from math/rand/v2 satisfies it.
type Source interface {
	IntN(n int) int
}

type globalSource struct{}

func (globalSource) IntN(n int) int { return rand.IntN(n) } //nolint:gosec // game shuffle, not crypto

// DefaultSource returns a Source backed by the math/rand/v2 global generator.
func DefaultSource() Source { return globalSource{} }

// NewSeededSource returns a deterministic Source, mostly for tests and replays.
func NewSeededSource(seed1, seed2 uint64) Source {
	return rand.New(rand.NewPCG(seed1, seed2)) //nolint:gosec // deterministic on purpose
}

// ParseAlphabet converts configured labels into symbols and validates them.
func ParseAlphabet(labels []string) ([]Symbol, error) {
	out := make([]Symbol, len(labels))
	for i, l := range labels {
		out[i] = Symbol(strings.TrimSpace(l))
	}
	if err := ValidateAlphabet(out); err != nil {
		return nil, err
	}
	return out, nil
}

// ValidateAlphabet checks that the alphabet is non-empty and holds distinct, non-blank labels.
func ValidateAlphabet(alphabet []Symbol) error {
	if len(alphabet) == 0 {
		return ErrEmptyAlphabet
	}
	seen := make(map[Symbol]struct{}, len(alphabet))
	for _, s := range alphabet {
		if s == "" {
			return ErrEmptySymbol
		}
		if _, dup := seen[s]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateSymbol, s)
		}
		seen[s] = struct{}{}
	}
	return nil
}

// New returns the unshuffled deck: every alphabet symbol twice, alphabet order repeated.
func New(alphabet []Symbol) ([]Symbol, error) {
	if err := ValidateAlphabet(alphabet); err != nil {
		return nil, err
	}
	cards := make([]Symbol, 0, 2*len(alphabet))
	cards = append(cards, alphabet...)
	cards = append(cards, alphabet...)
	return cards, nil
}

// Shuffle returns a uniformly random permutation of symbols using Fisher–Yates.
// The input slice is not modified.
func Shuffle(src Source, symbols []Symbol) []Symbol {
	if src == nil {
		src = DefaultSource()
	}
	out := make([]Symbol, len(symbols))
	copy(out, symbols)
	for i := len(out) - 1; i > 0; i-- {
		j := src.IntN(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// Validate reports whether cards holds every symbol exactly twice.
func Validate(cards []Symbol) error {
	if len(cards) == 0 {
		return ErrEmptyAlphabet
	}
	counts := make(map[Symbol]int, len(cards)/2)
	for _, s := range cards {
		counts[s]++
	}
	for s, n := range counts {
		if n != 2 {
			return fmt.Errorf("%w: %q appears %d times", ErrUnpaired, s, n)
		}
	}
	return nil
}

// Pairs returns the number of distinct pairs in a valid deck.
func Pairs(cards []Symbol) int { return len(cards) / 2 }
