package score

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrUnknownStrategy is returned by New for an unrecognised strategy name
var ErrUnknownStrategy = errors.New("unknown scoring strategy")

const (
	StrategyTFIDF   = "tfidf"
	StrategyJaccard = "jaccard"
)

// Scorer rates how similar two texts are, in [0, 1]
type Scorer interface {
	Score(a, b string) float64
	Name() string
}

// New returns the scorer registered under name. An empty name selects TF-IDF.
func New(name string) (Scorer, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", StrategyTFIDF:
		return NewTFIDFScorer(), nil
	case StrategyJaccard:
		return NewJaccardScorer(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
}

// guard applies the common scoring contract around fn: blank input scores 0,
// panics score 0, and the result is clamped to [0, 1].
func guard(a, b string, fn func(a, b string) float64) (score float64) {
	if strings.TrimSpace(a) == "" || strings.TrimSpace(b) == "" {
		return 0
	}

	defer func() {
		if r := recover(); r != nil {
			score = 0
		}
	}()

	score = fn(a, b)
	if math.IsNaN(score) || score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
