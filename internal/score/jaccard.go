package score

import "github.com/Lirov/claim-checker/internal/extract"

// JaccardScorer compares the keyword sets of two texts
type JaccardScorer struct{}

// NewJaccardScorer creates a keyword-overlap scorer
func NewJaccardScorer() *JaccardScorer {
	return &JaccardScorer{}
}

// Name returns the strategy name
func (s *JaccardScorer) Name() string { return StrategyJaccard }

// Score returns |A ∩ B| / |A ∪ B| over the extracted keywords
func (s *JaccardScorer) Score(a, b string) float64 {
	return guard(a, b, jaccard)
}

func jaccard(a, b string) float64 {
	left := make(map[string]struct{})
	for _, kw := range extract.Keywords(a) {
		left[kw] = struct{}{}
	}

	union := len(left)
	intersection := 0
	for _, kw := range extract.Keywords(b) {
		if _, ok := left[kw]; ok {
			intersection++
		} else {
			union++
		}
	}

	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
