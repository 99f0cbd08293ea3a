package score

import (
	"math"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultMaxFeatures caps the TF-IDF vocabulary size
const DefaultMaxFeatures = 1000

// TFIDFScorer computes cosine similarity between TF-IDF vectors fitted on
// the two input documents. Terms are unigrams and bigrams of lowercased
// word tokens with English stop words removed.
type TFIDFScorer struct {
	maxFeatures int
}

// NewTFIDFScorer creates a TF-IDF scorer with the default vocabulary cap
func NewTFIDFScorer() *TFIDFScorer {
	return &TFIDFScorer{maxFeatures: DefaultMaxFeatures}
}

// Name returns the strategy name
func (s *TFIDFScorer) Name() string { return StrategyTFIDF }

// Score returns the cosine similarity of a and b
func (s *TFIDFScorer) Score(a, b string) float64 {
	return guard(a, b, s.cosine)
}

func (s *TFIDFScorer) cosine(a, b string) float64 {
	docs := []map[string]int{termCounts(a), termCounts(b)}

	vocab := s.vocabulary(docs)
	if len(vocab) == 0 {
		return 0
	}

	n := float64(len(docs))
	vectors := make([]map[string]float64, len(docs))
	for i, counts := range docs {
		vec := make(map[string]float64, len(counts))
		var sumSquares float64
		for _, term := range vocab {
			tf := counts[term]
			if tf == 0 {
				continue
			}
			df := 0
			for _, other := range docs {
				if other[term] > 0 {
					df++
				}
			}
			idf := math.Log((1+n)/(1+float64(df))) + 1
			w := float64(tf) * idf
			vec[term] = w
			sumSquares += w * w
		}
		if sumSquares > 0 {
			norm := math.Sqrt(sumSquares)
			for term := range vec {
				vec[term] /= norm
			}
		}
		vectors[i] = vec
	}

	var dot float64
	for term, w := range vectors[0] {
		dot += w * vectors[1][term]
	}
	return dot
}

// vocabulary returns the retained terms, keeping the most frequent ones
// across the corpus when the cap is exceeded. Ties break alphabetically.
func (s *TFIDFScorer) vocabulary(docs []map[string]int) []string {
	totals := make(map[string]int)
	for _, counts := range docs {
		for term, c := range counts {
			totals[term] += c
		}
	}

	terms := make([]string, 0, len(totals))
	for term := range totals {
		terms = append(terms, term)
	}

	if s.maxFeatures > 0 && len(terms) > s.maxFeatures {
		sort.Slice(terms, func(i, j int) bool {
			if totals[terms[i]] != totals[terms[j]] {
				return totals[terms[i]] > totals[terms[j]]
			}
			return terms[i] < terms[j]
		})
		terms = terms[:s.maxFeatures]
	}

	sort.Strings(terms)
	return terms
}

// termCounts tokenizes text into unigram and bigram counts
func termCounts(text string) map[string]int {
	var tokens []string
	for _, tok := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !(r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r))
	}) {
		if utf8.RuneCountInString(tok) < 2 {
			continue
		}
		if _, stop := englishStopWords[tok]; stop {
			continue
		}
		tokens = append(tokens, tok)
	}

	counts := make(map[string]int, len(tokens)*2)
	for i, tok := range tokens {
		counts[tok]++
		if i > 0 {
			counts[tokens[i-1]+" "+tok]++
		}
	}
	return counts
}
