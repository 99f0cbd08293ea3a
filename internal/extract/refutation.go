package extract

import (
	"regexp"
	"strings"
)

// refutationTerms are negation and debunking cues, matched on word boundaries
var refutationTerms = []string{
	"no", "not", "never", "none", "nothing",
	"deny", "denies", "denied", "denial",
	"contrary",
	"false", "untrue", "incorrect", "wrong",
	"no evidence", "lack of evidence", "insufficient evidence",
}

// refutationStems match any word starting with the stem
var refutationStems = []string{
	"debunk", "disprov", "contradict",
}

var refutationPatterns = compileRefutationPatterns(refutationTerms, refutationStems)

func compileRefutationPatterns(terms, stems []string) []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, 0, len(terms)+len(stems))
	for _, term := range terms {
		patterns = append(patterns, regexp.MustCompile(`\b`+regexp.QuoteMeta(term)+`\b`))
	}
	for _, stem := range stems {
		patterns = append(patterns, regexp.MustCompile(`\b`+regexp.QuoteMeta(stem)+`\w*\b`))
	}
	return patterns
}

// HasRefutation reports whether text contains any refutation cue.
// Matching is case-insensitive and whole-word only.
func HasRefutation(text string) bool {
	if text == "" {
		return false
	}
	lower := strings.ToLower(text)
	for _, p := range refutationPatterns {
		if p.MatchString(lower) {
			return true
		}
	}
	return false
}
