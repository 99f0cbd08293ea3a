package extract

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxKeywords caps the number of keywords returned by Keywords
const MaxKeywords = 10

// stopWords are dropped from keyword candidates
var stopWords = map[string]struct{}{}

func init() {
	for _, w := range strings.Fields(`
		the a an and or but in on at to for of with by
		is are was were be been being have has had do does did
		will would could should may might can
		this that these those
		i you he she it we they me him her us them
		my your his its our their`) {
		stopWords[w] = struct{}{}
	}
}

// Keywords extracts up to MaxKeywords distinct search terms from text.
// Punctuation becomes whitespace, tokens of two runes or fewer and stop words
// are dropped, and first-occurrence order is kept.
func Keywords(text string) []string {
	normalized := strings.Map(func(r rune) rune {
		if isWordRune(r) || unicode.IsSpace(r) {
			return r
		}
		return ' '
	}, strings.ToLower(text))

	keywords := make([]string, 0, MaxKeywords)
	seen := make(map[string]bool)

	for _, word := range strings.Fields(normalized) {
		if utf8.RuneCountInString(word) <= 2 {
			continue
		}
		if _, stop := stopWords[word]; stop {
			continue
		}
		if seen[word] {
			continue
		}
		seen[word] = true
		keywords = append(keywords, word)
		if len(keywords) == MaxKeywords {
			break
		}
	}

	return keywords
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}
