package usecase

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// defaultStopWords are market vocabulary that produce spurious matches: store
// chain names and common private-label brand words.
var defaultStopWords = []string{
	"pilos", "саяна", "lidl", "kaufland", "billa", "боженци",
	"vereia", "верея", "myprice",
}

// defaultProtectedBrands are brand tokens the optimizer will not silently swap
// away from without a material discount.
var defaultProtectedBrands = []string{
	"pilos", "vereia", "верея", "саяна",
}

// MatcherConfig holds configuration for the product matcher.
type MatcherConfig struct {
	StopWords         []string
	ProtectedBrands   []string
	MinSharedKeywords int
}

// Matcher scores candidate listings against a target product name by
// significant-keyword overlap.
type Matcher struct {
	stopWords         map[string]bool
	protectedBrands   []string
	minSharedKeywords int
}

// NewMatcher creates a matcher with the given configuration, falling back to
// the default market vocabulary where a field is unset.
func NewMatcher(config MatcherConfig) *Matcher {
	stopWords := config.StopWords
	if stopWords == nil {
		stopWords = defaultStopWords
	}

	stopSet := make(map[string]bool, len(stopWords))
	for _, w := range stopWords {
		stopSet[strings.ToLower(w)] = true
	}

	protected := config.ProtectedBrands
	if protected == nil {
		protected = defaultProtectedBrands
	}
	brands := make([]string, len(protected))
	for i, b := range protected {
		brands[i] = strings.ToLower(b)
	}

	minShared := config.MinSharedKeywords
	if minShared <= 0 {
		minShared = 2
	}

	return &Matcher{
		stopWords:         stopSet,
		protectedBrands:   brands,
		minSharedKeywords: minShared,
	}
}

// Score returns how many significant keywords two product names share.
// Set semantics: duplicate tokens collapse and order is irrelevant.
func (m *Matcher) Score(nameA, nameB string) int {
	tokensA := m.tokenize(nameA)
	tokensB := m.tokenize(nameB)

	score := 0
	for token := range tokensA {
		if tokensB[token] {
			score++
		}
	}
	return score
}

// IsAcceptableMatch reports whether a score clears the match threshold.
func (m *Matcher) IsAcceptableMatch(score int) bool {
	return score >= m.minSharedKeywords
}

// SharedProtectedBrand reports whether both names carry the same protected
// brand token. The optimizer relaxes its discount requirement for such pairs.
func (m *Matcher) SharedProtectedBrand(nameA, nameB string) bool {
	lowerA := strings.ToLower(nameA)
	lowerB := strings.ToLower(nameB)
	for _, brand := range m.protectedBrands {
		if strings.Contains(lowerA, brand) && strings.Contains(lowerB, brand) {
			return true
		}
	}
	return false
}

// tokenize splits a name into its set of significant lowercase tokens.
// Short tokens are noise unless they carry a digit: "of" is dropped, a fat
// percentage like "3%" is kept.
func (m *Matcher) tokenize(name string) map[string]bool {
	tokens := make(map[string]bool)
	for _, word := range strings.Fields(strings.ToLower(name)) {
		if utf8.RuneCountInString(word) <= 2 && !containsDigit(word) {
			continue
		}
		if m.stopWords[word] {
			continue
		}
		tokens[word] = true
	}
	return tokens
}

func containsDigit(s string) bool {
	for _, r := range s {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
