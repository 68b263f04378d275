package usecase

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/recipefootprint/backend/internal/domain"
	"golang.org/x/text/unicode/norm"
)

// Package-level compiled regex pattern for performance
var punctuationRegex = regexp.MustCompile(`[^\pL\pN\s]`)

// Score weights for the token based ratios, mirroring the usual WRatio scaling
const (
	tokenRatioScale = 0.95
	maxScore        = 100.0
)

// ingredientNoiseWords are preparation and filler words that never name a product
var ingredientNoiseWords = map[string]bool{
	// Basic English stop words
	"a": true, "an": true, "the": true, "and": true, "or": true,
	"of": true, "in": true, "on": true, "at": true, "to": true,
	"for": true, "with": true, "by": true, "from": true, "into": true,
	"about": true, "plus": true, "more": true, "as": true, "if": true,
	// Preparation
	"chopped": true, "minced": true, "diced": true, "sliced": true, "grated": true,
	"shredded": true, "crushed": true, "peeled": true, "halved": true, "quartered": true,
	"cubed": true, "trimmed": true, "rinsed": true, "drained": true, "divided": true,
	"softened": true, "melted": true, "beaten": true, "packed": true, "sifted": true,
	"finely": true, "thinly": true, "coarsely": true, "roughly": true, "freshly": true,
	"lightly": true, "cut": true, "pieces": true, "taste": true, "optional": true,
	"needed": true, "garnish": true, "serving": true,
}

// TokenSetMatcher scores candidates with character and token-set ratios.
// Tokens are lowercased, stripped of diacritics and punctuation, and singularised.
type TokenSetMatcher struct {
	fuzzyTokens       bool
	fuzzyEditDistance int
}

// NewTokenSetMatcher creates a matcher. When fuzzyTokens is set, tokens of four or more
// runes are considered equal within the given Levenshtein distance.
func NewTokenSetMatcher(fuzzyTokens bool, fuzzyEditDistance int) *TokenSetMatcher {
	if fuzzyEditDistance <= 0 {
		fuzzyEditDistance = 1 // Default edit distance of 1
	}
	return &TokenSetMatcher{
		fuzzyTokens:       fuzzyTokens,
		fuzzyEditDistance: fuzzyEditDistance,
	}
}

// BestMatch returns the highest scoring candidate. The first candidate wins ties.
func (m *TokenSetMatcher) BestMatch(query string, candidates []string) (domain.Match, bool) {
	if strings.TrimSpace(query) == "" || len(candidates) == 0 {
		return domain.Match{}, false
	}

	// Text with nothing comparable, such as "??", still yields the first candidate at score 0
	queryTokens := tokenize(query)
	if len(queryTokens) == 0 {
		return domain.Match{Index: 0, Candidate: candidates[0], Score: 0}, true
	}

	best := domain.Match{Index: -1, Score: -1}
	for i, candidate := range candidates {
		score := m.Score(queryTokens, tokenize(candidate))
		if score > best.Score {
			best = domain.Match{Index: i, Candidate: candidate, Score: score}
		}
	}
	return best, best.Index >= 0
}

// Score compares two token lists and returns a similarity between 0 and 100
func (m *TokenSetMatcher) Score(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	score := ratio(strings.Join(a, " "), strings.Join(b, " "))
	if s := tokenRatioScale * ratio(sortedJoin(a), sortedJoin(b)); s > score {
		score = s
	}
	if s := tokenRatioScale * m.tokenSetRatio(a, b); s > score {
		score = s
	}
	return score
}

// tokenSetRatio compares the shared tokens with each side's leftovers, so a query whose
// tokens are all contained in the candidate scores 100
func (m *TokenSetMatcher) tokenSetRatio(a, b []string) float64 {
	shared, restA, restB := m.splitTokens(a, b)

	sect := sortedJoin(shared)
	withA := strings.TrimSpace(sect + " " + sortedJoin(restA))
	withB := strings.TrimSpace(sect + " " + sortedJoin(restB))

	best := ratio(withA, withB)
	if sect == "" {
		return best
	}
	if r := ratio(sect, withA); r > best {
		best = r
	}
	if r := ratio(sect, withB); r > best {
		best = r
	}
	return best
}

// splitTokens returns the tokens of a found in b, and what remains on each side.
// Shared tokens take b's spelling so fuzzy pairs compare as equal.
func (m *TokenSetMatcher) splitTokens(a, b []string) (shared, restA, restB []string) {
	used := make([]bool, len(b))
	for _, ta := range a {
		matched := -1
		for j, tb := range b {
			if used[j] {
				continue
			}
			if ta == tb {
				matched = j
				break
			}
			if matched < 0 && m.fuzzyTokens && fuzzyTokenMatch(ta, tb, m.fuzzyEditDistance) {
				matched = j
			}
		}
		if matched < 0 {
			restA = append(restA, ta)
			continue
		}
		used[matched] = true
		shared = append(shared, b[matched])
	}
	for j, tb := range b {
		if !used[j] {
			restB = append(restB, tb)
		}
	}
	return shared, restA, restB
}

// tokenize splits a string into normalized lowercase tokens.
// Removes diacritics, punctuation, noise words and pure numeric tokens.
// Text made only of noise words keeps them rather than vanishing.
func tokenize(s string) []string {
	cleaned := punctuationRegex.ReplaceAllString(strings.ToLower(stripDiacritics(s)), " ")
	words := strings.Fields(cleaned)

	var tokens []string
	for _, word := range words {
		if ingredientNoiseWords[word] || isNumeric(word) {
			continue
		}
		tokens = append(tokens, singularize(word))
	}
	if len(tokens) == 0 {
		for _, word := range words {
			tokens = append(tokens, singularize(word))
		}
	}
	return tokens
}

// stripDiacritics folds accented letters to their base form ("crème" → "creme")
func stripDiacritics(s string) string {
	decomposed := norm.NFD.String(s)
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return norm.NFC.String(b.String())
}

// singularize trims common English plural endings from longer words
func singularize(word string) string {
	switch {
	case len(word) > 4 && strings.HasSuffix(word, "oes"):
		return strings.TrimSuffix(word, "es")
	case len(word) > 4 && strings.HasSuffix(word, "ies"):
		return strings.TrimSuffix(word, "ies") + "y"
	case len(word) > 3 && strings.HasSuffix(word, "s") && !strings.HasSuffix(word, "ss"):
		return strings.TrimSuffix(word, "s")
	}
	return word
}

// isNumeric checks if a string contains only digits
func isNumeric(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return len(s) > 0
}

// sortedJoin joins a sorted copy of the tokens with single spaces
func sortedJoin(tokens []string) string {
	sorted := append([]string(nil), tokens...)
	sort.Strings(sorted)
	return strings.Join(sorted, " ")
}

// ratio is the indel similarity of two strings: 100 * 2*LCS / (len(a)+len(b))
func ratio(a, b string) float64 {
	r1 := []rune(a)
	r2 := []rune(b)
	total := len(r1) + len(r2)
	if total == 0 {
		return maxScore
	}
	return maxScore * float64(2*longestCommonSubsequence(r1, r2)) / float64(total)
}

// longestCommonSubsequence computes the LCS length with two rolling rows
func longestCommonSubsequence(r1, r2 []rune) int {
	prev := make([]int, len(r2)+1)
	curr := make([]int, len(r2)+1)

	for i := 1; i <= len(r1); i++ {
		for j := 1; j <= len(r2); j++ {
			switch {
			case r1[i-1] == r2[j-1]:
				curr[j] = prev[j-1] + 1
			case prev[j] >= curr[j-1]:
				curr[j] = prev[j]
			default:
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}

	return prev[len(r2)]
}

// fuzzyTokenMatch checks if two tokens are similar within the edit distance threshold
func fuzzyTokenMatch(token1, token2 string, threshold int) bool {
	if token1 == token2 {
		return true
	}

	// Only apply fuzzy matching to tokens >= 4 chars to avoid false positives
	if len(token1) < 4 || len(token2) < 4 {
		return false
	}

	// Quick length check - if lengths differ by more than threshold, can't match
	lenDiff := len(token1) - len(token2)
	if lenDiff < 0 {
		lenDiff = -lenDiff
	}
	if lenDiff > threshold {
		return false
	}

	return levenshteinDistance(token1, token2) <= threshold
}

// levenshteinDistance calculates the edit distance between two strings
func levenshteinDistance(s1, s2 string) int {
	r1 := []rune(s1)
	r2 := []rune(s2)
	if len(r1) == 0 {
		return len(r2)
	}
	if len(r2) == 0 {
		return len(r1)
	}

	// Use two rows instead of full matrix for space efficiency
	prev := make([]int, len(r2)+1)
	curr := make([]int, len(r2)+1)

	for j := 0; j <= len(r2); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(r1); i++ {
		curr[0] = i
		for j := 1; j <= len(r2); j++ {
			cost := 0
			if r1[i-1] != r2[j-1] {
				cost = 1
			}
			curr[j] = min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[len(r2)]
}
