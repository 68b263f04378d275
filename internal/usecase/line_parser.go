package usecase

import (
	"strings"
	"unicode"

	"github.com/recipefootprint/backend/internal/domain"
)

// bulletGlyphs are list markers that may prefix an ingredient line
var bulletGlyphs = []string{"▪︎", "•", "▪", "·", "-", "*"}

// advertisementNoise is scraped filler that shows up inside ingredient blocks
const advertisementNoise = "ADVERTISEMENT"

// ParseLine splits a raw ingredient line into a quantity, a unit token and the
// descriptive text used for product matching.
//
// Words are scanned left to right; the first word containing a vocabulary token
// (case-insensitive substring, so "cloves," matches "clove") is the unit word.
// Everything before it is the quantity, everything after it is the description.
func ParseLine(raw string, units *domain.UnitVocabulary) domain.IngredientLine {
	line := domain.IngredientLine{
		RawText:  raw,
		Quantity: domain.MissingQuantity(),
	}

	text := stripBullet(raw)

	offset := 0
	for offset < len(text) {
		start, end := nextWord(text, offset)
		if start < 0 {
			break
		}
		offset = end

		unit, ok := findUnitToken(text[start:end], units)
		if !ok {
			continue
		}

		line.UnitToken = unit.Token
		if qty := stripBullet(text[:start]); qty != "" {
			line.Quantity = domain.RawTextQuantity(qty)
		}

		rest := trimLeadingPunctuation(text[end:])
		if unit.Descriptive {
			rest = strings.TrimSpace(text[start:end] + " " + rest)
		}
		line.DescriptiveText = rest
		return line
	}

	line.DescriptiveText = text
	return line
}

// SplitIngredientBlock turns a recipe's ingredient block into one string per ingredient.
// Bullets, blank lines and scraped advertisement filler are removed.
func SplitIngredientBlock(block string) []string {
	var lines []string
	for _, l := range strings.Split(block, "\n") {
		l = strings.ReplaceAll(l, advertisementNoise, "")
		l = stripBullet(l)
		if l == "" {
			continue
		}
		lines = append(lines, l)
	}
	return lines
}

// findUnitToken returns the vocabulary token contained in word.
// The longest contained token wins, so "kilograms" is a kilogram and not a gram;
// equal lengths fall back to vocabulary order.
func findUnitToken(word string, units *domain.UnitVocabulary) (domain.UnitConversion, bool) {
	lower := strings.ToLower(word)

	var best domain.UnitConversion
	found := false
	for _, e := range units.Entries() {
		if !strings.Contains(lower, e.Token) {
			continue
		}
		if !found || len(e.Token) > len(best.Token) {
			best = e
			found = true
		}
	}
	return best, found
}

// nextWord returns the byte bounds of the next whitespace-delimited word at or after offset
func nextWord(s string, offset int) (int, int) {
	start := -1
	for i, r := range s[offset:] {
		if unicode.IsSpace(r) {
			if start >= 0 {
				return start, offset + i
			}
			continue
		}
		if start < 0 {
			start = offset + i
		}
	}
	if start < 0 {
		return -1, -1
	}
	return start, len(s)
}

// stripBullet trims whitespace and one leading list marker
func stripBullet(s string) string {
	s = strings.TrimSpace(s)
	for _, b := range bulletGlyphs {
		if strings.HasPrefix(s, b) {
			return strings.TrimSpace(strings.TrimPrefix(s, b))
		}
	}
	return s
}

// trimLeadingPunctuation drops separators left between the unit word and the description
func trimLeadingPunctuation(s string) string {
	return strings.TrimSpace(strings.TrimLeftFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsPunct(r)
	}))
}
