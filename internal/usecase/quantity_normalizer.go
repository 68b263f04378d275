package usecase

import (
	"math"
	"strconv"
	"strings"

	"github.com/recipefootprint/backend/internal/domain"
)

// Unit descriptors that are weighed as another vocabulary token
const (
	eggUnitToken   = "egg"
	smallUnitToken = "small"
)

// NormalizeQuantity converts a parsed quantity and unit token to kilograms.
// Anything that cannot be interpreted yields 0; the result is never negative.
func NormalizeQuantity(q domain.Quantity, unitToken string, units *domain.UnitVocabulary) float64 {
	unitToken = strings.ToLower(strings.TrimSpace(unitToken))
	if unitToken == eggUnitToken {
		unitToken = smallUnitToken
	}

	unit, ok := units.Lookup(unitToken)
	if unitToken == "" || !ok {
		return 0
	}

	var amount float64
	switch q.Kind {
	case domain.QuantityMissing:
		return 0
	case domain.QuantityNumeric:
		amount = q.Value
	case domain.QuantityRawText:
		amount, ok = parseAmount(q.Text)
		if !ok {
			return 0
		}
	default:
		return 0
	}

	kg := amount * unit.KgPerUnit
	if math.IsNaN(kg) || math.IsInf(kg, 0) || kg < 0 {
		return 0
	}
	return kg
}

// parseAmount sums whitespace-separated decimals and a/b fractions, so "1 1/2" is 1.5.
// Only digits, '.', '/' and whitespace are accepted.
func parseAmount(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	for _, r := range s {
		if (r < '0' || r > '9') && r != '.' && r != '/' && r != ' ' && r != '\t' {
			return 0, false
		}
	}

	total := 0.0
	for _, part := range strings.Fields(s) {
		v, ok := parsePart(part)
		if !ok {
			return 0, false
		}
		total += v
	}
	return total, true
}

// parsePart parses a single decimal or a/b fraction
func parsePart(part string) (float64, bool) {
	num, denom, isFraction := strings.Cut(part, "/")
	if !isFraction {
		v, err := strconv.ParseFloat(part, 64)
		return v, err == nil
	}

	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, false
	}
	d, err := strconv.ParseFloat(denom, 64)
	if err != nil || d == 0 {
		return 0, false
	}
	return n / d, true
}
