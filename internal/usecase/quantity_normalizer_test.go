package usecase

import (
	"math"
	"strings"
	"testing"

	"github.com/recipefootprint/backend/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestNormalizeQuantity(t *testing.T) {
	units := testVocabulary(t)

	testCases := []struct {
		name string
		qty  domain.Quantity
		unit string
		want float64
	}{
		{"whole number", domain.RawTextQuantity("2"), "clove", 0.01},
		{"mixed number", domain.RawTextQuantity("1 1/2"), "cup", 0.36},
		{"plain fraction", domain.RawTextQuantity("1/2"), "cup", 0.12},
		{"leading dot decimal", domain.RawTextQuantity(".5"), "cup", 0.12},
		{"decimal", domain.RawTextQuantity("2.5"), "kg", 2.5},
		{"egg is weighed as small", domain.RawTextQuantity("3"), "egg", 0.03},
		{"unit token is case insensitive", domain.RawTextQuantity("3"), "EGG", 0.03},
		{"numeric quantity", domain.NumericQuantity(250), "g", 0.25},
		{"descriptive text quantity", domain.RawTextQuantity("a"), "pinch", 0},
		{"empty quantity text", domain.RawTextQuantity(""), "cup", 0},
		{"missing quantity", domain.MissingQuantity(), "cup", 0},
		{"missing unit", domain.RawTextQuantity("2"), "", 0},
		{"unknown unit", domain.RawTextQuantity("2"), "furlong", 0},
		{"zero denominator", domain.RawTextQuantity("1/0"), "cup", 0},
		{"nested fraction", domain.RawTextQuantity("1/2/3"), "cup", 0},
		{"malformed decimal", domain.RawTextQuantity("1..5"), "cup", 0},
		{"range is not a number", domain.RawTextQuantity("2-3"), "cup", 0},
		{"negative numeric quantity", domain.NumericQuantity(-1), "kg", 0},
		{"infinite numeric quantity", domain.NumericQuantity(math.Inf(1)), "kg", 0},
		{"not a number", domain.NumericQuantity(math.NaN()), "kg", 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := NormalizeQuantity(tc.qty, tc.unit, units)
			assert.InDelta(t, tc.want, got, 1e-12)
			assert.GreaterOrEqual(t, got, 0.0)
		})
	}
}

func TestNormalizeQuantity_MixedNumberEqualsSumOfParts(t *testing.T) {
	units := testVocabulary(t)
	cup, ok := units.Lookup("cup")
	assert.True(t, ok)

	for _, qty := range []string{"1 1/2", "2 3/4", "10 1/8"} {
		t.Run(qty, func(t *testing.T) {
			whole, frac, _ := strings.Cut(qty, " ")
			w, _ := parsePart(whole)
			f, _ := parsePart(frac)
			got := NormalizeQuantity(domain.RawTextQuantity(qty), "cup", units)
			assert.Equal(t, (w+f)*cup.KgPerUnit, got)
		})
	}
}

func TestParseAmount(t *testing.T) {
	testCases := []struct {
		input  string
		want   float64
		wantOK bool
	}{
		{"1", 1, true},
		{" 1 1/2 ", 1.5, true},
		{"3/4", 0.75, true},
		{"0.25", 0.25, true},
		{"1\t1/4", 1.25, true},
		{"", 0, false},
		{"about 2", 0, false},
		{"½", 0, false},
		{"1/", 0, false},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			got, ok := parseAmount(tc.input)
			assert.Equal(t, tc.wantOK, ok)
			assert.InDelta(t, tc.want, got, 1e-12)
		})
	}
}
