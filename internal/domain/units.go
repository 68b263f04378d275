package domain

import (
	"fmt"
	"strings"
)

// UnitConversion maps one unit or size token to its kilogram equivalent.
// Size words such as "small" and "large" carry a flat mass regardless of the product
// they qualify; a large onion and a large egg get the same weight.
type UnitConversion struct {
	Token     string  `json:"token" yaml:"token"`
	KgPerUnit float64 `json:"kgPerUnit" yaml:"kg_per_unit"`
	// Descriptive tokens also name the ingredient ("egg"), so the parser keeps them for matching
	Descriptive bool `json:"descriptive,omitempty" yaml:"descriptive"`
}

// UnitVocabulary is the fixed, read-only set of recognised unit tokens
type UnitVocabulary struct {
	entries []UnitConversion
	index   map[string]UnitConversion
}

// NewUnitVocabulary validates the entries and builds the vocabulary
func NewUnitVocabulary(entries []UnitConversion) (*UnitVocabulary, error) {
	if len(entries) == 0 {
		return nil, ErrEmptyVocabulary
	}

	v := &UnitVocabulary{
		entries: make([]UnitConversion, 0, len(entries)),
		index:   make(map[string]UnitConversion, len(entries)),
	}

	for _, e := range entries {
		if e.Token == "" || strings.TrimSpace(e.Token) != e.Token {
			return nil, fmt.Errorf("invalid unit token %q", e.Token)
		}
		if strings.ToLower(e.Token) != e.Token {
			return nil, fmt.Errorf("unit token %q must be lowercase", e.Token)
		}
		if e.KgPerUnit <= 0 {
			return nil, fmt.Errorf("unit token %q has non-positive factor %v", e.Token, e.KgPerUnit)
		}
		if _, dup := v.index[e.Token]; dup {
			return nil, fmt.Errorf("duplicate unit token %q", e.Token)
		}
		v.entries = append(v.entries, e)
		v.index[e.Token] = e
	}

	return v, nil
}

// Lookup returns the conversion for an exact lowercase token
func (v *UnitVocabulary) Lookup(token string) (UnitConversion, bool) {
	e, ok := v.index[token]
	return e, ok
}

// Entries returns all conversions in declaration order
func (v *UnitVocabulary) Entries() []UnitConversion {
	return append([]UnitConversion(nil), v.entries...)
}

// Len returns the number of tokens
func (v *UnitVocabulary) Len() int {
	return len(v.entries)
}
