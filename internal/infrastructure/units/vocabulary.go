package units

import (
	"fmt"
	"os"
	"strings"

	"github.com/recipefootprint/backend/internal/domain"
	"gopkg.in/yaml.v3"
)

// defaultEntries is the built-in unit table. Order matters to the parser when two
// tokens of equal length are contained in the same word.
var defaultEntries = []domain.UnitConversion{
	{Token: "clove", KgPerUnit: 0.005},
	{Token: "cloves", KgPerUnit: 0.005},
	{Token: "small", KgPerUnit: 0.01},
	{Token: "large", KgPerUnit: 0.05},
	{Token: "gram", KgPerUnit: 0.001},
	{Token: "g", KgPerUnit: 0.001},
	{Token: "kilogram", KgPerUnit: 1},
	{Token: "kg", KgPerUnit: 1},
	{Token: "milligram", KgPerUnit: 0.000001},
	{Token: "mg", KgPerUnit: 0.000001},
	{Token: "ounce", KgPerUnit: 0.028},
	{Token: "oz", KgPerUnit: 0.028},
	{Token: "pound", KgPerUnit: 0.453592},
	{Token: "lb", KgPerUnit: 0.453592},
	{Token: "tablespoon", KgPerUnit: 0.015},
	{Token: "tbsp", KgPerUnit: 0.015},
	{Token: "teaspoon", KgPerUnit: 0.005},
	{Token: "tsp", KgPerUnit: 0.005},
	{Token: "cup", KgPerUnit: 0.24},
	{Token: "can", KgPerUnit: 0.4},
	{Token: "jar", KgPerUnit: 0.5},
	{Token: "bottle", KgPerUnit: 0.5},
	{Token: "package", KgPerUnit: 1},
	{Token: "pinch", KgPerUnit: 0.001},
	{Token: "piece", KgPerUnit: 1},
	{Token: "slice", KgPerUnit: 0.03},
	{Token: "egg", KgPerUnit: 0.01, Descriptive: true},
	// Volumes assume the density of water
	{Token: "milliliter", KgPerUnit: 0.001},
	{Token: "ml", KgPerUnit: 0.001},
	{Token: "liter", KgPerUnit: 1},
}

// File is the YAML layout of a vocabulary override file
type File struct {
	// Replace discards the built-in table instead of merging into it
	Replace bool                    `yaml:"replace"`
	Units   []domain.UnitConversion `yaml:"units"`
}

// DefaultEntries returns a copy of the built-in unit table
func DefaultEntries() []domain.UnitConversion {
	return append([]domain.UnitConversion(nil), defaultEntries...)
}

// Default builds the vocabulary from the built-in table
func Default() (*domain.UnitVocabulary, error) {
	return domain.NewUnitVocabulary(DefaultEntries())
}

// Load builds the vocabulary from the built-in table and an optional YAML file.
// Entries in the file override built-in tokens in place; new tokens are appended.
// An empty path returns the built-in vocabulary.
func Load(path string) (*domain.UnitVocabulary, error) {
	if path == "" {
		return Default()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read unit vocabulary: %w", err)
	}
	return Parse(data)
}

// Parse builds the vocabulary from YAML data merged over the built-in table
func Parse(data []byte) (*domain.UnitVocabulary, error) {
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse unit vocabulary: %w", err)
	}

	base := DefaultEntries()
	if file.Replace {
		base = nil
	}
	return domain.NewUnitVocabulary(merge(base, file.Units))
}

func merge(base, overrides []domain.UnitConversion) []domain.UnitConversion {
	index := make(map[string]int, len(base))
	for i, e := range base {
		index[e.Token] = i
	}

	for _, o := range overrides {
		o.Token = strings.ToLower(strings.TrimSpace(o.Token))
		if i, ok := index[o.Token]; ok {
			base[i] = o
			continue
		}
		index[o.Token] = len(base)
		base = append(base, o)
	}
	return base
}
