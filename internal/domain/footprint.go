package domain

import "fmt"

// QuantityKind tags which variant a Quantity holds
type QuantityKind int

const (
	QuantityMissing QuantityKind = iota
	QuantityNumeric
	QuantityRawText
)

var quantityKindNames = map[QuantityKind]string{
	QuantityMissing: "missing",
	QuantityNumeric: "numeric",
	QuantityRawText: "raw_text",
}

func (k QuantityKind) String() string {
	if name, ok := quantityKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("QuantityKind(%d)", int(k))
}

// MarshalText encodes the kind by name
func (k QuantityKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name
func (k *QuantityKind) UnmarshalText(text []byte) error {
	for kind, name := range quantityKindNames {
		if name == string(text) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown quantity kind %q", text)
}

// Quantity is the amount stated on an ingredient line
type Quantity struct {
	Kind  QuantityKind `json:"kind"`
	Value float64      `json:"value,omitempty"`
	Text  string       `json:"text,omitempty"`
}

// MissingQuantity is the quantity of a line with no recognised amount
func MissingQuantity() Quantity {
	return Quantity{Kind: QuantityMissing}
}

// NumericQuantity wraps an amount that is already a number
func NumericQuantity(v float64) Quantity {
	return Quantity{Kind: QuantityNumeric, Value: v}
}

// RawTextQuantity wraps the free-text amount captured before the unit word
func RawTextQuantity(s string) Quantity {
	return Quantity{Kind: QuantityRawText, Text: s}
}

// IngredientLine is one parsed line of a recipe's ingredient block
type IngredientLine struct {
	RawText         string   `json:"rawText"`
	Quantity        Quantity `json:"quantity"`
	UnitToken       string   `json:"unitToken,omitempty"`
	DescriptiveText string   `json:"descriptiveText"`
}

// MatchStatus explains why an ingredient has or lacks a matched product
type MatchStatus string

const (
	MatchStatusMatched        MatchStatus = "matched"
	MatchStatusNoText         MatchStatus = "no_text"
	MatchStatusBelowThreshold MatchStatus = "below_threshold"
	MatchStatusUnknownProduct MatchStatus = "unknown_product"
)

// IngredientImpact is the resolved footprint of one ingredient line
type IngredientImpact struct {
	Line              IngredientLine        `json:"line"`
	MatchedProduct    *ReferenceProduct     `json:"matchedProduct,omitempty"`
	MatchScore        float64               `json:"matchScore"`
	MatchStatus       MatchStatus           `json:"matchStatus"`
	QuantityKg        float64               `json:"quantityKg"`
	ImpactByIndicator map[Indicator]float64 `json:"impactByIndicator,omitempty"`
}

// RecipeFootprint is the per-ingredient and per-recipe result of a calculation
type RecipeFootprint struct {
	PerIngredient []IngredientImpact    `json:"perIngredient"`
	Totals        map[Indicator]float64 `json:"totals"`
}

// SelectionItem is one product picked directly from the catalog with a numeric amount
type SelectionItem struct {
	Product  string  `json:"product" binding:"required"`
	Quantity float64 `json:"quantity" binding:"gte=0"`
	Unit     string  `json:"unit" binding:"required"`
}
