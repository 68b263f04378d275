package domain

import (
	"fmt"
	"strings"
)

// Indicator names one tracked environmental metric, expressed per kilogram of product
type Indicator string

// Indicators known to the Agribalyse-style catalog
const (
	IndicatorClimateChange  Indicator = "climate_change_kg_co2e_per_kg"
	IndicatorSingleScore    Indicator = "single_score_mpt_per_kg"
	IndicatorWaterDepletion Indicator = "water_depletion_m3_per_kg"
	IndicatorLandUse        Indicator = "land_use_pt_per_kg"
)

// ReferenceProduct is one row of the reference catalog
type ReferenceProduct struct {
	Name              string                `json:"name"`
	FoodGroup         string                `json:"foodGroup,omitempty"`
	FoodSubgroup      string                `json:"foodSubgroup"`
	ImpactFactors     map[Indicator]float64 `json:"impactFactors"`
	PackagingMaterial string                `json:"packagingMaterial,omitempty"`
}

// Catalog is the read-only table of reference products.
// It is built once at startup and shared by concurrent calculations.
type Catalog struct {
	products   []ReferenceProduct
	indicators []Indicator
	byName     map[string]int
	matchable  []int
}

// NewCatalog validates the products and builds the catalog.
// matchableSubgroups restricts the view searched by the matcher; empty means every product.
func NewCatalog(products []ReferenceProduct, indicators []Indicator, matchableSubgroups []string) (*Catalog, error) {
	if len(products) == 0 || len(indicators) == 0 {
		return nil, ErrEmptyCatalog
	}

	c := &Catalog{
		products:   make([]ReferenceProduct, len(products)),
		indicators: append([]Indicator(nil), indicators...),
		byName:     make(map[string]int, len(products)),
	}

	allowed := make(map[string]bool, len(matchableSubgroups))
	for _, sg := range matchableSubgroups {
		allowed[strings.ToLower(strings.TrimSpace(sg))] = true
	}

	for i, p := range products {
		if strings.TrimSpace(p.Name) == "" {
			return nil, fmt.Errorf("product at position %d has no name", i)
		}
		key := strings.ToLower(p.Name)
		if _, dup := c.byName[key]; dup {
			return nil, fmt.Errorf("duplicate product name %q", p.Name)
		}

		factors := make(map[Indicator]float64, len(indicators))
		for _, ind := range indicators {
			v := p.ImpactFactors[ind]
			if v < 0 {
				return nil, fmt.Errorf("product %q has negative %s factor %v", p.Name, ind, v)
			}
			factors[ind] = v
		}
		p.ImpactFactors = factors

		c.products[i] = p
		c.byName[key] = i

		if len(allowed) == 0 || allowed[strings.ToLower(p.FoodSubgroup)] {
			c.matchable = append(c.matchable, i)
		}
	}

	return c, nil
}

// Len returns the number of products in the catalog
func (c *Catalog) Len() int {
	return len(c.products)
}

// Indicators returns the indicator schema of the catalog in load order
func (c *Catalog) Indicators() []Indicator {
	return append([]Indicator(nil), c.indicators...)
}

// HasIndicator reports whether the indicator is part of the catalog schema
func (c *Catalog) HasIndicator(ind Indicator) bool {
	for _, known := range c.indicators {
		if known == ind {
			return true
		}
	}
	return false
}

// Products returns a copy of every product in catalog order
func (c *Catalog) Products() []ReferenceProduct {
	out := make([]ReferenceProduct, len(c.products))
	for i, p := range c.products {
		out[i] = p.clone()
	}
	return out
}

// Matchable returns the food-relevant subset searched by the matcher, in catalog order
func (c *Catalog) Matchable() []ReferenceProduct {
	out := make([]ReferenceProduct, len(c.matchable))
	for i, idx := range c.matchable {
		out[i] = c.products[idx].clone()
	}
	return out
}

// MatchableNames returns the canonical names of the matchable subset, in catalog order
func (c *Catalog) MatchableNames() []string {
	names := make([]string, len(c.matchable))
	for i, idx := range c.matchable {
		names[i] = c.products[idx].Name
	}
	return names
}

// Lookup finds a product by canonical name, ignoring case
func (c *Catalog) Lookup(name string) (ReferenceProduct, bool) {
	idx, ok := c.byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return ReferenceProduct{}, false
	}
	return c.products[idx].clone(), true
}

// clone copies the product with its own factor map, so callers cannot reach catalog state
func (p ReferenceProduct) clone() ReferenceProduct {
	factors := make(map[Indicator]float64, len(p.ImpactFactors))
	for k, v := range p.ImpactFactors {
		factors[k] = v
	}
	p.ImpactFactors = factors
	return p
}
