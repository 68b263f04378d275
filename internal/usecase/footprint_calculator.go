package usecase

import (
	"errors"
	"fmt"

	"github.com/recipefootprint/backend/internal/domain"
	"go.uber.org/zap"
)

// FootprintCalculator joins parsed ingredient lines with catalog impact factors.
// It holds only read-only reference data and is safe for concurrent use.
type FootprintCalculator struct {
	catalog  *domain.Catalog
	units    *domain.UnitVocabulary
	matching *MatchingService
	logger   *zap.Logger
}

// NewFootprintCalculator creates a calculator. The catalog and vocabulary are required.
func NewFootprintCalculator(
	catalog *domain.Catalog,
	units *domain.UnitVocabulary,
	matching *MatchingService,
	logger *zap.Logger,
) (*FootprintCalculator, error) {
	if catalog == nil || catalog.Len() == 0 {
		return nil, domain.ErrEmptyCatalog
	}
	if units == nil || units.Len() == 0 {
		return nil, domain.ErrEmptyVocabulary
	}
	if matching == nil {
		return nil, fmt.Errorf("matching service is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &FootprintCalculator{
		catalog:  catalog,
		units:    units,
		matching: matching,
		logger:   logger,
	}, nil
}

// Catalog returns the reference catalog the calculator was built with
func (c *FootprintCalculator) Catalog() *domain.Catalog {
	return c.catalog
}

// Units returns the unit vocabulary the calculator was built with
func (c *FootprintCalculator) Units() *domain.UnitVocabulary {
	return c.units
}

// CalculateRecipe parses raw ingredient lines and aggregates their footprint.
// An empty list yields an all-zero footprint together with ErrEmptyIngredientList.
func (c *FootprintCalculator) CalculateRecipe(rawLines []string) (*domain.RecipeFootprint, error) {
	lines := make([]domain.IngredientLine, len(rawLines))
	for i, raw := range rawLines {
		lines[i] = ParseLine(raw, c.units)
	}

	footprint := c.Aggregate(lines)
	if len(rawLines) == 0 {
		return footprint, domain.ErrEmptyIngredientList
	}
	return footprint, nil
}

// Aggregate resolves every line and sums impacts per indicator.
// Each input line yields exactly one IngredientImpact, in input order.
func (c *FootprintCalculator) Aggregate(lines []domain.IngredientLine) *domain.RecipeFootprint {
	footprint := c.newFootprint(len(lines))

	for _, line := range lines {
		impact := domain.IngredientImpact{
			Line:       line,
			QuantityKg: NormalizeQuantity(line.Quantity, line.UnitToken, c.units),
		}
		c.resolveProduct(&impact)
		c.addImpact(footprint, impact)
	}

	return footprint
}

// AggregateSelection computes the footprint of products picked by exact catalog name
func (c *FootprintCalculator) AggregateSelection(items []domain.SelectionItem) *domain.RecipeFootprint {
	footprint := c.newFootprint(len(items))

	for _, item := range items {
		impact := domain.IngredientImpact{
			Line: domain.IngredientLine{
				RawText:         fmt.Sprintf("%g %s %s", item.Quantity, item.Unit, item.Product),
				Quantity:        domain.NumericQuantity(item.Quantity),
				UnitToken:       item.Unit,
				DescriptiveText: item.Product,
			},
			QuantityKg:  NormalizeQuantity(domain.NumericQuantity(item.Quantity), item.Unit, c.units),
			MatchStatus: domain.MatchStatusUnknownProduct,
		}

		if product, ok := c.catalog.Lookup(item.Product); ok {
			impact.MatchedProduct = &product
			impact.MatchScore = maxScore
			impact.MatchStatus = domain.MatchStatusMatched
			impact.ImpactByIndicator = c.impacts(impact.QuantityKg, product)
		}
		c.addImpact(footprint, impact)
	}

	return footprint
}

// resolveProduct runs the matcher on the line's descriptive text and fills the match fields
func (c *FootprintCalculator) resolveProduct(impact *domain.IngredientImpact) {
	result, err := c.matching.FindBestMatch(impact.Line.DescriptiveText, c.catalog)
	switch {
	case err == nil:
		impact.MatchedProduct = &result.Product
		impact.MatchScore = result.MatchScore
		impact.MatchStatus = domain.MatchStatusMatched
		impact.ImpactByIndicator = c.impacts(impact.QuantityKg, result.Product)
	case errors.Is(err, domain.ErrLowConfidence):
		impact.MatchScore = result.MatchScore
		impact.MatchStatus = domain.MatchStatusBelowThreshold
		c.logger.Debug("match below threshold",
			zap.String("line", impact.Line.RawText),
			zap.String("candidate", result.Product.Name),
			zap.Float64("score", result.MatchScore),
		)
	case errors.Is(err, domain.ErrInvalidRequest):
		impact.MatchStatus = domain.MatchStatusNoText
	default:
		impact.MatchStatus = domain.MatchStatusUnknownProduct
	}
}

// impacts multiplies the mass by every indicator factor of the product
func (c *FootprintCalculator) impacts(kg float64, product domain.ReferenceProduct) map[domain.Indicator]float64 {
	out := make(map[domain.Indicator]float64, len(c.catalog.Indicators()))
	for _, ind := range c.catalog.Indicators() {
		out[ind] = kg * product.ImpactFactors[ind]
	}
	return out
}

// newFootprint returns an empty result with every catalog indicator totalled at zero
func (c *FootprintCalculator) newFootprint(capacity int) *domain.RecipeFootprint {
	totals := make(map[domain.Indicator]float64)
	for _, ind := range c.catalog.Indicators() {
		totals[ind] = 0
	}
	return &domain.RecipeFootprint{
		PerIngredient: make([]domain.IngredientImpact, 0, capacity),
		Totals:        totals,
	}
}

// addImpact appends the ingredient and adds its impacts to the totals
func (c *FootprintCalculator) addImpact(footprint *domain.RecipeFootprint, impact domain.IngredientImpact) {
	footprint.PerIngredient = append(footprint.PerIngredient, impact)
	for ind, v := range impact.ImpactByIndicator {
		footprint.Totals[ind] += v
	}
}
