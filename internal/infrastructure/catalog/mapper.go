package catalog

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/recipefootprint/backend/internal/domain"
)

// Agribalyse column headers
const (
	ColumnName              = "LCI Name"
	ColumnFoodGroup         = "Food Group"
	ColumnFoodSubgroup      = "Food Subgroup"
	ColumnPackagingMaterial = "Packaging Material"

	ColumnClimateChange  = "Climate change (kg CO2 eq/kg product)"
	ColumnSingleScore    = "Single EF 3.1 score (mPt/kg product)"
	ColumnWaterDepletion = "Water resource depletion (m3 depriv./kg product)"
	ColumnLandUse        = "Land use (Pt/kg product)"
)

// indicatorColumns lists the indicator headers in schema order
var indicatorColumns = []struct {
	header    string
	indicator domain.Indicator
}{
	{ColumnClimateChange, domain.IndicatorClimateChange},
	{ColumnSingleScore, domain.IndicatorSingleScore},
	{ColumnWaterDepletion, domain.IndicatorWaterDepletion},
	{ColumnLandUse, domain.IndicatorLandUse},
}

// columnMap holds the positions of the known headers in one file
type columnMap struct {
	name         int
	foodGroup    int
	foodSubgroup int
	packaging    int
	indicators   map[domain.Indicator]int
	order        []domain.Indicator
}

// mapHeader locates the known columns. Headers match ignoring case and surrounding space.
// The name column and at least one indicator column are required.
func mapHeader(header []string) (*columnMap, error) {
	positions := make(map[string]int, len(header))
	for i, h := range header {
		key := normalizeHeader(h)
		if _, seen := positions[key]; !seen {
			positions[key] = i
		}
	}

	find := func(column string) int {
		if i, ok := positions[normalizeHeader(column)]; ok {
			return i
		}
		return -1
	}

	cm := &columnMap{
		name:         find(ColumnName),
		foodGroup:    find(ColumnFoodGroup),
		foodSubgroup: find(ColumnFoodSubgroup),
		packaging:    find(ColumnPackagingMaterial),
		indicators:   make(map[domain.Indicator]int),
	}
	if cm.name < 0 {
		return nil, fmt.Errorf("missing %q column", ColumnName)
	}

	for _, col := range indicatorColumns {
		if i := find(col.header); i >= 0 {
			cm.indicators[col.indicator] = i
			cm.order = append(cm.order, col.indicator)
		}
	}
	if len(cm.order) == 0 {
		return nil, fmt.Errorf("no impact indicator columns found")
	}

	return cm, nil
}

// mapRow converts one data row into a reference product
func (cm *columnMap) mapRow(record []string) (domain.ReferenceProduct, error) {
	product := domain.ReferenceProduct{
		Name:              cell(record, cm.name),
		FoodGroup:         cell(record, cm.foodGroup),
		FoodSubgroup:      cell(record, cm.foodSubgroup),
		PackagingMaterial: cell(record, cm.packaging),
		ImpactFactors:     make(map[domain.Indicator]float64, len(cm.order)),
	}
	if product.Name == "" {
		return product, fmt.Errorf("empty product name")
	}

	for _, ind := range cm.order {
		v, err := parseFactor(cell(record, cm.indicators[ind]))
		if err != nil {
			return product, fmt.Errorf("%s: %w", ind, err)
		}
		product.ImpactFactors[ind] = v
	}

	return product, nil
}

// parseFactor reads a per-kg impact value. Empty cells count as zero;
// a decimal comma is accepted when no dot is present.
func parseFactor(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	if !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid value %q", s)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, fmt.Errorf("value %q out of range", s)
	}
	return v, nil
}

func cell(record []string, i int) string {
	if i < 0 || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func normalizeHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
}
