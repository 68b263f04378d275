package usecase

import (
	"fmt"
	"sort"
	"strings"

	"github.com/recipefootprint/backend/internal/domain"
)

// ProductValue pairs a product name with its value for one indicator
type ProductValue struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// SubgroupPeers lists the products sharing a subgroup with a selected product
type SubgroupPeers struct {
	Product      domain.ReferenceProduct `json:"product"`
	Indicator    domain.Indicator        `json:"indicator"`
	FoodSubgroup string                  `json:"foodSubgroup"`
	Peers        []ProductValue          `json:"peers"`
}

// SubgroupTotal is the summed indicator value of one food group/subgroup pair
type SubgroupTotal struct {
	FoodGroup    string  `json:"foodGroup"`
	FoodSubgroup string  `json:"foodSubgroup"`
	Products     int     `json:"products"`
	Total        float64 `json:"total"`
}

// CatalogService answers read-only questions about the reference catalog
type CatalogService struct {
	catalog *domain.Catalog
}

// NewCatalogService creates a catalog service
func NewCatalogService(catalog *domain.Catalog) *CatalogService {
	return &CatalogService{catalog: catalog}
}

// Indicators returns the catalog's indicator schema
func (s *CatalogService) Indicators() []domain.Indicator {
	return s.catalog.Indicators()
}

// Products lists catalog products filtered by subgroup and a case-insensitive name fragment.
// A non-positive limit returns every match.
func (s *CatalogService) Products(subgroup, query string, limit int) []domain.ReferenceProduct {
	subgroup = strings.ToLower(strings.TrimSpace(subgroup))
	query = strings.ToLower(strings.TrimSpace(query))

	out := []domain.ReferenceProduct{}
	for _, p := range s.catalog.Products() {
		if subgroup != "" && strings.ToLower(p.FoodSubgroup) != subgroup {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(p.Name), query) {
			continue
		}
		out = append(out, p)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

// Lookup finds a product by exact name, ignoring case
func (s *CatalogService) Lookup(name string) (domain.ReferenceProduct, error) {
	p, ok := s.catalog.Lookup(name)
	if !ok {
		return domain.ReferenceProduct{}, fmt.Errorf("%w: %q", domain.ErrProductNotFound, name)
	}
	return p, nil
}

// SubgroupPeers returns every product in the named product's subgroup with its value
// for the indicator, in catalog order
func (s *CatalogService) SubgroupPeers(name string, indicator domain.Indicator) (*SubgroupPeers, error) {
	if !s.catalog.HasIndicator(indicator) {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownIndicator, indicator)
	}

	product, err := s.Lookup(name)
	if err != nil {
		return nil, err
	}

	result := &SubgroupPeers{
		Product:      product,
		Indicator:    indicator,
		FoodSubgroup: product.FoodSubgroup,
		Peers:        []ProductValue{},
	}
	for _, p := range s.catalog.Products() {
		if p.FoodSubgroup != product.FoodSubgroup {
			continue
		}
		result.Peers = append(result.Peers, ProductValue{Name: p.Name, Value: p.ImpactFactors[indicator]})
	}
	return result, nil
}

// SubgroupTotals sums the indicator over every food group/subgroup pair, sorted by group then subgroup
func (s *CatalogService) SubgroupTotals(indicator domain.Indicator) ([]SubgroupTotal, error) {
	if !s.catalog.HasIndicator(indicator) {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownIndicator, indicator)
	}

	type key struct{ group, subgroup string }
	totals := make(map[key]*SubgroupTotal)
	for _, p := range s.catalog.Products() {
		k := key{p.FoodGroup, p.FoodSubgroup}
		t, ok := totals[k]
		if !ok {
			t = &SubgroupTotal{FoodGroup: p.FoodGroup, FoodSubgroup: p.FoodSubgroup}
			totals[k] = t
		}
		t.Products++
		t.Total += p.ImpactFactors[indicator]
	}

	out := make([]SubgroupTotal, 0, len(totals))
	for _, t := range totals {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].FoodGroup != out[j].FoodGroup {
			return out[i].FoodGroup < out[j].FoodGroup
		}
		return out[i].FoodSubgroup < out[j].FoodSubgroup
	})
	return out, nil
}
