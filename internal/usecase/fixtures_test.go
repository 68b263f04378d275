package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/recipefootprint/backend/internal/domain"
	"github.com/stretchr/testify/require"
)

func testVocabulary(t *testing.T) *domain.UnitVocabulary {
	t.Helper()
	units, err := domain.NewUnitVocabulary([]domain.UnitConversion{
		{Token: "clove", KgPerUnit: 0.005},
		{Token: "cloves", KgPerUnit: 0.005},
		{Token: "small", KgPerUnit: 0.01},
		{Token: "large", KgPerUnit: 0.05},
		{Token: "gram", KgPerUnit: 0.001},
		{Token: "g", KgPerUnit: 0.001},
		{Token: "kilogram", KgPerUnit: 1},
		{Token: "kg", KgPerUnit: 1},
		{Token: "tbsp", KgPerUnit: 0.015},
		{Token: "cup", KgPerUnit: 0.24},
		{Token: "pinch", KgPerUnit: 0.001},
		{Token: "egg", KgPerUnit: 0.01, Descriptive: true},
	})
	require.NoError(t, err)
	return units
}

func testCatalog(t *testing.T) *domain.Catalog {
	t.Helper()
	catalog, err := domain.NewCatalog(
		[]domain.ReferenceProduct{
			{
				Name:         "Garlic, fresh",
				FoodGroup:    "fruits, vegetables, legumes and nuts",
				FoodSubgroup: "vegetables",
				ImpactFactors: map[domain.Indicator]float64{
					domain.IndicatorClimateChange:  2.0,
					domain.IndicatorWaterDepletion: 0.1,
				},
			},
			{
				Name:         "Salt",
				FoodGroup:    "miscellaneous",
				FoodSubgroup: "salt",
				ImpactFactors: map[domain.Indicator]float64{
					domain.IndicatorClimateChange: 0.2,
				},
			},
			{
				Name:         "Wheat flour",
				FoodGroup:    "cereal products",
				FoodSubgroup: "flour",
				ImpactFactors: map[domain.Indicator]float64{
					domain.IndicatorClimateChange:  0.8,
					domain.IndicatorWaterDepletion: 2.5,
				},
			},
			{
				Name:         "Onion, raw",
				FoodGroup:    "fruits, vegetables, legumes and nuts",
				FoodSubgroup: "vegetables",
				ImpactFactors: map[domain.Indicator]float64{
					domain.IndicatorClimateChange:  0.4,
					domain.IndicatorWaterDepletion: 0.3,
				},
			},
			{
				Name:         "Cardboard box of cereal",
				FoodGroup:    "miscellaneous",
				FoodSubgroup: "packaging",
				ImpactFactors: map[domain.Indicator]float64{
					domain.IndicatorClimateChange: 5.0,
				},
			},
		},
		[]domain.Indicator{domain.IndicatorClimateChange, domain.IndicatorWaterDepletion},
		[]string{"vegetables", "salt", "flour"},
	)
	require.NoError(t, err)
	return catalog
}

func testCalculator(t *testing.T, config MatchConfig) *FootprintCalculator {
	t.Helper()
	matching := NewMatchingService(NewTokenSetMatcher(false, 1), config, nil)
	calc, err := NewFootprintCalculator(testCatalog(t), testVocabulary(t), matching, nil)
	require.NoError(t, err)
	return calc
}

// MockCacheRepository is a mock implementation of domain.CacheRepository
type MockCacheRepository struct {
	data      map[string][]byte
	getError  error
	setError  error
	getCalled bool
	setCalled bool
}

func NewMockCacheRepository() *MockCacheRepository {
	return &MockCacheRepository{
		data: make(map[string][]byte),
	}
}

func (m *MockCacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	m.getCalled = true
	if m.getError != nil {
		return nil, m.getError
	}
	if value, ok := m.data[key]; ok {
		return value, nil
	}
	return nil, domain.ErrCacheMiss
}

func (m *MockCacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.setCalled = true
	if m.setError != nil {
		return m.setError
	}
	m.data[key] = value
	return nil
}

func (m *MockCacheRepository) Delete(ctx context.Context, key string) error {
	delete(m.data, key)
	return nil
}

func (m *MockCacheRepository) Exists(ctx context.Context, key string) (bool, error) {
	_, ok := m.data[key]
	return ok, nil
}
