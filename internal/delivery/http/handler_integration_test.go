package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/recipefootprint/backend/config"
	"github.com/recipefootprint/backend/internal/domain"
	"github.com/recipefootprint/backend/internal/infrastructure/cache"
	"github.com/recipefootprint/backend/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMain sets up test environment before running tests
func TestMain(m *testing.M) {
	// Set Gin to test mode once for all tests
	gin.SetMode(gin.TestMode)

	os.Exit(m.Run())
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
				Name:         "Onion, raw",
				FoodGroup:    "fruits, vegetables, legumes and nuts",
				FoodSubgroup: "vegetables",
				ImpactFactors: map[domain.Indicator]float64{
					domain.IndicatorClimateChange:  0.4,
					domain.IndicatorWaterDepletion: 0.3,
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

func testVocabulary(t *testing.T) *domain.UnitVocabulary {
	t.Helper()
	units, err := domain.NewUnitVocabulary([]domain.UnitConversion{
		{Token: "clove", KgPerUnit: 0.005},
		{Token: "cloves", KgPerUnit: 0.005},
		{Token: "g", KgPerUnit: 0.001},
		{Token: "kg", KgPerUnit: 1},
		{Token: "cup", KgPerUnit: 0.24},
		{Token: "pinch", KgPerUnit: 0.001},
	})
	require.NoError(t, err)
	return units
}

// setupTestRouter wires the real services over a small in-memory catalog
func setupTestRouter(t *testing.T, rateLimit int) *gin.Engine {
	t.Helper()

	cfg := &config.Config{
		Server: config.ServerConfig{
			Port:           "8080",
			Environment:    "test",
			AllowedOrigins: []string{"chrome-extension://*", "http://localhost:3000"},
		},
		Cache: config.CacheConfig{
			Type: "memory",
		},
		RateLimit: config.RateLimitConfig{
			PerIP: rateLimit,
		},
	}

	catalog := testCatalog(t)
	units := testVocabulary(t)

	matching := usecase.NewMatchingService(usecase.NewTokenSetMatcher(false, 1), usecase.MatchConfig{}, nil)
	calculator, err := usecase.NewFootprintCalculator(catalog, units, matching, nil)
	require.NoError(t, err)

	memCache := cache.NewMemoryCache()
	t.Cleanup(func() { _ = memCache.Close() })

	recipes := usecase.NewRecipeService(calculator, memCache, usecase.RecipeServiceConfig{}, nil)
	handler := NewHandler(recipes, usecase.NewCatalogService(catalog), units, nil)

	router := SetupRouter(cfg, handler, nil)
	require.NotNil(t, router)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			reader = bytes.NewReader([]byte(b))
		default:
			data, err := json.Marshal(b)
			require.NoError(t, err)
			reader = bytes.NewReader(data)
		}
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestHealthCheckEndpoint(t *testing.T) {
	t.Run("returns healthy status", func(t *testing.T) {
		router := setupTestRouter(t, 0)

		w := doJSON(t, router, http.MethodGet, "/health", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var response map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))

		assert.Equal(t, "healthy", response["status"])
		assert.Equal(t, "recipe-footprint", response["service"])
		assert.NotEmpty(t, response["version"])
		assert.Len(t, response["indicators"], 2)
	})

	t.Run("accepts GET requests only", func(t *testing.T) {
		router := setupTestRouter(t, 0)

		for _, method := range []string{"POST", "PUT", "DELETE", "PATCH"} {
			w := doJSON(t, router, method, "/health", nil)
			assert.Equal(t, http.StatusNotFound, w.Code, "method %s", method)
		}
	})

	t.Run("sets a request id", func(t *testing.T) {
		router := setupTestRouter(t, 0)

		w := doJSON(t, router, http.MethodGet, "/health", nil)
		assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	})
}

func TestCalculateRecipeEndpoint(t *testing.T) {
	t.Run("ingredient lines", func(t *testing.T) {
		router := setupTestRouter(t, 0)

		w := doJSON(t, router, http.MethodPost, "/api/v1/footprint/recipe", RecipeRequest{
			Ingredients: []string{"2 cloves garlic, fresh", "a pinch of salt"},
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var resp FootprintResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.NotNil(t, resp.RecipeFootprint)
		require.Len(t, resp.PerIngredient, 2)

		garlic := resp.PerIngredient[0]
		assert.Equal(t, domain.MatchStatusMatched, garlic.MatchStatus)
		require.NotNil(t, garlic.MatchedProduct)
		assert.Equal(t, "Garlic, fresh", garlic.MatchedProduct.Name)
		assert.InDelta(t, 0.01, garlic.QuantityKg, 1e-12)
		assert.InDelta(t, 0.02, garlic.ImpactByIndicator[domain.IndicatorClimateChange], 1e-12)

		var sum float64
		for _, impact := range resp.PerIngredient {
			sum += impact.ImpactByIndicator[domain.IndicatorClimateChange]
		}
		assert.InDelta(t, sum, resp.Totals[domain.IndicatorClimateChange], 1e-12)
		assert.Equal(t, usecase.SourceComputed, resp.Source)
		assert.Equal(t, w.Header().Get("X-Request-ID"), resp.RequestID)
	})

	t.Run("ingredient block is split into lines", func(t *testing.T) {
		router := setupTestRouter(t, 0)

		w := doJSON(t, router, http.MethodPost, "/api/v1/footprint/recipe", RecipeRequest{
			Text: "2 cloves garlic, fresh\n\n1 cup wheat flour\n",
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var resp FootprintResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Len(t, resp.PerIngredient, 2)
	})

	t.Run("repeated request is served from cache", func(t *testing.T) {
		router := setupTestRouter(t, 0)
		req := RecipeRequest{Ingredients: []string{"1 cup wheat flour"}}

		first := doJSON(t, router, http.MethodPost, "/api/v1/footprint/recipe", req)
		require.Equal(t, http.StatusOK, first.Code)
		second := doJSON(t, router, http.MethodPost, "/api/v1/footprint/recipe", req)
		require.Equal(t, http.StatusOK, second.Code)

		var a, b FootprintResponse
		require.NoError(t, json.Unmarshal(first.Body.Bytes(), &a))
		require.NoError(t, json.Unmarshal(second.Body.Bytes(), &b))

		assert.Equal(t, usecase.SourceComputed, a.Source)
		assert.Equal(t, usecase.SourceCache, b.Source)
		assert.Equal(t, a.Totals, b.Totals)
	})

	t.Run("empty ingredient list", func(t *testing.T) {
		router := setupTestRouter(t, 0)

		w := doJSON(t, router, http.MethodPost, "/api/v1/footprint/recipe", RecipeRequest{})
		assert.Equal(t, http.StatusBadRequest, w.Code)

		resp := decodeError(t, w)
		assert.Equal(t, "EMPTY_INGREDIENT_LIST", resp.Code)
		require.NotNil(t, resp.Footprint, "the all-zero footprint is returned with the error")
		assert.Empty(t, resp.Footprint.PerIngredient)
		assert.Equal(t, map[domain.Indicator]float64{
			domain.IndicatorClimateChange:  0,
			domain.IndicatorWaterDepletion: 0,
		}, resp.Footprint.Totals)
	})

	t.Run("other errors carry no footprint", func(t *testing.T) {
		router := setupTestRouter(t, 0)

		w := doJSON(t, router, http.MethodGet, "/api/v1/products/lookup?name=Quinoa", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Nil(t, decodeError(t, w).Footprint)
	})

	t.Run("malformed body", func(t *testing.T) {
		router := setupTestRouter(t, 0)

		w := doJSON(t, router, http.MethodPost, "/api/v1/footprint/recipe", `{"ingredients":`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "INVALID_REQUEST", decodeError(t, w).Code)
	})
}

func TestCalculateSelectionEndpoint(t *testing.T) {
	router := setupTestRouter(t, 0)

	tests := []struct {
		name       string
		body       interface{}
		wantStatus int
		wantCode   string
	}{
		{
			name:       "missing unit",
			body:       `{"items":[{"product":"Salt","quantity":1}]}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_REQUEST",
		},
		{
			name:       "negative quantity",
			body:       `{"items":[{"product":"Salt","quantity":-1,"unit":"g"}]}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_REQUEST",
		},
		{
			name:       "no items",
			body:       `{"items":[]}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "EMPTY_INGREDIENT_LIST",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, router, http.MethodPost, "/api/v1/footprint/selection", tt.body)
			assert.Equal(t, tt.wantStatus, w.Code)

			resp := decodeError(t, w)
			assert.Equal(t, tt.wantCode, resp.Code)
			if tt.wantCode == "EMPTY_INGREDIENT_LIST" {
				require.NotNil(t, resp.Footprint)
				assert.Len(t, resp.Footprint.Totals, 2)
			}
		})
	}

	t.Run("products by exact name", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/v1/footprint/selection", SelectionRequest{
			Items: []domain.SelectionItem{
				{Product: "Garlic, fresh", Quantity: 100, Unit: "g"},
				{Product: "Quinoa", Quantity: 1, Unit: "kg"},
			},
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var resp FootprintResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp.PerIngredient, 2)

		assert.Equal(t, domain.MatchStatusMatched, resp.PerIngredient[0].MatchStatus)
		assert.InDelta(t, 0.1, resp.PerIngredient[0].QuantityKg, 1e-12)
		assert.Equal(t, domain.MatchStatusUnknownProduct, resp.PerIngredient[1].MatchStatus)
		assert.Nil(t, resp.PerIngredient[1].MatchedProduct)
		assert.InDelta(t, 0.2, resp.Totals[domain.IndicatorClimateChange], 1e-12)
	})
}

func TestCatalogEndpoints(t *testing.T) {
	router := setupTestRouter(t, 0)

	t.Run("indicators", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/api/v1/catalog/indicators", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Indicators []domain.Indicator `json:"indicators"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, []domain.Indicator{domain.IndicatorClimateChange, domain.IndicatorWaterDepletion}, resp.Indicators)
	})

	t.Run("subgroup totals default to climate change", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/api/v1/catalog/subgroups", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Indicator domain.Indicator        `json:"indicator"`
			Subgroups []usecase.SubgroupTotal `json:"subgroups"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, domain.IndicatorClimateChange, resp.Indicator)
		require.Len(t, resp.Subgroups, 4)
		assert.Equal(t, "vegetables", resp.Subgroups[1].FoodSubgroup)
		assert.Equal(t, 2, resp.Subgroups[1].Products)
		assert.InDelta(t, 2.4, resp.Subgroups[1].Total, 1e-12)
	})

	t.Run("subgroup totals reject unknown indicator", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/api/v1/catalog/subgroups?indicator=land_use_pt_per_kg", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "UNKNOWN_INDICATOR", decodeError(t, w).Code)
	})

	t.Run("units", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/api/v1/units", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Units []domain.UnitConversion `json:"units"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Len(t, resp.Units, 6)
	})
}

func TestProductEndpoints(t *testing.T) {
	router := setupTestRouter(t, 0)

	productTests := []struct {
		name      string
		path      string
		wantCount int
	}{
		{name: "all products", path: "/api/v1/products", wantCount: 5},
		{name: "by subgroup", path: "/api/v1/products?subgroup=Vegetables", wantCount: 2},
		{name: "by name fragment", path: "/api/v1/products?q=flour", wantCount: 1},
		{name: "with limit", path: "/api/v1/products?limit=3", wantCount: 3},
		{name: "no match", path: "/api/v1/products?q=quinoa", wantCount: 0},
	}

	for _, tt := range productTests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, router, http.MethodGet, tt.path, nil)
			require.Equal(t, http.StatusOK, w.Code)

			var resp struct {
				Count    int                       `json:"count"`
				Products []domain.ReferenceProduct `json:"products"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantCount, resp.Count)
			assert.Len(t, resp.Products, tt.wantCount)
		})
	}

	t.Run("invalid limit", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/api/v1/products?limit=abc", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "INVALID_REQUEST", decodeError(t, w).Code)
	})

	t.Run("lookup returns subgroup peers", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/api/v1/products/lookup?name=Garlic,%20fresh&indicator=water_depletion_m3_per_kg", nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var resp usecase.SubgroupPeers
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "Garlic, fresh", resp.Product.Name)
		assert.Equal(t, domain.IndicatorWaterDepletion, resp.Indicator)
		assert.Equal(t, []usecase.ProductValue{
			{Name: "Garlic, fresh", Value: 0.1},
			{Name: "Onion, raw", Value: 0.3},
		}, resp.Peers)
	})

	lookupErrors := []struct {
		name       string
		path       string
		wantStatus int
		wantCode   string
	}{
		{
			name:       "missing name",
			path:       "/api/v1/products/lookup",
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_REQUEST",
		},
		{
			name:       "unknown product",
			path:       "/api/v1/products/lookup?name=Quinoa",
			wantStatus: http.StatusNotFound,
			wantCode:   "PRODUCT_NOT_FOUND",
		},
		{
			name:       "unknown indicator",
			path:       "/api/v1/products/lookup?name=Salt&indicator=bogus",
			wantStatus: http.StatusBadRequest,
			wantCode:   "UNKNOWN_INDICATOR",
		},
	}

	for _, tt := range lookupErrors {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, router, http.MethodGet, tt.path, nil)
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantCode, decodeError(t, w).Code)
		})
	}
}

func TestRateLimitedRouter(t *testing.T) {
	router := setupTestRouter(t, 2)

	for i := 0; i < 2; i++ {
		w := doJSON(t, router, http.MethodGet, "/api/v1/units", nil)
		require.Equal(t, http.StatusOK, w.Code, "request %d", i)
	}

	w := doJSON(t, router, http.MethodGet, "/api/v1/units", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "RATE_LIMITED", decodeError(t, w).Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))

	// health is outside the limited group
	w = doJSON(t, router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimitedRouter_IgnoresForwardedForByDefault(t *testing.T) {
	router := setupTestRouter(t, 2)

	limited := 0
	for i := 0; i < 20; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/units", nil)
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("198.51.100.%d", i))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code == http.StatusTooManyRequests {
			limited++
		}
	}
	assert.Equal(t, 18, limited)
}
