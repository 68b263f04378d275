package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/recipefootprint/backend/internal/domain"
	"go.uber.org/zap"
)

// Result sources reported to callers
const (
	SourceComputed = "computed"
	SourceCache    = "cache"
)

// RecipeServiceConfig holds configuration for the recipe service
type RecipeServiceConfig struct {
	CacheTTL time.Duration
}

// RecipeService is the calling layer around the calculator: it validates input
// and caches computed footprints. The cache is optional.
type RecipeService struct {
	calculator *FootprintCalculator
	cache      domain.CacheRepository
	cacheTTL   time.Duration
	logger     *zap.Logger
}

// NewRecipeService creates a new recipe service with dependencies
func NewRecipeService(
	calculator *FootprintCalculator,
	cache domain.CacheRepository,
	config RecipeServiceConfig,
	logger *zap.Logger,
) *RecipeService {
	if logger == nil {
		logger = zap.NewNop()
	}

	cacheTTL := config.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 24 * time.Hour
	}

	return &RecipeService{
		calculator: calculator,
		cache:      cache,
		cacheTTL:   cacheTTL,
		logger:     logger,
	}
}

// Calculate returns the footprint of a recipe's ingredient lines.
// Flow: check cache -> parse and aggregate -> cache -> return
func (s *RecipeService) Calculate(ctx context.Context, lines []string) (*domain.RecipeFootprint, string, error) {
	if len(lines) == 0 {
		footprint, err := s.calculator.CalculateRecipe(nil)
		return footprint, SourceComputed, err
	}

	cacheKey := generateCacheKey(lines)

	// Try cache first
	if cached, err := s.getFromCache(ctx, cacheKey); err == nil {
		return cached, SourceCache, nil
	}

	footprint, err := s.calculator.CalculateRecipe(lines)
	if err != nil {
		return footprint, SourceComputed, err
	}

	if err := s.setInCache(ctx, cacheKey, footprint); err != nil {
		s.logger.Warn("failed to cache footprint", zap.String("key", cacheKey), zap.Error(err))
	}

	return footprint, SourceComputed, nil
}

// CalculateText splits an ingredient block into lines and calculates its footprint
func (s *RecipeService) CalculateText(ctx context.Context, block string) (*domain.RecipeFootprint, string, error) {
	return s.Calculate(ctx, SplitIngredientBlock(block))
}

// CalculateSelection returns the footprint of products picked directly from the catalog
func (s *RecipeService) CalculateSelection(items []domain.SelectionItem) (*domain.RecipeFootprint, error) {
	if len(items) == 0 {
		return s.calculator.AggregateSelection(nil), domain.ErrEmptyIngredientList
	}
	return s.calculator.AggregateSelection(items), nil
}

// generateCacheKey creates a cache key from the exact ingredient lines, since raw
// text is echoed back in results.
// Format: "footprint:{sha256 of length-prefixed lines}"
func generateCacheKey(lines []string) string {
	h := sha256.New()
	for _, l := range lines {
		fmt.Fprintf(h, "%d:%s", len(l), l)
	}
	return "footprint:" + hex.EncodeToString(h.Sum(nil))
}

// getFromCache retrieves a footprint from cache
func (s *RecipeService) getFromCache(ctx context.Context, key string) (*domain.RecipeFootprint, error) {
	if s.cache == nil {
		return nil, domain.ErrCacheMiss
	}

	data, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrCacheMiss) {
			s.logger.Warn("cache lookup failed", zap.String("key", key), zap.Error(err))
		}
		return nil, err
	}

	var footprint domain.RecipeFootprint
	if err := json.Unmarshal(data, &footprint); err != nil {
		s.logger.Warn("discarding undecodable cache entry", zap.String("key", key), zap.Error(err))
		return nil, domain.ErrCacheMiss
	}
	return &footprint, nil
}

// setInCache stores a footprint in cache
func (s *RecipeService) setInCache(ctx context.Context, key string, footprint *domain.RecipeFootprint) error {
	if s.cache == nil {
		return nil
	}

	data, err := json.Marshal(footprint)
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, key, data, s.cacheTTL)
}
