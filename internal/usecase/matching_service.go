package usecase

import (
	"strings"

	"github.com/recipefootprint/backend/internal/domain"
	"go.uber.org/zap"
)

// MatchConfig holds configuration for the matching service
type MatchConfig struct {
	// MinScore is the lowest accepted similarity (0-100). Zero disables the threshold.
	MinScore           float64
	EnableDebugLogging bool
}

// MatchingService maps an ingredient's descriptive text to a catalog product
type MatchingService struct {
	matcher            domain.StringMatcher
	minScore           float64
	enableDebugLogging bool
	logger             *zap.Logger
}

// NewMatchingService creates a new matching service with the given configuration
func NewMatchingService(matcher domain.StringMatcher, config MatchConfig, logger *zap.Logger) *MatchingService {
	if logger == nil {
		logger = zap.NewNop()
	}

	minScore := config.MinScore
	if minScore < 0 {
		minScore = 0
	}

	return &MatchingService{
		matcher:            matcher,
		minScore:           minScore,
		enableDebugLogging: config.EnableDebugLogging,
		logger:             logger,
	}
}

// MinScore returns the configured threshold
func (s *MatchingService) MinScore() float64 {
	return s.minScore
}

// FindBestMatch finds the best matching food-relevant product for the text.
// Returns the match even when it is below the threshold, together with ErrLowConfidence.
func (s *MatchingService) FindBestMatch(text string, catalog *domain.Catalog) (*domain.MatchResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domain.ErrInvalidRequest
	}

	products := catalog.Matchable()
	if len(products) == 0 {
		return nil, domain.ErrProductNotFound
	}

	names := make([]string, len(products))
	for i, p := range products {
		names[i] = p.Name
	}

	match, ok := s.matcher.BestMatch(text, names)
	if !ok {
		return nil, domain.ErrProductNotFound
	}

	result := &domain.MatchResult{
		Product:    products[match.Index],
		MatchScore: match.Score,
	}

	if s.enableDebugLogging {
		s.logger.Debug("best match",
			zap.String("text", text),
			zap.String("product", result.Product.Name),
			zap.Float64("score", result.MatchScore),
		)
	}

	if result.MatchScore < s.minScore {
		return result, domain.ErrLowConfidence
	}

	return result, nil
}
