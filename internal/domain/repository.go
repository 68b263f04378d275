package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching calculated footprints
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// Match is the outcome of scoring a query against a list of candidates
type Match struct {
	Index     int     `json:"index"`
	Candidate string  `json:"candidate"`
	Score     float64 `json:"score"` // 0-100
}

// StringMatcher picks the most similar candidate for a free-text query.
// Ties resolve to the candidate that comes first.
type StringMatcher interface {
	BestMatch(query string, candidates []string) (Match, bool)
}

// MatchResult is a catalog product chosen for an ingredient's descriptive text
type MatchResult struct {
	Product    ReferenceProduct `json:"product"`
	MatchScore float64          `json:"matchScore"`
}
