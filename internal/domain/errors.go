package domain

import "errors"

var (
	// ErrProductNotFound is returned when no reference product can be matched or looked up
	ErrProductNotFound = errors.New("product not found in reference catalog")

	// ErrLowConfidence is returned when the match score is below the configured threshold
	ErrLowConfidence = errors.New("match score below threshold")

	// ErrRateLimited is returned when rate limit is exceeded
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrEmptyIngredientList is returned alongside an all-zero footprint when no lines were given
	ErrEmptyIngredientList = errors.New("ingredient list is empty")

	// ErrUnknownIndicator is returned when an indicator is not part of the catalog schema
	ErrUnknownIndicator = errors.New("unknown impact indicator")

	// ErrEmptyCatalog is returned when a catalog is constructed without products or indicators
	ErrEmptyCatalog = errors.New("reference catalog is empty")

	// ErrEmptyVocabulary is returned when a unit vocabulary is constructed without entries
	ErrEmptyVocabulary = errors.New("unit vocabulary is empty")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrCacheUnavailable is returned when cache service is unavailable
	ErrCacheUnavailable = errors.New("cache service unavailable")
)
