package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/recipefootprint/backend/config"
	httpDelivery "github.com/recipefootprint/backend/internal/delivery/http"
	"github.com/recipefootprint/backend/internal/domain"
	"github.com/recipefootprint/backend/internal/infrastructure/cache"
	"github.com/recipefootprint/backend/internal/infrastructure/catalog"
	"github.com/recipefootprint/backend/internal/infrastructure/logging"
	"github.com/recipefootprint/backend/internal/infrastructure/units"
	"github.com/recipefootprint/backend/internal/usecase"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := logging.New(cfg.Log.Level, cfg.Server.Environment)
	defer func() { _ = logger.Sync() }()

	logger.Info("starting recipe footprint service",
		zap.String("version", "1.0.0"),
		zap.String("environment", cfg.Server.Environment),
		zap.String("port", cfg.Server.Port),
		zap.String("cache", cfg.Cache.Type),
	)

	// Load reference data; the service cannot run without it
	refCatalog, err := catalog.NewLoader(cfg.Catalog.FoodSubgroups, logger).Load(cfg.Catalog.Path)
	if err != nil {
		logger.Fatal("failed to load catalog", zap.String("path", cfg.Catalog.Path), zap.Error(err))
	}

	vocabulary, err := units.Load(cfg.Units.Path)
	if err != nil {
		logger.Fatal("failed to load unit vocabulary", zap.String("path", cfg.Units.Path), zap.Error(err))
	}
	logger.Info("unit vocabulary loaded", zap.Int("units", vocabulary.Len()))

	// Initialize usecase layer
	matching := usecase.NewMatchingService(
		usecase.NewTokenSetMatcher(cfg.Matching.FuzzyTokens, 1),
		usecase.MatchConfig{
			MinScore:           cfg.Matching.MinScore,
			EnableDebugLogging: cfg.Matching.DebugLogging,
		},
		logger,
	)

	logger.Info("matching configured",
		zap.Float64("min_score", cfg.Matching.MinScore),
		zap.Bool("fuzzy_tokens", cfg.Matching.FuzzyTokens),
		zap.Bool("debug", cfg.Matching.DebugLogging),
	)

	calculator, err := usecase.NewFootprintCalculator(refCatalog, vocabulary, matching, logger)
	if err != nil {
		logger.Fatal("failed to create footprint calculator", zap.Error(err))
	}

	resultCache, closeCache, err := newCache(cfg.Cache)
	if err != nil {
		logger.Fatal("failed to initialize cache", zap.String("type", cfg.Cache.Type), zap.Error(err))
	}
	defer closeCache()

	recipes := usecase.NewRecipeService(calculator, resultCache, usecase.RecipeServiceConfig{
		CacheTTL: cfg.Cache.TTL,
	}, logger)

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(recipes, usecase.NewCatalogService(refCatalog), vocabulary, logger)
	router := httpDelivery.SetupRouter(cfg, handler, logger)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}
}

// newCache builds the configured result cache and its release func
func newCache(cfg config.CacheConfig) (domain.CacheRepository, func(), error) {
	switch cfg.Type {
	case "redis":
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		redisCache, err := cache.NewRedisCache(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		return redisCache, func() { _ = redisCache.Close() }, nil
	default:
		memoryCache := cache.NewMemoryCache()
		return memoryCache, func() { _ = memoryCache.Close() }, nil
	}
}
