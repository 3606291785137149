package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/denizk/yemekoneri/internal/api"
	"github.com/denizk/yemekoneri/internal/config"
	"github.com/denizk/yemekoneri/internal/logger"
	"github.com/denizk/yemekoneri/internal/repository"
	"github.com/denizk/yemekoneri/internal/service"
)

func main() {
	// Load configuration
	// Support CONFIG_PATH environment variable for production deployments
	configPath := os.Getenv("CONFIG_PATH")
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	appLogger := logger.New(&logger.Config{
		Level:       "info",
		Format:      "json",
		ServiceName: "yemekoneri-api",
	})
	logger.SetDefaultLogger(appLogger)
	defer logger.Sync()

	// Initialize database
	db, err := repository.InitDB(&cfg.Database)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize database")
	}

	// Initialize repositories
	recipeRepo := repository.NewRecipeRepository(db)
	ingredientRepo := repository.NewIngredientRepository(db)

	// Load the catalog into memory; search and popularity work off this
	// snapshot, the database is the system of record.
	ctx := context.Background()
	catalog, err := service.LoadCatalog(ctx, recipeRepo, ingredientRepo)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load catalog")
	}
	appLogger.WithFields(logger.Fields{
		"recipes":     len(catalog.Recipes()),
		"ingredients": len(catalog.Ingredients()),
	}).Info("Catalog loaded")

	// Initialize vector indices. Failure here is not fatal: semantic search
	// reports unavailable and retrieval degrades to the lexical path. The
	// interface variables stay nil on failure so availability checks see it.
	var recipeIndex, ingredientIndex service.VectorIndex
	if repo, err := repository.NewQdrantRepository(&repository.QdrantConnectionConfig{
		Host:            cfg.Qdrant.Host,
		Port:            cfg.Qdrant.Port,
		Collection:      cfg.Qdrant.RecipeCollection,
		APIKey:          cfg.Qdrant.APIKey,
		UseTLS:          cfg.Qdrant.UseTLS,
		VectorDimension: cfg.Embedding.Dimensions,
	}); err != nil {
		appLogger.WithError(err).Warn("Recipe vector index unavailable")
	} else {
		defer repo.Close()
		recipeIndex = repo
	}

	if repo, err := repository.NewQdrantRepository(&repository.QdrantConnectionConfig{
		Host:            cfg.Qdrant.Host,
		Port:            cfg.Qdrant.Port,
		Collection:      cfg.Qdrant.IngredientCollection,
		APIKey:          cfg.Qdrant.APIKey,
		UseTLS:          cfg.Qdrant.UseTLS,
		VectorDimension: cfg.Embedding.Dimensions,
	}); err != nil {
		appLogger.WithError(err).Warn("Ingredient vector index unavailable")
	} else {
		defer repo.Close()
		ingredientIndex = repo
	}

	// Initialize services
	embeddingService := service.NewEmbeddingService(&service.EmbeddingConfig{
		Provider:   cfg.Embedding.Provider,
		Model:      cfg.Embedding.Model,
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Dimensions: cfg.Embedding.Dimensions,
	})

	semanticService := service.NewSemanticSearchService(embeddingService, recipeIndex, ingredientIndex, catalog)
	if !semanticService.IsAvailable() {
		appLogger.Warn("Semantic search disabled, serving lexical retrieval only")
	}

	generationService := service.NewGenerationService(&service.GenerationConfig{
		Provider:    cfg.LLM.Provider,
		Model:       cfg.LLM.Model,
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		MaxTokens:   cfg.LLM.MaxTokens,
		Temperature: cfg.LLM.Temperature,
		Timeout:     cfg.LLM.Timeout,
	})
	if !generationService.IsAvailable() {
		appLogger.Warn("Answer generation disabled, serving templated answers only")
	}

	var cache *service.ResultCache
	if cfg.Cache.Enabled {
		cache = service.NewResultCache(cfg.Cache.TTL, cfg.Cache.MaxSize)
	}

	filter := service.NewConstraintFilter()
	popularityService := service.NewPopularityService(catalog, recipeRepo)
	searchService := service.NewSearchService(
		catalog,
		semanticService,
		cache,
		cfg.Search.Threshold,
		cfg.Search.DefaultLimit,
		cfg.Search.MaxLimit,
	)
	ragService := service.NewRAGService(semanticService, generationService, filter, catalog, cache, cfg.RAG.Limit)

	// Setup router
	router := api.SetupRouter(&cfg.Server, catalog, searchService, popularityService, ragService, filter)

	// Create HTTP server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		appLogger.WithFields(logger.Fields{
			"port": cfg.Server.Port,
			"mode": cfg.Server.Mode,
		}).Info("Starting API server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.WithError(err).Fatal("Server forced to shutdown")
	}

	appLogger.Info("Server exited")
}
