package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/denizk/yemekoneri/internal/config"
	"github.com/denizk/yemekoneri/internal/domain"
	"github.com/denizk/yemekoneri/internal/logger"
	"github.com/denizk/yemekoneri/internal/repository"
	"github.com/denizk/yemekoneri/internal/service"
	"github.com/denizk/yemekoneri/internal/source"
	"github.com/denizk/yemekoneri/internal/source/jsonseed"
	"github.com/denizk/yemekoneri/internal/storage"
)

// embedBatchSize bounds the number of documents sent per embedding request.
const embedBatchSize = 32

func main() {
	// Initialize logger first (with defaults)
	appLogger := logger.New(&logger.Config{
		Level:       "info",
		Format:      "json",
		ServiceName: "yemekoneri-ingest",
	})
	logger.SetDefaultLogger(appLogger)
	defer logger.Sync()

	// Parse command line flags
	recipesPath := flag.String("recipes", "", "Path to the recipes seed JSON (overrides config)")
	ingredientsPath := flag.String("ingredients", "", "Path to the ingredients seed JSON (overrides config)")
	imagesPath := flag.String("images", "", "Directory holding recipe images (overrides config)")
	skipImages := flag.Bool("skip-images", false, "Skip uploading recipe images to object storage")
	skipVectors := flag.Bool("skip-vectors", false, "Skip building the vector indices")
	configPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load config")
	}

	if *recipesPath == "" {
		*recipesPath = cfg.Catalog.RecipesPath
	}
	if *ingredientsPath == "" {
		*ingredientsPath = cfg.Catalog.IngredientsPath
	}
	if *imagesPath == "" {
		*imagesPath = cfg.Catalog.ImagesPath
	}

	appLogger.WithFields(logger.Fields{
		"recipes":     *recipesPath,
		"ingredients": *ingredientsPath,
	}).Info("Starting catalog ingestion")

	// Initialize database
	db, err := repository.InitDB(&cfg.Database)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize database")
	}
	recipeRepo := repository.NewRecipeRepository(db)
	ingredientRepo := repository.NewIngredientRepository(db)

	// Handle graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		appLogger.Info("Received shutdown signal, canceling...")
		cancel()
	}()

	// Initialize object storage for recipe images
	var objectStorage storage.ObjectStorage
	if !*skipImages && cfg.Storage.Endpoint != "" {
		s3, err := storage.NewS3Storage(&storage.S3Config{
			Endpoint:  cfg.Storage.Endpoint,
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
			UseSSL:    cfg.Storage.UseSSL,
			Bucket:    cfg.Storage.Bucket,
			Region:    cfg.Storage.Region,
			PublicURL: cfg.Storage.PublicURL,
		})
		if err != nil {
			appLogger.WithError(err).Fatal("Failed to initialize storage")
		}
		if err := s3.EnsureBucket(ctx); err != nil {
			appLogger.WithError(err).Fatal("Failed to ensure storage bucket")
		}
		objectStorage = s3
	}

	// Load the seed files
	src := jsonseed.New(*recipesPath, *ingredientsPath, *imagesPath)
	recipeItems, err := src.FetchRecipes(ctx)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load recipes seed")
	}
	ingredientItems, err := src.FetchIngredients(ctx)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load ingredients seed")
	}

	// Upsert recipes, computing popularity where the seed carries none
	// and uploading images when storage is configured.
	var recipeFailed, imagesUploaded int
	for _, item := range recipeItems {
		if err := ctx.Err(); err != nil {
			appLogger.WithError(err).Fatal("Ingestion canceled")
		}

		recipe := domain.Recipe{
			ID:                   item.ID,
			Title:                item.Title,
			CookingTime:          item.CookingTime,
			Calories:             item.Calories,
			Servings:             item.Servings,
			AvailableIngredients: item.Ingredients,
			Instructions:         item.Instructions,
			PopularityScore:      item.PopularityScore,
			ViewCount:            item.ViewCount,
			FavoriteCount:        item.FavoriteCount,
		}
		if recipe.PopularityScore == 0 {
			recipe.PopularityScore = service.ComputePopularity(item.Title, item.Ingredients, item.Instructions)
		}

		if objectStorage != nil && item.ImagePath != "" {
			key, err := uploadImage(ctx, objectStorage, item.ID, item.ImagePath)
			if err != nil {
				appLogger.WithError(err).WithField("recipe_id", item.ID).Warn("Failed to upload recipe image")
			} else {
				recipe.ImageKey = key
				recipe.ImageURL = objectStorage.GetURL(key)
				imagesUploaded++
			}
		}

		if err := recipeRepo.Upsert(ctx, &recipe); err != nil {
			appLogger.WithError(err).WithField("recipe_id", item.ID).Error("Failed to upsert recipe")
			recipeFailed++
		}
	}

	// Upsert ingredients
	var ingredientFailed int
	for _, item := range ingredientItems {
		ingredient := domain.Ingredient{
			Name:     item.Name,
			PortionG: item.PortionG,
			Calories: item.Calories,
			FatG:     item.FatG,
			CarbsG:   item.CarbsG,
			ProteinG: item.ProteinG,
			SugarG:   item.SugarG,
			FiberG:   item.FiberG,
		}
		if err := ingredientRepo.Upsert(ctx, &ingredient); err != nil {
			appLogger.WithError(err).WithField("name", item.Name).Error("Failed to upsert ingredient")
			ingredientFailed++
		}
	}

	// Verify the persisted totals against the database.
	recipeTotal, err := recipeRepo.Count(ctx)
	if err != nil {
		appLogger.WithError(err).Warn("Failed to count recipes")
	}
	ingredientTotal, err := ingredientRepo.Count(ctx)
	if err != nil {
		appLogger.WithError(err).Warn("Failed to count ingredients")
	}

	appLogger.WithFields(logger.Fields{
		"recipes":            len(recipeItems),
		"recipes_failed":     recipeFailed,
		"recipes_in_db":      recipeTotal,
		"ingredients":        len(ingredientItems),
		"ingredients_failed": ingredientFailed,
		"ingredients_in_db":  ingredientTotal,
		"images_uploaded":    imagesUploaded,
	}).Info("Catalog persisted")

	if *skipVectors {
		appLogger.Info("Skipping vector index build")
		return
	}

	embeddingService := service.NewEmbeddingService(&service.EmbeddingConfig{
		Provider:   cfg.Embedding.Provider,
		Model:      cfg.Embedding.Model,
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Dimensions: cfg.Embedding.Dimensions,
	})
	if !embeddingService.IsAvailable() {
		appLogger.Warn("Embedding service unavailable, skipping vector index build")
		return
	}

	// Build the recipe index
	recipeIndex, err := repository.NewQdrantRepository(&repository.QdrantConnectionConfig{
		Host:            cfg.Qdrant.Host,
		Port:            cfg.Qdrant.Port,
		Collection:      cfg.Qdrant.RecipeCollection,
		APIKey:          cfg.Qdrant.APIKey,
		UseTLS:          cfg.Qdrant.UseTLS,
		VectorDimension: cfg.Embedding.Dimensions,
	})
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to connect to recipe vector index")
	}
	defer recipeIndex.Close()
	if err := recipeIndex.EnsureCollection(ctx); err != nil {
		appLogger.WithError(err).Fatal("Failed to ensure recipe collection")
	}

	indexed, err := indexRecipes(ctx, embeddingService, recipeIndex, recipeItems)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to build recipe index")
	}
	appLogger.WithField("vectors", indexed).Info("Recipe index built")

	// Build the ingredient index; IDs come from the database because the
	// seed file keys ingredients by name only.
	ingredientIndex, err := repository.NewQdrantRepository(&repository.QdrantConnectionConfig{
		Host:            cfg.Qdrant.Host,
		Port:            cfg.Qdrant.Port,
		Collection:      cfg.Qdrant.IngredientCollection,
		APIKey:          cfg.Qdrant.APIKey,
		UseTLS:          cfg.Qdrant.UseTLS,
		VectorDimension: cfg.Embedding.Dimensions,
	})
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to connect to ingredient vector index")
	}
	defer ingredientIndex.Close()
	if err := ingredientIndex.EnsureCollection(ctx); err != nil {
		appLogger.WithError(err).Fatal("Failed to ensure ingredient collection")
	}

	ingredients, err := ingredientRepo.ListAll(ctx)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to list ingredients")
	}
	indexed, err = indexIngredients(ctx, embeddingService, ingredientIndex, ingredients)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to build ingredient index")
	}
	appLogger.WithField("vectors", indexed).Info("Ingredient index built")

	appLogger.Info("Ingestion completed")
}

// uploadImage stores one recipe image and returns its object key.
func uploadImage(ctx context.Context, store storage.ObjectStorage, recipeID uint, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("failed to stat image: %w", err)
	}

	key := fmt.Sprintf("recipes/%d%s", recipeID, filepath.Ext(path))
	if err := store.Upload(ctx, key, f, info.Size(), "image/jpeg"); err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}
	return key, nil
}

// recipeDocument builds the text embedded into the recipe index. Title and
// ingredient list carry the retrieval signal; instructions add noise.
func recipeDocument(item source.RecipeItem) string {
	if item.Ingredients == "" {
		return item.Title
	}
	return item.Title + ". Malzemeler: " + item.Ingredients
}

func indexRecipes(ctx context.Context, embedder *service.EmbeddingService, index *repository.QdrantRepository, items []source.RecipeItem) (int, error) {
	var indexed int
	for start := 0; start < len(items); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(items) {
			end = len(items)
		}
		batch := items[start:end]

		docs := make([]string, len(batch))
		for i, item := range batch {
			docs[i] = recipeDocument(item)
		}
		vectors, err := embedder.EmbedBatch(ctx, docs)
		if err != nil {
			return indexed, fmt.Errorf("failed to embed recipe batch: %w", err)
		}
		if len(vectors) != len(batch) {
			return indexed, fmt.Errorf("embedding count mismatch: got %d, want %d", len(vectors), len(batch))
		}

		for i, item := range batch {
			payload := &repository.EntityPayload{
				EntityID: item.ID,
				Title:    item.Title,
			}
			if err := index.Upsert(ctx, item.ID, vectors[i], payload); err != nil {
				return indexed, fmt.Errorf("failed to upsert recipe vector %d: %w", item.ID, err)
			}
			indexed++
		}
	}
	return indexed, nil
}

func indexIngredients(ctx context.Context, embedder *service.EmbeddingService, index *repository.QdrantRepository, ingredients []domain.Ingredient) (int, error) {
	var indexed int
	for start := 0; start < len(ingredients); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(ingredients) {
			end = len(ingredients)
		}
		batch := ingredients[start:end]

		docs := make([]string, len(batch))
		for i, ing := range batch {
			docs[i] = strings.TrimSpace(ing.Name)
		}
		vectors, err := embedder.EmbedBatch(ctx, docs)
		if err != nil {
			return indexed, fmt.Errorf("failed to embed ingredient batch: %w", err)
		}
		if len(vectors) != len(batch) {
			return indexed, fmt.Errorf("embedding count mismatch: got %d, want %d", len(vectors), len(batch))
		}

		for i, ing := range batch {
			payload := &repository.EntityPayload{
				EntityID: ing.ID,
				Title:    ing.Name,
			}
			if err := index.Upsert(ctx, ing.ID, vectors[i], payload); err != nil {
				return indexed, fmt.Errorf("failed to upsert ingredient vector %d: %w", ing.ID, err)
			}
			indexed++
		}
	}
	return indexed, nil
}
