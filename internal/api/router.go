package api

import (
	"github.com/gin-gonic/gin"

	"github.com/denizk/yemekoneri/internal/api/handler"
	"github.com/denizk/yemekoneri/internal/api/middleware"
	"github.com/denizk/yemekoneri/internal/config"
	"github.com/denizk/yemekoneri/internal/service"
)

// SetupRouter configures the Gin router with all routes
func SetupRouter(
	cfg *config.ServerConfig,
	catalog *service.Catalog,
	searchService *service.SearchService,
	popularityService *service.PopularityService,
	ragService *service.RAGService,
	filter *service.ConstraintFilter,
) *gin.Engine {
	// Set Gin mode
	switch cfg.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()

	// Add middleware
	r.Use(gin.Recovery())
	r.Use(middleware.LoggerMiddleware())
	r.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins:  cfg.CORS.AllowedOrigins,
		AllowAllOrigins: cfg.CORS.AllowAllOrigins,
	}))

	// Create handlers
	healthHandler := handler.NewHealthHandler()
	searchHandler := handler.NewSearchHandler(searchService)
	recipeHandler := handler.NewRecipeHandler(catalog, popularityService, searchService, filter)
	answerHandler := handler.NewAnswerHandler(ragService)

	// Health check
	r.GET("/health", healthHandler.Health)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		// Ingredient search
		v1.GET("/ingredients/search", searchHandler.SearchIngredients)
		v1.GET("/ingredients/search/lexical", searchHandler.LexicalSearch)

		// Semantic search
		v1.POST("/search/semantic", searchHandler.SemanticSearch)
		v1.GET("/search/semantic/status", searchHandler.SemanticStatus)

		// Recipes
		v1.GET("/recipes", recipeHandler.ListRecipes)
		v1.GET("/recipes/popular", recipeHandler.PopularRecipes)
		v1.GET("/recipes/:id", recipeHandler.GetRecipe)
		v1.POST("/recipes/:id/view", recipeHandler.TrackView)
		v1.POST("/recipes/:id/favorite", recipeHandler.TrackFavorite)
		v1.POST("/recipes/recommend", recipeHandler.Recommend)
		v1.POST("/recommend/quick", recipeHandler.QuickRecommend)

		// Retrieval-augmented answers
		v1.POST("/answer", answerHandler.Answer)

		// Metadata
		v1.GET("/allergens", searchHandler.GetAllergens)
		v1.GET("/stats", searchHandler.GetStats)
	}

	return r
}
