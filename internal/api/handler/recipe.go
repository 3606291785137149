package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/denizk/yemekoneri/internal/domain"
	"github.com/denizk/yemekoneri/internal/service"
)

// RecipeHandler handles recipe catalog and popularity endpoints.
type RecipeHandler struct {
	catalog       *service.Catalog
	popularity    *service.PopularityService
	searchService *service.SearchService
	filter        *service.ConstraintFilter
}

// NewRecipeHandler creates a new recipe handler.
// Parameters:
//   - catalog: immutable catalog snapshot.
//   - popularity: popularity tracking service.
//   - searchService: search facade for ingredient-based suggestions.
//   - filter: constraint filter for recommendation requests.
// Returns:
//   - *RecipeHandler: initialized handler.
func NewRecipeHandler(catalog *service.Catalog, popularity *service.PopularityService, searchService *service.SearchService, filter *service.ConstraintFilter) *RecipeHandler {
	return &RecipeHandler{
		catalog:       catalog,
		popularity:    popularity,
		searchService: searchService,
		filter:        filter,
	}
}

// ListRecipes handles GET /api/v1/recipes with pagination.
func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	limit := parseIntQuery(c, "limit", 20)
	offset := parseIntQuery(c, "offset", 0)
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	recipes := h.catalog.Recipes()
	total := len(recipes)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}

	c.JSON(http.StatusOK, gin.H{
		"recipes": recipes[offset:end],
		"total":   total,
		"limit":   limit,
		"offset":  offset,
	})
}

// GetRecipe handles GET /api/v1/recipes/:id.
func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, err := parseRecipeID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid recipe ID"})
		return
	}

	recipe, ok := h.popularity.Snapshot(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
		return
	}
	c.JSON(http.StatusOK, recipe)
}

// TrackView handles POST /api/v1/recipes/:id/view.
func (h *RecipeHandler) TrackView(c *gin.Context) {
	id, err := parseRecipeID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid recipe ID"})
		return
	}

	score, views, err := h.popularity.TrackView(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"recipe_id":        id,
		"popularity_score": score,
		"view_count":       views,
	})
}

// TrackFavorite handles POST /api/v1/recipes/:id/favorite.
func (h *RecipeHandler) TrackFavorite(c *gin.Context) {
	id, err := parseRecipeID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid recipe ID"})
		return
	}

	favorites, err := h.popularity.TrackFavorite(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"recipe_id":      id,
		"favorite_count": favorites,
	})
}

// PopularRecipes handles GET /api/v1/recipes/popular.
func (h *RecipeHandler) PopularRecipes(c *gin.Context) {
	limit := parseIntQuery(c, "limit", 10)
	recipes := h.popularity.PopularRecipes(limit)
	c.JSON(http.StatusOK, gin.H{
		"recipes": recipes,
		"total":   len(recipes),
	})
}

// recommendRequest is the body of POST /api/v1/recipes/recommend.
type recommendRequest struct {
	Ingredients []string            `json:"ingredients" binding:"required"`
	Limit       int                 `json:"limit"`
	UserContext *domain.UserContext `json:"user_context"`
}

// Recommend handles POST /api/v1/recipes/recommend: ingredient-coverage
// suggestions hard-filtered by the user's constraints.
func (h *RecipeHandler) Recommend(c *gin.Context) {
	var req recommendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request: " + err.Error(),
		})
		return
	}

	suggestions := h.searchService.SuggestByIngredients(c.Request.Context(), req.Ingredients, req.Limit)
	filtered := h.filter.Filter(suggestions, req.UserContext)

	c.JSON(http.StatusOK, gin.H{
		"recipes": filtered,
		"total":   len(filtered),
	})
}

// quickRecommendRequest is the body of POST /api/v1/recommend/quick.
type quickRecommendRequest struct {
	Query          string              `json:"query" binding:"required"`
	Limit          int                 `json:"limit"`
	UserContext    *domain.UserContext `json:"user_context"`
	FusePopularity bool                `json:"fuse_popularity"`
	FusionWeight   float64             `json:"fusion_weight"`
}

// quickFusionWeight is the default popularity share when fusion is requested
// without an explicit weight.
const quickFusionWeight = 0.3

// QuickRecommend handles POST /api/v1/recommend/quick: semantic retrieval
// plus constraint filtering, no generated answer. Popularity fusion is
// opt-in per request.
func (h *RecipeHandler) QuickRecommend(c *gin.Context) {
	var req quickRecommendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request: " + err.Error(),
		})
		return
	}

	results, err := h.searchService.SemanticSearchRecipes(c.Request.Context(), req.Query, req.Limit)
	if err != nil {
		if errors.Is(err, service.ErrSemanticUnavailable) {
			c.JSON(http.StatusOK, gin.H{
				"recipes":   []domain.RecipeSearchResult{},
				"total":     0,
				"available": false,
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Search failed: " + err.Error(),
		})
		return
	}

	filtered := h.filter.Filter(results, req.UserContext)
	if req.FusePopularity {
		weight := req.FusionWeight
		if weight == 0 {
			weight = quickFusionWeight
		}
		filtered = h.popularity.Rerank(filtered, weight)
	}

	c.JSON(http.StatusOK, gin.H{
		"recipes":     filtered,
		"total":       len(filtered),
		"explanation": service.ExplainResults(filtered),
		"available":   true,
	})
}

func parseRecipeID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	return uint(id), err
}
