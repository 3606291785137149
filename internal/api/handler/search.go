package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/denizk/yemekoneri/internal/domain"
	"github.com/denizk/yemekoneri/internal/service"
)

// SearchHandler handles ingredient and semantic search endpoints.
type SearchHandler struct {
	searchService *service.SearchService
}

// NewSearchHandler creates a new search handler.
// Parameters:
//   - searchService: search facade instance.
// Returns:
//   - *SearchHandler: initialized handler.
func NewSearchHandler(searchService *service.SearchService) *SearchHandler {
	return &SearchHandler{
		searchService: searchService,
	}
}

// SearchIngredients handles GET /api/v1/ingredients/search.
// Query parameters: q (required), limit, threshold.
func (h *SearchHandler) SearchIngredients(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Query parameter 'q' is required",
		})
		return
	}

	limit := parseIntQuery(c, "limit", 0)
	results := h.searchService.SearchIngredients(c.Request.Context(), query, limit)

	c.JSON(http.StatusOK, gin.H{
		"results": results,
		"total":   len(results),
		"query":   query,
	})
}

// LexicalSearch handles GET /api/v1/ingredients/search/lexical with an
// explicit relevance threshold, bypassing the semantic fallback.
func (h *SearchHandler) LexicalSearch(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Query parameter 'q' is required",
		})
		return
	}

	limit := parseIntQuery(c, "limit", 0)
	threshold := 0.0
	if raw := c.Query("threshold"); raw != "" {
		if parsed, err := strconv.ParseFloat(raw, 64); err == nil {
			threshold = parsed
		}
	}

	results := h.searchService.LexicalSearch(c.Request.Context(), query, limit, threshold)
	c.JSON(http.StatusOK, gin.H{
		"results": results,
		"total":   len(results),
		"query":   query,
	})
}

// semanticSearchRequest is the body of POST /api/v1/search/semantic.
type semanticSearchRequest struct {
	Query string `json:"query" binding:"required"`
	Limit int    `json:"limit"`
}

// SemanticSearch handles POST /api/v1/search/semantic.
func (h *SearchHandler) SemanticSearch(c *gin.Context) {
	var req semanticSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request: " + err.Error(),
		})
		return
	}

	results, err := h.searchService.SemanticSearchRecipes(c.Request.Context(), req.Query, req.Limit)
	if err != nil {
		if errors.Is(err, service.ErrSemanticUnavailable) {
			// Degraded, not broken: report unavailability as data.
			c.JSON(http.StatusOK, gin.H{
				"results":   []domain.RecipeSearchResult{},
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

	c.JSON(http.StatusOK, gin.H{
		"results":   results,
		"total":     len(results),
		"available": true,
	})
}

// SemanticStatus handles GET /api/v1/search/semantic/status.
func (h *SearchHandler) SemanticStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.searchService.SemanticStatus(c.Request.Context()))
}

// GetAllergens handles GET /api/v1/allergens.
func (h *SearchHandler) GetAllergens(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"categories": domain.AllergenCategories(),
	})
}

// GetStats handles GET /api/v1/stats.
func (h *SearchHandler) GetStats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"cache": h.searchService.CacheStats(),
	})
}

// parseIntQuery parses an integer query parameter with a fallback.
func parseIntQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return parsed
}
