package service

import (
	"context"
	"sort"
	"strings"

	"github.com/denizk/yemekoneri/internal/domain"
	"github.com/denizk/yemekoneri/internal/logger"
)

// SearchService is the query-facing facade over the lexical matcher, the
// semantic indices, and the result cache. All reads go against the immutable
// catalog snapshot.
type SearchService struct {
	catalog      *Catalog
	semantic     *SemanticSearchService
	cache        *ResultCache
	threshold    float64
	defaultLimit int
	maxLimit     int
}

// NewSearchService creates a SearchService.
// Parameters:
//   - catalog: immutable catalog snapshot.
//   - semantic: semantic search service; may be nil or unavailable.
//   - cache: result cache; nil disables caching.
//   - threshold: default lexical relevance threshold.
//   - defaultLimit: result count when the caller passes none.
//   - maxLimit: hard cap on requested result counts.
// Returns:
//   - *SearchService: configured facade.
func NewSearchService(catalog *Catalog, semantic *SemanticSearchService, cache *ResultCache, threshold float64, defaultLimit, maxLimit int) *SearchService {
	if threshold <= 0 {
		threshold = DefaultSearchThreshold
	}
	if defaultLimit <= 0 {
		defaultLimit = 10
	}
	if maxLimit <= 0 {
		maxLimit = 50
	}
	return &SearchService{
		catalog:      catalog,
		semantic:     semantic,
		cache:        cache,
		threshold:    threshold,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
	}
}

func (s *SearchService) clampLimit(limit int) int {
	if limit <= 0 {
		return s.defaultLimit
	}
	if limit > s.maxLimit {
		return s.maxLimit
	}
	return limit
}

type lexicalCacheArgs struct {
	Query     string  `json:"query"`
	Limit     int     `json:"limit"`
	Threshold float64 `json:"threshold"`
}

// LexicalSearch runs tiered fuzzy matching over ingredient names.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - query: free-text query; empty yields an empty result by contract.
//   - limit: maximum results; clamped to the configured bounds.
//   - threshold: minimum relevance; non-positive uses the default.
// Returns:
//   - []domain.IngredientSearchResult: matches with 0-100 scores, best first.
func (s *SearchService) LexicalSearch(ctx context.Context, query string, limit int, threshold float64) []domain.IngredientSearchResult {
	limit = s.clampLimit(limit)
	if threshold <= 0 {
		threshold = s.threshold
	}

	compute := func() []domain.IngredientSearchResult {
		matches := FuzzySearch(query, s.catalog.IngredientNames(), threshold, limit)
		results := make([]domain.IngredientSearchResult, 0, len(matches))
		for _, match := range matches {
			results = append(results, domain.IngredientSearchResult{
				Ingredient: s.catalog.Ingredients()[match.Index],
				Score:      match.Score,
				Rank:       len(results) + 1,
			})
		}
		return results
	}

	if s.cache == nil {
		return compute()
	}
	key := CacheKey("lexical_search", lexicalCacheArgs{Query: Normalize(query), Limit: limit, Threshold: threshold})
	value, err := s.cache.GetOrCompute(key, func() (interface{}, error) {
		return compute(), nil
	})
	if err != nil {
		return compute()
	}
	results, ok := value.([]domain.IngredientSearchResult)
	if !ok {
		return compute()
	}
	return results
}

// SearchIngredients tries lexical matching first and falls back to the
// ingredient-space vector index for queries the matcher cannot resolve
// (cross-lingual or heavily misspelled input).
func (s *SearchService) SearchIngredients(ctx context.Context, query string, limit int) []domain.IngredientSearchResult {
	limit = s.clampLimit(limit)

	results := s.LexicalSearch(ctx, query, limit, s.threshold)
	if len(results) > 0 {
		return results
	}

	if s.semantic == nil || !s.semantic.IsAvailable() {
		return results
	}
	semanticResults, err := s.semantic.SearchIngredients(ctx, query, limit)
	if err != nil {
		logger.CtxWarn(ctx, "semantic ingredient fallback failed: %v", err)
		return results
	}
	return semanticResults
}

// SemanticSearchRecipes retrieves recipes from the recipe-space vector
// index. Returns ErrSemanticUnavailable when the index is not loaded.
func (s *SearchService) SemanticSearchRecipes(ctx context.Context, query string, limit int) ([]domain.RecipeSearchResult, error) {
	limit = s.clampLimit(limit)
	if s.semantic == nil {
		return nil, ErrSemanticUnavailable
	}
	return s.semantic.SearchRecipes(ctx, query, limit)
}

// SemanticStatus reports vector index availability.
func (s *SearchService) SemanticStatus(ctx context.Context) *SemanticStatus {
	if s.semantic == nil {
		return &SemanticStatus{Available: false}
	}
	return s.semantic.Status(ctx)
}

type suggestCacheArgs struct {
	Ingredients []string `json:"ingredients"`
	Limit       int      `json:"limit"`
}

// SuggestByIngredients ranks recipes by how many of the given ingredients
// they use. The score is the covered fraction of the provided list, in
// (0,1]; recipes using none of the ingredients are omitted.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - ingredients: ingredients the user has on hand.
//   - limit: maximum results; clamped to the configured bounds.
// Returns:
//   - []domain.RecipeSearchResult: recipes by descending coverage.
func (s *SearchService) SuggestByIngredients(ctx context.Context, ingredients []string, limit int) []domain.RecipeSearchResult {
	limit = s.clampLimit(limit)
	if len(ingredients) == 0 {
		return []domain.RecipeSearchResult{}
	}

	normalized := make([]string, 0, len(ingredients))
	for _, ing := range ingredients {
		if n := Normalize(ing); n != "" {
			normalized = append(normalized, n)
		}
	}
	if len(normalized) == 0 {
		return []domain.RecipeSearchResult{}
	}

	compute := func() []domain.RecipeSearchResult {
		results := make([]domain.RecipeSearchResult, 0)
		for _, recipe := range s.catalog.Recipes() {
			recipeText := Normalize(recipe.AvailableIngredients)
			covered := 0
			for _, ing := range normalized {
				if containsWordish(recipeText, ing) {
					covered++
				}
			}
			if covered == 0 {
				continue
			}
			results = append(results, domain.RecipeSearchResult{
				Recipe: recipe,
				Score:  float64(covered) / float64(len(normalized)),
			})
		}
		sort.SliceStable(results, func(i, j int) bool {
			return results[i].Score > results[j].Score
		})
		if len(results) > limit {
			results = results[:limit]
		}
		for i := range results {
			results[i].Rank = i + 1
		}
		return results
	}

	if s.cache == nil {
		return compute()
	}
	key := CacheKey("suggest_by_ingredients", suggestCacheArgs{Ingredients: normalized, Limit: limit})
	value, err := s.cache.GetOrCompute(key, func() (interface{}, error) {
		return compute(), nil
	})
	if err != nil {
		return compute()
	}
	results, ok := value.([]domain.RecipeSearchResult)
	if !ok {
		return compute()
	}
	return results
}

// containsWordish reports whether needle occurs in haystack. Plain substring
// containment is intentional: ingredient lists are free text and "domates"
// should match "domates salçası".
func containsWordish(haystack, needle string) bool {
	return needle != "" && strings.Contains(haystack, needle)
}

// CacheStats exposes cache counters for the status endpoint.
func (s *SearchService) CacheStats() CacheStats {
	if s.cache == nil {
		return CacheStats{}
	}
	return s.cache.Stats()
}
