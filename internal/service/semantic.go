package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/denizk/yemekoneri/internal/domain"
	"github.com/denizk/yemekoneri/internal/logger"
	"github.com/denizk/yemekoneri/internal/repository"
)

// ErrSemanticUnavailable signals that the embedding model or a vector index
// is not loaded. Callers degrade to lexical-only retrieval instead of
// failing the request.
var ErrSemanticUnavailable = errors.New("semantic search unavailable")

// VectorIndex is the collection-level surface the semantic service needs
// from the vector store. Satisfied by *repository.QdrantRepository.
type VectorIndex interface {
	Search(ctx context.Context, vector []float32, topK int) ([]repository.SearchResult, error)
	CollectionSize(ctx context.Context) (uint64, error)
}

// SemanticSearchService wraps the embedding model and the two vector
// indices (recipe-space and ingredient-space). Scores returned by Search*
// are raw cosine similarities from the index, already in [0,1] for the
// normalized vectors both collections are built with.
type SemanticSearchService struct {
	embedding       *EmbeddingService
	recipeIndex     VectorIndex
	ingredientIndex VectorIndex
	catalog         *Catalog
}

// SemanticStatus describes index availability for the status endpoint.
type SemanticStatus struct {
	Available         bool   `json:"available"`
	Model             string `json:"model"`
	RecipeVectors     uint64 `json:"recipe_vectors"`
	IngredientVectors uint64 `json:"ingredient_vectors"`
}

// NewSemanticSearchService creates a semantic search service. Either index
// repository may be nil, in which case the service reports unavailable.
func NewSemanticSearchService(embedding *EmbeddingService, recipeIndex, ingredientIndex VectorIndex, catalog *Catalog) *SemanticSearchService {
	return &SemanticSearchService{
		embedding:       embedding,
		recipeIndex:     recipeIndex,
		ingredientIndex: ingredientIndex,
		catalog:         catalog,
	}
}

// IsAvailable reports whether semantic retrieval can serve queries.
// Availability is a startup-time property: credentials present and both
// index connections constructed.
func (s *SemanticSearchService) IsAvailable() bool {
	return s.embedding != nil && s.embedding.IsAvailable() &&
		s.recipeIndex != nil && s.ingredientIndex != nil
}

// Status reports availability and index sizes.
// Parameters:
//   - ctx: context for cancellation and deadlines.
// Returns:
//   - *SemanticStatus: current availability snapshot; sizes are zero when
//     the indices cannot be reached.
func (s *SemanticSearchService) Status(ctx context.Context) *SemanticStatus {
	status := &SemanticStatus{Available: s.IsAvailable()}
	if s.embedding != nil {
		status.Model = s.embedding.GetModel()
	}
	if !status.Available {
		return status
	}

	if size, err := s.recipeIndex.CollectionSize(ctx); err == nil {
		status.RecipeVectors = size
	} else {
		logger.CtxWarn(ctx, "failed to count recipe vectors: %v", err)
		status.Available = false
	}
	if size, err := s.ingredientIndex.CollectionSize(ctx); err == nil {
		status.IngredientVectors = size
	} else {
		logger.CtxWarn(ctx, "failed to count ingredient vectors: %v", err)
		status.Available = false
	}
	return status
}

// SearchRecipes retrieves the k nearest recipes to the query text.
// Returns ErrSemanticUnavailable when the embedding model or index is not
// loaded; callers should fall back to lexical retrieval.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - query: free-text query in any language the embedding model covers.
//   - k: maximum number of results; clamped to the catalog size.
// Returns:
//   - []domain.RecipeSearchResult: recipes with cosine similarity scores,
//     best first, 1-based ranks.
//   - error: ErrSemanticUnavailable or a wrapped retrieval error.
func (s *SemanticSearchService) SearchRecipes(ctx context.Context, query string, k int) ([]domain.RecipeSearchResult, error) {
	if !s.IsAvailable() {
		return nil, ErrSemanticUnavailable
	}
	k = clampK(k, len(s.catalog.Recipes()))
	if k == 0 {
		return []domain.RecipeSearchResult{}, nil
	}

	vector, err := s.embedding.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	hits, err := s.recipeIndex.Search(ctx, vector, k)
	if err != nil {
		return nil, fmt.Errorf("recipe vector search failed: %w", err)
	}

	results := make([]domain.RecipeSearchResult, 0, len(hits))
	for _, hit := range hits {
		recipe := s.catalog.RecipeByID(hit.EntityID)
		if recipe == nil {
			// Index and catalog disagree: skip the orphan, keep the rest.
			logger.CtxWarn(ctx, "vector index references unknown recipe %d, skipping", hit.EntityID)
			continue
		}
		results = append(results, domain.RecipeSearchResult{
			Recipe: *recipe,
			Score:  float64(hit.Score),
			Rank:   len(results) + 1,
		})
	}
	return results, nil
}

// SearchIngredients retrieves the k nearest ingredients to the query text,
// with the same availability and orphan-skipping semantics as SearchRecipes.
func (s *SemanticSearchService) SearchIngredients(ctx context.Context, query string, k int) ([]domain.IngredientSearchResult, error) {
	if !s.IsAvailable() {
		return nil, ErrSemanticUnavailable
	}
	k = clampK(k, len(s.catalog.Ingredients()))
	if k == 0 {
		return []domain.IngredientSearchResult{}, nil
	}

	vector, err := s.embedding.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	hits, err := s.ingredientIndex.Search(ctx, vector, k)
	if err != nil {
		return nil, fmt.Errorf("ingredient vector search failed: %w", err)
	}

	results := make([]domain.IngredientSearchResult, 0, len(hits))
	for _, hit := range hits {
		ingredient := s.catalog.IngredientByID(hit.EntityID)
		if ingredient == nil {
			logger.CtxWarn(ctx, "vector index references unknown ingredient %d, skipping", hit.EntityID)
			continue
		}
		results = append(results, domain.IngredientSearchResult{
			Ingredient: *ingredient,
			Score:      float64(hit.Score),
			Rank:       len(results) + 1,
		})
	}
	return results, nil
}

// clampK bounds k to [0, size]; non-positive k means "use size".
func clampK(k, size int) int {
	if size < 0 {
		size = 0
	}
	if k <= 0 || k > size {
		return size
	}
	return k
}

// ExplainResults builds a short Turkish summary of the top matches, for
// clients that surface retrieval results without a generated answer.
// Parameters:
//   - results: ranked recipe matches.
// Returns:
//   - string: one-line summary naming up to three matches with their
//     similarity percentages.
func ExplainResults(results []domain.RecipeSearchResult) string {
	if len(results) == 0 {
		return "Eşleşen tarif bulunamadı."
	}

	top := results
	if len(top) > 3 {
		top = top[:3]
	}
	parts := make([]string, len(top))
	for i, r := range top {
		parts[i] = fmt.Sprintf("%s (%%%.0f benzerlik)", r.Title, r.Score*100)
	}
	return "En iyi eşleşmeler: " + strings.Join(parts, ", ") + "."
}
