package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/denizk/yemekoneri/internal/domain"
	"github.com/denizk/yemekoneri/internal/logger"
	"github.com/denizk/yemekoneri/internal/prompts"
)

// Pipeline stages. Every answer request walks RECEIVED through DONE; FAILED
// is reachable from any stage but the pipeline still returns a templated
// answer instead of an error.
type RAGStage string

const (
	StageReceived        RAGStage = "RECEIVED"
	StageRetrieving      RAGStage = "RETRIEVING"
	StageFiltering       RAGStage = "FILTERING"
	StageContextBuilding RAGStage = "CONTEXT_BUILDING"
	StageGenerating      RAGStage = "GENERATING"
	StageDone            RAGStage = "DONE"
	StageFailed          RAGStage = "FAILED"
)

// RecipeRetriever is the retrieval collaborator of the orchestrator.
type RecipeRetriever interface {
	IsAvailable() bool
	SearchRecipes(ctx context.Context, query string, k int) ([]domain.RecipeSearchResult, error)
}

// AnswerGenerator is the generation collaborator of the orchestrator.
type AnswerGenerator interface {
	IsAvailable() bool
	Generate(ctx context.Context, systemPrompt, prompt string) (*GenerationResult, error)
}

// RAGService orchestrates the answer pipeline: semantic retrieval with
// lexical fallback, constraint filtering, context assembly, and generation
// with templated degradation. Answer never returns an error to the caller;
// every failure path terminates in a deterministic template.
type RAGService struct {
	retriever RecipeRetriever
	generator AnswerGenerator
	filter    *ConstraintFilter
	catalog   *Catalog
	cache     *ResultCache
	limit     int
}

// NewRAGService creates the orchestrator.
// Parameters:
//   - retriever: recipe-space vector retrieval; may report unavailable.
//   - generator: generation model client; may report unavailable.
//   - filter: constraint filter.
//   - catalog: immutable catalog snapshot, used for lexical fallback.
//   - cache: result cache; nil disables answer caching.
//   - limit: number of recipes fed into generation context.
// Returns:
//   - *RAGService: configured orchestrator.
func NewRAGService(retriever RecipeRetriever, generator AnswerGenerator, filter *ConstraintFilter, catalog *Catalog, cache *ResultCache, limit int) *RAGService {
	if limit <= 0 {
		limit = 5
	}
	return &RAGService{
		retriever: retriever,
		generator: generator,
		filter:    filter,
		catalog:   catalog,
		cache:     cache,
		limit:     limit,
	}
}

type answerCacheArgs struct {
	Query   string              `json:"query"`
	Context *domain.UserContext `json:"context"`
}

// Answer runs the full pipeline for a query and user context. It never
// returns an error: unavailability, timeouts, and empty retrievals all
// degrade to templated answers with appropriate confidence.
// Parameters:
//   - ctx: request context; its deadline bounds the generation call.
//   - query: free-text user query.
//   - userCtx: user constraints; may be nil.
// Returns:
//   - *domain.RAGAnswer: answer with sources, confidence, and latency.
func (s *RAGService) Answer(ctx context.Context, query string, userCtx *domain.UserContext) *domain.RAGAnswer {
	if s.cache == nil {
		return s.answer(ctx, query, userCtx)
	}

	start := time.Now()
	key := CacheKey("answer", answerCacheArgs{Query: Normalize(query), Context: userCtx})
	if cached, ok := s.cache.Get(key); ok {
		if answer, ok := cached.(*domain.RAGAnswer); ok {
			// Latency reports this request, not the original computation.
			hit := *answer
			hit.LatencyMs = time.Since(start).Milliseconds()
			hit.Cached = true
			return &hit
		}
	}
	answer := s.answer(ctx, query, userCtx)
	// Only successful generations are worth caching; templated fallbacks
	// are cheap to rebuild and the model may recover before the TTL ends.
	if answer.Generated {
		s.cache.Set(key, answer)
	}
	return answer
}

func (s *RAGService) answer(ctx context.Context, query string, userCtx *domain.UserContext) *domain.RAGAnswer {
	start := time.Now()
	// One search ID ties all stage logs of this pipeline run together.
	ctx = logger.SetSearchID(ctx, uuid.New().String())
	ctx = logger.SetStage(ctx, string(StageReceived))

	if strings.TrimSpace(query) == "" {
		return s.noMatchAnswer(start, nil, false)
	}

	// RETRIEVING: over-fetch to absorb filtering losses.
	ctx = logger.SetStage(ctx, string(StageRetrieving))
	candidates := s.retrieve(ctx, query)

	// FILTERING
	ctx = logger.SetStage(ctx, string(StageFiltering))
	survivors := s.filter.Filter(candidates, userCtx)
	if len(survivors) > s.limit {
		survivors = survivors[:s.limit]
	}
	if len(survivors) == 0 {
		logger.CtxInfo(ctx, "no candidates survived filtering for query %q", query)
		return s.noMatchAnswer(start, userCtx, len(candidates) > 0)
	}

	// CONTEXT_BUILDING
	ctx = logger.SetStage(ctx, string(StageContextBuilding))
	recipes := make([]*domain.Recipe, len(survivors))
	sources := make([]domain.AnswerSource, len(survivors))
	totalScore := 0.0
	for i := range survivors {
		recipes[i] = &survivors[i].Recipe
		sources[i] = domain.AnswerSource{
			ID:    survivors[i].ID,
			Title: survivors[i].Title,
			Score: survivors[i].Score,
		}
		totalScore += survivors[i].Score
	}
	prompt := prompts.BuildAnswerPrompt(query, userCtx, recipes)

	// Heuristic scaling of average similarity, not a calibrated probability.
	confidence := totalScore / float64(len(survivors)) * 2
	if confidence > 1 {
		confidence = 1
	}

	// GENERATING
	ctx = logger.SetStage(ctx, string(StageGenerating))
	text, generated := s.generate(ctx, prompt)
	if !generated {
		text = prompts.FormatFallback(recipes)
	}

	ctx = logger.SetStage(ctx, string(StageDone))
	answer := &domain.RAGAnswer{
		Text:       text,
		Sources:    sources,
		Confidence: confidence,
		LatencyMs:  time.Since(start).Milliseconds(),
		Generated:  generated,
	}
	logger.With(logger.Fields{
		logger.FieldDurationMs: answer.LatencyMs,
		logger.FieldConfidence: answer.Confidence,
		logger.FieldCount:      len(sources),
	}).Info(ctx, "answer pipeline completed")
	return answer
}

// retrieve fetches 2x limit candidates from the vector index, degrading to
// lexical title matching when semantic retrieval is unavailable. Lexical
// scores are rescaled from 0-100 to 0-1 so confidence math stays uniform.
func (s *RAGService) retrieve(ctx context.Context, query string) []domain.RecipeSearchResult {
	overFetch := 2 * s.limit

	if s.retriever != nil && s.retriever.IsAvailable() {
		results, err := s.retriever.SearchRecipes(ctx, query, overFetch)
		if err == nil {
			return results
		}
		if !errors.Is(err, ErrSemanticUnavailable) {
			logger.CtxWarn(ctx, "semantic retrieval failed, falling back to lexical: %v", err)
		}
	}

	matches := FuzzySearch(query, s.catalog.RecipeTitles(), DefaultSearchThreshold, overFetch)
	results := make([]domain.RecipeSearchResult, 0, len(matches))
	for _, match := range matches {
		recipe := s.catalog.Recipes()[match.Index]
		results = append(results, domain.RecipeSearchResult{
			Recipe: recipe,
			Score:  match.Score / 100,
			Rank:   len(results) + 1,
		})
	}
	return results
}

// generate calls the generation collaborator, falling back to the
// deterministic template on unavailability or failure.
func (s *RAGService) generate(ctx context.Context, prompt string) (string, bool) {
	if s.generator == nil || !s.generator.IsAvailable() {
		return "", false
	}
	result, err := s.generator.Generate(ctx, prompts.SystemPrompt, prompt)
	if err != nil || !result.Success {
		logger.CtxWarn(ctx, "generation failed, using templated fallback: %v", err)
		return "", false
	}
	return result.Text, true
}

// noMatchAnswer builds the templated zero-result answer. When the allergen
// filter was what emptied a non-empty retrieval, the text says so.
func (s *RAGService) noMatchAnswer(start time.Time, userCtx *domain.UserContext, filteredOut bool) *domain.RAGAnswer {
	text := prompts.NoMatchTemplate
	if filteredOut && userCtx != nil && len(userCtx.Allergens) > 0 {
		text += "\n\n" + fmt.Sprintf(prompts.AllergenNoMatchNote, strings.Join(userCtx.Allergens, ", "))
	}
	return &domain.RAGAnswer{
		Text:       text,
		Sources:    []domain.AnswerSource{},
		Confidence: 0,
		LatencyMs:  time.Since(start).Milliseconds(),
		Generated:  false,
	}
}
