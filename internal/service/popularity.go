package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/denizk/yemekoneri/internal/domain"
	"github.com/denizk/yemekoneri/internal/logger"
)

// commonIngredients is the fixed reference list used by the offline
// popularity formula: recipes built from widely-stocked ingredients are
// easier to cook on a whim and score higher.
var commonIngredients = []string{
	"chicken", "tomato", "tomatoes", "onion", "onions", "garlic", "egg", "eggs",
	"butter", "salt", "pepper", "olive oil", "cheese", "milk", "flour",
	"sugar", "rice", "pasta", "bread", "beef", "pork", "fish", "shrimp",
	"carrot", "carrots", "potato", "potatoes", "lemon", "lime", "cream",
	"parsley", "basil", "oregano", "thyme", "rosemary", "cilantro",
	"soy sauce", "vinegar", "honey", "ginger", "celery", "bell pepper",
	"mushroom", "mushrooms", "spinach", "broccoli", "corn", "beans",
	"tavuk", "domates", "soğan", "sarımsak", "yumurta", "tereyağı", "tuz",
	"biber", "zeytinyağı", "peynir", "süt", "un", "şeker", "pirinç",
}

// categoryBoostKeywords maps title keywords to their popularity boost.
// The summed boost is capped at 0.2.
var categoryBoostKeywords = map[string]float64{
	"easy": 0.1, "quick": 0.1, "simple": 0.1,
	"classic": 0.05, "traditional": 0.05, "homemade": 0.05,
	"healthy": 0.08, "light": 0.05,
	"comfort": 0.05, "family": 0.05,
	"kolay": 0.1, "pratik": 0.1, "hızlı": 0.1,
	"klasik": 0.05, "geleneksel": 0.05, "ev yapımı": 0.05,
	"sağlıklı": 0.08, "hafif": 0.05,
}

// ComputePopularity calculates the offline popularity score for a recipe:
//
//	popularity = clamp01(0.4*commonRatio + 0.3*simplicity + 0.3*categoryBoost)
//
// where commonRatio saturates at five common ingredients, simplicity rewards
// few ingredients and short instructions, and categoryBoost sums title
// keyword weights capped at 0.2.
// Parameters:
//   - title: recipe title.
//   - ingredients: raw ingredient list text.
//   - instructions: instruction steps.
// Returns:
//   - float64: popularity score in [0,1].
func ComputePopularity(title, ingredients string, instructions []string) float64 {
	score := 0.4*commonIngredientRatio(ingredients) +
		0.3*simplicityScore(ingredients, instructions) +
		0.3*categoryBoost(title)
	if score > 1 {
		score = 1
	}
	if score < 0 {
		score = 0
	}
	return score
}

func commonIngredientRatio(ingredients string) float64 {
	if ingredients == "" {
		return 0
	}
	normalized := Normalize(ingredients)
	count := 0
	for _, common := range commonIngredients {
		if strings.Contains(normalized, Normalize(common)) {
			count++
		}
	}
	ratio := float64(count) / 5 // 5+ common ingredients saturates
	if ratio > 1 {
		ratio = 1
	}
	return ratio
}

func simplicityScore(ingredients string, instructions []string) float64 {
	if ingredients == "" {
		return 0.5
	}

	ingredientCount := len(strings.Split(ingredients, ","))
	if ingredientCount < 1 {
		ingredientCount = 1
	}
	ingredientScore := 10.0 / float64(ingredientCount)
	if ingredientScore > 1 {
		ingredientScore = 1
	}

	instructionLength := len(strings.Join(instructions, " "))
	if instructionLength < 100 {
		instructionLength = 100
	}
	instructionScore := 500.0 / float64(instructionLength)
	if instructionScore > 1 {
		instructionScore = 1
	}

	return 0.5*ingredientScore + 0.5*instructionScore
}

func categoryBoost(title string) float64 {
	if title == "" {
		return 0
	}
	normalized := Normalize(title)
	boost := 0.0
	for keyword, weight := range categoryBoostKeywords {
		if strings.Contains(normalized, Normalize(keyword)) {
			boost += weight
		}
	}
	if boost > 0.2 {
		boost = 0.2
	}
	return boost
}

// popularityRecord is the single mutable per-recipe state in the system.
// baseScore is the offline score; the view boost is recomputed from the
// view count on every update so repeated views saturate at +0.1 instead of
// compounding.
type popularityRecord struct {
	mu            sync.Mutex
	baseScore     float64
	score         float64
	viewCount     int64
	favoriteCount int64
}

// PopularityStore persists popularity counters. The base score is what gets
// stored; the view boost is derived from the view count at load time, so a
// restart never stacks the boost onto an already-boosted score.
type PopularityStore interface {
	UpdatePopularity(ctx context.Context, recipeID uint, baseScore float64, viewCount, favoriteCount int64) error
}

// PopularityService tracks per-recipe popularity feedback. Reads of the
// catalog stay lock-free; only the record being updated is locked, so
// concurrent trackView calls on different recipes never contend.
type PopularityService struct {
	records map[uint]*popularityRecord
	catalog *Catalog
	store   PopularityStore
}

// NewPopularityService builds the in-memory popularity records from the
// catalog snapshot. Each recipe's PopularityScore is treated as the
// persisted base score; the live score is base plus the view boost derived
// from the persisted view count.
// Parameters:
//   - catalog: immutable catalog snapshot.
//   - store: persistence for counters; may be nil (memory-only).
// Returns:
//   - *PopularityService: service with one record per catalog recipe.
func NewPopularityService(catalog *Catalog, store PopularityStore) *PopularityService {
	records := make(map[uint]*popularityRecord, len(catalog.Recipes()))
	for _, recipe := range catalog.Recipes() {
		base := recipe.PopularityScore
		boost := viewBoost(recipe.ViewCount)
		records[recipe.ID] = &popularityRecord{
			baseScore:     base,
			score:         clamp01(base + boost),
			viewCount:     recipe.ViewCount,
			favoriteCount: recipe.FavoriteCount,
		}
	}
	return &PopularityService{
		records: records,
		catalog: catalog,
		store:   store,
	}
}

// viewBoost converts a view count into a popularity boost, saturating at 0.1.
func viewBoost(viewCount int64) float64 {
	boost := float64(viewCount) / 1000
	if boost > 0.1 {
		boost = 0.1
	}
	return boost
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// TrackView records a view for the recipe and updates its popularity:
// score = min(1, base + min(0.1, views/1000)). The update is serialized per
// record so concurrent views are never lost; persistence is best-effort.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - recipeID: catalog recipe ID.
// Returns:
//   - float64: popularity score after the update.
//   - int64: view count after the update.
//   - error: non-nil only for an unknown recipe.
func (s *PopularityService) TrackView(ctx context.Context, recipeID uint) (float64, int64, error) {
	record, ok := s.records[recipeID]
	if !ok {
		return 0, 0, fmt.Errorf("unknown recipe: %d", recipeID)
	}

	record.mu.Lock()
	record.viewCount++
	record.score = clamp01(record.baseScore + viewBoost(record.viewCount))
	score := record.score
	viewCount := record.viewCount
	favoriteCount := record.favoriteCount
	record.mu.Unlock()

	s.persist(ctx, recipeID, record.baseScore, viewCount, favoriteCount)
	return score, viewCount, nil
}

// TrackFavorite records a favorite for the recipe. Favorites are counted but
// do not feed the popularity score.
func (s *PopularityService) TrackFavorite(ctx context.Context, recipeID uint) (int64, error) {
	record, ok := s.records[recipeID]
	if !ok {
		return 0, fmt.Errorf("unknown recipe: %d", recipeID)
	}

	record.mu.Lock()
	record.favoriteCount++
	viewCount := record.viewCount
	favoriteCount := record.favoriteCount
	record.mu.Unlock()

	s.persist(ctx, recipeID, record.baseScore, viewCount, favoriteCount)
	return favoriteCount, nil
}

// persist writes the counters through to the store. The base score is
// persisted, not the boosted live score: the boost is a pure function of
// the view count and gets recomputed when the catalog is loaded, so
// persisting it too would double-count it after a restart.
func (s *PopularityService) persist(ctx context.Context, recipeID uint, baseScore float64, viewCount, favoriteCount int64) {
	if s.store == nil {
		return
	}
	if err := s.store.UpdatePopularity(ctx, recipeID, baseScore, viewCount, favoriteCount); err != nil {
		logger.CtxWarn(ctx, "failed to persist popularity for recipe %d: %v", recipeID, err)
	}
}

// Score returns the current popularity score for a recipe.
func (s *PopularityService) Score(recipeID uint) (float64, bool) {
	record, ok := s.records[recipeID]
	if !ok {
		return 0, false
	}
	record.mu.Lock()
	defer record.mu.Unlock()
	return record.score, true
}

// PopularRecipes returns the top recipes by current popularity score.
// Popularity is an independent signal from query relevance; it is surfaced
// here on its own rather than blended into search ranking.
// Parameters:
//   - limit: maximum number of recipes.
// Returns:
//   - []domain.Recipe: recipes with up-to-date popularity counters,
//     most popular first.
func (s *PopularityService) PopularRecipes(limit int) []domain.Recipe {
	recipes := make([]domain.Recipe, 0, len(s.records))
	for id, record := range s.records {
		recipe := s.catalog.RecipeByID(id)
		if recipe == nil {
			continue
		}
		copied := *recipe
		record.mu.Lock()
		copied.PopularityScore = record.score
		copied.ViewCount = record.viewCount
		copied.FavoriteCount = record.favoriteCount
		record.mu.Unlock()
		recipes = append(recipes, copied)
	}

	sort.SliceStable(recipes, func(i, j int) bool {
		if recipes[i].PopularityScore != recipes[j].PopularityScore {
			return recipes[i].PopularityScore > recipes[j].PopularityScore
		}
		return recipes[i].ID < recipes[j].ID
	})

	if limit > 0 && len(recipes) > limit {
		recipes = recipes[:limit]
	}
	return recipes
}

// Snapshot returns the recipe with its live popularity counters applied.
func (s *PopularityService) Snapshot(recipeID uint) (*domain.Recipe, bool) {
	recipe := s.catalog.RecipeByID(recipeID)
	record, ok := s.records[recipeID]
	if recipe == nil || !ok {
		return nil, false
	}
	copied := *recipe
	record.mu.Lock()
	copied.PopularityScore = record.score
	copied.ViewCount = record.viewCount
	copied.FavoriteCount = record.favoriteCount
	record.mu.Unlock()
	return &copied, true
}

// Rerank blends retrieval scores with the live popularity signal. Retrieval
// ordering is never blended implicitly; callers opt in per request.
// Parameters:
//   - results: ranked retrieval results; not modified.
//   - weight: popularity share in [0,1]; values outside are clamped.
// Returns:
//   - []domain.RecipeSearchResult: new slice sorted by the fused score,
//     ranks reassigned from 1.
func (s *PopularityService) Rerank(results []domain.RecipeSearchResult, weight float64) []domain.RecipeSearchResult {
	weight = clamp01(weight)

	fused := make([]domain.RecipeSearchResult, len(results))
	copy(fused, results)
	for i := range fused {
		popularity, ok := s.Score(fused[i].ID)
		if !ok {
			popularity = fused[i].PopularityScore
		}
		fused[i].Score = (1-weight)*fused[i].Score + weight*popularity
	}

	sort.SliceStable(fused, func(i, j int) bool {
		return fused[i].Score > fused[j].Score
	})
	for i := range fused {
		fused[i].Rank = i + 1
	}
	return fused
}
