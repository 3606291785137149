package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/denizk/yemekoneri/internal/domain"
)

type fakeRetriever struct {
	available bool
	results   []domain.RecipeSearchResult
	err       error
	lastK     int
}

func (f *fakeRetriever) IsAvailable() bool { return f.available }

func (f *fakeRetriever) SearchRecipes(ctx context.Context, query string, k int) ([]domain.RecipeSearchResult, error) {
	f.lastK = k
	if f.err != nil {
		return nil, f.err
	}
	if k < len(f.results) {
		return f.results[:k], nil
	}
	return f.results, nil
}

type fakeGenerator struct {
	available bool
	text      string
	err       error
	calls     int
}

func (f *fakeGenerator) IsAvailable() bool { return f.available }

func (f *fakeGenerator) Generate(ctx context.Context, systemPrompt, prompt string) (*GenerationResult, error) {
	f.calls++
	if f.err != nil {
		return &GenerationResult{Success: false}, f.err
	}
	return &GenerationResult{Text: f.text, LatencyMs: 5, Success: true}, nil
}

func ragCatalog() *Catalog {
	return NewCatalog([]domain.Recipe{
		{ID: 1, Title: "Chicken Pasta", AvailableIngredients: "chicken, pasta, cream", CookingTime: 30, Calories: 600},
		{ID: 2, Title: "Domates Çorbası", AvailableIngredients: "domates, soğan, tereyağı", CookingTime: 20, Calories: 150},
		{ID: 3, Title: "Tavuklu Pilav", AvailableIngredients: "tavuk, pirinç, tereyağı", CookingTime: 40, Calories: 500},
	}, nil)
}

func retrievalResults(catalog *Catalog, scores ...float64) []domain.RecipeSearchResult {
	results := make([]domain.RecipeSearchResult, 0, len(scores))
	for i, score := range scores {
		results = append(results, domain.RecipeSearchResult{
			Recipe: catalog.Recipes()[i],
			Score:  score,
			Rank:   i + 1,
		})
	}
	return results
}

func TestAnswerHappyPath(t *testing.T) {
	catalog := ragCatalog()
	retriever := &fakeRetriever{available: true, results: retrievalResults(catalog, 0.9, 0.7, 0.5)}
	generator := &fakeGenerator{available: true, text: "Tavuklu makarna öneririm."}
	svc := NewRAGService(retriever, generator, NewConstraintFilter(), catalog, nil, 5)

	answer := svc.Answer(context.Background(), "tavuklu makarna", nil)

	if !answer.Generated {
		t.Error("expected a generated answer")
	}
	if answer.Text != "Tavuklu makarna öneririm." {
		t.Errorf("unexpected text: %q", answer.Text)
	}
	if len(answer.Sources) != 3 {
		t.Errorf("expected 3 sources, got %d", len(answer.Sources))
	}
	// avg(0.9, 0.7, 0.5) * 2 = 1.4, clamped to 1.
	if answer.Confidence != 1 {
		t.Errorf("confidence = %v, want 1", answer.Confidence)
	}
	if answer.LatencyMs < 0 {
		t.Errorf("negative latency: %d", answer.LatencyMs)
	}
	// Over-fetch: 2x the context limit.
	if retriever.lastK != 10 {
		t.Errorf("retriever fetched k=%d, want 10", retriever.lastK)
	}
}

func TestAnswerConfidenceScaling(t *testing.T) {
	catalog := ragCatalog()
	retriever := &fakeRetriever{available: true, results: retrievalResults(catalog, 0.3, 0.1)}
	generator := &fakeGenerator{available: true, text: "ok"}
	svc := NewRAGService(retriever, generator, NewConstraintFilter(), catalog, nil, 5)

	answer := svc.Answer(context.Background(), "çorba", nil)
	// avg(0.3, 0.1) * 2 = 0.4
	if answer.Confidence < 0.399 || answer.Confidence > 0.401 {
		t.Errorf("confidence = %v, want 0.4", answer.Confidence)
	}
}

func TestAnswerAllergenFilteringEliminatesAll(t *testing.T) {
	catalog := ragCatalog()
	retriever := &fakeRetriever{available: true, results: retrievalResults(catalog, 0.9)}
	generator := &fakeGenerator{available: true, text: "should not be called"}
	svc := NewRAGService(retriever, generator, NewConstraintFilter(), catalog, nil, 5)

	// The only candidate contains cream, a dairy derivative.
	answer := svc.Answer(context.Background(), "pasta", &domain.UserContext{
		Allergens: []string{domain.AllergenDairy},
	})

	if answer.Confidence != 0 {
		t.Errorf("confidence = %v, want 0", answer.Confidence)
	}
	if answer.Text == "" {
		t.Error("no-match answer must carry a templated message")
	}
	if answer.Generated {
		t.Error("no-match answer must not be generated")
	}
	if generator.calls != 0 {
		t.Error("generation must be skipped when nothing survives filtering")
	}
}

func TestAnswerEmptyQuery(t *testing.T) {
	catalog := ragCatalog()
	svc := NewRAGService(&fakeRetriever{available: true}, &fakeGenerator{available: true}, NewConstraintFilter(), catalog, nil, 5)

	answer := svc.Answer(context.Background(), "   ", nil)
	if answer.Confidence != 0 || answer.Text == "" {
		t.Errorf("empty query must yield templated zero-confidence answer, got %+v", answer)
	}
}

func TestAnswerGeneratorUnavailableFallback(t *testing.T) {
	catalog := ragCatalog()
	retriever := &fakeRetriever{available: true, results: retrievalResults(catalog, 0.8, 0.6)}
	svc := NewRAGService(retriever, &fakeGenerator{available: false}, NewConstraintFilter(), catalog, nil, 5)

	answer := svc.Answer(context.Background(), "makarna", nil)

	if answer.Generated {
		t.Error("fallback answer must not claim to be generated")
	}
	// The template names the retrieved recipes.
	if !strings.Contains(answer.Text, "Chicken Pasta") {
		t.Errorf("fallback text should mention sources: %q", answer.Text)
	}
	if len(answer.Sources) != 2 {
		t.Errorf("fallback keeps sources, got %d", len(answer.Sources))
	}
	if answer.Confidence == 0 {
		t.Error("fallback with surviving candidates keeps retrieval confidence")
	}
}

func TestAnswerGeneratorErrorFallback(t *testing.T) {
	catalog := ragCatalog()
	retriever := &fakeRetriever{available: true, results: retrievalResults(catalog, 0.8)}
	generator := &fakeGenerator{available: true, err: errors.New("timeout")}
	svc := NewRAGService(retriever, generator, NewConstraintFilter(), catalog, nil, 5)

	answer := svc.Answer(context.Background(), "makarna", nil)
	if answer.Generated {
		t.Error("failed generation must fall back to template")
	}
	if answer.Text == "" {
		t.Error("fallback text must not be empty")
	}
}

func TestAnswerLexicalFallbackWhenSemanticUnavailable(t *testing.T) {
	catalog := ragCatalog()
	retriever := &fakeRetriever{available: false}
	generator := &fakeGenerator{available: true, text: "ok"}
	svc := NewRAGService(retriever, generator, NewConstraintFilter(), catalog, nil, 5)

	answer := svc.Answer(context.Background(), "domates", nil)

	if len(answer.Sources) == 0 {
		t.Fatal("lexical fallback should still retrieve candidates")
	}
	if answer.Sources[0].Title != "Domates Çorbası" {
		t.Errorf("expected lexical match on title, got %+v", answer.Sources)
	}
	// Lexical scores are rescaled to 0-1 before confidence math.
	for _, src := range answer.Sources {
		if src.Score < 0 || src.Score > 1 {
			t.Errorf("lexical fallback score %v outside [0,1]", src.Score)
		}
	}
}

func TestAnswerTruncatesToLimit(t *testing.T) {
	catalog := ragCatalog()
	retriever := &fakeRetriever{available: true, results: retrievalResults(catalog, 0.9, 0.8, 0.7)}
	generator := &fakeGenerator{available: true, text: "ok"}
	svc := NewRAGService(retriever, generator, NewConstraintFilter(), catalog, nil, 2)

	answer := svc.Answer(context.Background(), "yemek", nil)
	if len(answer.Sources) != 2 {
		t.Errorf("sources = %d, want limit 2", len(answer.Sources))
	}
}

func TestAnswerCaching(t *testing.T) {
	catalog := ragCatalog()
	retriever := &fakeRetriever{available: true, results: retrievalResults(catalog, 0.9)}
	generator := &fakeGenerator{available: true, text: "cached answer"}
	cache := NewResultCache(time.Hour, 100)
	svc := NewRAGService(retriever, generator, NewConstraintFilter(), catalog, cache, 5)

	first := svc.Answer(context.Background(), "makarna", nil)
	first.LatencyMs = 123456 // stored entry shares this value; hits must not echo it
	second := svc.Answer(context.Background(), "Makarna", nil) // normalized to same key

	if generator.calls != 1 {
		t.Errorf("generator called %d times, want 1 (second hit served from cache)", generator.calls)
	}
	if first.Text != second.Text {
		t.Errorf("cached answer differs: %q vs %q", first.Text, second.Text)
	}

	// Hits are marked and carry this request's latency, not the stored one.
	if first.Cached {
		t.Error("first answer should not be marked cached")
	}
	if !second.Cached {
		t.Error("second answer should be marked cached")
	}
	if second.LatencyMs == 123456 {
		t.Error("cached answer echoed the stored latency instead of measuring this request")
	}

	// Different constraints must miss the cache.
	svc.Answer(context.Background(), "makarna", &domain.UserContext{Allergens: []string{domain.AllergenEgg}})
	if generator.calls != 2 {
		t.Errorf("constraint change should bypass cache, calls = %d", generator.calls)
	}
}
