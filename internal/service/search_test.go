package service

import (
	"context"
	"testing"
	"time"

	"github.com/denizk/yemekoneri/internal/domain"
)

func searchCatalog() *Catalog {
	return NewCatalog(
		[]domain.Recipe{
			{ID: 1, Title: "Menemen", AvailableIngredients: "yumurta, domates, biber, soğan"},
			{ID: 2, Title: "Domates Çorbası", AvailableIngredients: "domates, soğan, tereyağı, un"},
			{ID: 3, Title: "Pilav", AvailableIngredients: "pirinç, tereyağı, tuz"},
		},
		[]domain.Ingredient{
			{ID: 1, Name: "domates"},
			{ID: 2, Name: "biber"},
			{ID: 3, Name: "domuz eti"},
			{ID: 4, Name: "yumurta"},
		},
	)
}

func TestLexicalSearch(t *testing.T) {
	svc := NewSearchService(searchCatalog(), nil, nil, 30, 10, 50)

	results := svc.LexicalSearch(context.Background(), "dom", 10, 30)
	if len(results) != 2 {
		t.Fatalf("expected 2 matches, got %d: %+v", len(results), results)
	}
	if results[0].Name != "domates" || results[1].Name != "domuz eti" {
		t.Errorf("unexpected match order: %+v", results)
	}
	for i, r := range results {
		if r.Rank != i+1 {
			t.Errorf("rank %d at position %d", r.Rank, i)
		}
		if r.Score < 30 {
			t.Errorf("score %v below threshold", r.Score)
		}
	}
}

func TestLexicalSearchEmptyQuery(t *testing.T) {
	svc := NewSearchService(searchCatalog(), nil, nil, 30, 10, 50)
	if results := svc.LexicalSearch(context.Background(), "", 10, 30); len(results) != 0 {
		t.Errorf("empty query must return empty result, got %+v", results)
	}
}

func TestLexicalSearchCached(t *testing.T) {
	cache := NewResultCache(time.Hour, 100)
	svc := NewSearchService(searchCatalog(), nil, cache, 30, 10, 50)

	svc.LexicalSearch(context.Background(), "domates", 10, 30)
	svc.LexicalSearch(context.Background(), "DOMATES", 10, 30) // same normalized key

	stats := cache.Stats()
	if stats.Hits != 1 || stats.Misses != 1 {
		t.Errorf("stats = %+v, want 1 hit and 1 miss", stats)
	}
}

func TestLexicalSearchLimitClamping(t *testing.T) {
	svc := NewSearchService(searchCatalog(), nil, nil, 30, 2, 3)

	// Non-positive limit falls back to the default.
	results := svc.LexicalSearch(context.Background(), "a", 0, 1)
	if len(results) > 2 {
		t.Errorf("default limit not applied: %d results", len(results))
	}

	// Oversized limit is capped.
	results = svc.LexicalSearch(context.Background(), "a", 100, 1)
	if len(results) > 3 {
		t.Errorf("max limit not applied: %d results", len(results))
	}
}

func TestSearchIngredientsLexicalFirst(t *testing.T) {
	svc := NewSearchService(searchCatalog(), nil, nil, 30, 10, 50)

	results := svc.SearchIngredients(context.Background(), "yumurta", 5)
	if len(results) != 1 || results[0].Name != "yumurta" {
		t.Errorf("expected lexical hit for yumurta, got %+v", results)
	}

	// No lexical hit and no semantic service: empty, not an error.
	results = svc.SearchIngredients(context.Background(), "zzzzz", 5)
	if len(results) != 0 {
		t.Errorf("expected empty result, got %+v", results)
	}
}

func TestSemanticSearchRecipesUnavailable(t *testing.T) {
	svc := NewSearchService(searchCatalog(), nil, nil, 30, 10, 50)
	if _, err := svc.SemanticSearchRecipes(context.Background(), "pasta", 5); err == nil {
		t.Error("expected ErrSemanticUnavailable without a semantic service")
	}

	status := svc.SemanticStatus(context.Background())
	if status.Available {
		t.Error("status must report unavailable")
	}
}

func TestSuggestByIngredients(t *testing.T) {
	svc := NewSearchService(searchCatalog(), nil, nil, 30, 10, 50)

	results := svc.SuggestByIngredients(context.Background(), []string{"domates", "soğan"}, 10)
	if len(results) != 2 {
		t.Fatalf("expected 2 suggestions, got %d: %+v", len(results), results)
	}
	// Both recipes cover both ingredients.
	for _, r := range results {
		if r.Score != 1 {
			t.Errorf("expected full coverage score 1, got %v for %s", r.Score, r.Title)
		}
	}

	// Partial coverage ranks below full coverage.
	results = svc.SuggestByIngredients(context.Background(), []string{"domates", "soğan", "pirinç"}, 10)
	if len(results) != 3 {
		t.Fatalf("expected 3 suggestions, got %d", len(results))
	}
	if results[0].Score <= results[len(results)-1].Score {
		t.Errorf("results not ordered by coverage: %+v", results)
	}
}

func TestSuggestByIngredientsEmpty(t *testing.T) {
	svc := NewSearchService(searchCatalog(), nil, nil, 30, 10, 50)
	if results := svc.SuggestByIngredients(context.Background(), nil, 10); len(results) != 0 {
		t.Errorf("no ingredients must yield no suggestions, got %+v", results)
	}
}
