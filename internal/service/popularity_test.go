package service

import (
	"context"
	"sync"
	"testing"

	"github.com/denizk/yemekoneri/internal/domain"
)

func testCatalog() *Catalog {
	return NewCatalog([]domain.Recipe{
		{ID: 1, Title: "Domates Çorbası", PopularityScore: 0.5},
		{ID: 2, Title: "Chicken Pasta", PopularityScore: 0.8},
	}, nil)
}

func TestComputePopularity(t *testing.T) {
	// Common ingredients and a short recipe score well.
	simple := ComputePopularity(
		"Easy Tomato Soup",
		"tomato, onion, garlic, butter, salt",
		[]string{"Chop and boil.", "Blend."},
	)
	// Exotic ingredients, long instructions, no boost keywords.
	complex := ComputePopularity(
		"Deconstructed Quail Galantine",
		"quail, foie gras, truffle, juniper, madeira, gelatin, chervil, shallot confit, brioche, clarified stock, leaf gelatin, cognac",
		[]string{string(make([]byte, 2000))},
	)

	if simple <= complex {
		t.Errorf("simple recipe %v should outscore complex recipe %v", simple, complex)
	}
	for _, score := range []float64{simple, complex} {
		if score < 0 || score > 1 {
			t.Errorf("popularity %v out of [0,1]", score)
		}
	}
}

func TestComputePopularityCategoryBoostCap(t *testing.T) {
	// Stacked keywords must not push the boost past 0.2.
	boost := categoryBoost("Easy Quick Simple Healthy Classic Dinner")
	if boost != 0.2 {
		t.Errorf("categoryBoost = %v, want capped at 0.2", boost)
	}
}

func TestTrackViewSaturation(t *testing.T) {
	svc := NewPopularityService(testCatalog(), nil)
	ctx := context.Background()

	var score float64
	for i := 0; i < 500; i++ {
		var err error
		score, _, err = svc.TrackView(ctx, 1)
		if err != nil {
			t.Fatalf("TrackView failed: %v", err)
		}
	}

	// Boost saturates at 0.1: 0.5 base + 0.1 = 0.6, no matter how many views.
	if score != 0.6 {
		t.Errorf("popularity after 500 views = %v, want 0.6", score)
	}
}

func TestTrackViewMonotonic(t *testing.T) {
	svc := NewPopularityService(testCatalog(), nil)
	ctx := context.Background()

	prev := 0.0
	for i := 0; i < 50; i++ {
		score, views, err := svc.TrackView(ctx, 2)
		if err != nil {
			t.Fatalf("TrackView failed: %v", err)
		}
		if score < prev {
			t.Errorf("popularity decreased: %v -> %v", prev, score)
		}
		if score < 0 || score > 1 {
			t.Errorf("popularity %v out of [0,1]", score)
		}
		if views != int64(i+1) {
			t.Errorf("view count = %d, want %d", views, i+1)
		}
		prev = score
	}
}

func TestTrackViewConcurrent(t *testing.T) {
	svc := NewPopularityService(testCatalog(), nil)
	ctx := context.Background()

	const workers = 20
	const viewsPerWorker = 50

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < viewsPerWorker; i++ {
				if _, _, err := svc.TrackView(ctx, 1); err != nil {
					t.Errorf("TrackView failed: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()

	_, views, err := svc.TrackView(ctx, 1)
	if err != nil {
		t.Fatalf("TrackView failed: %v", err)
	}
	if views != workers*viewsPerWorker+1 {
		t.Errorf("lost updates: view count = %d, want %d", views, workers*viewsPerWorker+1)
	}
}

func TestTrackViewUnknownRecipe(t *testing.T) {
	svc := NewPopularityService(testCatalog(), nil)
	if _, _, err := svc.TrackView(context.Background(), 999); err == nil {
		t.Error("expected error for unknown recipe")
	}
}

func TestPopularRecipes(t *testing.T) {
	svc := NewPopularityService(testCatalog(), nil)

	recipes := svc.PopularRecipes(10)
	if len(recipes) != 2 {
		t.Fatalf("expected 2 recipes, got %d", len(recipes))
	}
	if recipes[0].ID != 2 {
		t.Errorf("expected recipe 2 (score 0.8) first, got %d", recipes[0].ID)
	}

	// Enough views on the weaker recipe cannot overtake a 0.3 gap; the
	// boost saturates at 0.1.
	ctx := context.Background()
	for i := 0; i < 1000; i++ {
		svc.TrackView(ctx, 1)
	}
	recipes = svc.PopularRecipes(1)
	if len(recipes) != 1 || recipes[0].ID != 2 {
		t.Errorf("saturated boost must not overtake a 0.3 gap, got %+v", recipes)
	}
}

func TestRerank(t *testing.T) {
	svc := NewPopularityService(testCatalog(), nil)

	// Retrieval puts the soup first; the pasta is far more popular.
	results := []domain.RecipeSearchResult{
		{Recipe: domain.Recipe{ID: 1, Title: "Domates Çorbası"}, Score: 0.70, Rank: 1},
		{Recipe: domain.Recipe{ID: 2, Title: "Chicken Pasta"}, Score: 0.65, Rank: 2},
	}

	fused := svc.Rerank(results, 0.5)
	// 0.5*0.70 + 0.5*0.5 = 0.60 vs 0.5*0.65 + 0.5*0.8 = 0.725
	if fused[0].ID != 2 {
		t.Errorf("expected recipe 2 first after fusion, got %d", fused[0].ID)
	}
	for i, r := range fused {
		if r.Rank != i+1 {
			t.Errorf("rank at %d = %d, want %d", i, r.Rank, i+1)
		}
	}

	// Input must stay untouched.
	if results[0].ID != 1 || results[0].Score != 0.70 || results[0].Rank != 1 {
		t.Errorf("input slice modified: %+v", results[0])
	}
}

func TestRerankZeroWeightKeepsOrder(t *testing.T) {
	svc := NewPopularityService(testCatalog(), nil)

	results := []domain.RecipeSearchResult{
		{Recipe: domain.Recipe{ID: 1}, Score: 0.70, Rank: 1},
		{Recipe: domain.Recipe{ID: 2}, Score: 0.65, Rank: 2},
	}
	fused := svc.Rerank(results, 0)
	if fused[0].ID != 1 || fused[1].ID != 2 {
		t.Errorf("zero weight changed order: %d, %d", fused[0].ID, fused[1].ID)
	}
}

type memoryPopularityStore struct {
	mu        sync.Mutex
	baseScore float64
	views     int64
	favorites int64
}

func (m *memoryPopularityStore) UpdatePopularity(_ context.Context, _ uint, baseScore float64, views, favorites int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.baseScore = baseScore
	m.views = views
	m.favorites = favorites
	return nil
}

func TestPopularityPersistenceRoundTrip(t *testing.T) {
	store := &memoryPopularityStore{}
	svc := NewPopularityService(testCatalog(), store)
	ctx := context.Background()

	var live float64
	for i := 0; i < 500; i++ {
		var err error
		live, _, err = svc.TrackView(ctx, 1)
		if err != nil {
			t.Fatalf("TrackView failed: %v", err)
		}
	}
	if live != 0.6 {
		t.Fatalf("live score = %v, want 0.6", live)
	}

	// The persisted score must be the base, not the boosted value: the
	// boost is recomputed from the view count at load time.
	if store.baseScore != 0.5 {
		t.Errorf("persisted score = %v, want base 0.5", store.baseScore)
	}
	if store.views != 500 {
		t.Errorf("persisted views = %d, want 500", store.views)
	}

	// Rebuild the service from the persisted row, as a restart would.
	// Without new views the score must come back identical.
	reloaded := NewPopularityService(NewCatalog([]domain.Recipe{{
		ID:              1,
		Title:           "Domates Çorbası",
		PopularityScore: store.baseScore,
		ViewCount:       store.views,
	}}, nil), nil)

	score, ok := reloaded.Score(1)
	if !ok {
		t.Fatal("recipe missing after reload")
	}
	if score != live {
		t.Errorf("score after reload = %v, want %v", score, live)
	}
}
