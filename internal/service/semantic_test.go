package service

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/denizk/yemekoneri/internal/domain"
	"github.com/denizk/yemekoneri/internal/repository"
)

func TestExplainResults(t *testing.T) {
	results := []domain.RecipeSearchResult{
		{Recipe: domain.Recipe{ID: 1, Title: "Menemen"}, Score: 0.87, Rank: 1},
		{Recipe: domain.Recipe{ID: 2, Title: "Domates Çorbası"}, Score: 0.61, Rank: 2},
		{Recipe: domain.Recipe{ID: 3, Title: "Pilav"}, Score: 0.55, Rank: 3},
		{Recipe: domain.Recipe{ID: 4, Title: "Salata"}, Score: 0.40, Rank: 4},
	}

	text := ExplainResults(results)
	if !strings.Contains(text, "Menemen") || !strings.Contains(text, "%87") {
		t.Errorf("explanation missing top match: %q", text)
	}
	if strings.Contains(text, "Salata") {
		t.Errorf("explanation should name at most three matches: %q", text)
	}
}

func TestExplainResultsEmpty(t *testing.T) {
	if text := ExplainResults(nil); !strings.Contains(text, "bulunamadı") {
		t.Errorf("unexpected empty-result explanation: %q", text)
	}
}

func TestSemanticUnavailableWithoutCredentials(t *testing.T) {
	embedding := NewEmbeddingService(&EmbeddingConfig{Model: "jina-embeddings-v3"})
	svc := NewSemanticSearchService(embedding, nil, nil, NewCatalog(nil, nil))

	if svc.IsAvailable() {
		t.Error("service without API key and indices should be unavailable")
	}
	status := svc.Status(context.Background())
	if status.Available {
		t.Error("status should report unavailable")
	}
	if status.Model != "jina-embeddings-v3" {
		t.Errorf("status model = %q", status.Model)
	}
}

type fakeVectorIndex struct {
	hits []repository.SearchResult
}

func (f *fakeVectorIndex) Search(_ context.Context, _ []float32, _ int) ([]repository.SearchResult, error) {
	return f.hits, nil
}

func (f *fakeVectorIndex) CollectionSize(_ context.Context) (uint64, error) {
	return uint64(len(f.hits)), nil
}

// embeddingTestServer returns a server speaking the embedding API response
// shape with a fixed vector.
func embeddingTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"data":[{"embedding":[0.1,0.2,0.3],"index":0}],"usage":{"total_tokens":3}}`)
	}))
}

func TestSearchRecipesSkipsOrphanIndexEntries(t *testing.T) {
	srv := embeddingTestServer(t)
	defer srv.Close()

	embedding := NewEmbeddingService(&EmbeddingConfig{
		APIKey:  "test-key",
		Model:   "jina-embeddings-v3",
		BaseURL: srv.URL,
	})
	catalog := NewCatalog([]domain.Recipe{
		{ID: 1, Title: "Menemen"},
		{ID: 2, Title: "Pilav"},
	}, nil)
	// Entity 99 exists in the index but not in the catalog.
	index := &fakeVectorIndex{hits: []repository.SearchResult{
		{EntityID: 1, Score: 0.9},
		{EntityID: 99, Score: 0.8},
		{EntityID: 2, Score: 0.7},
	}}
	svc := NewSemanticSearchService(embedding, index, index, catalog)

	results, err := svc.SearchRecipes(context.Background(), "kahvaltılık", 3)
	if err != nil {
		t.Fatalf("SearchRecipes failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2 (orphan skipped)", len(results))
	}
	if results[0].ID != 1 || results[1].ID != 2 {
		t.Errorf("unexpected IDs: %d, %d", results[0].ID, results[1].ID)
	}
	// Ranks must stay contiguous after the skip.
	if results[0].Rank != 1 || results[1].Rank != 2 {
		t.Errorf("ranks not renumbered: %d, %d", results[0].Rank, results[1].Rank)
	}
}
