package jsonseed

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestFetchRecipes(t *testing.T) {
	dir := t.TempDir()
	recipesPath := writeFile(t, dir, "recipes.json", `[
		{
			"id": 1,
			"title": "Menemen",
			"cooking_time": 20,
			"calories": 350,
			"ingredients": ["yumurta", "domates", "biber"],
			"instructions": ["Doğra.", "Pişir."],
			"image_name": "menemen",
			"popularity_score": 0.7
		},
		{
			"title": "Pilav",
			"ingredients": "pirinç, tereyağı, tuz",
			"instructions": "Kavur ve haşla."
		}
	]`)

	src := New(recipesPath, "", filepath.Join(dir, "images"))
	items, err := src.FetchRecipes(context.Background())
	if err != nil {
		t.Fatalf("FetchRecipes failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 recipes, got %d", len(items))
	}

	first := items[0]
	if first.ID != 1 || first.Title != "Menemen" || first.CookingTime != 20 {
		t.Errorf("unexpected first recipe: %+v", first)
	}
	if first.Ingredients != "yumurta, domates, biber" {
		t.Errorf("list ingredients not joined: %q", first.Ingredients)
	}
	if len(first.Instructions) != 2 {
		t.Errorf("expected 2 instruction steps, got %v", first.Instructions)
	}
	if first.ImagePath == "" {
		t.Error("expected image path for named image")
	}
	if first.Servings != 4 {
		t.Errorf("missing servings should default to 4, got %d", first.Servings)
	}

	second := items[1]
	if second.ID != 2 {
		t.Errorf("missing ID should fall back to position, got %d", second.ID)
	}
	if second.Ingredients != "pirinç, tereyağı, tuz" {
		t.Errorf("string ingredients mangled: %q", second.Ingredients)
	}
	if len(second.Instructions) != 1 {
		t.Errorf("string instructions should become one step, got %v", second.Instructions)
	}
}

func TestFetchIngredients(t *testing.T) {
	dir := t.TempDir()
	ingredientsPath := writeFile(t, dir, "ingredients.json", `[
		{"name": "domates", "portion_g": 100, "calories": 18, "carbs_g": 3.9},
		{"name": "", "calories": 10},
		{"name": "yumurta", "portion_g": 50, "calories": 78, "protein_g": 6.3}
	]`)

	src := New("", ingredientsPath, "")
	items, err := src.FetchIngredients(context.Background())
	if err != nil {
		t.Fatalf("FetchIngredients failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("nameless entries must be skipped, got %d items", len(items))
	}
	if items[0].Name != "domates" || items[0].Calories != 18 {
		t.Errorf("unexpected ingredient: %+v", items[0])
	}
}

func TestFetchRecipesMissingFile(t *testing.T) {
	src := New("/nonexistent/recipes.json", "", "")
	if _, err := src.FetchRecipes(context.Background()); err == nil {
		t.Error("expected error for missing file")
	}
}
