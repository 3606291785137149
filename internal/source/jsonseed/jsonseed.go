// Package jsonseed loads the recipe and ingredient catalog from JSON seed
// files produced by the offline dataset pipeline.
package jsonseed

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/denizk/yemekoneri/internal/source"
)

// Source reads catalog seed data from local JSON files.
type Source struct {
	recipesPath     string
	ingredientsPath string
	imagesPath      string
}

// New creates a JSON seed source.
// Parameters:
//   - recipesPath: path to the recipes JSON file.
//   - ingredientsPath: path to the ingredients JSON file.
//   - imagesPath: directory holding recipe images keyed by image name.
// Returns:
//   - *Source: configured source.
func New(recipesPath, ingredientsPath, imagesPath string) *Source {
	return &Source{
		recipesPath:     recipesPath,
		ingredientsPath: ingredientsPath,
		imagesPath:      imagesPath,
	}
}

// GetSourceID returns the unique identifier for this source.
func (s *Source) GetSourceID() string {
	return "jsonseed"
}

// seedRecipe mirrors the offline pipeline's output schema. Ingredients may
// be a JSON array or a single comma-separated string; instructions may be an
// array of steps or one text blob.
type seedRecipe struct {
	ID              uint            `json:"id"`
	Title           string          `json:"title"`
	CookingTime     int             `json:"cooking_time"`
	Calories        int             `json:"calories"`
	Servings        int             `json:"servings"`
	Ingredients     json.RawMessage `json:"ingredients"`
	Instructions    json.RawMessage `json:"instructions"`
	ImageName       string          `json:"image_name"`
	PopularityScore float64         `json:"popularity_score"`
	ViewCount       int64           `json:"view_count"`
	FavoriteCount   int64           `json:"favorite_count"`
}

type seedIngredient struct {
	Name     string  `json:"name"`
	PortionG float64 `json:"portion_g"`
	Calories float64 `json:"calories"`
	FatG     float64 `json:"fat_g"`
	CarbsG   float64 `json:"carbs_g"`
	ProteinG float64 `json:"protein_g"`
	SugarG   float64 `json:"sugar_g"`
	FiberG   float64 `json:"fiber_g"`
}

// FetchRecipes loads all recipes from the seed file.
func (s *Source) FetchRecipes(ctx context.Context) ([]source.RecipeItem, error) {
	data, err := os.ReadFile(s.recipesPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read recipes file: %w", err)
	}

	var seeds []seedRecipe
	if err := json.Unmarshal(data, &seeds); err != nil {
		return nil, fmt.Errorf("failed to parse recipes file: %w", err)
	}

	items := make([]source.RecipeItem, 0, len(seeds))
	for i, seed := range seeds {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		id := seed.ID
		if id == 0 {
			id = uint(i + 1)
		}
		servings := seed.Servings
		if servings == 0 {
			servings = 4
		}
		item := source.RecipeItem{
			ID:              id,
			Title:           seed.Title,
			CookingTime:     seed.CookingTime,
			Calories:        seed.Calories,
			Servings:        servings,
			Ingredients:     parseStringOrList(seed.Ingredients),
			Instructions:    parseSteps(seed.Instructions),
			PopularityScore: seed.PopularityScore,
			ViewCount:       seed.ViewCount,
			FavoriteCount:   seed.FavoriteCount,
		}
		if seed.ImageName != "" && s.imagesPath != "" {
			item.ImagePath = filepath.Join(s.imagesPath, seed.ImageName+".jpg")
		}
		items = append(items, item)
	}
	return items, nil
}

// FetchIngredients loads all ingredients from the seed file.
func (s *Source) FetchIngredients(ctx context.Context) ([]source.IngredientItem, error) {
	data, err := os.ReadFile(s.ingredientsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read ingredients file: %w", err)
	}

	var seeds []seedIngredient
	if err := json.Unmarshal(data, &seeds); err != nil {
		return nil, fmt.Errorf("failed to parse ingredients file: %w", err)
	}

	items := make([]source.IngredientItem, 0, len(seeds))
	for _, seed := range seeds {
		if seed.Name == "" {
			continue
		}
		items = append(items, source.IngredientItem{
			Name:     seed.Name,
			PortionG: seed.PortionG,
			Calories: seed.Calories,
			FatG:     seed.FatG,
			CarbsG:   seed.CarbsG,
			ProteinG: seed.ProteinG,
			SugarG:   seed.SugarG,
			FiberG:   seed.FiberG,
		})
	}
	return items, nil
}

// parseStringOrList accepts either a JSON string or an array of strings and
// returns a single comma-separated string.
func parseStringOrList(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return asString
	}
	var asList []string
	if err := json.Unmarshal(raw, &asList); err == nil {
		return strings.Join(asList, ", ")
	}
	return ""
}

// parseSteps accepts either a JSON string or an array of strings and returns
// the instruction steps.
func parseSteps(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var asList []string
	if err := json.Unmarshal(raw, &asList); err == nil {
		return asList
	}
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil && asString != "" {
		return []string{asString}
	}
	return nil
}
