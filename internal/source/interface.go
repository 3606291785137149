package source

import "context"

// RecipeItem represents a recipe from a catalog data source.
type RecipeItem struct {
	ID              uint
	Title           string
	CookingTime     int // minutes
	Calories        int
	Servings        int
	Ingredients     string // raw comma-separated ingredient list
	Instructions    []string
	ImagePath       string // local image path, if available
	PopularityScore float64
	ViewCount       int64
	FavoriteCount   int64
}

// IngredientItem represents an ingredient with nutrition facts from a
// catalog data source.
type IngredientItem struct {
	Name     string
	PortionG float64
	Calories float64
	FatG     float64
	CarbsG   float64
	ProteinG float64
	SugarG   float64
	FiberG   float64
}

// CatalogSource defines the interface for catalog seed data sources.
type CatalogSource interface {
	// GetSourceID returns the unique identifier for this source.
	// Parameters: none.
	// Returns:
	//   - string: stable source identifier.
	GetSourceID() string

	// FetchRecipes loads all recipes from the source.
	// Parameters:
	//   - ctx: context for cancellation and deadlines.
	// Returns:
	//   - []RecipeItem: recipes in source order.
	//   - error: non-nil if loading fails.
	FetchRecipes(ctx context.Context) ([]RecipeItem, error)

	// FetchIngredients loads all ingredients from the source.
	// Parameters:
	//   - ctx: context for cancellation and deadlines.
	// Returns:
	//   - []IngredientItem: ingredients in source order.
	//   - error: non-nil if loading fails.
	FetchIngredients(ctx context.Context) ([]IngredientItem, error)
}
