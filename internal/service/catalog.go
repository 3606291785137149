package service

import (
	"context"
	"fmt"

	"github.com/denizk/yemekoneri/internal/domain"
	"github.com/denizk/yemekoneri/internal/logger"
	"github.com/denizk/yemekoneri/internal/repository"
)

// Catalog is the immutable in-memory snapshot of recipes and ingredients,
// loaded once at startup. Matcher, filter, and ranking operations read it
// concurrently without locking; the only request-time mutation in the system
// (popularity feedback) lives in PopularityService, not here.
type Catalog struct {
	recipes      []domain.Recipe
	recipeByID   map[uint]*domain.Recipe
	recipeTitles []string

	ingredients     []domain.Ingredient
	ingredientByID  map[uint]*domain.Ingredient
	ingredientNames []string
}

// LoadCatalog builds the catalog snapshot from the database.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - recipeRepo: recipe data access.
//   - ingredientRepo: ingredient data access.
// Returns:
//   - *Catalog: immutable snapshot.
//   - error: non-nil if loading fails.
func LoadCatalog(ctx context.Context, recipeRepo *repository.RecipeRepository, ingredientRepo *repository.IngredientRepository) (*Catalog, error) {
	recipes, err := recipeRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load recipes: %w", err)
	}
	ingredients, err := ingredientRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load ingredients: %w", err)
	}

	c := &Catalog{
		recipes:         recipes,
		recipeByID:      make(map[uint]*domain.Recipe, len(recipes)),
		recipeTitles:    make([]string, len(recipes)),
		ingredients:     ingredients,
		ingredientByID:  make(map[uint]*domain.Ingredient, len(ingredients)),
		ingredientNames: make([]string, len(ingredients)),
	}
	for i := range recipes {
		c.recipeByID[recipes[i].ID] = &c.recipes[i]
		c.recipeTitles[i] = recipes[i].Title
	}
	for i := range ingredients {
		c.ingredientByID[ingredients[i].ID] = &c.ingredients[i]
		c.ingredientNames[i] = ingredients[i].Name
	}

	logger.With(logger.Fields{
		"recipes":     len(recipes),
		"ingredients": len(ingredients),
	}).Info(ctx, "catalog snapshot loaded")

	return c, nil
}

// NewCatalog builds a snapshot directly from slices. Used by tests and by
// the ingest tool before the database is populated.
func NewCatalog(recipes []domain.Recipe, ingredients []domain.Ingredient) *Catalog {
	c := &Catalog{
		recipes:         recipes,
		recipeByID:      make(map[uint]*domain.Recipe, len(recipes)),
		recipeTitles:    make([]string, len(recipes)),
		ingredients:     ingredients,
		ingredientByID:  make(map[uint]*domain.Ingredient, len(ingredients)),
		ingredientNames: make([]string, len(ingredients)),
	}
	for i := range recipes {
		c.recipeByID[recipes[i].ID] = &c.recipes[i]
		c.recipeTitles[i] = recipes[i].Title
	}
	for i := range ingredients {
		c.ingredientByID[ingredients[i].ID] = &c.ingredients[i]
		c.ingredientNames[i] = ingredients[i].Name
	}
	return c
}

// Recipes returns all recipes in catalog order.
func (c *Catalog) Recipes() []domain.Recipe {
	return c.recipes
}

// RecipeByID returns the recipe with the given ID, or nil.
func (c *Catalog) RecipeByID(id uint) *domain.Recipe {
	return c.recipeByID[id]
}

// RecipeTitles returns recipe titles in catalog order.
func (c *Catalog) RecipeTitles() []string {
	return c.recipeTitles
}

// Ingredients returns all ingredients in catalog order.
func (c *Catalog) Ingredients() []domain.Ingredient {
	return c.ingredients
}

// IngredientByID returns the ingredient with the given ID, or nil.
func (c *Catalog) IngredientByID(id uint) *domain.Ingredient {
	return c.ingredientByID[id]
}

// IngredientNames returns ingredient names in catalog order.
func (c *Catalog) IngredientNames() []string {
	return c.ingredientNames
}
