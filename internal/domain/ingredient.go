package domain

import "time"

// Ingredient represents a catalog ingredient with nutrition facts per portion.
type Ingredient struct {
	ID       uint    `gorm:"primaryKey" json:"id"`
	Name     string  `gorm:"type:text;not null;uniqueIndex:idx_ingredients_name" json:"name"`
	PortionG float64 `json:"portion_g"`
	Calories float64 `json:"calories"`
	FatG     float64 `json:"fat_g"`
	CarbsG   float64 `json:"carbs_g"`
	ProteinG float64 `json:"protein_g"`
	SugarG   float64 `json:"sugar_g"`
	FiberG   float64 `json:"fiber_g"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for Ingredient.
func (Ingredient) TableName() string {
	return "ingredients"
}

// IngredientSearchResult represents an ingredient with a similarity score.
type IngredientSearchResult struct {
	Ingredient
	Score float64 `json:"score"`
	Rank  int     `json:"rank"`
}
