package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// StringArray is a custom type for storing string arrays as JSON in the database.
type StringArray []string

// Value implements the driver.Valuer interface for database serialization.
func (a StringArray) Value() (driver.Value, error) {
	if a == nil {
		return "[]", nil
	}
	b, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface for database deserialization.
func (a *StringArray) Scan(value interface{}) error {
	if value == nil {
		*a = StringArray{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		str, ok := value.(string)
		if !ok {
			return errors.New("failed to scan StringArray")
		}
		bytes = []byte(str)
	}
	return json.Unmarshal(bytes, a)
}

// Recipe represents a recipe in the catalog.
// The catalog is loaded once at startup and treated as read-only; the only
// request-time mutation is the popularity feedback (view/favorite counters).
type Recipe struct {
	ID                   uint        `gorm:"primaryKey" json:"id"`
	Title                string      `gorm:"type:text;not null;index:idx_recipes_title" json:"title"`
	CookingTime          int         `json:"cooking_time"`
	Calories             int         `json:"calories"`
	Servings             int         `json:"servings"`
	RecommendationReason string      `gorm:"type:text" json:"recommendation_reason,omitempty"`
	AvailableIngredients string      `gorm:"type:text" json:"available_ingredients"`
	ImageKey             string      `gorm:"type:text" json:"image_key,omitempty"`
	ImageURL             string      `gorm:"type:text" json:"image_url,omitempty"`
	Instructions         StringArray `gorm:"type:text" json:"instructions"`

	// Popularity signal: offline score plus online view/favorite feedback.
	PopularityScore float64 `gorm:"default:0.5" json:"popularity_score"`
	ViewCount       int64   `gorm:"default:0" json:"view_count"`
	FavoriteCount   int64   `gorm:"default:0" json:"favorite_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for Recipe.
func (Recipe) TableName() string {
	return "recipes"
}

// ConstraintText returns the text blob used for allergen matching:
// the raw ingredient list plus the title.
func (r *Recipe) ConstraintText() string {
	return r.Title + " " + r.AvailableIngredients
}

// RecipeSearchResult represents a recipe with a retrieval-stage score.
// Score semantics depend on the stage that produced it: 0-100 lexical
// relevance or 0-1 vector similarity.
type RecipeSearchResult struct {
	Recipe
	Score float64 `json:"score"`
	Rank  int     `json:"rank"`
}
