package repository

import (
	"context"

	"github.com/denizk/yemekoneri/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RecipeRepository handles recipe data operations.
type RecipeRepository struct {
	db *gorm.DB
}

// NewRecipeRepository creates a new RecipeRepository.
// Parameters:
//   - db: GORM database handle used for queries.
// Returns:
//   - *RecipeRepository: repository instance bound to db.
func NewRecipeRepository(db *gorm.DB) *RecipeRepository {
	return &RecipeRepository{db: db}
}

// Upsert creates or updates a recipe record keyed by ID.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - recipe: recipe record to create or update.
// Returns:
//   - error: non-nil if the upsert fails.
func (r *RecipeRepository) Upsert(ctx context.Context, recipe *domain.Recipe) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(recipe).Error
}

// ListAll retrieves every recipe in the catalog. Used to build the in-memory
// snapshot at startup; the catalog is small enough to hold in memory.
// Parameters:
//   - ctx: context for cancellation and deadlines.
// Returns:
//   - []domain.Recipe: all recipe records.
//   - error: non-nil if the query fails.
func (r *RecipeRepository) ListAll(ctx context.Context) ([]domain.Recipe, error) {
	var recipes []domain.Recipe
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&recipes).Error; err != nil {
		return nil, err
	}
	return recipes, nil
}

// Count returns the number of recipes in the catalog.
// Parameters:
//   - ctx: context for cancellation and deadlines.
// Returns:
//   - int64: number of recipe records.
//   - error: non-nil if the query fails.
func (r *RecipeRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.Recipe{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// UpdatePopularity persists the popularity counters for a recipe. The
// stored score is the offline base score; the live view boost is derived
// from the view count when the catalog is loaded.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - id: recipe ID.
//   - baseScore: offline base popularity score.
//   - viewCount: new view count.
//   - favoriteCount: new favorite count.
// Returns:
//   - error: non-nil if the update fails.
func (r *RecipeRepository) UpdatePopularity(ctx context.Context, id uint, baseScore float64, viewCount, favoriteCount int64) error {
	return r.db.WithContext(ctx).Model(&domain.Recipe{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"popularity_score": baseScore,
			"view_count":       viewCount,
			"favorite_count":   favoriteCount,
		}).Error
}
