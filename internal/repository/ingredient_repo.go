package repository

import (
	"context"

	"github.com/denizk/yemekoneri/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// IngredientRepository handles ingredient data operations.
type IngredientRepository struct {
	db *gorm.DB
}

// NewIngredientRepository creates a new IngredientRepository.
// Parameters:
//   - db: GORM database handle used for queries.
// Returns:
//   - *IngredientRepository: repository instance bound to db.
func NewIngredientRepository(db *gorm.DB) *IngredientRepository {
	return &IngredientRepository{db: db}
}

// Upsert creates or updates an ingredient keyed by name.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - ingredient: ingredient record to create or update.
// Returns:
//   - error: non-nil if the upsert fails.
func (r *IngredientRepository) Upsert(ctx context.Context, ingredient *domain.Ingredient) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		UpdateAll: true,
	}).Create(ingredient).Error
}

// ListAll retrieves every ingredient in the catalog, used to build the
// in-memory snapshot at startup.
// Parameters:
//   - ctx: context for cancellation and deadlines.
// Returns:
//   - []domain.Ingredient: all ingredient records.
//   - error: non-nil if the query fails.
func (r *IngredientRepository) ListAll(ctx context.Context) ([]domain.Ingredient, error) {
	var ingredients []domain.Ingredient
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&ingredients).Error; err != nil {
		return nil, err
	}
	return ingredients, nil
}

// Count returns the number of ingredients in the catalog.
// Parameters:
//   - ctx: context for cancellation and deadlines.
// Returns:
//   - int64: number of ingredient records.
//   - error: non-nil if the query fails.
func (r *IngredientRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.Ingredient{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
