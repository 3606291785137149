package service

import (
	"strings"

	"github.com/denizk/yemekoneri/internal/domain"
)

// ConstraintFilter applies the user's hard restrictions to candidate
// recipes. Allergen exclusion is absolute: no similarity score can bring an
// excluded recipe back. Filtering is order-independent and pure, so it is
// safe to call concurrently over the shared catalog snapshot.
type ConstraintFilter struct{}

// NewConstraintFilter creates a ConstraintFilter.
func NewConstraintFilter() *ConstraintFilter {
	return &ConstraintFilter{}
}

// ContainsAllergen checks item text against the derivative term sets of the
// selected allergen categories.
// Parameters:
//   - itemText: free-form recipe text (title plus ingredient list).
//   - categories: selected allergen category labels.
// Returns:
//   - bool: true if any derivative term occurs in the normalized text.
//   - []string: the matched terms, for explanations and logging.
func (f *ConstraintFilter) ContainsAllergen(itemText string, categories []string) (bool, []string) {
	if len(categories) == 0 || itemText == "" {
		return false, nil
	}

	normalized := Normalize(itemText)
	var matched []string
	for term := range domain.AllAllergenDerivatives(categories) {
		if strings.Contains(normalized, Normalize(term)) {
			matched = append(matched, term)
		}
	}
	return len(matched) > 0, matched
}

// ViolatesLimits checks the recipe against the effective time and calorie
// limits from the user context. A zero recipe value means "unknown" and is
// never treated as a violation.
func (f *ConstraintFilter) ViolatesLimits(recipe *domain.Recipe, userCtx *domain.UserContext) bool {
	if userCtx == nil {
		return false
	}
	if maxTime := userCtx.EffectiveMaxCookingTime(); maxTime != nil {
		if recipe.CookingTime > 0 && recipe.CookingTime > *maxTime {
			return true
		}
	}
	if maxCalories := userCtx.EffectiveMaxCalories(); maxCalories != nil {
		if recipe.Calories > 0 && recipe.Calories > *maxCalories {
			return true
		}
	}
	return false
}

// Filter drops every candidate that violates the allergen exclusion or the
// time/calorie limits. Candidate order is preserved.
// Parameters:
//   - candidates: retrieval-stage results in ranked order.
//   - userCtx: user constraints; nil means no filtering.
// Returns:
//   - []domain.RecipeSearchResult: surviving candidates, ranks renumbered.
func (f *ConstraintFilter) Filter(candidates []domain.RecipeSearchResult, userCtx *domain.UserContext) []domain.RecipeSearchResult {
	if userCtx == nil {
		return candidates
	}

	filtered := make([]domain.RecipeSearchResult, 0, len(candidates))
	for _, candidate := range candidates {
		if violates, _ := f.ContainsAllergen(candidate.ConstraintText(), userCtx.Allergens); violates {
			continue
		}
		if f.ViolatesLimits(&candidate.Recipe, userCtx) {
			continue
		}
		candidate.Rank = len(filtered) + 1
		filtered = append(filtered, candidate)
	}
	return filtered
}
