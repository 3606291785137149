package domain

import (
	"strconv"
	"strings"
)

// UserContext carries per-request user preferences and restrictions.
// It is sent by the mobile client and applied both as hard filters
// (allergens, time/calorie limits) and as soft hints in prompts.
//
// Time and calorie limits come in two forms: the legacy scalar fields
// (max_cooking_time/max_calories) and the newer multi-select preference
// chips. When any chip is selected the chips win; the "90+dk" and
// "1500+kcal" chips mean "no limit".
type UserContext struct {
	DietTypes            []string `json:"diet_types,omitempty"`
	Allergens            []string `json:"allergens,omitempty"`
	Cuisines             []string `json:"cuisines,omitempty"`
	AvailableIngredients []string `json:"available_ingredients,omitempty"`

	// Legacy scalar limits.
	MaxCookingTime *int `json:"max_cooking_time,omitempty"`
	MaxCalories    *int `json:"max_calories,omitempty"`

	// Chip-based preferences ("15dk".."90+dk", "300kcal".."1500+kcal").
	CookingTimePreferences []string `json:"cooking_time_preferences,omitempty"`
	CaloriePreferences     []string `json:"calorie_preferences,omitempty"`
	SkillLevels            []string `json:"skill_levels,omitempty"`
	SpicePreferences       []string `json:"spice_preferences,omitempty"`
	ServingSizes           []string `json:"serving_sizes,omitempty"`
	MealTypes              []string `json:"meal_types,omitempty"`
}

// HasRestrictions reports whether the user has any hard dietary restrictions.
func (c *UserContext) HasRestrictions() bool {
	return len(c.Allergens) > 0 || len(c.DietTypes) > 0
}

// EffectiveMaxCookingTime resolves the cooking time limit in minutes.
// Chip selection is additive: the effective limit is the maximum of the
// selected chips, and the "90+dk" sentinel resolves to unbounded (nil)
// regardless of other chips. Without chips the legacy scalar applies.
func (c *UserContext) EffectiveMaxCookingTime() *int {
	if len(c.CookingTimePreferences) > 0 {
		return resolveChips(c.CookingTimePreferences, "dk")
	}
	return c.MaxCookingTime
}

// EffectiveMaxCalories resolves the calorie limit in kcal, with the same
// chip semantics as EffectiveMaxCookingTime ("1500+kcal" means unbounded).
func (c *UserContext) EffectiveMaxCalories() *int {
	if len(c.CaloriePreferences) > 0 {
		return resolveChips(c.CaloriePreferences, "kcal")
	}
	return c.MaxCalories
}

// resolveChips resolves a chip set to an effective limit. Chips carry a
// numeric value with a unit suffix; a "+" before the suffix marks the
// no-limit sentinel. Unparseable chips are ignored.
func resolveChips(chips []string, unit string) *int {
	var max *int
	for _, chip := range chips {
		value := strings.TrimSuffix(strings.TrimSpace(chip), unit)
		if strings.HasSuffix(value, "+") {
			// Sentinel chip: no limit, overrides any finite chip.
			return nil
		}
		n, err := strconv.Atoi(value)
		if err != nil {
			continue
		}
		if max == nil || n > *max {
			v := n
			max = &v
		}
	}
	return max
}
