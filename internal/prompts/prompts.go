package prompts

import (
	"fmt"
	"strings"

	"github.com/denizk/yemekoneri/internal/domain"
)

// ============================================================================
// Generation Prompts
// ============================================================================

// SystemPrompt defines the assistant role for recipe recommendation answers.
// The catalog is bilingual but the product voice is Turkish.
const SystemPrompt = `Sen bir yemek öneri asistanısın. Kullanıcının sorusuna SADECE sana verilen tarif listesindeki tariflere dayanarak cevap ver.

Kurallar:
- Listedeki tariflerin dışında tarif uydurma.
- Her önerinin hangi tarife dayandığını tarif adıyla belirt.
- Pişirme süresi ve kalori bilgisi varsa öneriye ekle.
- Samimi ve kısa cevap ver, en fazla üç tarif öner.
- Kullanıcının kısıtlamalarına kesinlikle uy.`

// AllergenWarningTemplate restates the user's allergens as a hard
// instruction. %s is the comma-joined category list.
const AllergenWarningTemplate = `ÖNEMLİ: Kullanıcının şu alerjenlere karşı alerjisi var: %s. Bu malzemeleri içeren HİÇBİR tarifi önerme. Bu bir güvenlik kuralıdır, istisnası yoktur.`

// ============================================================================
// Templated Fallback Answers
// ============================================================================

// NoMatchTemplate is returned when filtering removes every candidate.
const NoMatchTemplate = `Üzgünüm, aradığın kriterlere ve kısıtlamalarına uyan bir tarif bulamadım. Alerjen veya süre/kalori filtrelerini gevşeterek tekrar deneyebilirsin.`

// AllergenNoMatchNote is appended to the no-match answer when the allergen
// filter removed every retrieved candidate. %s is the comma-joined category
// list.
const AllergenNoMatchNote = `Not: Alerjen filtren (%s) eşleşen tariflerin tümünü eledi.`

// FallbackTemplate is returned when the generation model is unavailable or
// times out. %s is a comma-joined list of recipe titles.
const FallbackTemplate = `Sorguna uygun şu tarifleri buldum: %s. Detaylar için tarif sayfalarına göz atabilirsin.`

// ============================================================================
// Context Assembly
// ============================================================================

// Context block sizing. Each recipe block is bounded so that the total
// generation input stays inside the model budget regardless of catalog text.
const (
	maxIngredientChars  = 300
	maxInstructionChars = 400
	maxInstructionSteps = 5
)

// FormatRecipeContext renders one recipe as a bounded-length context block
// for the generation model.
// Parameters:
//   - index: 1-based position in the context.
//   - recipe: catalog recipe.
// Returns:
//   - string: formatted block.
func FormatRecipeContext(index int, recipe *domain.Recipe) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d. %s\n", index, recipe.Title)
	if recipe.CookingTime > 0 {
		fmt.Fprintf(&b, "   Süre: %d dakika\n", recipe.CookingTime)
	}
	if recipe.Calories > 0 {
		fmt.Fprintf(&b, "   Kalori: %d kcal\n", recipe.Calories)
	}
	fmt.Fprintf(&b, "   Malzemeler: %s\n", truncate(recipe.AvailableIngredients, maxIngredientChars))

	steps := recipe.Instructions
	if len(steps) > maxInstructionSteps {
		steps = steps[:maxInstructionSteps]
	}
	if len(steps) > 0 {
		fmt.Fprintf(&b, "   Hazırlanışı: %s\n", truncate(strings.Join(steps, " "), maxInstructionChars))
	}
	return b.String()
}

// BuildAnswerPrompt assembles the full user prompt: query, constraint
// warnings, and the retrieved recipe context.
// Parameters:
//   - query: the user's free-text question.
//   - userCtx: user constraints; may be nil.
//   - recipes: surviving candidates in ranked order.
// Returns:
//   - string: prompt for the generation model.
func BuildAnswerPrompt(query string, userCtx *domain.UserContext, recipes []*domain.Recipe) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Kullanıcının sorusu: %s\n\n", query)

	if userCtx != nil {
		if len(userCtx.Allergens) > 0 {
			fmt.Fprintf(&b, AllergenWarningTemplate, strings.Join(userCtx.Allergens, ", "))
			b.WriteString("\n\n")
		}
		if len(userCtx.DietTypes) > 0 {
			fmt.Fprintf(&b, "Beslenme tercihi: %s\n", strings.Join(userCtx.DietTypes, ", "))
		}
		if len(userCtx.Cuisines) > 0 {
			fmt.Fprintf(&b, "Mutfak tercihi: %s\n", strings.Join(userCtx.Cuisines, ", "))
		}
		if len(userCtx.AvailableIngredients) > 0 {
			fmt.Fprintf(&b, "Eldeki malzemeler: %s\n", strings.Join(userCtx.AvailableIngredients, ", "))
		}
		b.WriteString("\n")
	}

	b.WriteString("Önerebileceğin tarifler:\n")
	for i, recipe := range recipes {
		b.WriteString(FormatRecipeContext(i+1, recipe))
	}
	return b.String()
}

// FormatFallback renders the deterministic fallback answer from recipe titles.
func FormatFallback(recipes []*domain.Recipe) string {
	titles := make([]string, len(recipes))
	for i, recipe := range recipes {
		titles[i] = recipe.Title
	}
	return fmt.Sprintf(FallbackTemplate, strings.Join(titles, ", "))
}

// truncate bounds s to max bytes on a rune boundary, appending an ellipsis
// when cut.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	runes := []rune(s)
	out := make([]rune, 0, max)
	length := 0
	for _, r := range runes {
		length += len(string(r))
		if length > max {
			break
		}
		out = append(out, r)
	}
	return string(out) + "..."
}
