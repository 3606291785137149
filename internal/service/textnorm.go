package service

import (
	"strings"
	"unicode"
)

// turkishFold maps Turkish-specific letterforms to their base Latin letters.
// Uppercase dotted İ and dotless I both fold to "i" so that queries typed
// with either keyboard layout compare equal.
var turkishFold = map[rune]rune{
	'ç': 'c', 'Ç': 'c',
	'ğ': 'g', 'Ğ': 'g',
	'ı': 'i', 'I': 'i',
	'i': 'i', 'İ': 'i',
	'ö': 'o', 'Ö': 'o',
	'ş': 's', 'Ş': 's',
	'ü': 'u', 'Ü': 'u',
}

// Normalize lowercases text and folds Turkish letterforms to base Latin
// letters, collapsing runs of whitespace. It is used only for comparison and
// never alters stored or displayed data.
// Parameters:
//   - text: raw input text.
// Returns:
//   - string: normalized comparison form.
func Normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if folded, ok := turkishFold[r]; ok {
			b.WriteRune(folded)
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
