package author

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold lower-cases s and strips diacritics ("Müller" → "muller").
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(folded)
}

// Key folds s and reduces it to space-separated letter/digit runs, so that
// "O'Brien", "O Brien" and "o’brien" compare equal only where intended:
// apostrophes and hyphens join, other punctuation separates.
func Key(s string) string {
	s = Fold(s)
	var b strings.Builder
	space := false
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
		case r == '\'' || r == '’' || r == '-':
			// joins: O'Brien → obrien, Smith-Jones → smithjones
		default:
			space = true
		}
	}
	return b.String()
}
