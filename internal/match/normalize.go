package match

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// normalizeTitle decomposes s (NFKD), drops combining marks, lower-cases,
// maps every rune that is not a letter or digit to a space, and collapses
// whitespace.
func normalizeTitle(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
	decomposed, _, err := transform.String(t, s)
	if err != nil {
		decomposed = s
	}
	mapped := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}, decomposed)
	return strings.Join(strings.Fields(mapped), " ")
}

// tokenSet returns the set of normalized tokens in a title.
func tokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range strings.Fields(normalizeTitle(s)) {
		set[tok] = struct{}{}
	}
	return set
}

// TitleScore is the Dice coefficient 2|A∩B| / (|A|+|B|) over the normalized
// token sets of two titles. Two empty titles score 0.
func TitleScore(a, b string) float64 {
	sa, sb := tokenSet(a), tokenSet(b)
	if len(sa)+len(sb) == 0 {
		return 0
	}
	common := 0
	for tok := range sa {
		if _, ok := sb[tok]; ok {
			common++
		}
	}
	return 2 * float64(common) / float64(len(sa)+len(sb))
}
