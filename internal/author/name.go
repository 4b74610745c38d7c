// Package author provides author name parsing and surname comparison for
// citation matching.
package author

import (
	"regexp"
	"strings"
)

// Name is a parsed author name.
type Name struct {
	First  string // Given name(s) or initials (may be empty)
	Last   string // Family name, including particles such as "van der"
	Suffix string // Jr, III, ... (kept out of Last so surnames compare cleanly)
}

// Common name suffixes that never count as a surname.
var nameSuffixes = map[string]bool{
	"jr":   true,
	"jr.":  true,
	"sr":   true,
	"sr.":  true,
	"ii":   true,
	"iii":  true,
	"iv":   true,
	"phd":  true,
	"ph.d": true,
	"md":   true,
	"m.d":  true,
}

// Lower-case particles that belong to the family name.
var surnameParticles = map[string]bool{
	"van": true, "von": true, "der": true, "den": true, "de": true,
	"del": true, "della": true, "da": true, "di": true, "dos": true,
	"du": true, "la": true, "le": true, "ter": true, "ten": true,
}

// initialsPattern matches initials-only tokens: "J.", "J. R.", "JR", "J.-P.".
var initialsPattern = regexp.MustCompile(`^(?:\p{Lu}\.?(?:\s*-\s*|\s+)?){1,4}$`)

// IsInitials reports whether s consists only of initials.
func IsInitials(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	// "JR" is also a suffix; a bare two-letter upper-case token is read as initials.
	return initialsPattern.MatchString(s)
}

// ParseName parses an author string into a structured Name.
//
// Supported formats:
//   - "Smith"           → last="Smith"
//   - "John Smith"      → first="John", last="Smith"
//   - "Smith, J."       → first="J.", last="Smith" (comma = Last, First)
//   - "Smith JR"        → first="JR", last="Smith" (trailing initials)
//   - "Jan van der Berg" → first="Jan", last="van der Berg"
//   - "Martin Luther King Jr." → first="Martin Luther", last="King", suffix="Jr."
func ParseName(input string) Name {
	input = strings.Trim(strings.TrimSpace(input), ",;")
	if input == "" {
		return Name{}
	}

	// Comma format: "Last, First"
	if idx := strings.Index(input, ","); idx > 0 {
		last := strings.TrimSpace(input[:idx])
		first := strings.TrimSpace(input[idx+1:])
		if nameSuffixes[strings.ToLower(first)] {
			return splitSpaced(last, first)
		}
		return Name{First: first, Last: last}
	}

	return splitSpaced(input, "")
}

func splitSpaced(input, suffix string) Name {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return Name{Suffix: suffix}
	}

	if len(parts) >= 2 && isTrailingSuffix(parts[len(parts)-1]) {
		suffix = parts[len(parts)-1]
		parts = parts[:len(parts)-1]
	}
	if len(parts) == 1 {
		return Name{Last: parts[0], Suffix: suffix}
	}

	// "Smith J R" / "Smith JR": initials trail the surname
	if !IsInitials(parts[0]) {
		for i := 1; i < len(parts); i++ {
			if IsInitials(strings.Join(parts[i:], " ")) {
				return Name{
					First:  strings.Join(parts[i:], " "),
					Last:   strings.Join(parts[:i], " "),
					Suffix: suffix,
				}
			}
		}
	}

	// Standard split: last word is the surname, pulling in lower-case particles
	start := len(parts) - 1
	for start > 1 && surnameParticles[parts[start-1]] {
		start--
	}
	return Name{
		First:  strings.Join(parts[:start], " "),
		Last:   strings.Join(parts[start:], " "),
		Suffix: suffix,
	}
}

// Roman-numeral suffixes, which are never read as initials.
var romanSuffixes = map[string]bool{"ii": true, "iii": true, "iv": true}

// isTrailingSuffix reports whether the last word of a spaced name is a
// suffix. An undotted all-caps "JR", "SR" or "MD" is read as initials.
func isTrailingSuffix(word string) bool {
	lower := strings.ToLower(word)
	if !nameSuffixes[lower] {
		return false
	}
	if romanSuffixes[lower] {
		return true
	}
	return word != strings.ToUpper(word) || strings.Contains(word, ".")
}

// Surname returns the family name of an author string.
func Surname(name string) string {
	return ParseName(name).Last
}

// Surnames returns the family names of a list of author strings, skipping
// entries without one.
func Surnames(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if last := Surname(n); last != "" {
			out = append(out, last)
		}
	}
	return out
}

// SameSurname reports whether two surnames refer to the same family name.
//
// Comparison is case- and diacritic-insensitive and ignores punctuation.
// "van der Waals" matches "Waals" because the final word agrees, which keeps
// sources that drop particles comparable.
func SameSurname(a, b string) bool {
	ka, kb := Key(a), Key(b)
	if ka == "" || kb == "" {
		return false
	}
	if ka == kb {
		return true
	}
	return lastWord(ka) == lastWord(kb)
}

// MatchesAny checks if surname matches any of the given surnames.
func MatchesAny(surname string, surnames []string) bool {
	for _, s := range surnames {
		if SameSurname(surname, s) {
			return true
		}
	}
	return false
}

func lastWord(s string) string {
	if idx := strings.LastIndexByte(s, ' '); idx >= 0 {
		return s[idx+1:]
	}
	return s
}
