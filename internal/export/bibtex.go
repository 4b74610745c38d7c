package export

import (
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/matsen/doifind/internal/author"
	"github.com/matsen/doifind/internal/doi"
	"github.com/matsen/doifind/internal/reference"
)

// ToBibTeX converts a result to a BibTeX entry with the given citation key.
func ToBibTeX(res reference.Result, key string) string {
	rec := res.Record
	entryType := determineEntryType(rec.Venue)
	var b strings.Builder

	b.WriteString(fmt.Sprintf("@%s{%s,\n", entryType, key))

	// Authors
	if len(rec.Authors) > 0 {
		b.WriteString(fmt.Sprintf("  author = {%s},\n", formatAuthors(rec.Authors)))
	}

	// Title
	b.WriteString(fmt.Sprintf("  title = {%s},\n", escapeLatex(rec.Title)))

	// Venue
	if rec.Venue != "" {
		fieldName := "journal"
		if entryType == "inproceedings" {
			fieldName = "booktitle"
		}
		b.WriteString(fmt.Sprintf("  %s = {%s},\n", fieldName, escapeLatex(rec.Venue)))
	}

	// Year (optional)
	if rec.HasYear() {
		b.WriteString(fmt.Sprintf("  year = {%d},\n", rec.Year))
	}

	// DOI (only for confident matches)
	if res.Match.Status == reference.Matched && res.Match.DOI != "" {
		b.WriteString(fmt.Sprintf("  doi = {%s},\n", res.Match.DOI))
		b.WriteString(fmt.Sprintf("  url = {%s},\n", doi.URL(res.Match.DOI)))
	}

	// Additional info (optional)
	if rec.Extra != "" {
		b.WriteString(fmt.Sprintf("  note = {%s},\n", escapeLatex(rec.Extra)))
	}

	b.WriteString("}\n")

	return b.String()
}

// WriteBibTeX writes one entry per result that has a title. Citation keys
// are unique within the output.
func WriteBibTeX(w io.Writer, results []reference.Result) error {
	keys := newKeySet(nil)
	first := true
	for _, res := range results {
		if res.Record.Title == "" {
			continue
		}
		if !first {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		first = false
		if _, err := io.WriteString(w, ToBibTeX(res, keys.unique(CiteKey(res.Record)))); err != nil {
			return fmt.Errorf("writing BibTeX entry: %w", err)
		}
	}
	return nil
}

// CiteKey generates a citation key from record metadata.
// Format: LastName + Year + suffix (e.g., "Smith2019-dl").
func CiteKey(rec reference.Record) string {
	lastName := ""
	if len(rec.Authors) > 0 {
		lastName = sanitizeForCiteKey(author.Fold(author.Surname(rec.Authors[0])))
	}
	if lastName == "" {
		lastName = "Unknown"
	} else {
		lastName = strings.ToUpper(lastName[:1]) + lastName[1:]
	}

	year := "nd"
	if rec.HasYear() {
		year = fmt.Sprintf("%d", rec.Year)
	}

	return fmt.Sprintf("%s%s-%s", lastName, year, titleSuffix(rec.Title))
}

// keySet hands out citation keys that do not collide with existing ones.
type keySet map[string]bool

func newKeySet(existing map[string]bool) keySet {
	ks := keySet{}
	for k := range existing {
		ks[k] = true
	}
	return ks
}

// unique returns key, or key with a letter appended if taken, and reserves it.
func (ks keySet) unique(key string) string {
	candidate := key
	for i := 0; ks[candidate]; i++ {
		candidate = fmt.Sprintf("%s%c", key, 'a'+rune(i%26))
		if i >= 26 {
			candidate = fmt.Sprintf("%s%d", key, i)
		}
	}
	ks[candidate] = true
	return candidate
}

// determineEntryType returns the BibTeX entry type for a venue.
func determineEntryType(venue string) string {
	venue = strings.ToLower(venue)

	// Conference proceedings
	if strings.Contains(venue, "proceedings") ||
		strings.Contains(venue, "proc.") ||
		strings.Contains(venue, "conference") ||
		strings.Contains(venue, "workshop") ||
		strings.Contains(venue, "symposium") {
		return "inproceedings"
	}

	// Default to article
	return "article"
}

// formatAuthors formats authors in BibTeX style: "Last, First and Last, First"
func formatAuthors(authors []string) string {
	var formatted []string
	for _, a := range authors {
		n := author.ParseName(a)
		last := n.Last
		if n.Suffix != "" {
			last += " " + n.Suffix
		}
		if n.First != "" {
			formatted = append(formatted, fmt.Sprintf("%s, %s", escapeLatex(last), escapeLatex(n.First)))
		} else {
			formatted = append(formatted, escapeLatex(last))
		}
	}
	return strings.Join(formatted, " and ")
}

// sanitizeForCiteKey removes non-alphanumeric characters.
func sanitizeForCiteKey(s string) string {
	var result strings.Builder
	for _, r := range s {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// titleSuffix creates a 2-letter suffix from the first significant title words.
func titleSuffix(title string) string {
	words := strings.Fields(sanitizeTitle(title))
	stopWords := map[string]bool{"a": true, "an": true, "the": true, "of": true, "and": true, "in": true, "on": true, "for": true, "to": true, "with": true}

	var suffix strings.Builder
	for _, word := range words {
		if !stopWords[word] {
			suffix.WriteByte(word[0])
			if suffix.Len() >= 2 {
				break
			}
		}
	}

	// Pad if needed
	for suffix.Len() < 2 {
		suffix.WriteByte('x')
	}

	return suffix.String()
}

// sanitizeTitle folds a title to lower-case ASCII words.
func sanitizeTitle(title string) string {
	return strings.Map(func(r rune) rune {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			return r
		}
		return ' '
	}, author.Fold(title))
}

// escapeLatex escapes special LaTeX characters.
func escapeLatex(s string) string {
	// Order matters: & must be first (before other escapes that might produce &)
	replacer := strings.NewReplacer(
		"&", `\&`,
		"%", `\%`,
		"$", `\$`,
		"#", `\#`,
		"_", `\_`,
		"{", `\{`,
		"}", `\}`,
		"~", `\textasciitilde{}`,
		"^", `\textasciicircum{}`,
	)
	return replacer.Replace(s)
}
