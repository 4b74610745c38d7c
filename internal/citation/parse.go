// Package citation parses free-text citation lines of the form
//
//	YEAR - Authors. "Title". Venue. Additional info
//
// into structured records. Parsing never fails: malformed lines produce a
// record with a failed or partial parse status, and the raw text is kept.
package citation

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/matsen/doifind/internal/author"
	"github.com/matsen/doifind/internal/reference"
)

// yearSeparator separates the leading year from the rest of the line.
const yearSeparator = " - "

var (
	yearPattern = regexp.MustCompile(`^[1-9]\d{3}$`)

	// conjunctionPattern matches "and"/"&" between author names.
	conjunctionPattern = regexp.MustCompile(`\s+and\s+|\s*&\s*`)

	// whitespacePattern collapses tabs, newlines and repeated spaces.
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// Parse parses a single citation line into a record.
func Parse(raw string) reference.Record {
	rec := reference.Record{
		Raw:     raw,
		Authors: []string{},
		Status:  reference.ParseFailed,
	}

	line := strings.TrimSpace(whitespacePattern.ReplaceAllString(raw, " "))
	remainder := line

	if idx := strings.Index(line, yearSeparator); idx >= 0 {
		left := strings.TrimSpace(line[:idx])
		if yearPattern.MatchString(left) {
			rec.Year, _ = strconv.Atoi(left)
			remainder = strings.TrimSpace(line[idx+len(yearSeparator):])
		}
	}

	if before, title, after, ok := quotedTitle(remainder); ok {
		rec.Title = title
		rec.Authors = splitAuthors(cleanAuthorSegment(before))
		rec.Venue, rec.Extra = splitTail(after)
		if rec.HasYear() && len(rec.Authors) > 0 {
			rec.Status = reference.ParseComplete
		} else {
			rec.Status = reference.ParsePartial
		}
		return rec
	}

	// No quoted title: authors up to the first sentence break, title up to the next.
	sentences := splitSentences(remainder, !startsWithInitial(remainder))
	if len(sentences) >= 2 && sentences[1] != "" {
		// The sentence break consumed the segment's final period.
		rec.Authors = splitAuthors(cleanAuthorSegment(sentences[0] + "."))
		rec.Title = trimTitle(sentences[1])
		if len(sentences) > 2 {
			rec.Venue = strings.TrimRight(sentences[2], ". ")
			rec.Extra = joinSegments(sentences[3:])
		}
		if rec.Title != "" {
			rec.Status = reference.ParsePartial
			return rec
		}
	}

	// Nothing usable as a title; keep the text so no input is lost.
	rec.Title = ""
	rec.Venue = ""
	if len(rec.Authors) == 0 {
		rec.Extra = remainder
	} else {
		rec.Extra = strings.TrimSpace(strings.TrimPrefix(remainder, sentences[0]))
		rec.Extra = strings.TrimLeft(rec.Extra, ". ")
	}
	rec.Status = reference.ParseFailed
	return rec
}

// ParseAll parses every line. The result has exactly one record per line.
func ParseAll(lines []string) []reference.Record {
	records := make([]reference.Record, len(lines))
	for i, line := range lines {
		records[i] = Parse(line)
	}
	return records
}

// quotedTitle locates the outermost paired quoted span. It returns the text
// before the opening quote, the title, and the text after the closing quote.
func quotedTitle(s string) (before, title, after string, ok bool) {
	open := strings.IndexAny(s, "\"“")
	if open < 0 {
		return "", "", "", false
	}
	openRune, openSize := utf8.DecodeRuneInString(s[open:])
	rest := s[open+openSize:]

	closers := "\"”"
	if openRune == '“' {
		closers = "”"
	}
	closeIdx := strings.LastIndexAny(rest, closers)
	if closeIdx < 0 {
		return "", "", "", false
	}
	_, closeSize := utf8.DecodeRuneInString(rest[closeIdx:])

	title = trimTitle(rest[:closeIdx])
	if title == "" {
		return "", "", "", false
	}
	return s[:open], title, rest[closeIdx+closeSize:], true
}

// trimTitle trims whitespace and trailing sentence punctuation from a title.
// Question and exclamation marks are part of the title and are kept.
func trimTitle(s string) string {
	return strings.TrimSpace(strings.TrimRight(strings.TrimSpace(s), ".,;:"))
}

// cleanAuthorSegment strips trailing punctuation from the author segment.
// A final period is kept only when it closes comma-form initials
// ("Doe, A."); "Doe A." becomes "Doe A".
func cleanAuthorSegment(s string) string {
	s = strings.TrimRight(s, " \t,;:")
	if strings.HasSuffix(s, ".") && !endsWithCommaInitials(s) {
		s = strings.TrimRight(s, ". ")
		s = strings.TrimRight(s, " \t,;:")
	}
	return s
}

// endsWithCommaInitials reports whether the text after the last comma is
// dotted initials, as in "Smith, J., Doe, A. B.".
func endsWithCommaInitials(s string) bool {
	idx := strings.LastIndexByte(s, ',')
	if idx < 0 {
		return false
	}
	tail := strings.TrimSpace(s[idx+1:])
	return strings.Contains(tail, ".") && author.IsInitials(tail)
}

// splitAuthors splits an author segment on commas and conjunctions, then
// re-attaches initials to the surname they follow ("Smith", "J." → "Smith, J.").
func splitAuthors(segment string) []string {
	authors := []string{}
	if strings.TrimSpace(segment) == "" {
		return authors
	}

	segment = conjunctionPattern.ReplaceAllString(segment, ",")

	merged := false
	for _, token := range strings.Split(segment, ",") {
		token = strings.TrimSpace(token)
		if token == "" || isEtAl(token) {
			continue
		}
		if author.IsInitials(token) && len(authors) > 0 && !merged && !author.IsInitials(authors[len(authors)-1]) {
			authors[len(authors)-1] += ", " + token
			merged = true
			continue
		}
		authors = append(authors, token)
		merged = false
	}
	return authors
}

func isEtAl(token string) bool {
	t := strings.ToLower(strings.TrimRight(token, ". "))
	return t == "et al" || t == "et. al" || t == "etal"
}

// splitTail splits the text after the title into venue and extra info.
func splitTail(s string) (venue, extra string) {
	s = strings.TrimLeft(s, " .,;:")
	if s == "" {
		return "", ""
	}
	segments := splitSentences(s, false)
	venue = strings.TrimRight(segments[0], ". ")
	return venue, joinSegments(segments[1:])
}

func joinSegments(segments []string) string {
	var parts []string
	for _, seg := range segments {
		if seg = strings.TrimRight(strings.TrimSpace(seg), ". "); seg != "" {
			parts = append(parts, seg)
		}
	}
	return strings.Join(parts, ". ")
}

func startsWithInitial(s string) bool {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return false
	}
	return isInitial(strings.TrimRight(fields[0], ".,"))
}

func lastWord(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.LastIndexAny(s, " ,"); idx >= 0 {
		return s[idx+1:]
	}
	return s
}
