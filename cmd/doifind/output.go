package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/matsen/doifind/internal/batch"
	"github.com/matsen/doifind/internal/doi"
	"github.com/matsen/doifind/internal/reference"
)

// Constants for output formatting.
const (
	TitleMaxLen    = 70 // Title truncation in result listings
	AuthorsMaxShow = 3  // Authors shown before "et al."
)

// outputJSON writes a value as formatted JSON.
func outputJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputHuman writes a human-readable string.
func outputHuman(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintf(w, format, args...)
}

// ErrorResponse is a JSON error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

// FindResponse is the JSON output of the find command.
type FindResponse struct {
	Record reference.Record      `json:"record"`
	Match  reference.MatchResult `json:"match"`
	DOIURL string                `json:"doi_url,omitempty"`
}

// BatchResponse is the JSON output of the batch command.
type BatchResponse struct {
	Input    string        `json:"input"`
	Output   string        `json:"output,omitempty"`
	Format   string        `json:"format,omitempty"`
	Appended int           `json:"appended,omitempty"`
	Summary  batch.Summary `json:"summary"`
	HitRate  float64       `json:"hit_rate"`
}

// printRecordHuman prints one parsed record.
func printRecordHuman(w io.Writer, i int, rec reference.Record) {
	outputHuman(w, "%d. [%s] %s\n", i+1, rec.Status, truncateString(orDash(rec.Title), TitleMaxLen))
	outputHuman(w, "   %s (%s)\n", orDash(formatAuthorsShort(rec.Authors, AuthorsMaxShow)), formatYear(rec.Year))
	if rec.Venue != "" {
		outputHuman(w, "   %s\n", rec.Venue)
	}
	if rec.Extra != "" {
		outputHuman(w, "   + %s\n", truncateString(rec.Extra, TitleMaxLen))
	}
}

// printResultHuman prints one record with its match outcome.
func printResultHuman(w io.Writer, i int, res reference.Result) {
	printRecordHuman(w, i, res.Record)
	m := res.Match
	switch m.Status {
	case reference.Matched:
		outputHuman(w, "   DOI: %s [%.2f]\n", doi.URL(m.DOI), m.Score)
	case reference.NoConfidentMatch:
		outputHuman(w, "   no confident match [%.2f] %s\n", m.Score, m.Reason)
	default:
		outputHuman(w, "   search failed: %s\n", m.Reason)
	}
	outputHuman(w, "\n")
}

// printSummaryHuman prints batch statistics.
func printSummaryHuman(w io.Writer, s batch.Summary) {
	outputHuman(w, "Processed %d publications\n", s.Total)
	outputHuman(w, "  DOIs found:         %d (%.1f%%)\n", s.Matched, 100*s.HitRate())
	outputHuman(w, "  No confident match: %d\n", s.NoMatch)
	outputHuman(w, "  Search failed:      %d", s.Failed)
	if s.Cancelled > 0 {
		outputHuman(w, " (%d cancelled)", s.Cancelled)
	}
	outputHuman(w, "\n")
	outputHuman(w, "  Parsed: %d complete, %d partial, %d failed\n", s.ParseComplete, s.ParsePartial, s.ParseFailed)
}

// truncateString truncates a string to maxLen runes, adding "..." if truncated.
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}

// formatAuthorsShort joins authors with "et al." for more than maxCount.
func formatAuthorsShort(authors []string, maxCount int) string {
	if len(authors) <= maxCount {
		return strings.Join(authors, ", ")
	}
	return strings.Join(authors[:maxCount], ", ") + ", et al."
}

func formatYear(year int) string {
	if year == 0 {
		return "n.d."
	}
	return fmt.Sprint(year)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
