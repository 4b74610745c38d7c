// Package export writes batch results as CSV, JSONL, BibTeX or Parquet.
package export

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/matsen/doifind/internal/doi"
	"github.com/matsen/doifind/internal/reference"
	"github.com/matsen/doifind/internal/storage"
)

// Format is an export format.
type Format string

const (
	FormatCSV     Format = "csv"
	FormatJSONL   Format = "jsonl"
	FormatBibTeX  Format = "bibtex"
	FormatParquet Format = "parquet"
)

// Formats lists the supported formats.
var Formats = []Format{FormatCSV, FormatJSONL, FormatBibTeX, FormatParquet}

// ParseFormat parses a format name.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return FormatCSV, nil
	case "jsonl", "json":
		return FormatJSONL, nil
	case "bibtex", "bib":
		return FormatBibTeX, nil
	case "parquet":
		return FormatParquet, nil
	}
	return "", fmt.Errorf("unknown export format %q (want csv, jsonl, bibtex or parquet)", s)
}

// FormatForPath infers a format from a file extension, defaulting to CSV.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jsonl", ".json":
		return FormatJSONL
	case ".bib":
		return FormatBibTeX
	case ".parquet":
		return FormatParquet
	default:
		return FormatCSV
	}
}

// Write writes results to w in the given format.
func Write(w io.Writer, format Format, results []reference.Result) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, results)
	case FormatJSONL:
		return storage.EncodeResults(w, results)
	case FormatBibTeX:
		return WriteBibTeX(w, results)
	case FormatParquet:
		return WriteParquet(w, results)
	}
	return fmt.Errorf("unknown export format %q", format)
}

// Row is the flat, tabular form of a result.
type Row struct {
	Year        int64   `parquet:"year"`
	Authors     string  `parquet:"authors"`
	Title       string  `parquet:"title"`
	DOI         string  `parquet:"doi"`
	DOIURL      string  `parquet:"doi_url"`
	Venue       string  `parquet:"venue"`
	Extra       string  `parquet:"additional_info"`
	Status      string  `parquet:"status"`
	Score       float64 `parquet:"score"`
	ParseStatus string  `parquet:"parse_status"`
	Reason      string  `parquet:"reason"`
	Raw         string  `parquet:"raw"`
}

// authorSeparator joins author names in a single tabular cell.
const authorSeparator = "; "

// NewRow flattens a result.
func NewRow(res reference.Result) Row {
	return Row{
		Year:        int64(res.Record.Year),
		Authors:     strings.Join(res.Record.Authors, authorSeparator),
		Title:       res.Record.Title,
		DOI:         res.Match.DOI,
		DOIURL:      doi.URL(res.Match.DOI),
		Venue:       res.Record.Venue,
		Extra:       res.Record.Extra,
		Status:      string(res.Match.Status),
		Score:       res.Match.Score,
		ParseStatus: string(res.Record.Status),
		Reason:      res.Match.Reason,
		Raw:         res.Record.Raw,
	}
}

// Rows flattens results, preserving order.
func Rows(results []reference.Result) []Row {
	rows := make([]Row, len(results))
	for i, res := range results {
		rows[i] = NewRow(res)
	}
	return rows
}

// Result rebuilds a result from a row. Per-field scores, attempts and the
// candidate index are not part of a row and come back zero.
func (r Row) Result() reference.Result {
	authors := []string{}
	if r.Authors != "" {
		authors = strings.Split(r.Authors, authorSeparator)
	}
	m := reference.MatchResult{
		DOI:       r.DOI,
		Score:     r.Score,
		Status:    reference.MatchStatus(r.Status),
		Candidate: -1,
		Reason:    r.Reason,
	}
	rec := reference.Record{
		Raw:     r.Raw,
		Year:    int(r.Year),
		Authors: authors,
		Title:   r.Title,
		Venue:   r.Venue,
		Extra:   r.Extra,
		Status:  reference.ParseStatus(r.ParseStatus),
		Match:   &m,
	}
	return reference.Result{Record: rec, Match: m}
}
