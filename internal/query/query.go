// Package query builds search parameters from parsed citation records.
package query

import (
	"errors"
	"strconv"
	"strings"

	"github.com/matsen/doifind/internal/author"
	"github.com/matsen/doifind/internal/reference"
)

// DefaultRows is the number of candidates requested per search.
const DefaultRows = 5

// ErrEmptyTitle is returned when a record has no title to search for.
var ErrEmptyTitle = errors.New("record has empty title")

// Params holds the search fields derived from a record.
// Venue and additional info are never part of a query.
type Params struct {
	Title  string
	Author string // first author surname, may be empty
	Year   int    // 0 when absent
	Rows   int
}

// Build derives search parameters from a record.
func Build(rec reference.Record) (Params, error) {
	return BuildFields(rec.Title, rec.Authors, rec.Year)
}

// BuildFields derives search parameters from individual fields.
func BuildFields(title string, authors []string, year int) (Params, error) {
	title = strings.Join(strings.Fields(title), " ")
	if title == "" {
		return Params{}, ErrEmptyTitle
	}

	p := Params{Title: title, Year: year, Rows: DefaultRows}
	if year < 0 {
		p.Year = 0
	}
	for _, a := range authors {
		if surname := author.Surname(a); surname != "" {
			p.Author = surname
			break
		}
	}
	return p, nil
}

// HasYear reports whether the year filter applies.
func (p Params) HasYear() bool {
	return p.Year > 0
}

// Key returns a canonical string identifying the query, stable across
// differences in case, diacritics and spacing.
func (p Params) Key() string {
	var b strings.Builder
	b.WriteString(strings.Join(strings.Fields(author.Fold(p.Title)), " "))
	b.WriteByte('|')
	b.WriteString(author.Fold(p.Author))
	b.WriteByte('|')
	b.WriteString(strconv.Itoa(p.Year))
	b.WriteByte('|')
	b.WriteString(strconv.Itoa(p.Rows))
	return b.String()
}
