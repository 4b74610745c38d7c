package s2

import (
	"strings"

	"github.com/matsen/doifind/internal/doi"
	"github.com/matsen/doifind/internal/reference"
)

// MapPaper converts an S2Paper to a search candidate. Papers without a DOI
// map to a candidate with an empty DOI, which matching never accepts.
func MapPaper(paper S2Paper) reference.Candidate {
	return reference.Candidate{
		DOI:     doi.Normalize(paper.ExternalIDs.DOI),
		Title:   strings.TrimSpace(paper.Title),
		Authors: mapAuthors(paper.Authors),
		Year:    paper.Year,
		Venue:   strings.TrimSpace(paper.Venue),
		Source:  SourceName,
	}
}

// mapAuthors returns author display names ("Given Family"), skipping blanks.
func mapAuthors(s2Authors []S2Author) []string {
	authors := make([]string, 0, len(s2Authors))
	for _, a := range s2Authors {
		if name := strings.TrimSpace(a.Name); name != "" {
			authors = append(authors, name)
		}
	}
	return authors
}
