package crossref

import (
	"strings"

	"github.com/matsen/doifind/internal/doi"
	"github.com/matsen/doifind/internal/reference"
)

// MapWork converts a Crossref work to a search candidate.
func MapWork(w Work) reference.Candidate {
	c := reference.Candidate{
		DOI:     doi.Normalize(w.DOI),
		Title:   first(w.Title),
		Authors: mapAuthors(w.Author),
		Venue:   first(w.ContainerTitle),
		Source:  SourceName,
	}

	// Print date first; issued is the earliest known date and may be online-first.
	c.Year = w.PublishedPrint.Year()
	if c.Year == 0 {
		c.Year = w.Issued.Year()
	}
	return c
}

// mapAuthors renders authors as "Family, Given".
func mapAuthors(authors []Author) []string {
	out := make([]string, 0, len(authors))
	for _, a := range authors {
		given := strings.TrimSpace(a.Given)
		family := strings.TrimSpace(a.Family)
		switch {
		case family != "" && given != "":
			out = append(out, family+", "+given)
		case family != "":
			out = append(out, family)
		case strings.TrimSpace(a.Name) != "":
			out = append(out, strings.TrimSpace(a.Name))
		}
	}
	return out
}

func first(values []string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
