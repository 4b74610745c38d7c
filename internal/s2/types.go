// Package s2 implements search.Searcher against the Semantic Scholar
// Academic Graph API.
package s2

// S2Paper represents a paper from the Semantic Scholar API.
type S2Paper struct {
	PaperID     string      `json:"paperId"`
	ExternalIDs ExternalIDs `json:"externalIds,omitempty"`
	Title       string      `json:"title"`
	Authors     []S2Author  `json:"authors,omitempty"`
	Year        int         `json:"year,omitempty"`
	Venue       string      `json:"venue,omitempty"`
}

// ExternalIDs contains various external identifiers for a paper.
type ExternalIDs struct {
	DOI      string `json:"DOI,omitempty"`
	ArXiv    string `json:"ArXiv,omitempty"`
	PubMed   string `json:"PubMed,omitempty"`
	CorpusID int    `json:"CorpusId,omitempty"`
}

// S2Author represents an author from the Semantic Scholar API.
type S2Author struct {
	AuthorID string `json:"authorId,omitempty"`
	Name     string `json:"name"`
}

// SearchResponse is the response from the paper search endpoint.
type SearchResponse struct {
	Total  int       `json:"total"`
	Offset int       `json:"offset"`
	Next   int       `json:"next,omitempty"`
	Data   []S2Paper `json:"data"`
}

// ErrorResponse is the error body returned by the API.
type ErrorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}
