// Package reference defines the core domain types for DOI lookup: parsed
// citation records, search candidates and match outcomes.
package reference

// ParseStatus describes how much structure the parser recovered from a line.
type ParseStatus string

const (
	// ParseComplete means year, authors and a quoted title were all recovered.
	ParseComplete ParseStatus = "complete"
	// ParsePartial means a title was recovered but other fields are missing,
	// or the title came from the unquoted fallback. Searchable.
	ParsePartial ParseStatus = "partial"
	// ParseFailed means no usable title was recovered.
	ParseFailed ParseStatus = "failed"
)

// Record is a publication parsed from one citation line.
// Records are not modified after parsing except for the attached Match.
type Record struct {
	Raw     string       `json:"raw"`             // Original input, verbatim
	Year    int          `json:"year,omitempty"`  // 4-digit year, 0 if absent
	Authors []string     `json:"authors"`         // Author names in input order
	Title   string       `json:"title"`           // Empty only when Status is failed
	Venue   string       `json:"venue,omitempty"` // Journal, conference, ...
	Extra   string       `json:"extra,omitempty"` // Trailing uninterpreted text
	Status  ParseStatus  `json:"parse_status"`    // complete, partial, failed
	Match   *MatchResult `json:"match,omitempty"` // Attached by the batch coordinator
}

// HasYear reports whether a publication year was recovered.
func (r Record) HasYear() bool {
	return r.Year > 0
}

// Searchable reports whether the record carries enough to build a query.
func (r Record) Searchable() bool {
	return r.Status != ParseFailed && r.Title != ""
}

// Candidate is a publication returned by a metadata search source as a
// possible match. Search clients build these from typed responses only.
type Candidate struct {
	DOI     string   `json:"doi"`
	Title   string   `json:"title"`
	Authors []string `json:"authors,omitempty"`
	Year    int      `json:"year,omitempty"` // 0 if absent
	Venue   string   `json:"venue,omitempty"`
	Source  string   `json:"source,omitempty"` // crossref, s2
}

// Result pairs an input record with its match outcome. It is the row handed
// to exporters.
type Result struct {
	Record Record      `json:"record"`
	Match  MatchResult `json:"match"`
}
