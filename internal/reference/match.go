package reference

// MatchStatus is the outcome of matching a record against candidates.
type MatchStatus string

const (
	// Matched means one candidate cleared every acceptance threshold.
	Matched MatchStatus = "matched"
	// NoConfidentMatch means no candidate was accepted. This is a normal
	// outcome: many publications have no DOI.
	NoConfidentMatch MatchStatus = "no_confident_match"
	// SearchFailed means the lookup itself failed (exhausted retries,
	// permanent source error, or cancellation).
	SearchFailed MatchStatus = "search_failed"
)

// Reasons recorded alongside an outcome. Only ReasonCitedDOI accompanies a
// match.
const (
	ReasonCitedDOI    = "doi in citation"
	ReasonParseFailed = "parse failed"
	ReasonCancelled   = "cancelled"
	ReasonNoCandidate = "no candidates"
	ReasonBelowStrict = "no candidate met strict thresholds"
)

// MatchResult is the decision produced for one record.
//
// DOI is set if and only if Status is Matched. Score is always recorded, even
// on rejection, so thresholds can be audited.
type MatchResult struct {
	DOI         string      `json:"doi,omitempty"`
	Score       float64     `json:"score"`
	Status      MatchStatus `json:"status"`
	TitleScore  float64     `json:"title_score"`
	AuthorScore float64     `json:"author_score"`
	YearScore   float64     `json:"year_score"`
	Candidate   int         `json:"candidate"` // Index of scored candidate, -1 if none
	Attempts    int         `json:"attempts,omitempty"`
	Reason      string      `json:"reason,omitempty"`
}

// Valid reports whether the DOI/status invariant holds.
func (m MatchResult) Valid() bool {
	if m.Score < 0 || m.Score > 1 {
		return false
	}
	return (m.Status == Matched) == (m.DOI != "")
}

// NoMatch returns a NoConfidentMatch result with the given best-seen score.
func NoMatch(score float64, reason string) MatchResult {
	return MatchResult{Score: score, Status: NoConfidentMatch, Candidate: -1, Reason: reason}
}

// Failed returns a SearchFailed result.
func Failed(reason string, attempts int) MatchResult {
	return MatchResult{Status: SearchFailed, Candidate: -1, Attempts: attempts, Reason: reason}
}
