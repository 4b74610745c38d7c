package batch

import "github.com/matsen/doifind/internal/reference"

// Summary aggregates the outcomes of a batch.
type Summary struct {
	Total     int `json:"total"`
	Matched   int `json:"matched"`
	NoMatch   int `json:"no_confident_match"`
	Failed    int `json:"search_failed"`
	Cancelled int `json:"cancelled"`

	ParseComplete int `json:"parse_complete"`
	ParsePartial  int `json:"parse_partial"`
	ParseFailed   int `json:"parse_failed"`
}

// Summarize counts match and parse outcomes.
func Summarize(results []reference.Result) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		switch r.Match.Status {
		case reference.Matched:
			s.Matched++
		case reference.NoConfidentMatch:
			s.NoMatch++
		case reference.SearchFailed:
			s.Failed++
			if r.Match.Reason == reference.ReasonCancelled {
				s.Cancelled++
			}
		}
		switch r.Record.Status {
		case reference.ParseComplete:
			s.ParseComplete++
		case reference.ParsePartial:
			s.ParsePartial++
		default:
			s.ParseFailed++
		}
	}
	return s
}

// HitRate is the fraction of records that received a DOI.
func (s Summary) HitRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Matched) / float64(s.Total)
}
