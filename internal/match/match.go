// Package match decides whether any search candidate is the same work as a
// parsed citation record. Acceptance is strict: a candidate must clear every
// threshold or the record is left without a DOI.
package match

import (
	"errors"
	"fmt"
	"math"

	"github.com/matsen/doifind/internal/author"
	"github.com/matsen/doifind/internal/doi"
	"github.com/matsen/doifind/internal/reference"
)

// ErrInvalidConfig is returned by Config.Validate.
var ErrInvalidConfig = errors.New("invalid match config")

const tieEpsilon = 1e-9

// Config holds the scoring weights and acceptance thresholds.
type Config struct {
	TitleWeight  float64 `yaml:"title_weight"`
	AuthorWeight float64 `yaml:"author_weight"`
	YearWeight   float64 `yaml:"year_weight"`
	MinTitle     float64 `yaml:"min_title"`
	MinYear      float64 `yaml:"min_year"`
}

// DefaultConfig returns the standard weights and strict thresholds.
func DefaultConfig() Config {
	return Config{
		TitleWeight:  0.60,
		AuthorWeight: 0.25,
		YearWeight:   0.15,
		MinTitle:     0.85,
		MinYear:      0.5,
	}
}

// Validate checks that weights are non-negative and sum to 1 and that
// thresholds lie in [0,1].
func (c Config) Validate() error {
	for name, w := range map[string]float64{
		"title_weight":  c.TitleWeight,
		"author_weight": c.AuthorWeight,
		"year_weight":   c.YearWeight,
		"min_title":     c.MinTitle,
		"min_year":      c.MinYear,
	} {
		if w < 0 || w > 1 || math.IsNaN(w) {
			return fmt.Errorf("%w: %s must be in [0,1], got %v", ErrInvalidConfig, name, w)
		}
	}
	if sum := c.TitleWeight + c.AuthorWeight + c.YearWeight; math.Abs(sum-1) > 1e-6 {
		return fmt.Errorf("%w: weights must sum to 1, got %v", ErrInvalidConfig, sum)
	}
	return nil
}

// Scores are the component and total scores of one candidate.
type Scores struct {
	Title  float64
	Author float64
	Year   float64
	Total  float64
}

// Matcher scores candidates against records. It is safe for concurrent use.
type Matcher struct {
	cfg Config
}

// New creates a Matcher.
func New(cfg Config) *Matcher {
	return &Matcher{cfg: cfg}
}

// Score computes the component scores of a candidate for a record.
func (m *Matcher) Score(rec reference.Record, cand reference.Candidate) Scores {
	s := Scores{
		Title:  TitleScore(rec.Title, cand.Title),
		Author: AuthorScore(rec.Authors, cand.Authors),
		Year:   YearScore(rec.Year, cand.Year),
	}
	s.Total = m.cfg.TitleWeight*s.Title + m.cfg.AuthorWeight*s.Author + m.cfg.YearWeight*s.Year
	s.Total = math.Min(1, math.Max(0, s.Total))
	return s
}

// Accepts reports whether a scored candidate clears every threshold.
func (m *Matcher) Accepts(rec reference.Record, cand reference.Candidate, s Scores) bool {
	if s.Title < m.cfg.MinTitle || s.Year < m.cfg.MinYear {
		return false
	}
	if len(rec.Authors) > 0 && s.Author <= 0 {
		return false
	}
	return doi.IsValid(doi.Normalize(cand.DOI))
}

// Match selects the accepted candidate with the highest total score.
// Ties go to the exact-year candidate, then the higher author score, then
// the earlier candidate. Without a winner the best score seen is recorded.
func (m *Matcher) Match(rec reference.Record, cands []reference.Candidate) reference.MatchResult {
	if len(cands) == 0 {
		return reference.NoMatch(0, reference.ReasonNoCandidate)
	}

	winner, best := -1, -1
	var winnerScores, bestScores Scores
	for i, cand := range cands {
		s := m.Score(rec, cand)
		if best < 0 || s.Total > bestScores.Total+tieEpsilon {
			best, bestScores = i, s
		}
		if !m.Accepts(rec, cand, s) {
			continue
		}
		if winner < 0 || beats(s, winnerScores) {
			winner, winnerScores = i, s
		}
	}

	if winner < 0 {
		res := reference.NoMatch(bestScores.Total, reference.ReasonBelowStrict)
		res.TitleScore = bestScores.Title
		res.AuthorScore = bestScores.Author
		res.YearScore = bestScores.Year
		return res
	}

	return reference.MatchResult{
		DOI:         doi.Normalize(cands[winner].DOI),
		Score:       winnerScores.Total,
		Status:      reference.Matched,
		TitleScore:  winnerScores.Title,
		AuthorScore: winnerScores.Author,
		YearScore:   winnerScores.Year,
		Candidate:   winner,
	}
}

// beats reports whether a outranks the current winner b.
func beats(a, b Scores) bool {
	if math.Abs(a.Total-b.Total) > tieEpsilon {
		return a.Total > b.Total
	}
	if (a.Year == 1) != (b.Year == 1) {
		return a.Year == 1
	}
	if math.Abs(a.Author-b.Author) > tieEpsilon {
		return a.Author > b.Author
	}
	return false
}

// AuthorScore is the fraction of record surnames found among the candidate's
// surnames. A record without authors scores 0.
func AuthorScore(recAuthors, candAuthors []string) float64 {
	recSurnames := author.Surnames(recAuthors)
	if len(recSurnames) == 0 {
		return 0
	}
	candSurnames := author.Surnames(candAuthors)
	found := 0
	for _, s := range recSurnames {
		if author.MatchesAny(s, candSurnames) {
			found++
		}
	}
	return float64(found) / float64(len(recSurnames))
}

// YearScore is 1 for equal years, 0.5 when one year apart, else 0.
// A missing year on either side scores 0.
func YearScore(recYear, candYear int) float64 {
	if recYear <= 0 || candYear <= 0 {
		return 0
	}
	switch d := recYear - candYear; {
	case d == 0:
		return 1
	case d == 1 || d == -1:
		return 0.5
	default:
		return 0
	}
}
