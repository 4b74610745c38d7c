// Package batch sequences parsing output through search and matching for a
// list of records, with bounded concurrency, retries, and cancellation.
package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/matsen/doifind/internal/doi"
	"github.com/matsen/doifind/internal/logging"
	"github.com/matsen/doifind/internal/match"
	"github.com/matsen/doifind/internal/query"
	"github.com/matsen/doifind/internal/reference"
	"github.com/matsen/doifind/internal/retry"
	"github.com/matsen/doifind/internal/search"
)

// ErrInvalidConfig is returned by New for unusable configuration.
var ErrInvalidConfig = errors.New("invalid batch config")

// Config controls how a batch is processed.
type Config struct {
	Concurrency int
	CallTimeout time.Duration
	Rows        int
	Retry       retry.Policy
	Match       match.Config
}

// DefaultConfig returns four workers, a 30s call timeout and the default
// retry policy and match thresholds.
func DefaultConfig() Config {
	return Config{
		Concurrency: 4,
		CallTimeout: 30 * time.Second,
		Rows:        query.DefaultRows,
		Retry:       retry.DefaultPolicy(),
		Match:       match.DefaultConfig(),
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.Concurrency < 1 {
		return fmt.Errorf("%w: concurrency must be at least 1, got %d", ErrInvalidConfig, c.Concurrency)
	}
	if c.CallTimeout <= 0 {
		return fmt.Errorf("%w: call timeout must be positive, got %v", ErrInvalidConfig, c.CallTimeout)
	}
	if c.Rows < 1 {
		return fmt.Errorf("%w: rows must be at least 1, got %d", ErrInvalidConfig, c.Rows)
	}
	if err := c.Retry.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := c.Match.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// Coordinator runs records through search and matching.
type Coordinator struct {
	cfg      Config
	searcher search.Searcher
	matcher  *match.Matcher
	runner   *retry.Runner
	progress func(done, total int)
	onResult func(index int, res reference.Result)
	logger   *slog.Logger
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithProgress registers a callback invoked after each record completes.
// Calls are serialized and done increases by one each time.
func WithProgress(fn func(done, total int)) Option {
	return func(c *Coordinator) {
		c.progress = fn
	}
}

// WithResult registers a callback invoked with each finished result and its
// input index. Calls are serialized.
func WithResult(fn func(index int, res reference.Result)) Option {
	return func(c *Coordinator) {
		c.onResult = fn
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Coordinator) {
		c.logger = l
	}
}

// New creates a Coordinator. Configuration errors are returned before any
// record is touched.
func New(cfg Config, s search.Searcher, opts ...Option) (*Coordinator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if s == nil {
		return nil, fmt.Errorf("%w: no searcher", ErrInvalidConfig)
	}
	c := &Coordinator{
		cfg:      cfg,
		searcher: s,
		matcher:  match.New(cfg.Match),
		runner:   retry.NewRunner(cfg.Retry, search.IsTransient),
		logger:   logging.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Process returns one result per record, in input order.
//
// Once ctx is done no new record is started and the remaining records are
// reported as search_failed with reason "cancelled". A search call already
// in flight is allowed to finish, bounded by the call timeout.
func (c *Coordinator) Process(ctx context.Context, records []reference.Record) []reference.Result {
	results := make([]reference.Result, len(records))
	total := len(records)

	var mu sync.Mutex
	done := 0
	finish := func(i int, res reference.Result) {
		results[i] = res
		mu.Lock()
		defer mu.Unlock()
		done++
		if c.onResult != nil {
			c.onResult(i, res)
		}
		if c.progress != nil {
			c.progress(done, total)
		}
	}

	start := time.Now()
	c.logger.Info("batch started", "records", total, "concurrency", c.cfg.Concurrency)

	p := pool.New().WithMaxGoroutines(c.cfg.Concurrency)
	for i, rec := range records {
		if ctx.Err() != nil {
			finish(i, cancelled(rec, 0))
			continue
		}
		p.Go(func() {
			if ctx.Err() != nil {
				finish(i, cancelled(rec, 0))
				return
			}
			finish(i, c.processOne(ctx, i, rec))
		})
	}
	p.Wait()

	s := Summarize(results)
	c.logger.Info("batch finished",
		"records", s.Total,
		"matched", s.Matched,
		"no_match", s.NoMatch,
		"failed", s.Failed,
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	return results
}

// Lookup runs a single record through search and matching.
func (c *Coordinator) Lookup(ctx context.Context, rec reference.Record) reference.Result {
	return c.processOne(ctx, 0, rec)
}

func (c *Coordinator) processOne(ctx context.Context, index int, rec reference.Record) reference.Result {
	if !rec.Searchable() {
		return withMatch(rec, reference.NoMatch(0, reference.ReasonParseFailed))
	}
	if cited := doi.Find(rec.Raw); cited != "" {
		c.logger.Debug("doi cited in record", "index", index, "doi", cited)
		return withMatch(rec, reference.MatchResult{
			DOI:       doi.Normalize(cited),
			Score:     1,
			Status:    reference.Matched,
			Candidate: -1,
			Reason:    reference.ReasonCitedDOI,
		})
	}
	params, err := query.Build(rec)
	if err != nil {
		return withMatch(rec, reference.NoMatch(0, reference.ReasonParseFailed))
	}
	params.Rows = c.cfg.Rows

	var cands []reference.Candidate
	out := c.runner.Do(ctx, func(attempt int) error {
		// Detached from cancellation so a response already on the wire is kept.
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.cfg.CallTimeout)
		defer cancel()

		got, err := c.searcher.Search(callCtx, params)
		if err != nil {
			c.logger.Debug("search attempt failed",
				"index", index,
				"attempt", attempt,
				"transient", search.IsTransient(err),
				"error", err,
			)
			return err
		}
		cands = got
		return nil
	})

	switch out.State {
	case retry.Succeeded:
		m := c.matcher.Match(rec, cands)
		m.Attempts = out.Attempts
		c.logger.Debug("record matched",
			"index", index,
			"status", m.Status,
			"score", m.Score,
			"candidates", len(cands),
		)
		return withMatch(rec, m)
	case retry.Exhausted:
		c.logger.Warn("retries exhausted", "index", index, "attempts", out.Attempts, "error", out.Err)
		return withMatch(rec, reference.Failed(fmt.Sprintf("retries exhausted: %v", out.Err), out.Attempts))
	default:
		if ctx.Err() != nil && errors.Is(out.Err, ctx.Err()) {
			return cancelled(rec, out.Attempts)
		}
		c.logger.Warn("search failed", "index", index, "error", out.Err)
		return withMatch(rec, reference.Failed(out.Err.Error(), out.Attempts))
	}
}

func cancelled(rec reference.Record, attempts int) reference.Result {
	return withMatch(rec, reference.Failed(reference.ReasonCancelled, attempts))
}

func withMatch(rec reference.Record, m reference.MatchResult) reference.Result {
	rec.Match = &m
	return reference.Result{Record: rec, Match: m}
}
