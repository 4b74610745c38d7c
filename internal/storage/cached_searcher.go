package storage

import (
	"context"
	"log/slog"

	"github.com/matsen/doifind/internal/logging"
	"github.com/matsen/doifind/internal/query"
	"github.com/matsen/doifind/internal/reference"
	"github.com/matsen/doifind/internal/search"
)

// CachedSearcher serves repeated lookups from a Cache. Only successful
// responses are cached. Cache failures are logged and fall through to the
// wrapped searcher.
type CachedSearcher struct {
	next   search.Searcher
	cache  *Cache
	source string
	logger *slog.Logger
}

// NewCachedSearcher wraps next with cache. source namespaces the entries.
func NewCachedSearcher(next search.Searcher, cache *Cache, source string, logger *slog.Logger) *CachedSearcher {
	if logger == nil {
		logger = logging.Discard()
	}
	return &CachedSearcher{next: next, cache: cache, source: source, logger: logger}
}

// Search implements search.Searcher.
func (s *CachedSearcher) Search(ctx context.Context, p query.Params) ([]reference.Candidate, error) {
	cands, ok, err := s.cache.Get(ctx, s.source, p)
	if err != nil {
		s.logger.Warn("cache read failed", "error", err)
	}
	if ok {
		s.logger.Debug("cache hit", "source", s.source, "title", p.Title)
		return cands, nil
	}

	cands, err = s.next.Search(ctx, p)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Put(ctx, s.source, p, cands); err != nil {
		s.logger.Warn("cache write failed", "error", err)
	}
	return cands, nil
}
