package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/matsen/doifind/internal/config"
	"github.com/matsen/doifind/internal/crossref"
	"github.com/matsen/doifind/internal/s2"
	"github.com/matsen/doifind/internal/search"
	"github.com/matsen/doifind/internal/storage"
)

// newSearcher validates the configuration and builds the search client for
// the configured source, wrapped in the lookup cache unless useCache is
// false. The returned cleanup closes the cache.
func newSearcher(useCache bool) (search.Searcher, func(), error) {
	noop := func() {}
	if err := cfg.Validate(); err != nil {
		return nil, noop, withExitCode(ExitConfigError, err)
	}

	var s search.Searcher
	switch cfg.Source {
	case config.SourceS2:
		opts := []s2.ClientOption{s2.WithAPIKey(cfg.S2APIKey)}
		if cfg.BaseURL != "" {
			opts = append(opts, s2.WithBaseURL(cfg.BaseURL))
		}
		if cfg.RateLimit > 0 {
			opts = append(opts, s2.WithRateLimit(cfg.RateLimit))
		}
		s = s2.NewClient(opts...)
	default:
		opts := []crossref.ClientOption{crossref.WithMailto(cfg.Mailto)}
		if cfg.BaseURL != "" {
			opts = append(opts, crossref.WithBaseURL(cfg.BaseURL))
		}
		if cfg.RateLimit > 0 {
			opts = append(opts, crossref.WithRateLimit(cfg.RateLimit))
		}
		s = crossref.NewClient(opts...)
	}

	if !useCache || cfg.CachePath == "" {
		return s, noop, nil
	}

	cache, err := openCache()
	if err != nil {
		logger.Warn("lookup cache unavailable, continuing without it", "path", cfg.CachePath, "error", err)
		return s, noop, nil
	}
	cleanup := func() {
		if err := cache.Close(); err != nil {
			logger.Warn("closing lookup cache", "error", err)
		}
	}
	return storage.NewCachedSearcher(s, cache, cfg.Source, logger), cleanup, nil
}

// openCache opens the lookup cache at the configured path, creating its
// directory if needed.
func openCache() (*storage.Cache, error) {
	if cfg.CachePath == "" {
		return nil, withExitCode(ExitConfigError, fmt.Errorf("%w: no cache path configured", config.ErrInvalid))
	}
	if err := os.MkdirAll(filepath.Dir(cfg.CachePath), 0755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}
	return storage.OpenCache(cfg.CachePath, storage.WithTTL(cfg.CacheTTL))
}
