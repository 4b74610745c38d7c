package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/matsen/doifind/internal/query"
	"github.com/matsen/doifind/internal/reference"
	"github.com/matsen/doifind/internal/search"
)

func setupTestCache(t *testing.T, opts ...CacheOption) *Cache {
	t.Helper()

	cache, err := OpenCache(filepath.Join(t.TempDir(), "cache.db"), opts...)
	if err != nil {
		t.Fatalf("OpenCache() error = %v", err)
	}
	t.Cleanup(func() { cache.Close() })
	return cache
}

var testParams = query.Params{Title: "Deep Learning", Author: "Smith", Year: 2019, Rows: 5}

var testCandidates = []reference.Candidate{
	{DOI: "10.1/abc", Title: "Deep Learning", Authors: []string{"Smith, John"}, Year: 2019, Source: "crossref"},
}

func TestCache_PutGet(t *testing.T) {
	ctx := context.Background()
	cache := setupTestCache(t)

	if _, ok, err := cache.Get(ctx, "crossref", testParams); err != nil || ok {
		t.Fatalf("Get() on empty cache = ok %v, err %v", ok, err)
	}

	if err := cache.Put(ctx, "crossref", testParams, testCandidates); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	got, ok, err := cache.Get(ctx, "crossref", testParams)
	if err != nil || !ok {
		t.Fatalf("Get() = ok %v, err %v", ok, err)
	}
	if len(got) != 1 || got[0].DOI != "10.1/abc" || got[0].Authors[0] != "Smith, John" {
		t.Errorf("Get() = %+v", got)
	}

	// Sources are namespaced.
	if _, ok, _ := cache.Get(ctx, "s2", testParams); ok {
		t.Error("Get() hit for a different source")
	}

	// Equivalent queries share an entry.
	folded := testParams
	folded.Title = "deep  learning"
	if _, ok, _ := cache.Get(ctx, "crossref", folded); !ok {
		t.Error("Get() missed for an equivalent query")
	}
}

func TestCache_EmptyResultIsCached(t *testing.T) {
	ctx := context.Background()
	cache := setupTestCache(t)

	if err := cache.Put(ctx, "crossref", testParams, nil); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	got, ok, err := cache.Get(ctx, "crossref", testParams)
	if err != nil || !ok || len(got) != 0 {
		t.Errorf("Get() = %v, ok %v, err %v", got, ok, err)
	}
}

func TestCache_TTL(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cache := setupTestCache(t, WithTTL(time.Hour), withClock(func() time.Time { return now }))

	if err := cache.Put(ctx, "crossref", testParams, testCandidates); err != nil {
		t.Fatal(err)
	}
	now = now.Add(30 * time.Minute)
	if _, ok, _ := cache.Get(ctx, "crossref", testParams); !ok {
		t.Error("entry expired too early")
	}
	now = now.Add(time.Hour)
	if _, ok, _ := cache.Get(ctx, "crossref", testParams); ok {
		t.Error("expired entry returned")
	}
}

func TestCache_InfoClear(t *testing.T) {
	ctx := context.Background()
	cache := setupTestCache(t)

	other := testParams
	other.Title = "Other"
	for _, put := range []struct {
		source string
		p      query.Params
	}{{"crossref", testParams}, {"crossref", other}, {"s2", testParams}} {
		if err := cache.Put(ctx, put.source, put.p, testCandidates); err != nil {
			t.Fatal(err)
		}
	}

	info, err := cache.Info(ctx)
	if err != nil {
		t.Fatalf("Info() error = %v", err)
	}
	if info.Entries != 3 || info.Sources["crossref"] != 2 || info.Sources["s2"] != 1 {
		t.Errorf("Info() = %+v", info)
	}
	if info.Oldest.IsZero() || info.Newest.Before(info.Oldest) {
		t.Errorf("Info() age range = %v..%v", info.Oldest, info.Newest)
	}

	n, err := cache.Clear(ctx)
	if err != nil || n != 3 {
		t.Fatalf("Clear() = %d, %v", n, err)
	}
	info, _ = cache.Info(ctx)
	if info.Entries != 0 {
		t.Errorf("Entries after Clear = %d", info.Entries)
	}
}

func TestCacheKey(t *testing.T) {
	a := CacheKey("crossref", testParams)
	if len(a) != 64 {
		t.Errorf("CacheKey length = %d, want 64", len(a))
	}
	if a == CacheKey("s2", testParams) {
		t.Error("CacheKey ignores source")
	}
}

type countingSearcher struct {
	calls int
	err   error
}

func (s *countingSearcher) Search(ctx context.Context, p query.Params) ([]reference.Candidate, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return testCandidates, nil
}

func TestCachedSearcher(t *testing.T) {
	ctx := context.Background()
	inner := &countingSearcher{}
	s := NewCachedSearcher(inner, setupTestCache(t), "crossref", nil)

	for range 3 {
		got, err := s.Search(ctx, testParams)
		if err != nil {
			t.Fatalf("Search() error = %v", err)
		}
		if len(got) != 1 {
			t.Fatalf("Search() returned %d candidates", len(got))
		}
	}
	if inner.calls != 1 {
		t.Errorf("inner searcher called %d times, want 1", inner.calls)
	}
}

func TestCachedSearcher_ErrorsNotCached(t *testing.T) {
	ctx := context.Background()
	transient := search.StatusError("crossref", 503, "")
	inner := &countingSearcher{err: transient}
	s := NewCachedSearcher(inner, setupTestCache(t), "crossref", nil)

	if _, err := s.Search(ctx, testParams); !errors.Is(err, search.ErrTransient) {
		t.Fatalf("Search() error = %v, want transient", err)
	}
	inner.err = nil
	if _, err := s.Search(ctx, testParams); err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if inner.calls != 2 {
		t.Errorf("inner searcher called %d times, want 2", inner.calls)
	}
}
