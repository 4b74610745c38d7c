package storage

import (
	"context"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"golang.org/x/crypto/blake2b"
	_ "modernc.org/sqlite"

	"github.com/matsen/doifind/internal/query"
	"github.com/matsen/doifind/internal/reference"
)

// Cache stores search responses in SQLite, keyed by source and query.
type Cache struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithTTL makes entries older than ttl behave as misses. Zero keeps entries
// forever.
func WithTTL(ttl time.Duration) CacheOption {
	return func(c *Cache) {
		c.ttl = ttl
	}
}

// withClock overrides the clock (for testing).
func withClock(now func() time.Time) CacheOption {
	return func(c *Cache) {
		c.now = now
	}
}

// CacheInfo summarizes cache contents.
type CacheInfo struct {
	Entries int            `json:"entries"`
	Sources map[string]int `json:"sources"`
	Oldest  time.Time      `json:"oldest,omitzero"`
	Newest  time.Time      `json:"newest,omitzero"`
}

// OpenCache opens or creates a lookup cache at the given path.
func OpenCache(path string, opts ...CacheOption) (*Cache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	if err := createCacheSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating cache schema: %w", err)
	}

	c := &Cache{db: db, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Close closes the database connection.
func (c *Cache) Close() error {
	return c.db.Close()
}

func createCacheSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS lookups (
			key TEXT PRIMARY KEY,
			source TEXT NOT NULL,
			query TEXT NOT NULL,
			candidates_json TEXT NOT NULL,
			created_at INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_lookups_source ON lookups(source);
	`
	_, err := db.Exec(schema)
	return err
}

// CacheKey returns the hex BLAKE2b-256 digest identifying a lookup.
func CacheKey(source string, p query.Params) string {
	sum := blake2b.Sum256([]byte(source + "\x00" + p.Key()))
	return hex.EncodeToString(sum[:])
}

// Get returns the cached candidates for a lookup. The boolean is false on a
// miss or an expired entry.
func (c *Cache) Get(ctx context.Context, source string, p query.Params) ([]reference.Candidate, bool, error) {
	stmt, args, err := sq.Select("candidates_json", "created_at").
		From("lookups").
		Where(sq.Eq{"key": CacheKey(source, p)}).
		ToSql()
	if err != nil {
		return nil, false, fmt.Errorf("building cache query: %w", err)
	}

	var data string
	var createdAt int64
	err = c.db.QueryRowContext(ctx, stmt, args...).Scan(&data, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading cache: %w", err)
	}

	if c.ttl > 0 && c.now().Sub(time.Unix(createdAt, 0)) > c.ttl {
		return nil, false, nil
	}

	var cands []reference.Candidate
	if err := json.Unmarshal([]byte(data), &cands); err != nil {
		return nil, false, fmt.Errorf("decoding cached candidates: %w", err)
	}
	return cands, true, nil
}

// Put stores the candidates for a lookup, replacing any previous entry.
func (c *Cache) Put(ctx context.Context, source string, p query.Params, cands []reference.Candidate) error {
	if cands == nil {
		cands = []reference.Candidate{}
	}
	data, err := json.Marshal(cands)
	if err != nil {
		return fmt.Errorf("encoding candidates: %w", err)
	}

	stmt, args, err := sq.Replace("lookups").
		Columns("key", "source", "query", "candidates_json", "created_at").
		Values(CacheKey(source, p), source, p.Key(), string(data), c.now().Unix()).
		ToSql()
	if err != nil {
		return fmt.Errorf("building cache insert: %w", err)
	}
	if _, err := c.db.ExecContext(ctx, stmt, args...); err != nil {
		return fmt.Errorf("writing cache: %w", err)
	}
	return nil
}

// Info reports entry counts per source and the age range of entries.
func (c *Cache) Info(ctx context.Context) (CacheInfo, error) {
	info := CacheInfo{Sources: map[string]int{}}

	stmt, args, err := sq.Select("source", "COUNT(*)", "MIN(created_at)", "MAX(created_at)").
		From("lookups").
		GroupBy("source").
		OrderBy("source").
		ToSql()
	if err != nil {
		return info, fmt.Errorf("building cache info query: %w", err)
	}

	rows, err := c.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return info, fmt.Errorf("querying cache info: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var source string
		var count int
		var oldest, newest int64
		if err := rows.Scan(&source, &count, &oldest, &newest); err != nil {
			return info, fmt.Errorf("scanning cache info: %w", err)
		}
		info.Sources[source] = count
		info.Entries += count
		if o := time.Unix(oldest, 0); info.Oldest.IsZero() || o.Before(info.Oldest) {
			info.Oldest = o
		}
		if n := time.Unix(newest, 0); n.After(info.Newest) {
			info.Newest = n
		}
	}
	return info, rows.Err()
}

// Clear removes all entries and returns how many were removed.
func (c *Cache) Clear(ctx context.Context) (int64, error) {
	stmt, args, err := sq.Delete("lookups").ToSql()
	if err != nil {
		return 0, fmt.Errorf("building cache delete: %w", err)
	}
	res, err := c.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return 0, fmt.Errorf("clearing cache: %w", err)
	}
	return res.RowsAffected()
}
