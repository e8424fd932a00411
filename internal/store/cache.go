// ABOUTME: SQLite-backed cache for fetched documentation pages using modernc.org/sqlite.
// ABOUTME: Provides TTL-aware lookups with automatic schema creation.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNotFound indicates the requested page is not cached or has expired.
var ErrNotFound = errors.New("page not found")

// CachedPage is a converted documentation page held in the cache.
type CachedPage struct {
	URL       string
	Content   string
	FetchedAt time.Time
}

// PageCache stores converted documentation pages in SQLite so repeated
// read_documentation calls do not re-fetch the upstream site.
type PageCache struct {
	db     *sql.DB
	ttl    time.Duration
	logger *slog.Logger
}

// NewPageCache opens (or creates) a page cache at the given path with the
// given TTL. Parent directories are created if needed. Use ":memory:" for
// an in-memory cache in tests.
func NewPageCache(path string, ttl time.Duration) (*PageCache, error) {
	logger := slog.Default().With("component", "store")

	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}

	// WAL mode for concurrent reads
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	c := &PageCache{db: db, ttl: ttl, logger: logger}
	if err := c.createSchema(); err != nil {
		db.Close()
		return nil, err
	}

	return c, nil
}

// createSchema creates the pages table if it does not exist.
func (c *PageCache) createSchema() error {
	const schema = `
CREATE TABLE IF NOT EXISTS pages (
	url        TEXT PRIMARY KEY,
	content    TEXT NOT NULL,
	fetched_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_pages_fetched_at ON pages(fetched_at);
`
	if _, err := c.db.Exec(schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

// Get returns the cached page for url. Expired entries are treated as
// missing; a later Put overwrites them.
func (c *PageCache) Get(ctx context.Context, url string) (*CachedPage, error) {
	var page CachedPage
	var fetchedAt int64

	row := c.db.QueryRowContext(ctx,
		"SELECT url, content, fetched_at FROM pages WHERE url = ?", url)
	if err := row.Scan(&page.URL, &page.Content, &fetchedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reading cached page: %w", err)
	}

	page.FetchedAt = time.Unix(fetchedAt, 0)
	if c.ttl > 0 && time.Since(page.FetchedAt) > c.ttl {
		return nil, ErrNotFound
	}
	return &page, nil
}

// Put stores (or replaces) the converted content for url.
func (c *PageCache) Put(ctx context.Context, url, content string) error {
	_, err := c.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO pages (url, content, fetched_at) VALUES (?, ?, ?)",
		url, content, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("writing cached page: %w", err)
	}
	return nil
}

// Prune deletes entries older than the TTL and returns how many were removed.
func (c *PageCache) Prune(ctx context.Context) (int64, error) {
	if c.ttl <= 0 {
		return 0, nil
	}
	cutoff := time.Now().Add(-c.ttl).Unix()
	res, err := c.db.ExecContext(ctx, "DELETE FROM pages WHERE fetched_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("pruning cache: %w", err)
	}
	n, _ := res.RowsAffected()
	if n > 0 {
		c.logger.Debug("pruned expired pages", "count", n)
	}
	return n, nil
}

// Close closes the underlying database.
func (c *PageCache) Close() error {
	return c.db.Close()
}
