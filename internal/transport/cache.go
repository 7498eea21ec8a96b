package transport

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// Cache is a sqlite-backed GET response cache. The pipeline itself is
// stateless; the only staleness tolerance lives here, behind a per-call
// freshness window, which keeps repeated enrichment runs from re-downloading
// metadata that a content API rarely changes.
type Cache struct {
	db  *sql.DB
	log zerolog.Logger
}

func OpenCache(path string, log zerolog.Logger) (*Cache, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// sqlite wants a single writer
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	if _, err := db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS responses (
  key        TEXT PRIMARY KEY,
  url        TEXT NOT NULL,
  body       BLOB NOT NULL,
  fetched_at TEXT NOT NULL
);`); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Cache{db: db, log: log.With().Str("component", "cache").Logger()}, nil
}

func (c *Cache) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

func cacheKey(url string) string {
	h := sha256.Sum256([]byte(url))
	return hex.EncodeToString(h[:])
}

// Get returns the cached body for url if it was fetched within maxAge.
func (c *Cache) Get(ctx context.Context, url string, maxAge time.Duration) ([]byte, bool) {
	var body []byte
	var fetchedAt string
	err := c.db.QueryRowContext(ctx,
		`SELECT body, fetched_at FROM responses WHERE key = ? LIMIT 1;`,
		cacheKey(url),
	).Scan(&body, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false
	}
	if err != nil {
		c.log.Warn().Err(err).Str("url", url).Msg("cache read failed")
		return nil, false
	}

	at, err := time.Parse(time.RFC3339, fetchedAt)
	if err != nil || time.Since(at) > maxAge {
		return nil, false
	}
	return body, true
}

// Put stores a successful response body. Failures are logged, never fatal:
// the cache is an optimization, not a source of truth.
func (c *Cache) Put(ctx context.Context, url string, body []byte) {
	_, err := c.db.ExecContext(ctx, `
INSERT OR REPLACE INTO responses(key, url, body, fetched_at)
VALUES(?,?,?,?);`,
		cacheKey(url),
		url,
		body,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		c.log.Warn().Err(err).Str("url", url).Msg("cache write failed")
	}
}
