package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	_ "modernc.org/sqlite"
)

// Cache is a sqlite-backed response cache for slow-moving reference data.
// Entries are keyed by the upstream endpoint plus its encoded query.
type Cache struct {
	db  *sql.DB
	ttl time.Duration
}

// Open opens (or creates) the cache database at path.
func Open(path string, ttl time.Duration) (*Cache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	c := &Cache{db: db, ttl: ttl}
	if err := c.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate cache database: %w", err)
	}

	log.Debug("Response cache ready", "path", path, "ttl", ttl)
	return c, nil
}

func (c *Cache) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS responses (
		key          TEXT PRIMARY KEY,
		body         BLOB NOT NULL,
		content_type TEXT NOT NULL DEFAULT 'application/json',
		created_at   INTEGER NOT NULL
	);
	`
	_, err := c.db.Exec(schema)
	return err
}

// Get returns the cached body and content type for key, or ok=false when the
// entry is missing or older than the TTL. Stale entries are removed.
func (c *Cache) Get(key string) (body []byte, contentType string, ok bool, err error) {
	var createdAt int64
	row := c.db.QueryRow(`SELECT body, content_type, created_at FROM responses WHERE key = ?`, key)
	if err := row.Scan(&body, &contentType, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", false, nil
		}
		return nil, "", false, fmt.Errorf("failed to read cache entry: %w", err)
	}

	if time.Since(time.Unix(createdAt, 0)) > c.ttl {
		if _, err := c.db.Exec(`DELETE FROM responses WHERE key = ?`, key); err != nil {
			log.Debug("Failed to evict stale cache entry", "key", key, "error", err)
		}
		return nil, "", false, nil
	}

	return body, contentType, true, nil
}

// Put stores (or replaces) an entry for key.
func (c *Cache) Put(key string, body []byte, contentType string) error {
	_, err := c.db.Exec(
		`INSERT OR REPLACE INTO responses (key, body, content_type, created_at) VALUES (?, ?, ?, ?)`,
		key, body, contentType, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	return nil
}

// Purge deletes every entry older than the TTL and returns the number removed.
func (c *Cache) Purge() (int64, error) {
	cutoff := time.Now().Add(-c.ttl).Unix()
	res, err := c.db.Exec(`DELETE FROM responses WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge cache: %w", err)
	}
	return res.RowsAffected()
}

func (c *Cache) Close() error {
	return c.db.Close()
}
