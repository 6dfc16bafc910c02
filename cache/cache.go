package cache

import (
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/scipunch/newsdesk/feed"
)

//go:embed schema.sql
var schemaSQL string

// ErrCorrupt marks a stored payload that could not be decoded.
// Callers are expected to Remove the entry and treat it as a miss.
var ErrCorrupt = errors.New("corrupt cache payload")

// Store is the per-language payload cache consumed by the orchestrator.
type Store interface {
	// Get returns the payload for key. found is false on a miss.
	// A non-nil error means the entry exists but is unreadable.
	Get(key string) (feed.CachePayload, bool, error)
	Set(key string, payload feed.CachePayload) error
	Remove(key string) error
}

// SQLite is a Store backed by a local sqlite database.
type SQLite struct {
	db *sql.DB
}

// Stats contains cache statistics for startup logging.
type Stats struct {
	Entries     int
	OldestEntry time.Time
}

// Open initializes the cache database at the given path.
func Open(dbPath string) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize cache schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

// NewFromDB wraps an already-open database connection, initializing the
// cache schema on it.
func NewFromDB(db *sql.DB) (*SQLite, error) {
	if _, err := db.Exec(schemaSQL); err != nil {
		return nil, fmt.Errorf("failed to initialize cache schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

func (c *SQLite) Get(key string) (feed.CachePayload, bool, error) {
	var payload feed.CachePayload
	var raw string

	err := c.db.QueryRow(
		"SELECT payload FROM feed_cache WHERE key = ?", key,
	).Scan(&raw)

	if err == sql.ErrNoRows {
		return payload, false, nil
	}
	if err != nil {
		slog.Warn("cache read error", "error", err, "key", key)
		return payload, false, nil // treat storage errors as a miss
	}

	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return payload, false, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	_, _ = c.db.Exec(
		"UPDATE feed_cache SET accessed_at = ? WHERE key = ?",
		time.Now().Unix(), key,
	)

	return payload, true, nil
}

func (c *SQLite) Set(key string, payload feed.CachePayload) error {
	blob, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode cache payload: %w", err)
	}

	now := time.Now().Unix()
	_, err = c.db.Exec(`
		INSERT OR REPLACE INTO feed_cache (key, payload, created_at, accessed_at)
		VALUES (?, ?, ?, ?)
	`, key, string(blob), now, now)

	if err != nil {
		slog.Warn("cache write error", "error", err, "key", key)
		return err
	}

	return nil
}

func (c *SQLite) Remove(key string) error {
	_, err := c.db.Exec("DELETE FROM feed_cache WHERE key = ?", key)
	return err
}

// Clear removes all cache entries.
func (c *SQLite) Clear() error {
	if _, err := c.db.Exec("DELETE FROM feed_cache"); err != nil {
		return fmt.Errorf("failed to clear feed cache: %w", err)
	}
	return nil
}

// Stats returns cache statistics.
func (c *SQLite) Stats() (Stats, error) {
	var stats Stats

	if err := c.db.QueryRow("SELECT COUNT(*) FROM feed_cache").Scan(&stats.Entries); err != nil {
		return stats, err
	}

	var oldestUnix sql.NullInt64
	err := c.db.QueryRow("SELECT MIN(created_at) FROM feed_cache").Scan(&oldestUnix)
	if err != nil && err != sql.ErrNoRows {
		return stats, err
	}
	if oldestUnix.Valid && oldestUnix.Int64 > 0 {
		stats.OldestEntry = time.Unix(oldestUnix.Int64, 0)
	}

	return stats, nil
}

// Close closes the cache database.
func (c *SQLite) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// DefaultPath returns the default cache database path.
func DefaultPath() string {
	cacheDir := os.Getenv("XDG_CACHE_HOME")
	if cacheDir == "" {
		home := os.Getenv("HOME")
		if home == "" {
			return "cache.db"
		}
		cacheDir = filepath.Join(home, ".cache")
	}
	return filepath.Join(cacheDir, "newsdesk", "cache.db")
}
