// Package store provides a SQLite-backed cache for per-unit summaries so
// repeat listings skip re-parsing unchanged transcripts.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // register sqlite driver
)

// Cache provides SQLite-backed summary caching.
type Cache struct {
	db *sql.DB
}

// Open opens or creates the cache database at the given path.
func Open(dbPath string) (*Cache, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)")
	if err != nil {
		return nil, fmt.Errorf("opening cache db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Cache{db: db}, nil
}

// Close closes the cache database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// GetFingerprints returns a map of unit_key -> fingerprint for all rows.
func (c *Cache) GetFingerprints() (map[string]string, error) {
	rows, err := c.db.Query("SELECT unit_key, fingerprint FROM unit_summaries")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	result := make(map[string]string)
	for rows.Next() {
		var key, fp string
		if err := rows.Scan(&key, &fp); err != nil {
			return nil, err
		}
		result[key] = fp
	}
	return result, rows.Err()
}

// LoadCounts reads the cached counts and preview for one unit.
func (c *Cache) LoadCounts(unitKey string) (events, primary, secondary int, preview string, err error) {
	var pv sql.NullString
	err = c.db.QueryRow(`SELECT events, primary_events, secondary_events, preview
		FROM unit_summaries WHERE unit_key = ?`, unitKey).
		Scan(&events, &primary, &secondary, &pv)
	if pv.Valid {
		preview = pv.String
	}
	return events, primary, secondary, preview, err
}

// SaveSummary upserts one unit's summary row.
func (c *Cache) SaveSummary(unitKey, fingerprint string, events, primary, secondary int, preview string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := c.db.Exec(`INSERT OR REPLACE INTO unit_summaries
		(unit_key, fingerprint, events, primary_events, secondary_events, preview, parsed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		unitKey, fingerprint, events, primary, secondary, preview, now,
	)
	return err
}

// DeleteSummary removes one unit's row.
func (c *Cache) DeleteSummary(unitKey string) error {
	_, err := c.db.Exec("DELETE FROM unit_summaries WHERE unit_key = ?", unitKey)
	return err
}

// SummaryCount returns the number of cached unit summaries.
func (c *Cache) SummaryCount() (int, error) {
	var count int
	err := c.db.QueryRow("SELECT COUNT(*) FROM unit_summaries").Scan(&count)
	return count, err
}

// CacheDir returns the platform-appropriate cache directory.
func CacheDir() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "ccexport")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cache", "ccexport")
}

// CachePath returns the full path to the cache database.
func CachePath() string {
	return filepath.Join(CacheDir(), "summaries.db")
}
