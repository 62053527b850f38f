package cache

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteCache persists the local mirror across client restarts.
type SQLiteCache struct {
	db *sql.DB
}

func NewSQLiteCache(path string) (*SQLiteCache, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %v", err)
	}

	q := `
	CREATE TABLE IF NOT EXISTS entries (
		key TEXT PRIMARY KEY,
		value BLOB NOT NULL,
		updated_at INTEGER NOT NULL
	);
	`
	if _, err := db.Exec(q); err != nil {
		return nil, fmt.Errorf("failed to create cache table: %v", err)
	}

	return &SQLiteCache{
		db: db,
	}, nil
}

func (c *SQLiteCache) Close() error {
	return c.db.Close()
}

func (c *SQLiteCache) Set(key string, value []byte) error {
	q := `
	INSERT OR REPLACE INTO entries (key, value, updated_at)
	VALUES (?, ?, ?);
	`
	if _, err := c.db.Exec(q, key, value, time.Now().UnixMilli()); err != nil {
		return fmt.Errorf("failed to write cache entry: %v", err)
	}
	return nil
}

func (c *SQLiteCache) Get(key string) ([]byte, error) {
	q := `
	SELECT value FROM entries WHERE key = ?;
	`
	var value []byte
	if err := c.db.QueryRow(q, key).Scan(&value); err != nil {
		if err == sql.ErrNoRows {
			return nil, &ErrMiss{}
		}
		return nil, fmt.Errorf("failed to read cache entry: %v", err)
	}
	return value, nil
}
