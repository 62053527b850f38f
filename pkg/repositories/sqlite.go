package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(ctx context.Context, path string, migrations string) (Repository, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %v", err)
	}

	dir, err := os.ReadDir(migrations)
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %v", err)
	}

	for _, entry := range dir {
		if entry.IsDir() {
			continue
		}

		migrationPath := filepath.Join(migrations, entry.Name())
		migration, err := os.ReadFile(migrationPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read migration %s: %v", migrationPath, err)
		}

		if _, err := db.ExecContext(ctx, string(migration)); err != nil {
			return nil, fmt.Errorf("failed to execute migration %s: %v", migrationPath, err)
		}
	}

	return &SQLiteRepository{
		db: db,
	}, nil
}

func (r *SQLiteRepository) Close(ctx context.Context) error {
	return r.db.Close()
}

func (r *SQLiteRepository) SaveBlob(ctx context.Context, key string, value []byte) error {
	compressed, err := compressBlob(value)
	if err != nil {
		return err
	}

	q := `
	INSERT OR REPLACE INTO blobs (key, value, updated_at)
	VALUES (?, ?, ?);
	`
	if _, err := r.db.ExecContext(ctx, q, key, compressed, time.Now().UnixMilli()); err != nil {
		return fmt.Errorf("failed to insert blob: %v", err)
	}
	return nil
}

func (r *SQLiteRepository) LoadBlob(ctx context.Context, key string) ([]byte, error) {
	q := `
	SELECT value FROM blobs WHERE key = ?;
	`
	var compressed []byte
	if err := r.db.QueryRowContext(ctx, q, key).Scan(&compressed); err != nil {
		if err == sql.ErrNoRows {
			return nil, &ErrNotFound{}
		}
		return nil, fmt.Errorf("failed to scan blob: %v", err)
	}
	return decompressBlob(compressed)
}
