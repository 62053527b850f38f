package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

type PostgresRepository struct {
	conn *pgx.Conn
}

// NewPostgresRepository creates a Repository backed by Postgres.
// It panics if it is unable to connect to the database.
// The caller is responsible for calling Close() on the repository.
func NewPostgresRepository(ctx context.Context, connStr string) Repository {
	return &PostgresRepository{
		conn: connectDb(ctx, connStr),
	}
}

func connectDb(ctx context.Context, connStr string) *pgx.Conn {
	conn, err := pgx.Connect(ctx, connStr)
	if err != nil {
		panic(fmt.Sprintf("Unable to connect to database: %v\n", err))
	}

	q := `
	CREATE TABLE IF NOT EXISTS blobs (
		key TEXT PRIMARY KEY,
		value BYTEA NOT NULL,
		updated_at BIGINT NOT NULL
	);
	`
	if _, err := conn.Exec(ctx, q); err != nil {
		panic(fmt.Sprintf("Unable to create blobs table: %v\n", err))
	}

	return conn
}

func (r *PostgresRepository) Close(ctx context.Context) error {
	return r.conn.Close(ctx)
}

func (r *PostgresRepository) SaveBlob(ctx context.Context, key string, value []byte) error {
	compressed, err := compressBlob(value)
	if err != nil {
		return err
	}

	q := `
	INSERT INTO blobs (key, value, updated_at) VALUES ($1, $2, $3)
	ON CONFLICT (key) DO UPDATE SET value = $2, updated_at = $3;
	`
	if _, err := r.conn.Exec(ctx, q, key, compressed, time.Now().UnixMilli()); err != nil {
		return fmt.Errorf("failed to insert blob: %v", err)
	}
	return nil
}

func (r *PostgresRepository) LoadBlob(ctx context.Context, key string) ([]byte, error) {
	q := `
	SELECT value FROM blobs WHERE key = $1;
	`
	var compressed []byte
	if err := r.conn.QueryRow(ctx, q, key).Scan(&compressed); err != nil {
		if err == pgx.ErrNoRows {
			return nil, &ErrNotFound{}
		}
		return nil, fmt.Errorf("failed to scan blob: %v", err)
	}
	return decompressBlob(compressed)
}
