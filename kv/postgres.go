package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const createBlobsTable = `
CREATE TABLE IF NOT EXISTS guaguale_blobs (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// PostgresBackend keeps blobs in the guaguale_blobs table. The handle comes from
// guaguale.GetDB (pgx through database/sql).
type PostgresBackend struct {
	db *sql.DB
}

func NewPostgresBackend(db *sql.DB) *PostgresBackend {
	return &PostgresBackend{db: db}
}

// EnsureSchema creates the blobs table if it does not exist.
func (p *PostgresBackend) EnsureSchema(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, createBlobsTable); err != nil {
		return fmt.Errorf("create guaguale_blobs: %w", err)
	}
	return nil
}

func (p *PostgresBackend) Get(ctx context.Context, key string) ([]byte, error) {
	var value string
	err := p.db.QueryRowContext(ctx, `SELECT value FROM guaguale_blobs WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return []byte(value), nil
}

func (p *PostgresBackend) Put(ctx context.Context, key string, value []byte) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO guaguale_blobs (key, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value,
		    updated_at = now()
	`, key, string(value))
	return err
}

func (p *PostgresBackend) Delete(ctx context.Context, key string) error {
	_, err := p.db.ExecContext(ctx, `DELETE FROM guaguale_blobs WHERE key = $1`, key)
	return err
}
