package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const kvSnapshotSchema = `
CREATE TABLE IF NOT EXISTS kv_snapshot
(
    key        VARCHAR PRIMARY KEY,
    value      TEXT                     NOT NULL,
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL
);`

type PsqlStore struct {
	db *pgxpool.Pool
}

func NewPsqlStore(db *pgxpool.Pool) *PsqlStore {
	return &PsqlStore{
		db: db,
	}
}

func (s *PsqlStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, kvSnapshotSchema)
	return err
}

func (s *PsqlStore) Read(ctx context.Context, key string) (string, error) {
	if err := validKey(key); err != nil {
		return "", err
	}

	var value string
	err := s.db.QueryRow(
		ctx,
		`SELECT value FROM kv_snapshot WHERE key = $1;`,
		key,
	).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("select snapshot [%s]: %w", key, err)
	}

	return value, nil
}

func (s *PsqlStore) Write(ctx context.Context, key, value string) error {
	if err := validKey(key); err != nil {
		return err
	}

	_, err := s.db.Exec(
		ctx,
		`
			INSERT INTO kv_snapshot (key, value, updated_at)
			VALUES ($1, $2, $3)
			ON CONFLICT (key) DO UPDATE
				SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at;`,
		key, value, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("upsert snapshot [%s]: %w", key, err)
	}

	return nil
}
