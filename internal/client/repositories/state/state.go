// Package state persists small client-side facts between runs: when the
// snapshot was last synced and which account it belongs to.
package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mkowalczyk/allerlog/internal/dbx"
)

const (
	keyLastSyncedAt = "last_synced_at"
	keyAccountEmail = "account_email"
)

type Repository interface {
	SetLastSyncedAt(ctx context.Context, t time.Time) error
	LastSyncedAt(ctx context.Context) (time.Time, bool, error)
	SetAccountEmail(ctx context.Context, email string) error
	AccountEmail(ctx context.Context) (string, error)
	Clear(ctx context.Context) error
}

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) set(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO state (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set state[%s]: %w", key, err)
	}
	return nil
}

func (r *SQLiteRepository) get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM state WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get state[%s]: %w", key, err)
	}
	return value, true, nil
}

func (r *SQLiteRepository) SetLastSyncedAt(ctx context.Context, t time.Time) error {
	return r.set(ctx, keyLastSyncedAt, t.UTC().Format(time.RFC3339))
}

func (r *SQLiteRepository) LastSyncedAt(ctx context.Context) (time.Time, bool, error) {
	v, ok, err := r.get(ctx, keyLastSyncedAt)
	if err != nil || !ok {
		return time.Time{}, false, err
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("bad %s value: %w", keyLastSyncedAt, err)
	}
	return t, true, nil
}

func (r *SQLiteRepository) SetAccountEmail(ctx context.Context, email string) error {
	return r.set(ctx, keyAccountEmail, email)
}

func (r *SQLiteRepository) AccountEmail(ctx context.Context) (string, error) {
	v, _, err := r.get(ctx, keyAccountEmail)
	return v, err
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM state`); err != nil {
		return fmt.Errorf("failed to clear state: %w", err)
	}
	return nil
}
