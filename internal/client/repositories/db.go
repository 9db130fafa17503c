// Package repositories wires the local snapshot database: it opens the
// sqlite file, runs the embedded goose migrations, and hands out the
// repository implementations.
package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/mkowalczyk/allerlog/internal/client/migrations"
	"github.com/mkowalczyk/allerlog/internal/client/repositories/journal"
	"github.com/mkowalczyk/allerlog/internal/client/repositories/state"
)

type Repositories struct {
	Journal journal.Repository
	State   state.Repository
	DB      *sql.DB
}

func runMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	return goose.UpContext(ctx, db, ".")
}

// InitDatabase opens (creating if needed) the snapshot database at dsn and
// migrates it to the current schema.
func InitDatabase(ctx context.Context, dsn string) (*Repositories, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := runMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Repositories{
		Journal: journal.NewSQLiteRepository(db),
		State:   state.NewSQLiteRepository(db),
		DB:      db,
	}, nil
}

// Close releases the underlying database handle.
func (r *Repositories) Close() error {
	return r.DB.Close()
}
