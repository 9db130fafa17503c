package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mkowalczyk/allerlog/internal/client/models"
	"github.com/mkowalczyk/allerlog/internal/dbx"
)

// SQLiteRepository implements Repository over a DBTX (either *sql.DB or
// *sql.Tx).
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Replace swaps the snapshot atomically: the old rows and the new list
// never mix.
func (r *SQLiteRepository) Replace(ctx context.Context, entries []models.Entry) error {
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM entries`); err != nil {
			return fmt.Errorf("failed to clear snapshot: %w", err)
		}
		for i, e := range entries {
			exposures, err := json.Marshal(e.Exposures)
			if err != nil {
				return fmt.Errorf("failed to encode exposures: %w", err)
			}
			_, err = tx.ExecContext(ctx, `
				INSERT INTO entries (id, occurred_on, upper_respiratory, lower_respiratory, skin, eyes, total, exposures, note, position)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				e.ID, e.OccurredOn.UTC().Format(time.RFC3339), e.UpperRespiratory, e.LowerRespiratory,
				e.Skin, e.Eyes, e.Total, string(exposures), e.Note, i)
			if err != nil {
				return fmt.Errorf("failed to insert entry: %w", err)
			}
		}
		return nil
	})
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.Entry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, occurred_on, upper_respiratory, lower_respiratory, skin, eyes, total, exposures, note
		FROM entries ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to select entries: %w", err)
	}
	defer rows.Close()

	var result []models.Entry
	for rows.Next() {
		var e models.Entry
		var occurredOn, exposures string
		if err := rows.Scan(&e.ID, &occurredOn, &e.UpperRespiratory, &e.LowerRespiratory,
			&e.Skin, &e.Eyes, &e.Total, &exposures, &e.Note); err != nil {
			return nil, err
		}
		e.OccurredOn, err = time.Parse(time.RFC3339, occurredOn)
		if err != nil {
			return nil, fmt.Errorf("bad occurred_on for entry %s: %w", e.ID, err)
		}
		if err := json.Unmarshal([]byte(exposures), &e.Exposures); err != nil {
			return nil, fmt.Errorf("bad exposures for entry %s: %w", e.ID, err)
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM entries`); err != nil {
		return fmt.Errorf("failed to clear snapshot: %w", err)
	}
	return nil
}
