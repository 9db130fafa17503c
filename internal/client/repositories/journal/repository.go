package journal

import (
	"context"

	"github.com/mkowalczyk/allerlog/internal/client/models"
)

// Repository persists the last successfully fetched entries list so the
// journal stays readable without connectivity. It is a snapshot, not a sync
// log: each save replaces the previous one wholesale.
type Repository interface {
	// Replace swaps the stored snapshot for the given list, preserving
	// its order.
	Replace(ctx context.Context, entries []models.Entry) error

	// GetAll returns the snapshot in its stored order.
	GetAll(ctx context.Context) ([]models.Entry, error)

	// Clear drops the snapshot, e.g. on logout.
	Clear(ctx context.Context) error
}
