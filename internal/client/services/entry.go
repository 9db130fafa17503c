package services

import (
	"context"
	"errors"
	"time"

	"github.com/mkowalczyk/allerlog/internal/client/cache"
	"github.com/mkowalczyk/allerlog/internal/client/models"
	"github.com/mkowalczyk/allerlog/internal/client/repositories/journal"
	"github.com/mkowalczyk/allerlog/internal/client/repositories/state"
	"github.com/mkowalczyk/allerlog/internal/common"
	"github.com/mkowalczyk/allerlog/internal/logging"
)

// entryAPI adapts the transport to the cache synchronizer's server calls.
type entryAPI struct {
	api HTTPClient
}

// NewEntryAPI wraps the transport into the interface the synchronizer
// issues entry calls through.
func NewEntryAPI(api HTTPClient) cache.EntryAPI {
	return &entryAPI{api: api}
}

func (e *entryAPI) ListEntries(ctx context.Context) ([]models.Entry, error) {
	var entries []models.Entry
	if err := e.api.Get(ctx, common.PathEntries, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (e *entryAPI) CreateEntry(ctx context.Context, entry models.NewEntry) (models.Entry, error) {
	var created models.Entry
	if err := e.api.Post(ctx, common.PathEntries, entry, &created); err != nil {
		return models.Entry{}, err
	}
	return created, nil
}

func (e *entryAPI) UpdateEntry(ctx context.Context, id string, changes models.NewEntry) (models.Entry, error) {
	var updated models.Entry
	if err := e.api.Put(ctx, common.PathEntries+"/"+id, changes, &updated); err != nil {
		return models.Entry{}, err
	}
	return updated, nil
}

func (e *entryAPI) DeleteEntry(ctx context.Context, id string) error {
	return e.api.Delete(ctx, common.PathEntries+"/"+id)
}

// EntryService exposes journal entries to the CLI. Reads go through the
// query cache and fall back to the offline snapshot when the server is
// unreachable; writes go through the optimistic synchronizer.
type EntryService interface {
	// List returns the journal. offline reports that the server could not
	// be reached and the entries came from the local snapshot.
	List(ctx context.Context) (entries []models.Entry, offline bool, err error)
	Create(ctx context.Context, entry models.NewEntry) (models.Entry, error)
	Update(ctx context.Context, id string, changes models.NewEntry) (models.Entry, error)
	Delete(ctx context.Context, id string) error
	// Pending reports whether any writes still await server settlement.
	Pending() bool
}

type entryService struct {
	sync    *cache.Synchronizer
	journal journal.Repository
	state   state.Repository
	log     logging.Logger
}

// NewEntryService constructs an EntryService over an optimistic
// synchronizer and the local snapshot repositories.
func NewEntryService(sync *cache.Synchronizer, j journal.Repository, s state.Repository, log logging.Logger) EntryService {
	return &entryService{sync: sync, journal: j, state: s, log: log}
}

func (e *entryService) List(ctx context.Context) ([]models.Entry, bool, error) {
	entries, err := e.sync.Entries(ctx)
	if err != nil {
		if errors.Is(err, common.ErrNetwork) {
			snapshot, snapErr := e.journal.GetAll(ctx)
			if snapErr != nil {
				return nil, false, errors.Join(err, snapErr)
			}
			return snapshot, true, nil
		}
		return nil, false, err
	}

	// Best-effort snapshot refresh for the next offline read.
	if err := e.journal.Replace(ctx, entries); err != nil {
		e.log.Warn(ctx, "failed to persist offline snapshot", "error", err)
	} else if err := e.state.SetLastSyncedAt(ctx, time.Now()); err != nil {
		e.log.Warn(ctx, "failed to record sync time", "error", err)
	}
	return entries, false, nil
}

func (e *entryService) Create(ctx context.Context, entry models.NewEntry) (models.Entry, error) {
	return e.sync.Create(ctx, entry)
}

func (e *entryService) Update(ctx context.Context, id string, changes models.NewEntry) (models.Entry, error) {
	return e.sync.Update(ctx, id, changes)
}

func (e *entryService) Delete(ctx context.Context, id string) error {
	return e.sync.Delete(ctx, id)
}

func (e *entryService) Pending() bool {
	return e.sync.Pending()
}
