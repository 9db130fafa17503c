package cache

import (
	"context"
	"errors"
	"slices"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/mkowalczyk/allerlog/internal/client/api"
	"github.com/mkowalczyk/allerlog/internal/client/models"
)

// EntryAPI is the slice of the HTTP layer the synchronizer mutates through.
type EntryAPI interface {
	ListEntries(ctx context.Context) ([]models.Entry, error)
	CreateEntry(ctx context.Context, body models.NewEntry) (models.Entry, error)
	UpdateEntry(ctx context.Context, id string, body models.NewEntry) (models.Entry, error)
	DeleteEntry(ctx context.Context, id string) error
}

// Synchronizer applies entry mutations optimistically: the cached list
// reflects the user's action before the server confirms it, every failure
// restores the pre-mutation snapshot verbatim, and every settled mutation
// invalidates the affected keys so the next read re-syncs with the server.
//
// Overlapping mutations on the same key are not coordinated beyond
// snapshot/rollback: the last mutation to settle wins the cache. That is an
// accepted limitation, not a guarantee.
type Synchronizer struct {
	cache   *Cache
	api     EntryAPI
	pending atomic.Int32
}

func NewSynchronizer(c *Cache, a EntryAPI) *Synchronizer {
	return &Synchronizer{cache: c, api: a}
}

// Pending reports whether any mutation is currently in flight.
func (s *Synchronizer) Pending() bool {
	return s.pending.Load() > 0
}

// cachedList returns a copy of the current entries list regardless of
// freshness, for snapshotting and optimistic rewrites.
func (s *Synchronizer) cachedList() []models.Entry {
	v, _ := s.cache.Get(KeyEntries)
	list, _ := v.([]models.Entry)
	return slices.Clone(list)
}

// Entries returns the cached list when it is fresh, fetching otherwise. A
// fetch that loses the race against an optimistic write is discarded and
// the optimistic state returned instead.
func (s *Synchronizer) Entries(ctx context.Context) ([]models.Entry, error) {
	if v, fresh := s.cache.Get(KeyEntries); fresh {
		list, _ := v.([]models.Entry)
		return slices.Clone(list), nil
	}

	gen := s.cache.Generation(KeyEntries)
	list, err := s.api.ListEntries(ctx)
	if err != nil {
		return nil, err
	}
	if !s.cache.CompareAndSet(KeyEntries, list, gen) {
		return s.cachedList(), nil
	}
	return slices.Clone(list), nil
}

// TempIDPrefix marks client-assigned ids on records pending creation.
const TempIDPrefix = "tmp-"

func newTempID() string {
	return TempIDPrefix + uuid.NewString()
}

// Create prepends a provisional record with a temporary id, then calls the
// server. On success the provisional record is replaced in place by the
// authoritative one (or prepended if it was evicted meanwhile); on failure
// the pre-mutation snapshot is restored verbatim. The list is invalidated
// either way.
func (s *Synchronizer) Create(ctx context.Context, body models.NewEntry) (models.Entry, error) {
	s.pending.Add(1)
	defer s.pending.Add(-1)
	defer s.cache.Invalidate(KeyEntries)

	prev := s.cachedList()

	tempID := newTempID()
	optimistic := append([]models.Entry{body.Entry(tempID)}, s.cachedList()...)
	s.cache.Set(KeyEntries, optimistic)

	created, err := s.api.CreateEntry(ctx, body)
	if err != nil {
		s.cache.Set(KeyEntries, prev)
		return models.Entry{}, err
	}

	list := s.cachedList()
	if i := indexByID(list, tempID); i >= 0 {
		list[i] = created
	} else {
		list = append([]models.Entry{created}, list...)
	}
	s.cache.Set(KeyEntries, list)
	return created, nil
}

// Update replaces the record optimistically in place (a missing id leaves
// the list untouched), then reconciles with the server result, which also
// populates the per-id cache slot. Both keys are invalidated after
// settling.
func (s *Synchronizer) Update(ctx context.Context, id string, body models.NewEntry) (models.Entry, error) {
	s.pending.Add(1)
	defer s.pending.Add(-1)
	defer func() {
		s.cache.Invalidate(KeyEntries)
		s.cache.Invalidate(EntryKey(id))
	}()

	prev := s.cachedList()

	optimistic := s.cachedList()
	if i := indexByID(optimistic, id); i >= 0 {
		optimistic[i] = body.Entry(id)
		s.cache.Set(KeyEntries, optimistic)
	}

	updated, err := s.api.UpdateEntry(ctx, id, body)
	if err != nil {
		s.cache.Set(KeyEntries, prev)
		return models.Entry{}, err
	}

	list := s.cachedList()
	if i := indexByID(list, updated.ID); i >= 0 {
		list[i] = updated
	} else {
		list = append([]models.Entry{updated}, list...)
	}
	s.cache.Set(KeyEntries, list)
	s.cache.Set(EntryKey(updated.ID), updated)
	return updated, nil
}

// Delete removes the record optimistically and restores the snapshot if the
// server refuses. The list is invalidated after settling.
func (s *Synchronizer) Delete(ctx context.Context, id string) error {
	s.pending.Add(1)
	defer s.pending.Add(-1)
	defer s.cache.Invalidate(KeyEntries)

	prev := s.cachedList()

	optimistic := slices.DeleteFunc(s.cachedList(), func(e models.Entry) bool {
		return e.ID == id
	})
	s.cache.Set(KeyEntries, optimistic)

	if err := s.api.DeleteEntry(ctx, id); err != nil {
		s.cache.Set(KeyEntries, prev)
		return err
	}
	return nil
}

func indexByID(list []models.Entry, id string) int {
	return slices.IndexFunc(list, func(e models.Entry) bool { return e.ID == id })
}

// FallbackErrorMessage is shown when a failed mutation carries no
// server-provided message.
const FallbackErrorMessage = "Something went wrong. Please try again."

// ErrorMessage derives a human-readable message from a mutation failure:
// server-provided text when available, a generic fallback otherwise.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var httpErr *api.HTTPError
	if errors.As(err, &httpErr) {
		if msg := httpErr.ServerMessage(); msg != "" {
			return msg
		}
	}
	return FallbackErrorMessage
}
