// Package cache implements the client-side query cache and the optimistic
// mutation protocol used by entry create/update/delete.
package cache

import "sync"

// Key identifies a logical query result, e.g. the whole entries list or a
// single entry by id.
type Key string

// KeyEntries is the cache key for the "all entries" list.
const KeyEntries Key = "entries"

// EntryKey is the cache key for a single entry by id.
func EntryKey(id string) Key {
	return Key("entry/" + id)
}

type slot struct {
	value any
	fresh bool
	gen   uint64
}

// Cache maps query keys to their last known values. Each key carries a
// freshness flag (invalidation marks a value stale without dropping it) and
// a generation counter used to discard fetch responses that started before
// an optimistic write.
type Cache struct {
	mu    sync.Mutex
	slots map[Key]slot
}

func New() *Cache {
	return &Cache{slots: make(map[Key]slot)}
}

// Get returns the value stored under key and whether it is fresh. A stale
// value is still returned; callers decide whether it is usable.
func (c *Cache) Get(key Key) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.slots[key]
	if !ok {
		return nil, false
	}
	return s.value, s.fresh
}

// Set stores a fresh value under key and bumps its generation, so any fetch
// that started earlier is rejected by CompareAndSet.
func (c *Cache) Set(key Key, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.slots[key]
	c.slots[key] = slot{value: value, fresh: true, gen: s.gen + 1}
}

// Invalidate marks the value under key stale. The value is kept so the UI
// can keep showing it while a refetch is in flight.
func (c *Cache) Invalidate(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.slots[key]
	if !ok {
		return
	}
	s.fresh = false
	c.slots[key] = s
}

// Generation returns the current generation of key. Capture it before
// starting a fetch and pass it to CompareAndSet on completion.
func (c *Cache) Generation(key Key) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.slots[key].gen
}

// CompareAndSet stores a fresh value only if no write touched key since gen
// was captured. It reports whether the value was stored; a false return
// means a mutation won the race and the fetched value must be discarded.
func (c *Cache) CompareAndSet(key Key, value any, gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.slots[key]
	if s.gen != gen {
		return false
	}
	c.slots[key] = slot{value: value, fresh: true, gen: s.gen + 1}
	return true
}

// Clear drops everything, e.g. on logout.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.slots = make(map[Key]slot)
}
