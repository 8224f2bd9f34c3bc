package geo

import (
	"context"
	"fmt"
	"sync"

	"github.com/user/fleetwatch/internal/model"
	"github.com/user/fleetwatch/internal/util"
)

// Store is the durable backing for resolved lookups.
type Store interface {
	Load() (map[string]*model.GeoRecord, error)
	Put(*model.GeoRecord) error
}

// LookupFunc resolves one IP to a geolocation record.
type LookupFunc func(ctx context.Context, ip string) (*model.GeoRecord, error)

// Cache is a write-through cache of IP geolocation records. Entries
// never expire; the store is only emptied by an explicit clear.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*model.GeoRecord
	store   Store
}

// NewCache creates a cache primed from the store. A store that cannot
// be read yields an empty cache, never a failed run.
func NewCache(store Store) *Cache {
	entries, err := store.Load()
	if err != nil {
		util.Warn("Failed to load geo cache, starting empty: %v", err)
		entries = make(map[string]*model.GeoRecord)
	}

	return &Cache{
		entries: entries,
		store:   store,
	}
}

// Get returns the cached record for an IP, if present.
func (c *Cache) Get(ip string) (*model.GeoRecord, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	rec, ok := c.entries[ip]
	return rec, ok
}

// GetOrFetch returns the cached entry for ip, or invokes fetch, stores
// the result write-through, and returns it. A fetch failure is
// reported as ErrLookupFailed; nothing is cached for that IP.
func (c *Cache) GetOrFetch(ctx context.Context, ip string, fetch LookupFunc) (*model.GeoRecord, error) {
	if rec, ok := c.Get(ip); ok {
		return rec, nil
	}

	rec, err := fetch(ctx, ip)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrLookupFailed, ip, err)
	}

	c.mu.Lock()
	c.entries[ip] = rec
	c.mu.Unlock()

	// An unsaved entry only costs a future re-fetch, never correctness.
	if err := c.store.Put(rec); err != nil {
		util.Warn("Failed to persist geo record for %s: %v", ip, err)
	}

	return rec, nil
}

// Len returns the number of cached IPs.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Snapshot returns a copy of the current mapping.
func (c *Cache) Snapshot() map[string]*model.GeoRecord {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[string]*model.GeoRecord, len(c.entries))
	for ip, rec := range c.entries {
		out[ip] = rec
	}
	return out
}
