package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/basketwise/backend/internal/domain"
)

// entry holds one cached result set with its capture timestamp.
type entry struct {
	results   []domain.Listing
	createdAt time.Time
}

// MemoryListingCache is a thread-safe in-memory implementation of
// domain.ListingCache. Expired entries are kept on purpose: a stale result
// set remains reachable through permanent-cache mode as a fallback when the
// upstream API is rate-limited or unavailable.
type MemoryListingCache struct {
	data  map[string]entry
	mutex sync.RWMutex
	now   func() time.Time
}

// NewMemoryListingCache creates a new in-memory listing cache.
func NewMemoryListingCache() *MemoryListingCache {
	return &MemoryListingCache{
		data: make(map[string]entry),
		now:  time.Now,
	}
}

// Get retrieves the cached listings for a query. With maxAge <= 0 any entry
// qualifies regardless of age; otherwise only entries younger than maxAge do.
func (c *MemoryListingCache) Get(ctx context.Context, query string, maxAge time.Duration) ([]domain.Listing, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	e, exists := c.data[normalizeQuery(query)]
	if !exists {
		return nil, domain.ErrCacheMiss
	}

	if maxAge > 0 && c.now().Sub(e.createdAt) >= maxAge {
		// Stale for this caller, but the entry stays for fallback reads.
		return nil, domain.ErrCacheMiss
	}

	return copyListings(e.results), nil
}

// Set upserts the entry for a query. One entry per normalized query; the new
// result set fully replaces the prior one.
func (c *MemoryListingCache) Set(ctx context.Context, query string, results []domain.Listing) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.data[normalizeQuery(query)] = entry{
		results:   copyListings(results),
		createdAt: c.now(),
	}
	return nil
}

// GetAll returns every cached result set, fresh and stale alike, for
// corpus-wide operations such as basket optimization.
func (c *MemoryListingCache) GetAll(ctx context.Context) ([][]domain.Listing, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	all := make([][]domain.Listing, 0, len(c.data))
	for _, e := range c.data {
		if len(e.results) == 0 {
			continue
		}
		all = append(all, copyListings(e.results))
	}
	return all, nil
}

// Size returns the current number of cached queries (for debugging/monitoring)
func (c *MemoryListingCache) Size() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.data)
}

// Clear removes all entries from the cache.
func (c *MemoryListingCache) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.data = make(map[string]entry)
}

// normalizeQuery canonicalizes a query for use as cache key.
func normalizeQuery(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}

// copyListings returns a shallow copy of a result set.
func copyListings(in []domain.Listing) []domain.Listing {
	out := make([]domain.Listing, len(in))
	copy(out, in)
	return out
}
