package domain

import (
	"context"
	"time"
)

// ListingCache defines the interface for the search-result cache.
//
// Implementations key entries by the normalized (trimmed, lowercased) query
// and keep exactly one entry per query. A stale entry is never deleted on
// read: it stays available through permanent-cache mode (maxAge <= 0) as an
// emergency fallback when the upstream API is rate-limited or down.
type ListingCache interface {
	// Get returns the cached listings for a query. With maxAge > 0 only
	// entries younger than maxAge qualify; otherwise any entry is returned
	// regardless of age. A miss or an expired entry yields ErrCacheMiss.
	Get(ctx context.Context, query string, maxAge time.Duration) ([]Listing, error)

	// Set upserts the entry for a query, fully replacing any prior results.
	Set(ctx context.Context, query string, results []Listing) error

	// GetAll returns every cached result set for corpus-wide operations.
	GetAll(ctx context.Context) ([][]Listing, error)
}

// MarketClient defines the interface for the supermarket price API.
type MarketClient interface {
	SearchProducts(ctx context.Context, query string) ([]Listing, error)
}
