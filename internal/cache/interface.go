// Package cache provides in-memory data structures reused across the sync
// pipeline for deduplication and fast lookups.
package cache

import "time"

// Cacher is implemented by Cache so callers can depend on the interface
// rather than the concrete TTL store.
type Cacher interface {
	// Get retrieves a value from the cache.
	// Returns the value and true if found and not expired.
	Get(key string) (interface{}, bool)

	// Set stores a value in the cache with the default TTL.
	Set(key string, value interface{})

	// SetWithTTL stores a value with a custom TTL.
	SetWithTTL(key string, value interface{}, ttl time.Duration)

	// Delete removes a value from the cache.
	Delete(key string)

	// Clear removes all entries from the cache.
	Clear()

	// GetStats returns cache statistics.
	GetStats() Stats

	// HitRate returns the cache hit rate as a percentage.
	HitRate() float64
}

// NewTTL creates a new TTL-based cache.
func NewTTL(ttl time.Duration) Cacher {
	return New(ttl)
}

var _ Cacher = (*Cache)(nil)
