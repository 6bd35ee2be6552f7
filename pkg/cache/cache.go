// Package cache provides a TTL cache used for market token-id lookups, so
// the escalation tier doesn't re-resolve the same market every cycle.
package cache

import "time"

// Cache is a TTL key-value cache.
type Cache interface {
	// Get retrieves a value. Returns (nil, false) when absent.
	Get(key string) (interface{}, bool)

	// Set stores a value with a TTL. Returns false if the value was
	// rejected (admission policy or closed cache).
	Set(key string, value interface{}, ttl time.Duration) bool

	// Delete removes a value.
	Delete(key string)

	// Close releases cache resources.
	Close()
}
