package repository

import (
	"context"
	"time"
)

// ReleaseCache is a namespaced key-value store with per-entry expiry.
// Implementations must be safe for concurrent use on disjoint keys.
type ReleaseCache interface {
	// Get returns the stored value and true, or false when the key is absent or expired.
	Get(ctx context.Context, namespace, key string) ([]byte, bool, error)
	// Set stores value under (namespace, key) for ttl.
	Set(ctx context.Context, namespace, key string, value []byte, ttl time.Duration) error
}
