// Package cache provides byte-oriented caching for conversion results.
//
// The pipeline caches three content classes: parsed diagrams keyed by
// source hash, layout results keyed by diagram hash plus layout options,
// and generated artifacts keyed by diagram hash plus target format. Keys
// are content-addressed (the key embeds a hash of everything that
// determines the value), so entries never serve stale data; TTLs only
// bound storage growth.
//
// Backends: [FileCache] for the CLI, [RedisCache] and [MongoCache] for
// server deployments, [NullCache] to disable caching. Wrap a [Keyer] in a
// [ScopedKeyer] to namespace keys per tenant.
package cache

import (
	"context"
	"time"
)

// Cache is the storage interface shared by all backends.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get retrieves a value. The second return reports whether the key
	// was present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A ttl of zero means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Default TTLs per content class.
const (
	// TTLDiagram applies to parsed diagrams keyed by source hash.
	TTLDiagram = 24 * time.Hour

	// TTLLayout applies to layout results. The most expensive stage gets
	// the longest retention.
	TTLLayout = 7 * 24 * time.Hour

	// TTLArtifact applies to generated output bytes.
	TTLArtifact = 24 * time.Hour
)
