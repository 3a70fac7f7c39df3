// Package cache provides content caching for decoded article payloads.
//
// Keys are digests derived from the archive identity and the article index,
// so entries from different archives never collide.
package cache

import "github.com/opencontainers/go-digest"

// Cache stores decoded article content.
//
// Implementations should handle their own size limits and eviction policies.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns cached content for key.
	// Returns nil, false if content is not cached.
	Get(key digest.Digest) ([]byte, bool)

	// Put stores content under key. Implementations must not retain
	// content after returning.
	Put(key digest.Digest, content []byte) error

	// Delete removes cached content for key.
	// Implementations should treat missing entries as a no-op.
	Delete(key digest.Digest) error

	// MaxBytes returns the configured cache size limit (0 = unlimited).
	MaxBytes() int64

	// SizeBytes returns the current cache size in bytes.
	SizeBytes() int64

	// Prune removes cached entries until the cache is at or below targetBytes.
	// Returns the number of bytes freed.
	Prune(targetBytes int64) (int64, error)
}
