// Package cache provides the key/value backends behind the blueprint store.
//
// Every backend implements [Cache]: opaque byte values under string keys,
// each with an optional TTL. Available backends:
//
//   - [FileCache]: one JSON file per key, for the CLI and single-node servers
//   - [MemoryCache]: process-local map, for tests and ephemeral servers
//   - [RedisCache]: shared storage for multi-instance deployments
//   - [MongoCache]: durable storage with a TTL index
//
// Keys are produced by a [Keyer] so that every backend lays out data the
// same way; a [ScopedKeyer] lets several deployments share one backend.
// [Instrument] reports hits and misses to the observability
// hooks.
package cache

import (
	"context"
	"strings"
	"time"
)

// Cache is a key/value store with per-entry expiration.
type Cache interface {
	// Get returns the value under key. A missing or expired entry is a
	// miss (nil, false, nil), not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of 0 means the entry never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases connections held by the backend.
	Close() error
}

// Default entry lifetimes.
const (
	// TTLBlueprint is how long stored blueprints are kept.
	TTLBlueprint = 7 * 24 * time.Hour

	// TTLDigest is how long the content-digest index is kept. It matches
	// TTLBlueprint so a digest never outlives its blueprint by much.
	TTLDigest = TTLBlueprint
)

// Keyer generates storage keys.
type Keyer interface {
	// BlueprintKey is the key a stored blueprint lives under.
	BlueprintKey(id string) string

	// DigestKey indexes a blueprint's content digest to its id.
	DigestKey(digest string) string
}

// DefaultKeyer is the standard key layout.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// BlueprintKey returns "blueprint:<id>".
func (DefaultKeyer) BlueprintKey(id string) string { return "blueprint:" + id }

// DigestKey returns "digest:<sha256 of the digest>".
func (DefaultKeyer) DigestKey(digest string) string { return hashKey("digest", digest) }

// KeyType returns the namespace of key: the text before the first colon,
// after any scope prefix. It is used to label metrics.
func KeyType(key string) string {
	parts := strings.Split(key, ":")
	for i := len(parts) - 2; i >= 0; i-- {
		if parts[i] == "blueprint" || parts[i] == "digest" {
			return parts[i]
		}
	}
	if len(parts) > 1 {
		return parts[0]
	}
	return "other"
}
