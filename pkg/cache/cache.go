// Package cache stores rendered artifacts keyed by the content they were
// rendered from.
//
// Rendering a large board to PNG goes through headless Chrome and takes
// seconds; the same snapshot rendered with the same options always produces
// the same bytes, so results are cached under a hash of both.
//
// # Backends
//
//   - [FileCache]: entries as files under the user cache directory (CLI)
//   - [NullCache]: never stores anything (--no-cache, tests)
//
// # Keys
//
// A [Keyer] derives keys. [DefaultKeyer] hashes the snapshot and the render
// options; [ScopedKeyer] prefixes keys with a namespace such as the
// workspace name.
//
// [Fetch] wraps the get-or-compute pattern and reports hits and misses to
// the observability hooks.
package cache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/matzehuels/nestboard/pkg/observability"
)

// Cache is a byte-oriented key/value cache with optional expiry.
type Cache interface {
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources.
	Close() error
}

// DefaultDir returns the per-user cache directory for nestboard.
func DefaultDir() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("get cache dir: %w", err)
	}
	return filepath.Join(dir, "nestboard"), nil
}

// Fetch returns the cached value for key, or calls compute and stores its
// result. keyType labels the entry for the observability hooks. Cache read
// and write failures are not fatal; compute errors are returned as is.
func Fetch(ctx context.Context, c Cache, key, keyType string, ttl time.Duration, compute func() ([]byte, error)) ([]byte, error) {
	if data, ok, err := c.Get(ctx, key); err == nil && ok {
		observability.Cache().OnCacheHit(ctx, keyType)
		return data, nil
	}
	observability.Cache().OnCacheMiss(ctx, keyType)

	data, err := compute()
	if err != nil {
		return nil, err
	}
	if err := c.Set(ctx, key, data, ttl); err == nil {
		observability.Cache().OnCacheSet(ctx, keyType, len(data))
	}
	return data, nil
}
