package cache

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned when a key is not found in cache.
var ErrCacheMiss = errors.New("cache miss")

// Cache holds serialized search responses so repeated identical searches
// skip the filter/aggregate pipeline.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error

	// DeleteByPattern removes all values matching a pattern
	// (e.g. "cache:search:*").
	DeleteByPattern(ctx context.Context, pattern string) error

	Close() error
}

// Key prefixes.
const (
	KeyPrefixSearch  = "cache:search"
	KeyPrefixOptions = "cache:options"
)

// TTLs. Search results go stale as soon as a refresh or toggle lands, so
// both are kept short and invalidated eagerly anyway.
const (
	TTLSearch  = 30 * time.Second
	TTLOptions = 60 * time.Second
)
