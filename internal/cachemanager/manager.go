// Package cachemanager provides small TTL caches backed by go-cache: a
// generic key/value manager, a read-through wrapper, and the recently run
// command tracker that ranks palette suggestions.
package cachemanager

import (
	"context"
	"time"
)

// CacheManager is a TTL key/value cache.
type CacheManager[K comparable, V any] interface {
	Get(ctx context.Context, key K) (V, bool)
	GetWithRefresh(ctx context.Context, key K, ttl time.Duration) (V, bool)
	Set(ctx context.Context, key K, value V, ttl time.Duration)
	Delete(ctx context.Context, keys ...K) error
	Items(ctx context.Context) map[K]V
	Flush(ctx context.Context) error
}
