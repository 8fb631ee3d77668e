package cache

import (
	"context"
	"strconv"
	"time"
)

// Cache is a read-through store for catalog lookups. Get reports whether the
// key was present; a miss is not an error.
type Cache interface {
	Get(ctx context.Context, key string, value any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// ProductKey builds the cache key for a single catalog product.
func ProductKey(id int64) string {
	return "product:" + strconv.FormatInt(id, 10)
}
