package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/meinhoongagan/household-services/metrics"
)

// Cache keys for the listing endpoints.
const (
	KeyAllUsers    = "all_users"
	KeyAllServices = "all_services"
)

// Cache is a JSON-backed cache-aside store bound to one value type.
// Failures are logged and reported as misses; a cache outage never fails
// a request.
type Cache[T any] struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCache[T any](client *redis.Client, ttl time.Duration) *Cache[T] {
	return &Cache[T]{client: client, ttl: ttl}
}

// Get returns the cached value and whether it was found.
func (c *Cache[T]) Get(ctx context.Context, key string) (T, bool) {
	var v T
	if c == nil || c.client == nil {
		return v, false
	}

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.WithError(err).WithField("key", key).Warn("cache read failed")
		}
		metrics.CacheRequests.WithLabelValues(key, "miss").Inc()
		return v, false
	}
	if err := json.Unmarshal(data, &v); err != nil {
		log.WithError(err).WithField("key", key).Warn("cache entry unreadable")
		metrics.CacheRequests.WithLabelValues(key, "miss").Inc()
		return v, false
	}

	metrics.CacheRequests.WithLabelValues(key, "hit").Inc()
	log.WithField("key", key).Debug("cache hit")
	return v, true
}

// Set stores value under key with the cache TTL.
func (c *Cache[T]) Set(ctx context.Context, key string, value T) {
	if c == nil || c.client == nil {
		return
	}

	data, err := json.Marshal(value)
	if err != nil {
		log.WithError(err).WithField("key", key).Warn("cache marshal failed")
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		log.WithError(err).WithField("key", key).Warn("cache write failed")
		return
	}
	log.WithField("key", key).Debug("cache set")
}

// Delete removes key.
func (c *Cache[T]) Delete(ctx context.Context, key string) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Del(ctx, key).Err(); err != nil {
		log.WithError(err).WithField("key", key).Warn("cache delete failed")
	}
}
