package trips

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/JCrossman/dats-booking-sub000/models"
)

const cachePrefix = "trips:"

// Cache holds recently fetched trip lists so repeated reads do not hammer the
// rate-limited remote service. A nil *Cache is valid and disables caching.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache wraps a Redis client; ttl governs how long a list stays fresh.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	if client == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &Cache{client: client, ttl: ttl}
}

func cacheKey(ownerID, from, to string) string {
	return cachePrefix + ownerID + ":" + from + ":" + to
}

// Get returns a cached list and whether it was present. Cache errors are
// treated as misses; the remote service is always available as the source.
func (c *Cache) Get(ctx context.Context, ownerID, from, to string) ([]models.TripRecord, bool) {
	if c == nil {
		return nil, false
	}
	data, err := c.client.Get(ctx, cacheKey(ownerID, from, to)).Result()
	if err != nil {
		return nil, false
	}
	var trips []models.TripRecord
	if err := json.Unmarshal([]byte(data), &trips); err != nil {
		return nil, false
	}
	return trips, true
}

// Set stores a fetched list. Failures are ignored; caching is best-effort.
func (c *Cache) Set(ctx context.Context, ownerID, from, to string, trips []models.TripRecord) {
	if c == nil {
		return
	}
	data, err := json.Marshal(trips)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, cacheKey(ownerID, from, to), data, c.ttl).Err()
}

// Invalidate drops every cached list for an owner. Called after any booking
// or cancellation so stale lists never survive a write.
func (c *Cache) Invalidate(ctx context.Context, ownerID string) {
	if c == nil {
		return
	}
	iter := c.client.Scan(ctx, 0, cachePrefix+ownerID+":*", 100).Iterator()
	for iter.Next(ctx) {
		_ = c.client.Del(ctx, iter.Val()).Err()
	}
}
