// README: Redis cache of normalized rate tables.
package ratetable

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"freightdesk/internal/types"
)

const tableKeyPrefix = "ratetable:%s"

type Cache struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewCache(redis *redis.Client, ttl time.Duration) *Cache {
	return &Cache{redis: redis, ttl: ttl}
}

// Get returns the cached table and whether it was present.
func (c *Cache) Get(ctx context.Context, id types.ID) (*RateTable, bool, error) {
	val, err := c.redis.Get(ctx, tableKey(id)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var t RateTable
	if err := json.Unmarshal(val, &t); err != nil {
		return nil, false, err
	}
	return &t, true, nil
}

func (c *Cache) Set(ctx context.Context, t *RateTable) error {
	data, err := json.Marshal(t)
	if err != nil {
		return err
	}
	return c.redis.Set(ctx, tableKey(t.ID), data, c.ttl).Err()
}

// Invalidate drops a table after an administrator edits it.
func (c *Cache) Invalidate(ctx context.Context, id types.ID) error {
	return c.redis.Del(ctx, tableKey(id)).Err()
}

func tableKey(id types.ID) string {
	return fmt.Sprintf(tableKeyPrefix, string(id))
}
