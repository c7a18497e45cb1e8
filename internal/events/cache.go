package events

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"
)

const (
	publicEventsCacheKey = "sunderland-events||public"
	publicEventsCacheTTL = 5 * time.Minute
)

// Cache keeps the marshalled public events listing in redis so the busiest
// read on the site skips postgres. Mutations through the admin API
// invalidate it.
type Cache struct {
	redisClient *redis.Client
}

func NewCache(redisClient *redis.Client) *Cache {
	return &Cache{
		redisClient: redisClient,
	}
}

func (c *Cache) Get(ctx context.Context) ([]byte, bool) {
	cmd := c.redisClient.Get(ctx, publicEventsCacheKey)
	if err := cmd.Err(); err != nil {
		if err != redis.Nil {
			log.Errorf("failed to get public events from redis: %s", err)
		}
		return nil, false
	}

	return []byte(cmd.Val()), true
}

func (c *Cache) Set(ctx context.Context, payload []byte) {
	cmdSet := c.redisClient.Set(ctx, publicEventsCacheKey, payload, publicEventsCacheTTL)
	if err := cmdSet.Err(); err != nil {
		log.Errorf("failed to cache public events in redis: %s", err)
	}
}

func (c *Cache) Invalidate(ctx context.Context) {
	cmdDel := c.redisClient.Del(ctx, publicEventsCacheKey)
	if err := cmdDel.Err(); err != nil {
		log.Errorf("failed to invalidate public events cache: %s", err)
	}
}
