package resources

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"generation-workers/internal/common/database"
	"generation-workers/internal/common/logger"
	"generation-workers/internal/generation"
)

// CachedResolver is a Redis read-through cache in front of another
// resolver. Cache failures fall through to the source.
type CachedResolver struct {
	next   DataResolver
	redis  *database.RedisClient
	ttl    time.Duration
	logger logger.Logger
}

func NewCachedResolver(next DataResolver, rdb *database.RedisClient, ttl time.Duration, log logger.Logger) *CachedResolver {
	return &CachedResolver{next: next, redis: rdb, ttl: ttl, logger: log}
}

func cacheKey(id int) string {
	return fmt.Sprintf("resource:%d", id)
}

func (c *CachedResolver) Resolve(ctx context.Context, ids []int) (map[int]generation.ResourceData, error) {
	out := make(map[int]generation.ResourceData, len(ids))
	var misses []int

	for _, id := range ids {
		var r generation.ResourceData
		err := c.redis.GetJSON(ctx, cacheKey(id), &r)
		switch {
		case err == nil:
			out[id] = r
		case errors.Is(err, redis.Nil):
			misses = append(misses, id)
		default:
			c.logger.Warn("resource cache read failed", logger.Fields{"resourceId": id, "error": err})
			misses = append(misses, id)
		}
	}
	if len(misses) == 0 {
		return out, nil
	}

	fetched, err := c.next.Resolve(ctx, misses)
	if err != nil {
		return nil, err
	}
	for id, r := range fetched {
		out[id] = r
		if err := c.redis.SetJSON(ctx, cacheKey(id), r, c.ttl); err != nil {
			c.logger.Warn("resource cache write failed", logger.Fields{"resourceId": id, "error": err})
		}
	}
	return out, nil
}
