package repositories

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// UnreadCounterCache caches per-recipient unread notification counts.
//
// Counts are stored under a generation that Invalidate bumps. Get reports the
// generation it saw and Set writes under that generation, so a count read
// before an invalidation can never be served after it.
type UnreadCounterCache interface {
	Get(ctx context.Context, userID uint) (count, gen int64, ok bool, err error)
	Set(ctx context.Context, userID uint, gen, count int64) error
	Invalidate(ctx context.Context, userID uint) error
}

type redisUnreadCounterCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisUnreadCounterCache(client *redis.Client, ttl time.Duration) UnreadCounterCache {
	return &redisUnreadCounterCache{client: client, ttl: ttl}
}

// unreadGenKey has no expiry; losing it would resurrect counts of an old
// generation.
func unreadGenKey(userID uint) string {
	return fmt.Sprintf("notifications:unread:gen:%d", userID)
}

func unreadKey(userID uint, gen int64) string {
	return fmt.Sprintf("notifications:unread:%d:%d", userID, gen)
}

func (c *redisUnreadCounterCache) generation(ctx context.Context, userID uint) (int64, error) {
	gen, err := c.client.Get(ctx, unreadGenKey(userID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

func (c *redisUnreadCounterCache) Get(ctx context.Context, userID uint) (int64, int64, bool, error) {
	gen, err := c.generation(ctx, userID)
	if err != nil {
		return 0, 0, false, err
	}
	raw, err := c.client.Get(ctx, unreadKey(userID, gen)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, gen, false, nil
	}
	if err != nil {
		return 0, gen, false, err
	}
	count, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, gen, false, nil
	}
	return count, gen, true, nil
}

// Set is harmless when gen is stale: nobody reads that key again and it
// expires with the TTL.
func (c *redisUnreadCounterCache) Set(ctx context.Context, userID uint, gen, count int64) error {
	return c.client.Set(ctx, unreadKey(userID, gen), count, c.ttl).Err()
}

func (c *redisUnreadCounterCache) Invalidate(ctx context.Context, userID uint) error {
	return c.client.Incr(ctx, unreadGenKey(userID)).Err()
}

type noopUnreadCounterCache struct{}

// NewNoopUnreadCounterCache is used when Redis is not configured.
func NewNoopUnreadCounterCache() UnreadCounterCache {
	return noopUnreadCounterCache{}
}

func (noopUnreadCounterCache) Get(context.Context, uint) (int64, int64, bool, error) {
	return 0, 0, false, nil
}
func (noopUnreadCounterCache) Set(context.Context, uint, int64, int64) error { return nil }
func (noopUnreadCounterCache) Invalidate(context.Context, uint) error        { return nil }
