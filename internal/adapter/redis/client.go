package redis

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
)

// NewClient creates a go-redis client from a URL (e.g., "redis://localhost:6379/0").
// Context deadlines are applied to socket reads and writes. Hooks run in the given order.
func NewClient(redisURL string, hooks ...goredis.Hook) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	opts.ContextTimeoutEnabled = true

	rdb := goredis.NewClient(opts)
	for _, h := range hooks {
		rdb.AddHook(h)
	}
	return rdb, nil
}

// Ping verifies the Redis connection.
func Ping(ctx context.Context, rdb goredis.Cmdable) error {
	return storeError("ping", rdb.Ping(ctx).Err())
}
