package redis

import (
	"context"
	"errors"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/pscheid92/bookvote/internal/domain"
)

const (
	// TTL reply for a key that exists without an expiry.
	noExpiry time.Duration = -1

	rateLimitKeyPattern = "user:*:rate-limit"
	scanCount           = 100
)

// RateLimiter is a fixed-window request counter per user. The window opens with
// the first request and the counter disappears when it expires.
type RateLimiter struct {
	rdb         goredis.Cmdable
	maxRequests int
	window      time.Duration
}

var _ domain.RateLimiter = (*RateLimiter)(nil)

func NewRateLimiter(rdb goredis.Cmdable, maxRequests int, window time.Duration) *RateLimiter {
	return &RateLimiter{rdb: rdb, maxRequests: maxRequests, window: window}
}

// Update counts one request and reports whether it is within the quota. Rejected
// requests are counted as well.
func (l *RateLimiter) Update(ctx context.Context, userID string) (bool, error) {
	key := rateLimitKey(userID)

	count, err := l.rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, storeError("incr", err)
	}

	// Checked on every call so a counter that lost its expiry is repaired.
	ttl, err := l.rdb.TTL(ctx, key).Result()
	if err != nil {
		return false, storeError("ttl", err)
	}
	if ttl == noExpiry {
		if err := l.rdb.Expire(ctx, key, l.window).Err(); err != nil {
			return false, storeError("expire", err)
		}
	}

	return count <= int64(l.maxRequests), nil
}

// Get returns the current counter, 0 when no window is open.
func (l *RateLimiter) Get(ctx context.Context, userID string) (int64, error) {
	count, err := l.rdb.Get(ctx, rateLimitKey(userID)).Int64()
	if errors.Is(err, goredis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, storeError("get", err)
	}
	return count, nil
}

func (l *RateLimiter) MaxRequests() int {
	return l.maxRequests
}

// WindowRepair summarizes a RepairWindows run.
type WindowRepair struct {
	Scanned  int
	Repaired int
}

// RepairWindows scans all counters and attaches the window expiry to those left
// without one by the race between INCR and EXPIRE. With dryRun nothing is written.
func (l *RateLimiter) RepairWindows(ctx context.Context, dryRun bool) (WindowRepair, error) {
	var r WindowRepair
	var cursor uint64
	for {
		keys, next, err := l.rdb.Scan(ctx, cursor, rateLimitKeyPattern, scanCount).Result()
		if err != nil {
			return r, storeError("scan", err)
		}

		for _, key := range keys {
			r.Scanned++

			ttl, err := l.rdb.TTL(ctx, key).Result()
			if err != nil {
				return r, storeError("ttl", err)
			}
			if ttl != noExpiry {
				continue
			}

			if !dryRun {
				if err := l.rdb.Expire(ctx, key, l.window).Err(); err != nil {
					return r, storeError("expire", err)
				}
			}
			slog.DebugContext(ctx, "Repaired rate window", "key", key, "dry_run", dryRun)
			r.Repaired++
		}

		cursor = next
		if cursor == 0 {
			return r, nil
		}
	}
}
