package domain

import "context"

// RateLimiter enforces a fixed-window request quota per user.
type RateLimiter interface {
	// Update counts one request and reports whether it is within the quota.
	// The counter is incremented even when the quota is already exceeded.
	Update(ctx context.Context, userID string) (bool, error)
	// Get returns the request count of the user's current window, 0 when no window is open.
	Get(ctx context.Context, userID string) (int64, error)
	MaxRequests() int
}

// RateLimitUsage is the quota state reported to callers.
type RateLimitUsage struct {
	Current int64 `json:"current"`
	Max     int   `json:"max"`
}
