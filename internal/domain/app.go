package domain

import (
	"context"
)

// HomeView bundles everything the home listing shows for one user.
type HomeView struct {
	UserID     string
	Posts      []Post
	Votes      map[string]VoteValue
	Visits     int64
	RateLimits RateLimitUsage
	TopPosts   []Post
	Policy     VotePolicyName
}

// AppService is the application layer contract the outer layers route all operations through.
type AppService interface {
	CheckQuota(ctx context.Context, userID string) error
	CastVote(ctx context.Context, userID, postID string, direction VoteValue) (*VoteOutcome, error)
	Home(ctx context.Context, userID string) (*HomeView, error)
	CreatePost(ctx context.Context, title string) (*Post, error)
	Reset(ctx context.Context, titles []string) ([]Post, error)
	Top(ctx context.Context, count int) ([]Post, error)
	Quota(ctx context.Context, userID string) (RateLimitUsage, error)
	Activity(ctx context.Context, count int) ([]ActivityEvent, error)
}
