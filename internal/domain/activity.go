package domain

import (
	"context"
	"time"
)

type ActivityAction string

const (
	ActivityUpvote   ActivityAction = "upvote"
	ActivityDownvote ActivityAction = "downvote"
	ActivityPost     ActivityAction = "post"
	ActivityReset    ActivityAction = "reset"
)

type ActivityEvent struct {
	ID     string
	UserID string
	Action ActivityAction
	PostID string
	Result string
	At     time.Time
}

// ActivityLog is an append-only, capped log of user actions.
type ActivityLog interface {
	Record(ctx context.Context, event ActivityEvent) error
	Recent(ctx context.Context, count int) ([]ActivityEvent, error)
}
