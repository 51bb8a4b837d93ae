package redis

import (
	"context"
	"strconv"
	"time"

	"github.com/jonboulle/clockwork"
	goredis "github.com/redis/go-redis/v9"

	"github.com/pscheid92/bookvote/internal/domain"
)

// ActivityLog appends user actions to a capped stream.
type ActivityLog struct {
	rdb    goredis.Cmdable
	clock  clockwork.Clock
	maxLen int64
}

var _ domain.ActivityLog = (*ActivityLog)(nil)

// NewActivityLog trims the stream to roughly maxLen entries on every append.
func NewActivityLog(rdb goredis.Cmdable, clock clockwork.Clock, maxLen int64) *ActivityLog {
	return &ActivityLog{rdb: rdb, clock: clock, maxLen: maxLen}
}

func (l *ActivityLog) Record(ctx context.Context, event domain.ActivityEvent) error {
	at := event.At
	if at.IsZero() {
		at = l.clock.Now()
	}

	err := l.rdb.XAdd(ctx, &goredis.XAddArgs{
		Stream: activityStreamKey,
		MaxLen: l.maxLen,
		Approx: true,
		Values: map[string]any{
			"user":   event.UserID,
			"action": string(event.Action),
			"post":   event.PostID,
			"result": event.Result,
			"at":     strconv.FormatInt(at.UnixMilli(), 10),
		},
	}).Err()
	return storeError("xadd", err)
}

// Recent returns up to count events, newest first.
func (l *ActivityLog) Recent(ctx context.Context, count int) ([]domain.ActivityEvent, error) {
	if count <= 0 {
		return []domain.ActivityEvent{}, nil
	}

	messages, err := l.rdb.XRevRangeN(ctx, activityStreamKey, "+", "-", int64(count)).Result()
	if err != nil {
		return nil, storeError("xrevrange", err)
	}

	events := make([]domain.ActivityEvent, 0, len(messages))
	for _, msg := range messages {
		events = append(events, decodeActivity(msg))
	}
	return events, nil
}

func decodeActivity(msg goredis.XMessage) domain.ActivityEvent {
	str := func(key string) string {
		s, _ := msg.Values[key].(string)
		return s
	}

	event := domain.ActivityEvent{
		ID:     msg.ID,
		UserID: str("user"),
		Action: domain.ActivityAction(str("action")),
		PostID: str("post"),
		Result: str("result"),
	}
	if ms, err := strconv.ParseInt(str("at"), 10, 64); err == nil {
		event.At = time.UnixMilli(ms).UTC()
	}
	return event
}
