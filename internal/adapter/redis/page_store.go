package redis

import (
	"context"

	goredis "github.com/redis/go-redis/v9"

	"github.com/pscheid92/bookvote/internal/domain"
)

// PageStore keeps each page as a list of post ids, newest first.
type PageStore struct {
	rdb goredis.Cmdable
}

var _ domain.PageRepository = (*PageStore)(nil)

func NewPageStore(rdb goredis.Cmdable) *PageStore {
	return &PageStore{rdb: rdb}
}

// Save replaces the page. Ids are pushed in order, so the last one is listed first.
func (s *PageStore) Save(ctx context.Context, page string, postIDs []string) error {
	_, err := s.rdb.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Del(ctx, pageKey(page))
		if len(postIDs) > 0 {
			pipe.LPush(ctx, pageKey(page), toArgs(postIDs)...)
		}
		return nil
	})
	return storeError("multi", err)
}

func (s *PageStore) Get(ctx context.Context, page string) ([]string, error) {
	ids, err := s.rdb.LRange(ctx, pageKey(page), 0, -1).Result()
	if err != nil {
		return nil, storeError("lrange", err)
	}
	return ids, nil
}

// Add puts postID at the top of the page and keeps at most limit entries.
// A limit of 0 or less keeps everything.
func (s *PageStore) Add(ctx context.Context, page, postID string, limit int) error {
	_, err := s.rdb.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.LPush(ctx, pageKey(page), postID)
		if limit > 0 {
			pipe.LTrim(ctx, pageKey(page), 0, int64(limit-1))
		}
		return nil
	})
	return storeError("multi", err)
}

func (s *PageStore) CountVisit(ctx context.Context, page string) (int64, error) {
	visits, err := s.rdb.Incr(ctx, pageVisitKey(page)).Result()
	if err != nil {
		return 0, storeError("incr", err)
	}
	return visits, nil
}

func toArgs(values []string) []any {
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v
	}
	return args
}
