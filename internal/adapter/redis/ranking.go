package redis

import (
	"context"
	"errors"

	goredis "github.com/redis/go-redis/v9"

	"github.com/pscheid92/bookvote/internal/domain"
)

// Ranking keeps one sorted set per scope.
type Ranking struct {
	rdb goredis.Cmdable
}

var _ domain.Ranking = (*Ranking)(nil)

func NewRanking(rdb goredis.Cmdable) *Ranking {
	return &Ranking{rdb: rdb}
}

// Increase adds amount to member's score and returns the new score. Negative
// amounts decrease it; an unknown member starts at 0.
func (r *Ranking) Increase(ctx context.Context, scope string, amount float64, member string) (float64, error) {
	score, err := r.rdb.ZIncrBy(ctx, rankingKey(scope), amount, member).Result()
	if err != nil {
		return 0, storeError("zincrby", err)
	}
	return score, nil
}

// GetRatings returns up to count members, highest score first. Ties are ordered
// by member, descending.
func (r *Ranking) GetRatings(ctx context.Context, scope string, count int) ([]string, error) {
	if count <= 0 {
		return []string{}, nil
	}
	members, err := r.rdb.ZRevRange(ctx, rankingKey(scope), 0, int64(count-1)).Result()
	if err != nil {
		return nil, storeError("zrevrange", err)
	}
	return members, nil
}

func (r *Ranking) Score(ctx context.Context, scope, member string) (float64, bool, error) {
	score, err := r.rdb.ZScore(ctx, rankingKey(scope), member).Result()
	if errors.Is(err, goredis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, storeError("zscore", err)
	}
	return score, true, nil
}
