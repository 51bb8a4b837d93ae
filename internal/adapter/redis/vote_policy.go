package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	goredis "github.com/redis/go-redis/v9"

	"github.com/pscheid92/bookvote/internal/domain"
	apperrors "github.com/pscheid92/bookvote/internal/platform/errors"
)

// NewVotePolicy returns the policy implementation registered under name.
func NewVotePolicy(rdb goredis.Cmdable, name domain.VotePolicyName) (domain.VotePolicy, error) {
	switch name {
	case domain.VotePolicyMultiple:
		return NewUnconditionalVotes(rdb), nil
	case domain.VotePolicySingle:
		return NewExclusiveVotes(rdb), nil
	case domain.VotePolicyChangeable:
		return NewChangeableVotes(rdb), nil
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownVotePolicy, name)
	}
}

func incrementLikes(ctx context.Context, rdb goredis.Cmdable, itemID string, delta int64) error {
	return storeError("hincrby", rdb.HIncrBy(ctx, postKey(itemID), fieldLikes, delta).Err())
}

// UnconditionalVotes applies every call to the tally. No ballot is kept.
type UnconditionalVotes struct {
	rdb goredis.Cmdable
}

var _ domain.VotePolicy = (*UnconditionalVotes)(nil)

func NewUnconditionalVotes(rdb goredis.Cmdable) *UnconditionalVotes {
	return &UnconditionalVotes{rdb: rdb}
}

func (v *UnconditionalVotes) Name() domain.VotePolicyName { return domain.VotePolicyMultiple }

func (v *UnconditionalVotes) Vote(ctx context.Context, _, itemID string) (int64, error) {
	return v.cast(ctx, itemID, domain.VoteUp)
}

func (v *UnconditionalVotes) Downvote(ctx context.Context, _, itemID string) (int64, error) {
	return v.cast(ctx, itemID, domain.VoteDown)
}

func (v *UnconditionalVotes) cast(ctx context.Context, itemID string, value domain.VoteValue) (int64, error) {
	if err := incrementLikes(ctx, v.rdb, itemID, int64(value)); err != nil {
		return 0, err
	}
	return int64(value), nil
}

func (v *UnconditionalVotes) VotesByUser(context.Context, string, []string) (map[string]domain.VoteValue, error) {
	return map[string]domain.VoteValue{}, nil
}

// ExclusiveVotes lets a user claim an item once. The claim set does not remember
// the direction, so a later vote in either direction is ignored.
type ExclusiveVotes struct {
	rdb goredis.Cmdable
}

var _ domain.VotePolicy = (*ExclusiveVotes)(nil)

func NewExclusiveVotes(rdb goredis.Cmdable) *ExclusiveVotes {
	return &ExclusiveVotes{rdb: rdb}
}

func (v *ExclusiveVotes) Name() domain.VotePolicyName { return domain.VotePolicySingle }

func (v *ExclusiveVotes) Vote(ctx context.Context, userID, itemID string) (int64, error) {
	return v.cast(ctx, userID, itemID, domain.VoteUp)
}

func (v *ExclusiveVotes) Downvote(ctx context.Context, userID, itemID string) (int64, error) {
	return v.cast(ctx, userID, itemID, domain.VoteDown)
}

func (v *ExclusiveVotes) cast(ctx context.Context, userID, itemID string, value domain.VoteValue) (int64, error) {
	added, err := v.rdb.SAdd(ctx, singleVotesKey(userID), itemID).Result()
	if err != nil {
		return 0, storeError("sadd", err)
	}
	if added == 0 {
		return 0, nil
	}
	// The claim is already recorded; a failure here leaves it without a tally change.
	if err := incrementLikes(ctx, v.rdb, itemID, int64(value)); err != nil {
		return 0, err
	}
	return int64(value), nil
}

func (v *ExclusiveVotes) VotesByUser(context.Context, string, []string) (map[string]domain.VoteValue, error) {
	return map[string]domain.VoteValue{}, nil
}

// ChangeableVotes remembers the last direction per user and item and applies
// the difference when it flips, moving the tally by 2.
type ChangeableVotes struct {
	rdb goredis.Cmdable
}

var _ domain.VotePolicy = (*ChangeableVotes)(nil)

func NewChangeableVotes(rdb goredis.Cmdable) *ChangeableVotes {
	return &ChangeableVotes{rdb: rdb}
}

func (v *ChangeableVotes) Name() domain.VotePolicyName { return domain.VotePolicyChangeable }

func (v *ChangeableVotes) Vote(ctx context.Context, userID, itemID string) (int64, error) {
	return v.cast(ctx, userID, itemID, domain.VoteUp)
}

func (v *ChangeableVotes) Downvote(ctx context.Context, userID, itemID string) (int64, error) {
	return v.cast(ctx, userID, itemID, domain.VoteDown)
}

func (v *ChangeableVotes) cast(ctx context.Context, userID, itemID string, value domain.VoteValue) (int64, error) {
	ballots := changeableVotesKey(userID)

	created, err := v.rdb.HSetNX(ctx, ballots, itemID, int64(value)).Result()
	if err != nil {
		return 0, storeError("hsetnx", err)
	}
	if created {
		if err := incrementLikes(ctx, v.rdb, itemID, int64(value)); err != nil {
			return 0, err
		}
		return int64(value), nil
	}

	stored, err := v.rdb.HGet(ctx, ballots, itemID).Int64()
	if errors.Is(err, goredis.Nil) {
		slog.WarnContext(ctx, "Ballot vanished before it could be read, ignoring vote",
			"user_id", userID, "post_id", itemID)
		return 0, nil
	}
	var numErr *strconv.NumError
	if errors.As(err, &numErr) {
		return 0, apperrors.InternalError("stored ballot is not a number", err).
			WithField("user_id", userID).WithField("post_id", itemID)
	}
	if err != nil {
		return 0, storeError("hget", err)
	}

	previous := domain.VoteValue(stored)
	if previous == value {
		return 0, nil
	}

	// Tally and ballot move together or not at all.
	delta := int64(value) - int64(previous)
	_, err = v.rdb.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.HIncrBy(ctx, postKey(itemID), fieldLikes, delta)
		pipe.HSet(ctx, ballots, itemID, int64(value))
		return nil
	})
	if err != nil {
		return 0, storeError("multi", err)
	}
	return delta, nil
}

func (v *ChangeableVotes) VotesByUser(ctx context.Context, userID string, itemIDs []string) (map[string]domain.VoteValue, error) {
	votes := make(map[string]domain.VoteValue, len(itemIDs))
	if len(itemIDs) == 0 {
		return votes, nil
	}

	values, err := v.rdb.HMGet(ctx, changeableVotesKey(userID), itemIDs...).Result()
	if err != nil {
		return nil, storeError("hmget", err)
	}

	for i, raw := range values {
		s, ok := raw.(string)
		if !ok {
			votes[itemIDs[i]] = domain.VoteNone
			continue
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, apperrors.InternalError("stored ballot is not a number", err).
				WithField("user_id", userID).WithField("post_id", itemIDs[i])
		}
		votes[itemIDs[i]] = domain.VoteValue(n)
	}
	return votes, nil
}
