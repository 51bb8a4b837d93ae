package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/jonboulle/clockwork"
	goredis "github.com/redis/go-redis/v9"

	"github.com/pscheid92/bookvote/internal/domain"
	apperrors "github.com/pscheid92/bookvote/internal/platform/errors"
)

// PostStore keeps each post in a hash: the JSON payload next to the like tally
// that the vote policies increment.
type PostStore struct {
	rdb   goredis.Cmdable
	clock clockwork.Clock
}

var _ domain.PostRepository = (*PostStore)(nil)

func NewPostStore(rdb goredis.Cmdable, clock clockwork.Clock) *PostStore {
	return &PostStore{rdb: rdb, clock: clock}
}

func (s *PostStore) Create(ctx context.Context, title string) (*domain.Post, error) {
	id, err := s.rdb.Incr(ctx, postIDCounterKey).Result()
	if err != nil {
		return nil, storeError("incr", err)
	}

	post := &domain.Post{
		ID:        strconv.FormatInt(id, 10),
		Title:     title,
		CreatedAt: s.clock.Now().UTC(),
	}
	payload, err := json.Marshal(post)
	if err != nil {
		return nil, fmt.Errorf("failed to encode post: %w", err)
	}

	err = s.rdb.HSet(ctx, postKey(post.ID), map[string]any{
		fieldPayload: string(payload),
		fieldLikes:   "0",
	}).Err()
	if err != nil {
		return nil, storeError("hset", err)
	}
	return post, nil
}

func (s *PostStore) Get(ctx context.Context, postID string) (*domain.Post, error) {
	fields, err := s.rdb.HGetAll(ctx, postKey(postID)).Result()
	if err != nil {
		return nil, storeError("hgetall", err)
	}
	post, err := decodePost(fields)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, apperrors.NotFoundError("post not found", domain.ErrPostNotFound).WithField("post_id", postID)
	}
	return post, nil
}

// GetAll reads all posts in one pipelined round trip.
func (s *PostStore) GetAll(ctx context.Context, postIDs []string) ([]domain.Post, error) {
	if len(postIDs) == 0 {
		return []domain.Post{}, nil
	}

	pipe := s.rdb.Pipeline()
	cmds := make([]*goredis.MapStringStringCmd, len(postIDs))
	for i, id := range postIDs {
		cmds[i] = pipe.HGetAll(ctx, postKey(id))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, storeError("pipeline", err)
	}

	posts := make([]domain.Post, 0, len(postIDs))
	for _, cmd := range cmds {
		post, err := decodePost(cmd.Val())
		if err != nil {
			return nil, err
		}
		if post != nil {
			posts = append(posts, *post)
		}
	}
	return posts, nil
}

// decodePost returns nil for a hash without payload, which covers both a missing
// key and a tally created by a vote on an unknown id.
func decodePost(fields map[string]string) (*domain.Post, error) {
	payload, ok := fields[fieldPayload]
	if !ok {
		return nil, nil
	}

	var post domain.Post
	if err := json.Unmarshal([]byte(payload), &post); err != nil {
		return nil, apperrors.InternalError("stored post is corrupt", err)
	}
	if likes, ok := fields[fieldLikes]; ok {
		n, err := strconv.ParseInt(likes, 10, 64)
		if err != nil {
			return nil, apperrors.InternalError("stored like tally is not a number", err).WithField("post_id", post.ID)
		}
		post.Likes = n
	}
	return &post, nil
}
