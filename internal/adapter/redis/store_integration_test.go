package redis

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pscheid92/bookvote/internal/domain"
	apperrors "github.com/pscheid92/bookvote/internal/platform/errors"
)

func TestPostStore_CreateAndGet(t *testing.T) {
	client := setupTestClient(t)
	clock := clockwork.NewFakeClockAt(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	store := NewPostStore(client, clock)
	ctx := context.Background()

	first, err := store.Create(ctx, "Dune")
	require.NoError(t, err)
	second, err := store.Create(ctx, "Solaris")
	require.NoError(t, err)

	assert.Equal(t, "1", first.ID)
	assert.Equal(t, "2", second.ID)

	got, err := store.Get(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "Dune", got.Title)
	assert.Equal(t, int64(0), got.Likes)
	assert.True(t, clock.Now().Equal(got.CreatedAt))
}

func TestPostStore_LikesFollowVotes(t *testing.T) {
	client := setupTestClient(t)
	store := NewPostStore(client, clockwork.NewFakeClock())
	policy := NewUnconditionalVotes(client)
	ctx := context.Background()

	post, err := store.Create(ctx, "Dune")
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err := policy.Vote(ctx, "alice", post.ID)
		require.NoError(t, err)
	}

	got, err := store.Get(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), got.Likes)
}

func TestPostStore_GetMissing(t *testing.T) {
	client := setupTestClient(t)
	store := NewPostStore(client, clockwork.NewFakeClock())
	ctx := context.Background()

	_, err := store.Get(ctx, "42")
	assert.ErrorIs(t, err, domain.ErrPostNotFound)
	assert.True(t, apperrors.IsType(err, apperrors.TypeNotFound))

	// a tally without payload is not a post
	_, err = NewUnconditionalVotes(client).Vote(ctx, "alice", "42")
	require.NoError(t, err)
	_, err = store.Get(ctx, "42")
	assert.ErrorIs(t, err, domain.ErrPostNotFound)
}

func TestPostStore_GetAllSkipsMissing(t *testing.T) {
	client := setupTestClient(t)
	store := NewPostStore(client, clockwork.NewFakeClock())
	ctx := context.Background()

	for _, title := range []string{"Dune", "Solaris", "Ubik"} {
		_, err := store.Create(ctx, title)
		require.NoError(t, err)
	}

	posts, err := store.GetAll(ctx, []string{"3", "99", "1"})
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "Ubik", posts[0].Title)
	assert.Equal(t, "Dune", posts[1].Title)

	posts, err = store.GetAll(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestPageStore_SaveListsNewestFirst(t *testing.T) {
	client := setupTestClient(t)
	pages := NewPageStore(client)
	ctx := context.Background()

	require.NoError(t, pages.Save(ctx, "home", []string{"1", "2", "3"}))
	ids, err := pages.Get(ctx, "home")
	require.NoError(t, err)
	assert.Equal(t, []string{"3", "2", "1"}, ids)

	require.NoError(t, pages.Save(ctx, "home", []string{"7"}))
	ids, err = pages.Get(ctx, "home")
	require.NoError(t, err)
	assert.Equal(t, []string{"7"}, ids)

	require.NoError(t, pages.Save(ctx, "home", nil))
	ids, err = pages.Get(ctx, "home")
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestPageStore_AddTrims(t *testing.T) {
	client := setupTestClient(t)
	pages := NewPageStore(client)
	ctx := context.Background()

	for _, id := range []string{"1", "2", "3", "4"} {
		require.NoError(t, pages.Add(ctx, "home", id, 3))
	}

	ids, err := pages.Get(ctx, "home")
	require.NoError(t, err)
	assert.Equal(t, []string{"4", "3", "2"}, ids)
}

func TestPageStore_CountVisit(t *testing.T) {
	client := setupTestClient(t)
	pages := NewPageStore(client)
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		visits, err := pages.CountVisit(ctx, "home")
		require.NoError(t, err)
		assert.Equal(t, want, visits)
	}

	visits, err := pages.CountVisit(ctx, "about")
	require.NoError(t, err)
	assert.Equal(t, int64(1), visits)
}

func TestActivityLog_RecentNewestFirst(t *testing.T) {
	client := setupTestClient(t)
	clock := clockwork.NewFakeClockAt(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	log := NewActivityLog(client, clock, 100)
	ctx := context.Background()

	require.NoError(t, log.Record(ctx, domain.ActivityEvent{UserID: "alice", Action: domain.ActivityUpvote, PostID: "1", Result: "applied"}))
	require.NoError(t, log.Record(ctx, domain.ActivityEvent{UserID: "bob", Action: domain.ActivityDownvote, PostID: "2", Result: "ignored"}))

	events, err := log.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 2)

	assert.Equal(t, "bob", events[0].UserID)
	assert.Equal(t, domain.ActivityDownvote, events[0].Action)
	assert.Equal(t, "ignored", events[0].Result)
	assert.NotEmpty(t, events[0].ID)
	assert.True(t, clock.Now().Equal(events[0].At))
	assert.Equal(t, "alice", events[1].UserID)

	events, err = log.Recent(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestActivityLog_Capped(t *testing.T) {
	client := setupTestClient(t)
	log := NewActivityLog(client, clockwork.NewFakeClock(), 10)
	ctx := context.Background()

	for i := 0; i < 500; i++ {
		require.NoError(t, log.Record(ctx, domain.ActivityEvent{UserID: "alice", Action: domain.ActivityUpvote, PostID: "1"}))
	}

	length, err := client.XLen(ctx, activityStreamKey).Result()
	require.NoError(t, err)
	assert.Less(t, length, int64(500))
}

func TestWiper_RemovesEverything(t *testing.T) {
	client := setupTestClient(t)
	ctx := context.Background()

	_, err := NewPostStore(client, clockwork.NewFakeClock()).Create(ctx, "Dune")
	require.NoError(t, err)
	_, err = NewRanking(client).Increase(ctx, "books:top", 1, "1")
	require.NoError(t, err)

	require.NoError(t, NewWiper(client).Wipe(ctx))

	size, err := client.DBSize(ctx).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(0), size)
}
