package redis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRanking_TopMembers(t *testing.T) {
	client := setupTestClient(t)
	ranking := NewRanking(client)
	ctx := context.Background()

	_, err := ranking.Increase(ctx, "s", 3, "a")
	require.NoError(t, err)
	_, err = ranking.Increase(ctx, "s", 5, "b")
	require.NoError(t, err)

	top, err := ranking.GetRatings(ctx, "s", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, top)

	score, err := ranking.Increase(ctx, "s", 4, "a")
	require.NoError(t, err)
	assert.Equal(t, float64(7), score)

	top, err = ranking.GetRatings(ctx, "s", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, top)
}

func TestRanking_NegativeAmount(t *testing.T) {
	client := setupTestClient(t)
	ranking := NewRanking(client)
	ctx := context.Background()

	_, err := ranking.Increase(ctx, "s", 1, "a")
	require.NoError(t, err)
	score, err := ranking.Increase(ctx, "s", -2, "a")
	require.NoError(t, err)
	assert.Equal(t, float64(-1), score)

	score, ok, err := ranking.Score(ctx, "s", "a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, float64(-1), score)
}

func TestRanking_EmptyScope(t *testing.T) {
	client := setupTestClient(t)
	ranking := NewRanking(client)
	ctx := context.Background()

	top, err := ranking.GetRatings(ctx, "nobody", 3)
	require.NoError(t, err)
	assert.Empty(t, top)

	_, ok, err := ranking.Score(ctx, "nobody", "a")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRanking_CountLargerThanScope(t *testing.T) {
	client := setupTestClient(t)
	ranking := NewRanking(client)
	ctx := context.Background()

	for _, member := range []string{"a", "b"} {
		_, err := ranking.Increase(ctx, "s", 1, member)
		require.NoError(t, err)
	}

	top, err := ranking.GetRatings(ctx, "s", 10)
	require.NoError(t, err)
	// equal scores list the lexically greater member first
	assert.Equal(t, []string{"b", "a"}, top)
}

func TestRanking_ScopesAreIndependent(t *testing.T) {
	client := setupTestClient(t)
	ranking := NewRanking(client)
	ctx := context.Background()

	_, err := ranking.Increase(ctx, "books", 1, "a")
	require.NoError(t, err)
	_, err = ranking.Increase(ctx, "films", 1, "z")
	require.NoError(t, err)

	top, err := ranking.GetRatings(ctx, "books", 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, top)
}
