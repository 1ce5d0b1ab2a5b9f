package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hornethelper/internal/model"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestSessionCacheSetGetDelete(t *testing.T) {
	_, client := newTestRedis(t)
	c := NewSessionCache(client)
	ctx := context.Background()

	miss, err := c.Get(ctx, model.KindDuo, "s1")
	require.NoError(t, err)
	assert.Nil(t, miss)

	s := &model.Session{
		ID:           "s1",
		Kind:         model.KindDuo,
		Course:       "Physics",
		Capacity:     2,
		Full:         true, // stale, Get recomputes
		Participants: []model.Participant{{UID: "u1"}},
	}
	require.NoError(t, c.Set(ctx, s))

	got, err := c.Get(ctx, model.KindDuo, "s1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Physics", got.Course)
	assert.False(t, got.Full)

	// kinds do not share keys
	other, err := c.Get(ctx, model.KindGroup, "s1")
	require.NoError(t, err)
	assert.Nil(t, other)

	require.NoError(t, c.Delete(ctx, model.KindDuo, "s1"))
	got, err = c.Get(ctx, model.KindDuo, "s1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSessionCacheExpires(t *testing.T) {
	mr, client := newTestRedis(t)
	c := NewSessionCache(client)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, &model.Session{ID: "s1", Kind: model.KindGroup, Capacity: 3}))
	mr.FastForward(11 * time.Minute)

	got, err := c.Get(ctx, model.KindGroup, "s1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRecommendationCacheNormalizesMajor(t *testing.T) {
	_, client := newTestRedis(t)
	c := NewRecommendationCache(client, time.Hour)
	ctx := context.Background()

	videos := []model.Video{{Title: "Intro", URL: "https://www.youtube.com/watch?v=abc"}}
	require.NoError(t, c.SetVideos(ctx, "Computer Science ", videos))

	got, err := c.GetVideos(ctx, "computer science")
	require.NoError(t, err)
	assert.Equal(t, videos, got)

	miss, err := c.GetVideos(ctx, "History")
	require.NoError(t, err)
	assert.Nil(t, miss)
}
