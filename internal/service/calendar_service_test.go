package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hornethelper/internal/model"
	"hornethelper/internal/repository"
)

func TestCalendarAddThenRemoveRestoresPriorState(t *testing.T) {
	repo := newFakeCalendarRepo()
	svc := NewCalendarService(repo)
	ctx := context.Background()

	existing := &model.Session{Kind: model.KindDuo, Course: "Art", DateTime: "2025-04-01T09:00"}
	require.NoError(t, svc.Add(ctx, existing, "u1"))
	before := repo.events("u1")

	s := &model.Session{Kind: model.KindDuo, Course: "Physics", DateTime: "2025-04-01T14:30"}
	require.NoError(t, svc.Add(ctx, s, "u1"))

	ev, ok := repo.events("u1")["2025-04-01"]["14.5"]
	require.True(t, ok)
	assert.Equal(t, "Study: Physics", ev.Title)
	assert.Equal(t, model.DuoEventColor, ev.Color)

	require.NoError(t, svc.Remove(ctx, s, "u1"))
	assert.Equal(t, before, repo.events("u1"))
}

func TestCalendarRemoveMissingWritesNothing(t *testing.T) {
	repo := newFakeCalendarRepo()
	svc := NewCalendarService(repo)

	s := &model.Session{Kind: model.KindGroup, Course: "Art", DateTime: "2025-04-01T09:00"}
	require.NoError(t, svc.Remove(context.Background(), s, "u1"))
	assert.Zero(t, repo.saves)
}

func TestCalendarSkipsSessionsWithoutDateTime(t *testing.T) {
	repo := newFakeCalendarRepo()
	svc := NewCalendarService(repo)

	require.NoError(t, svc.Add(context.Background(), &model.Session{Kind: model.KindDuo, Course: "Art"}, "u1"))
	assert.Zero(t, repo.saves)
}

func TestCalendarRetriesOnConflict(t *testing.T) {
	repo := newFakeCalendarRepo()
	svc := NewCalendarService(repo)
	ctx := context.Background()
	s := &model.Session{Kind: model.KindDuo, Course: "Art", DateTime: "2025-04-01T09:00"}

	repo.conflicts = calendarRetries - 1
	require.NoError(t, svc.Add(ctx, s, "u1"))
	assert.Contains(t, repo.events("u1"), "2025-04-01")

	repo.conflicts = calendarRetries
	err := svc.Add(ctx, s, "u2")
	require.ErrorIs(t, err, repository.ErrConflict)
}

func TestCalendarRejectsMalformedDateTime(t *testing.T) {
	svc := NewCalendarService(newFakeCalendarRepo())
	err := svc.Add(context.Background(), &model.Session{Kind: model.KindDuo, DateTime: "2025-04-01T25:00"}, "u1")
	require.Error(t, err)
}
