package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hornethelper/internal/feed"
	"hornethelper/internal/model"
)

func uids(s *model.Session) []string {
	out := make([]string, len(s.Participants))
	for i, p := range s.Participants {
		out[i] = p.UID
	}
	return out
}

func TestDuoSessionFillsAtTwo(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	s, err := h.svc.Create(ctx, model.KindDuo, participant("u1"), &model.CreateSessionRequest{Course: "Calculus I", Capacity: 7})
	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, uids(s))
	assert.Equal(t, model.DuoCapacity, s.Capacity)
	assert.False(t, s.Full)

	s, err = h.svc.Join(ctx, model.KindDuo, s.ID, participant("u2"))
	require.NoError(t, err)
	assert.Equal(t, []string{"u1", "u2"}, uids(s))
	assert.True(t, s.Full)

	_, err = h.svc.Join(ctx, model.KindDuo, s.ID, participant("u3"))
	require.ErrorIs(t, err, ErrSessionFull)

	stored, err := h.sessions.GetByID(ctx, model.KindDuo, s.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"u1", "u2"}, uids(stored))
	assert.True(t, stored.Full)

	assert.Equal(t, []string{"session.created", "session.joined"}, h.events.all())
}

func TestGroupSessionLeaveRecomputesFull(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	s, err := h.svc.Create(ctx, model.KindGroup, participant("u1"), &model.CreateSessionRequest{Course: "Biology", Capacity: 3})
	require.NoError(t, err)

	_, err = h.svc.Join(ctx, model.KindGroup, s.ID, participant("u2"))
	require.NoError(t, err)
	s, err = h.svc.Join(ctx, model.KindGroup, s.ID, participant("u3"))
	require.NoError(t, err)
	assert.True(t, s.Full)

	s, err = h.svc.Leave(ctx, model.KindGroup, s.ID, "u2")
	require.NoError(t, err)
	assert.Equal(t, []string{"u1", "u3"}, uids(s))
	assert.False(t, s.Full)

	local, err := h.svc.Get(ctx, model.KindGroup, s.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"u1", "u3"}, uids(local))
}

func TestDisbandCleansEveryCalendar(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	s, err := h.svc.Create(ctx, model.KindGroup, participant("u1"), &model.CreateSessionRequest{
		Course:   "Chemistry",
		DateTime: "2025-04-01T14:30",
		Capacity: 4,
	})
	require.NoError(t, err)

	ev, ok := h.calendars.events("u1")["2025-04-01"]["14.5"]
	require.True(t, ok)
	assert.Equal(t, "2:30 PM", ev.DisplayTime)
	assert.Equal(t, "Group Study: Chemistry", ev.Title)
	assert.Equal(t, model.GroupEventColor, ev.Color)
	assert.Equal(t, int64(1700000000000), ev.ID)

	_, err = h.svc.Join(ctx, model.KindGroup, s.ID, participant("u2"))
	require.NoError(t, err)
	require.Contains(t, h.calendars.events("u2"), "2025-04-01")

	require.ErrorIs(t, h.svc.Disband(ctx, model.KindGroup, s.ID, "u2"), ErrNotOwner)
	require.NoError(t, h.svc.Disband(ctx, model.KindGroup, s.ID, "u1"))

	assert.Empty(t, h.calendars.events("u1"))
	assert.Empty(t, h.calendars.events("u2"))

	_, err = h.svc.Get(ctx, model.KindGroup, s.ID)
	require.ErrorIs(t, err, ErrSessionNotFound)
	assert.Contains(t, h.hub.closed, ChatTopic(model.KindGroup, s.ID))
	assert.Equal(t, []string{s.ID}, h.messages.deleted)
}

func TestJoinRejectsDuplicateMembership(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	s, err := h.svc.Create(ctx, model.KindGroup, participant("u1"), &model.CreateSessionRequest{Course: "Art", Capacity: 5})
	require.NoError(t, err)

	_, err = h.svc.Join(ctx, model.KindGroup, s.ID, participant("u1"))
	require.ErrorIs(t, err, ErrAlreadyJoined)

	_, err = h.svc.Join(ctx, model.KindGroup, s.ID, participant("u2"))
	require.NoError(t, err)
	_, err = h.svc.Join(ctx, model.KindGroup, s.ID, participant("u2"))
	require.ErrorIs(t, err, ErrAlreadyJoined)

	stored, _ := h.sessions.GetByID(ctx, model.KindGroup, s.ID)
	assert.Equal(t, []string{"u1", "u2"}, uids(stored))
}

func TestConcurrentJoinsNeverExceedCapacity(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	s, err := h.svc.Create(ctx, model.KindGroup, participant("owner"), &model.CreateSessionRequest{Course: "Physics", Capacity: 4})
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = h.svc.Join(ctx, model.KindGroup, s.ID, participant(fmt.Sprintf("u%d", i)))
		}(i)
	}
	wg.Wait()

	joined := 0
	for _, err := range errs {
		if err == nil {
			joined++
			continue
		}
		require.ErrorIs(t, err, ErrSessionFull)
	}
	assert.Equal(t, 3, joined)

	stored, _ := h.sessions.GetByID(ctx, model.KindGroup, s.ID)
	assert.Len(t, stored.Participants, 4)
	assert.True(t, stored.Full)
}

func TestOwnerCannotLeave(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	s, err := h.svc.Create(ctx, model.KindDuo, participant("u1"), &model.CreateSessionRequest{Course: "History"})
	require.NoError(t, err)

	_, err = h.svc.Leave(ctx, model.KindDuo, s.ID, "u1")
	require.ErrorIs(t, err, ErrOwnerCannotLeave)

	_, err = h.svc.Leave(ctx, model.KindDuo, s.ID, "stranger")
	require.ErrorIs(t, err, ErrNotParticipant)

	stored, _ := h.sessions.GetByID(ctx, model.KindDuo, s.ID)
	assert.Equal(t, "u1", stored.OwnerUserID)
	assert.Equal(t, []string{"u1"}, uids(stored))
}

func TestCreateValidation(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	owner := participant("u1")

	cases := []struct {
		name string
		kind model.SessionKind
		req  model.CreateSessionRequest
	}{
		{"group too small", model.KindGroup, model.CreateSessionRequest{Course: "X", Capacity: 2}},
		{"group too large", model.KindGroup, model.CreateSessionRequest{Course: "X", Capacity: 11}},
		{"blank course", model.KindDuo, model.CreateSessionRequest{Course: "   "}},
		{"bad date", model.KindDuo, model.CreateSessionRequest{Course: "X", DateTime: "tomorrow"}},
		{"unknown kind", model.SessionKind("trio"), model.CreateSessionRequest{Course: "X"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := h.svc.Create(ctx, tc.kind, owner, &tc.req)
			require.ErrorIs(t, err, ErrInvalidSession)
		})
	}
}

func TestCreateRollsBackWhenCalendarFails(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	h.calendars.failSaveFor["u1"] = errStoreDown

	_, err := h.svc.Create(ctx, model.KindDuo, participant("u1"), &model.CreateSessionRequest{Course: "Math", DateTime: "2025-04-01T09:00"})
	require.ErrorIs(t, err, errStoreDown)

	all, err := h.sessions.List(ctx, model.KindDuo)
	require.NoError(t, err)
	assert.Empty(t, all)
	assert.Empty(t, h.events.all())
}

func TestJoinRollsBackWhenCalendarFails(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	s, err := h.svc.Create(ctx, model.KindDuo, participant("u1"), &model.CreateSessionRequest{Course: "Math", DateTime: "2025-04-01T09:00"})
	require.NoError(t, err)

	h.calendars.failSaveFor["u2"] = errStoreDown
	_, err = h.svc.Join(ctx, model.KindDuo, s.ID, participant("u2"))
	require.ErrorIs(t, err, errStoreDown)

	stored, _ := h.sessions.GetByID(ctx, model.KindDuo, s.ID)
	assert.Equal(t, []string{"u1"}, uids(stored))

	local, err := h.svc.Get(ctx, model.KindDuo, s.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, uids(local))
	assert.False(t, local.Full)
}

func TestLeaveRestoresCalendarWhenStoreFails(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	s, err := h.svc.Create(ctx, model.KindDuo, participant("u1"), &model.CreateSessionRequest{Course: "Math", DateTime: "2025-04-01T09:00"})
	require.NoError(t, err)
	_, err = h.svc.Join(ctx, model.KindDuo, s.ID, participant("u2"))
	require.NoError(t, err)

	h.sessions.failRemove = errStoreDown
	_, err = h.svc.Leave(ctx, model.KindDuo, s.ID, "u2")
	require.ErrorIs(t, err, errStoreDown)

	assert.Contains(t, h.calendars.events("u2"), "2025-04-01")
	local, err := h.svc.Get(ctx, model.KindDuo, s.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"u1", "u2"}, uids(local))
}

func TestLeaveLostToConcurrentLeaveKeepsCalendarClear(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	s, err := h.svc.Create(ctx, model.KindDuo, participant("u1"), &model.CreateSessionRequest{Course: "Math", DateTime: "2025-04-01T14:30"})
	require.NoError(t, err)
	_, err = h.svc.Join(ctx, model.KindDuo, s.ID, participant("u2"))
	require.NoError(t, err)

	// another tab's leave lands between our read and our update
	h.sessions.beforeRemove = func() {
		_, rerr := h.sessions.RemoveParticipant(ctx, model.KindDuo, s.ID, "u2")
		require.NoError(t, rerr)
	}
	_, err = h.svc.Leave(ctx, model.KindDuo, s.ID, "u2")
	require.ErrorIs(t, err, ErrNotParticipant)

	stored, err := h.sessions.GetByID(ctx, model.KindDuo, s.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, uids(stored))
	assert.Empty(t, h.calendars.events("u2"))
}

func TestDisbandCleansCalendarOfLateJoiner(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	s, err := h.svc.Create(ctx, model.KindGroup, participant("u1"), &model.CreateSessionRequest{
		Course:   "Bio",
		DateTime: "2025-04-01T14:30",
		Capacity: 4,
	})
	require.NoError(t, err)
	_, err = h.svc.Join(ctx, model.KindGroup, s.ID, participant("u2"))
	require.NoError(t, err)

	// u3 joins after the owner's read but before the delete
	h.sessions.beforeDelete = func() {
		_, jerr := h.svc.Join(ctx, model.KindGroup, s.ID, participant("u3"))
		require.NoError(t, jerr)
	}
	require.NoError(t, h.svc.Disband(ctx, model.KindGroup, s.ID, "u1"))

	for _, uid := range []string{"u1", "u2", "u3"} {
		assert.Empty(t, h.calendars.events(uid), uid)
	}
}

func TestJoinClearsCalendarWhenDisbandedMidway(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	s, err := h.svc.Create(ctx, model.KindGroup, participant("u1"), &model.CreateSessionRequest{
		Course:   "Bio",
		DateTime: "2025-04-01T14:30",
		Capacity: 4,
	})
	require.NoError(t, err)

	// the owner disbands after u3 is stored but before u3's calendar write
	h.calendars.beforeSaveFor["u3"] = func() {
		require.NoError(t, h.svc.Disband(ctx, model.KindGroup, s.ID, "u1"))
	}
	_, err = h.svc.Join(ctx, model.KindGroup, s.ID, participant("u3"))
	require.ErrorIs(t, err, ErrSessionNotFound)

	assert.Empty(t, h.calendars.events("u1"))
	assert.Empty(t, h.calendars.events("u3"))
	list, err := h.svc.List(ctx, model.KindGroup)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestFailedJoinResyncsLocalList(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	s, err := h.svc.Create(ctx, model.KindGroup, participant("u1"), &model.CreateSessionRequest{Course: "Art", Capacity: 3})
	require.NoError(t, err)

	// another instance filled the session behind our back
	full := s.Clone()
	full.Participants = append(full.Participants, participant("x"), participant("y"))
	full.Normalize()
	h.sessions.put(full)

	_, err = h.svc.Join(ctx, model.KindGroup, s.ID, participant("u2"))
	require.ErrorIs(t, err, ErrSessionFull)

	local, err := h.svc.Get(ctx, model.KindGroup, s.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"u1", "x", "y"}, uids(local))
	assert.True(t, local.Full)
}

func TestJoinOnVanishedSessionDropsIt(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	s, err := h.svc.Create(ctx, model.KindDuo, participant("u1"), &model.CreateSessionRequest{Course: "Art"})
	require.NoError(t, err)
	_, err = h.sessions.Delete(ctx, model.KindDuo, s.ID)
	require.NoError(t, err)

	_, err = h.svc.Join(ctx, model.KindDuo, s.ID, participant("u2"))
	require.ErrorIs(t, err, ErrSessionNotFound)

	list, err := h.svc.List(ctx, model.KindDuo)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestStoreErrorIsNotARejection(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	s, err := h.svc.Create(ctx, model.KindDuo, participant("u1"), &model.CreateSessionRequest{Course: "Art"})
	require.NoError(t, err)

	h.sessions.failAdd = errStoreDown
	_, err = h.svc.Join(ctx, model.KindDuo, s.ID, participant("u2"))
	require.ErrorIs(t, err, errStoreDown)
	assert.False(t, isRejection(err))
	assert.True(t, isRejection(fmt.Errorf("wrapped: %w", ErrSessionFull)))
}

func TestRunReconcilesFromFeed(t *testing.T) {
	h := newHarness()
	ctx, cancel := context.WithCancel(context.Background())

	h.sessions.put(&model.Session{ID: "a", Kind: model.KindDuo, Course: "Art", OwnerUserID: "u1",
		Participants: []model.Participant{participant("u1")}, Capacity: 2, CreatedAt: time.Unix(10, 0)})

	done := make(chan struct{})
	go func() {
		h.svc.Run(ctx, feed.Options{PollInterval: 10 * time.Millisecond})
		close(done)
	}()

	require.Eventually(t, func() bool {
		list, err := h.svc.List(context.Background(), model.KindDuo)
		return err == nil && len(list) == 1 && list[0].ID == "a"
	}, time.Second, 5*time.Millisecond)

	h.sessions.put(&model.Session{ID: "b", Kind: model.KindDuo, Course: "Bio", OwnerUserID: "u2",
		Participants: []model.Participant{participant("u2")}, Capacity: 2, CreatedAt: time.Unix(20, 0)})

	require.Eventually(t, func() bool {
		list, _ := h.svc.List(context.Background(), model.KindDuo)
		return len(list) == 2 && list[0].ID == "b"
	}, time.Second, 5*time.Millisecond)

	assert.Contains(t, h.hub.types(SessionsTopic(model.KindDuo)), MsgSessionsSnapshot)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestListWithoutFeedReadsStore(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	h.sessions.put(&model.Session{ID: "a", Kind: model.KindGroup, Capacity: 3, CreatedAt: time.Unix(1, 0)})
	list, err := h.svc.List(ctx, model.KindGroup)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.NotNil(t, list[0].Participants)

	_, err = h.svc.List(ctx, model.SessionKind("nope"))
	require.True(t, errors.Is(err, ErrInvalidSession))
}
