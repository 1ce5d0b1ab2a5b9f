package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"hornethelper/internal/model"
	"hornethelper/internal/repository"
)

const calendarRetries = 3

// CalendarService mirrors session membership into each user's calendar
type CalendarService struct {
	calendarRepo repository.CalendarRepo
	now          func() time.Time
}

// NewCalendarService creates a new calendar service
func NewCalendarService(calendarRepo repository.CalendarRepo) *CalendarService {
	return &CalendarService{
		calendarRepo: calendarRepo,
		now:          time.Now,
	}
}

// Get returns the user's calendar, empty if they have none yet
func (s *CalendarService) Get(ctx context.Context, uid string) (*model.Calendar, error) {
	cal, err := s.calendarRepo.Get(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("failed to get calendar: %w", err)
	}
	return cal, nil
}

// Add writes the session into the user's calendar, replacing any event in the same slot.
// Sessions without a date-time are skipped.
func (s *CalendarService) Add(ctx context.Context, session *model.Session, uid string) error {
	if session.DateTime == "" {
		return nil
	}
	slot, err := model.ParseSlot(session.DateTime)
	if err != nil {
		return err
	}

	ev := model.CalendarEvent{
		ID:          s.now().UnixMilli(),
		Title:       model.EventTitle(session.Kind, session.Course),
		Color:       model.EventColor(session.Kind),
		DisplayTime: slot.DisplayTime,
	}
	return s.update(ctx, uid, func(events model.CalendarEvents) bool {
		events.Put(slot, ev)
		return true
	})
}

// Remove deletes the session's slot from the user's calendar. Nothing is written if the slot is empty.
func (s *CalendarService) Remove(ctx context.Context, session *model.Session, uid string) error {
	if session.DateTime == "" {
		return nil
	}
	slot, err := model.ParseSlot(session.DateTime)
	if err != nil {
		return err
	}

	return s.update(ctx, uid, func(events model.CalendarEvents) bool {
		return events.Remove(slot)
	})
}

// update runs a version-checked read-modify-write, retrying when another writer got in first
func (s *CalendarService) update(ctx context.Context, uid string, mutate func(model.CalendarEvents) bool) error {
	var err error
	for attempt := 1; attempt <= calendarRetries; attempt++ {
		var cal *model.Calendar
		cal, err = s.calendarRepo.Get(ctx, uid)
		if err != nil {
			return fmt.Errorf("failed to read calendar: %w", err)
		}
		if cal.Events == nil {
			cal.Events = model.CalendarEvents{}
		}
		if !mutate(cal.Events) {
			return nil
		}

		err = s.calendarRepo.Save(ctx, cal)
		if err == nil {
			return nil
		}
		if !errors.Is(err, repository.ErrConflict) {
			return fmt.Errorf("failed to save calendar: %w", err)
		}
		slog.DebugContext(ctx, "Calendar write conflict, retrying", "uid", uid, "attempt", attempt)
	}
	return fmt.Errorf("failed to save calendar after %d attempts: %w", calendarRetries, err)
}
