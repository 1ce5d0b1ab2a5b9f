package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Calendar colors per session kind
const (
	DuoEventColor   = "#00A7E3"
	GroupEventColor = "#4BC0C0"
)

// CalendarEvent is one entry in a user's calendar
type CalendarEvent struct {
	ID          int64  `json:"id" bson:"id"`
	Title       string `json:"title" bson:"title"`
	Color       string `json:"color" bson:"color"`
	DisplayTime string `json:"displayTime" bson:"displayTime"`
}

// CalendarEvents maps dateKey (YYYY-MM-DD) -> timeKey (fractional hour) -> event.
// Two events in the same slot overwrite each other.
type CalendarEvents map[string]map[string]CalendarEvent

// CalendarSlot is the position of a session in a calendar
type CalendarSlot struct {
	DateKey     string
	Hour        int
	Minute      int
	DisplayTime string
}

// TimeValue is the fractional hour, e.g. 14.5 for 2:30 PM
func (s CalendarSlot) TimeValue() float64 {
	return float64(s.Hour) + float64(s.Minute)/60
}

// TimeKey is TimeValue rendered in its shortest form ("14", "14.5")
func (s CalendarSlot) TimeKey() string {
	return strconv.FormatFloat(s.TimeValue(), 'f', -1, 64)
}

// ParseSlot splits a local date-time string into calendar keys. No timezone shift is applied.
func ParseSlot(dateTime string) (CalendarSlot, error) {
	datePart, timePart, ok := strings.Cut(dateTime, "T")
	if !ok {
		return CalendarSlot{}, fmt.Errorf("invalid dateTime %q: missing time", dateTime)
	}
	if _, err := time.Parse("2006-01-02", datePart); err != nil {
		return CalendarSlot{}, fmt.Errorf("invalid dateTime %q: %w", dateTime, err)
	}

	fields := strings.Split(timePart, ":")
	if len(fields) < 2 {
		return CalendarSlot{}, fmt.Errorf("invalid dateTime %q: expected HH:MM", dateTime)
	}
	hour, err := strconv.Atoi(fields[0])
	if err != nil || hour < 0 || hour > 23 {
		return CalendarSlot{}, fmt.Errorf("invalid dateTime %q: bad hour", dateTime)
	}
	minute, err := strconv.Atoi(fields[1])
	if err != nil || minute < 0 || minute > 59 {
		return CalendarSlot{}, fmt.Errorf("invalid dateTime %q: bad minute", dateTime)
	}

	period := "AM"
	if hour >= 12 {
		period = "PM"
	}
	displayHour := hour % 12
	if displayHour == 0 {
		displayHour = 12
	}

	return CalendarSlot{
		DateKey:     datePart,
		Hour:        hour,
		Minute:      minute,
		DisplayTime: fmt.Sprintf("%d:%02d %s", displayHour, minute, period),
	}, nil
}

// EventTitle is the calendar title for a session
func EventTitle(kind SessionKind, course string) string {
	if kind == KindGroup {
		return "Group Study: " + course
	}
	return "Study: " + course
}

// EventColor is the calendar color for a session kind
func EventColor(kind SessionKind) string {
	if kind == KindGroup {
		return GroupEventColor
	}
	return DuoEventColor
}

// Put writes ev at slot, replacing whatever was there
func (c CalendarEvents) Put(slot CalendarSlot, ev CalendarEvent) {
	day, ok := c[slot.DateKey]
	if !ok {
		day = make(map[string]CalendarEvent)
		c[slot.DateKey] = day
	}
	day[slot.TimeKey()] = ev
}

// Remove deletes the event at slot and drops the day once empty. Reports whether anything was removed.
func (c CalendarEvents) Remove(slot CalendarSlot) bool {
	day, ok := c[slot.DateKey]
	if !ok {
		return false
	}
	key := slot.TimeKey()
	if _, ok := day[key]; !ok {
		return false
	}
	delete(day, key)
	if len(day) == 0 {
		delete(c, slot.DateKey)
	}
	return true
}

// Get returns the event at slot
func (c CalendarEvents) Get(slot CalendarSlot) (CalendarEvent, bool) {
	ev, ok := c[slot.DateKey][slot.TimeKey()]
	return ev, ok
}

// Clone deep-copies the map
func (c CalendarEvents) Clone() CalendarEvents {
	out := make(CalendarEvents, len(c))
	for date, day := range c {
		d := make(map[string]CalendarEvent, len(day))
		for k, v := range day {
			d[k] = v
		}
		out[date] = d
	}
	return out
}

// Calendar is a user's calendar document
type Calendar struct {
	UserID  string         `json:"userId"`
	Events  CalendarEvents `json:"events"`
	Version int64          `json:"-"`
}
