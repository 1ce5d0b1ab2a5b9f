package model

import (
	"fmt"
	"time"
)

// SessionKind distinguishes pairwise sessions from capacity-bounded groups
type SessionKind string

const (
	KindDuo   SessionKind = "duo"
	KindGroup SessionKind = "group"
)

// Capacity rules
const (
	DuoCapacity      = 2
	MinGroupCapacity = 3
	MaxGroupCapacity = 10
)

// Kinds lists every session kind, in display order
var Kinds = []SessionKind{KindDuo, KindGroup}

// ParseKind validates a kind coming from a URL or request body
func ParseKind(s string) (SessionKind, error) {
	switch SessionKind(s) {
	case KindDuo, KindGroup:
		return SessionKind(s), nil
	}
	return "", fmt.Errorf("unknown session kind %q", s)
}

// Collection returns the document collection backing this kind
func (k SessionKind) Collection() string {
	if k == KindGroup {
		return "groupSessions"
	}
	return "sessions"
}

// Participant is the public summary of a user inside a session
type Participant struct {
	UID         string `json:"uid" bson:"uid"`
	DisplayName string `json:"displayName" bson:"displayName"`
	PhotoURL    string `json:"photoURL" bson:"photoURL"`
}

// Session is a scheduled study session
type Session struct {
	ID           string        `json:"id" bson:"_id,omitempty"`
	Kind         SessionKind   `json:"kind" bson:"kind"`
	Course       string        `json:"course" bson:"course"`
	Major        string        `json:"major" bson:"major"`
	Location     string        `json:"location" bson:"location"`
	DateTime     string        `json:"dateTime" bson:"dateTime"` // local wall clock, e.g. 2025-04-01T14:30
	OwnerUserID  string        `json:"ownerUserId" bson:"ownerUserId"`
	Participants []Participant `json:"participants" bson:"participants"`
	Capacity     int           `json:"capacity" bson:"capacity"`
	Full         bool          `json:"full" bson:"full"`
	Active       bool          `json:"active" bson:"active"`
	CreatedAt    time.Time     `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt" bson:"updatedAt"`
}

// CapacityFor resolves the capacity for a new session of the given kind.
// Duo sessions ignore the requested value.
func CapacityFor(kind SessionKind, requested int) (int, error) {
	switch kind {
	case KindDuo:
		return DuoCapacity, nil
	case KindGroup:
		if requested < MinGroupCapacity || requested > MaxGroupCapacity {
			return 0, fmt.Errorf("group capacity must be between %d and %d, got %d", MinGroupCapacity, MaxGroupCapacity, requested)
		}
		return requested, nil
	}
	return 0, fmt.Errorf("unknown session kind %q", kind)
}

// IsFull computes fullness from the participant list; the stored Full flag is a cache of this
func (s *Session) IsFull() bool {
	return len(s.Participants) >= s.Capacity
}

// Normalize recomputes derived state. Call after every read and every mutation.
func (s *Session) Normalize() {
	if s.Participants == nil {
		s.Participants = []Participant{}
	}
	s.Full = s.IsFull()
}

// HasParticipant reports whether uid is a member
func (s *Session) HasParticipant(uid string) bool {
	for _, p := range s.Participants {
		if p.UID == uid {
			return true
		}
	}
	return false
}

// IsOwner reports whether uid created the session
func (s *Session) IsOwner(uid string) bool {
	return s.OwnerUserID != "" && s.OwnerUserID == uid
}

// Clone returns a deep copy safe to hand out of a shared cache
func (s *Session) Clone() *Session {
	c := *s
	c.Participants = make([]Participant, len(s.Participants))
	copy(c.Participants, s.Participants)
	return &c
}

// CreateSessionRequest is the request body for creating a session
type CreateSessionRequest struct {
	Course   string `json:"course" validate:"required,max=100"`
	Major    string `json:"major" validate:"omitempty,max=100"`
	Location string `json:"location" validate:"omitempty,max=200"`
	DateTime string `json:"dateTime" validate:"omitempty,max=32"`
	// Capacity is only read for group sessions
	Capacity int `json:"capacity" validate:"omitempty,min=0,max=10"`
}
