package events

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"hornethelper/internal/model"
)

// Subjects
const (
	SubjectSessionCreated   = "session.created"
	SubjectSessionJoined    = "session.joined"
	SubjectSessionLeft      = "session.left"
	SubjectSessionDisbanded = "session.disbanded"
)

// EventPublisher announces session lifecycle changes to other services
type EventPublisher interface {
	PublishSessionCreated(session *model.Session) error
	PublishSessionJoined(session *model.Session, userID string) error
	PublishSessionLeft(session *model.Session, userID string) error
	PublishSessionDisbanded(session *model.Session) error
	Close()
}

// SessionEvent is the payload for every lifecycle subject
type SessionEvent struct {
	EventType    string            `json:"event_type"`
	Kind         model.SessionKind `json:"kind"`
	SessionID    string            `json:"session_id"`
	Course       string            `json:"course"`
	DateTime     string            `json:"date_time,omitempty"`
	UserID       string            `json:"user_id,omitempty"`
	Participants []string          `json:"participants"`
	Full         bool              `json:"full"`
	OccurredAt   time.Time         `json:"occurred_at"`
}

// NewSessionEvent builds the payload for a subject
func NewSessionEvent(subject string, session *model.Session, userID string) SessionEvent {
	uids := make([]string, len(session.Participants))
	for i, p := range session.Participants {
		uids[i] = p.UID
	}
	return SessionEvent{
		EventType:    subject,
		Kind:         session.Kind,
		SessionID:    session.ID,
		Course:       session.Course,
		DateTime:     session.DateTime,
		UserID:       userID,
		Participants: uids,
		Full:         session.IsFull(),
		OccurredAt:   time.Now().UTC(),
	}
}

type NatsPublisher struct {
	conn *nats.Conn
}

func NewNatsPublisher(natsURL string) (EventPublisher, error) {
	nc, err := nats.Connect(natsURL, nats.Name("hornet-helper"))
	if err != nil {
		return nil, err
	}

	return &NatsPublisher{conn: nc}, nil
}

func (p *NatsPublisher) publish(subject string, session *model.Session, userID string) error {
	eventJSON, err := json.Marshal(NewSessionEvent(subject, session, userID))
	if err != nil {
		slog.Error("Error marshalling event JSON", "subject", subject, "error", err)
		return err
	}

	if err := p.conn.Publish(subject, eventJSON); err != nil {
		slog.Error("Error publishing to NATS", "subject", subject, "error", err)
		return err
	}

	slog.Debug("Published event to NATS", "subject", subject, "session_id", session.ID)
	return nil
}

func (p *NatsPublisher) PublishSessionCreated(session *model.Session) error {
	return p.publish(SubjectSessionCreated, session, session.OwnerUserID)
}

func (p *NatsPublisher) PublishSessionJoined(session *model.Session, userID string) error {
	return p.publish(SubjectSessionJoined, session, userID)
}

func (p *NatsPublisher) PublishSessionLeft(session *model.Session, userID string) error {
	return p.publish(SubjectSessionLeft, session, userID)
}

func (p *NatsPublisher) PublishSessionDisbanded(session *model.Session) error {
	return p.publish(SubjectSessionDisbanded, session, session.OwnerUserID)
}

func (p *NatsPublisher) Close() {
	if err := p.conn.Drain(); err != nil {
		p.conn.Close()
	}
}

// NoopPublisher is used when no broker is configured
type NoopPublisher struct{}

func (NoopPublisher) PublishSessionCreated(*model.Session) error { return nil }
func (NoopPublisher) PublishSessionJoined(*model.Session, string) error { return nil }
func (NoopPublisher) PublishSessionLeft(*model.Session, string) error { return nil }
func (NoopPublisher) PublishSessionDisbanded(*model.Session) error { return nil }
func (NoopPublisher) Close() {}
