package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"hornethelper/internal/cache"
	"hornethelper/internal/events"
	"hornethelper/internal/feed"
	"hornethelper/internal/metrics"
	"hornethelper/internal/model"
	"hornethelper/internal/repository"
	"hornethelper/internal/sessionlist"
)

// session state kept per kind
type kindState struct {
	list  *sessionlist.List
	ready atomic.Bool
}

// SessionService orchestrates session membership across the store, the calendars and the live list.
// Local state is only committed after the store confirms a mutation.
type SessionService struct {
	sessionRepo  repository.SessionRepo
	messageRepo  repository.MessageRepo
	calendarSvc  *CalendarService
	sessionCache cache.SessionCache
	publisher    events.EventPublisher
	broadcaster  Broadcaster
	tracer       trace.Tracer

	kinds map[model.SessionKind]*kindState
}

// NewSessionService creates a new session service. sessionCache may be nil.
func NewSessionService(
	sessionRepo repository.SessionRepo,
	messageRepo repository.MessageRepo,
	calendarSvc *CalendarService,
	sessionCache cache.SessionCache,
	publisher events.EventPublisher,
) *SessionService {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	kinds := make(map[model.SessionKind]*kindState, len(model.Kinds))
	for _, k := range model.Kinds {
		kinds[k] = &kindState{list: sessionlist.New()}
	}
	return &SessionService{
		sessionRepo:  sessionRepo,
		messageRepo:  messageRepo,
		calendarSvc:  calendarSvc,
		sessionCache: sessionCache,
		publisher:    publisher,
		broadcaster:  noopBroadcaster{},
		tracer:       otel.Tracer("hornethelper/internal/service"),
		kinds:        kinds,
	}
}

// SetBroadcaster sets the WebSocket broadcaster (called after hub is created)
func (s *SessionService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// Run keeps the local lists in sync with the store until ctx is cancelled
func (s *SessionService) Run(ctx context.Context, opts feed.Options) {
	var wg sync.WaitGroup
	for kind, st := range s.kinds {
		sub := feed.Subscribe(ctx, s.sessionRepo, kind, opts)
		wg.Add(1)
		go func(kind model.SessionKind, st *kindState, sub *feed.Subscription) {
			defer wg.Done()
			defer sub.Cancel()
			for snap := range sub.C {
				st.list.Reconcile(snap.Sessions)
				st.ready.Store(true)
				s.broadcaster.Broadcast(SessionsTopic(kind), MsgSessionsSnapshot, st.list.Snapshot())
			}
		}(kind, st, sub)
	}
	wg.Wait()
}

func (s *SessionService) state(kind model.SessionKind) (*kindState, error) {
	st, ok := s.kinds[kind]
	if !ok {
		return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidSession, kind)
	}
	return st, nil
}

// List returns every session of a kind, newest first
func (s *SessionService) List(ctx context.Context, kind model.SessionKind) ([]*model.Session, error) {
	st, err := s.state(kind)
	if err != nil {
		return nil, err
	}
	if st.ready.Load() {
		return st.list.Snapshot(), nil
	}

	sessions, err := s.sessionRepo.List(ctx, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	st.list.Reconcile(sessions)
	return st.list.Snapshot(), nil
}

// Get returns one session from the local list, the cache or the store
func (s *SessionService) Get(ctx context.Context, kind model.SessionKind, id string) (*model.Session, error) {
	st, err := s.state(kind)
	if err != nil {
		return nil, err
	}
	if session := st.list.Get(id); session != nil {
		return session, nil
	}

	if s.sessionCache != nil {
		cached, err := s.sessionCache.Get(ctx, kind, id)
		if err != nil {
			slog.WarnContext(ctx, "Session cache read failed", "kind", kind, "id", id, "error", err)
		} else if cached != nil {
			return cached, nil
		}
	}

	return s.load(ctx, kind, id)
}

// Create stores a new session owned by owner and puts it on the owner's calendar
func (s *SessionService) Create(ctx context.Context, kind model.SessionKind, owner model.Participant, req *model.CreateSessionRequest) (session *model.Session, err error) {
	ctx, span := s.startSpan(ctx, "SessionService.Create", kind, "")
	defer func() { s.finish(span, "create", kind, err) }()

	if _, err = s.state(kind); err != nil {
		return nil, err
	}
	capacity, cerr := model.CapacityFor(kind, req.Capacity)
	if cerr != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSession, cerr)
	}
	course := strings.TrimSpace(req.Course)
	if course == "" {
		return nil, fmt.Errorf("%w: course is required", ErrInvalidSession)
	}
	if req.DateTime != "" {
		if _, perr := model.ParseSlot(req.DateTime); perr != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidSession, perr)
		}
	}

	session = &model.Session{
		Kind:         kind,
		Course:       course,
		Major:        strings.TrimSpace(req.Major),
		Location:     strings.TrimSpace(req.Location),
		DateTime:     req.DateTime,
		OwnerUserID:  owner.UID,
		Participants: []model.Participant{owner},
		Capacity:     capacity,
		Active:       true,
	}
	if err = s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	if err = s.calendarSvc.Add(ctx, session, owner.UID); err != nil {
		if _, derr := s.sessionRepo.Delete(ctx, kind, session.ID); derr != nil {
			slog.ErrorContext(ctx, "Failed to roll back session after calendar error", "kind", kind, "id", session.ID, "error", derr)
		}
		return nil, fmt.Errorf("failed to add session to calendar: %w", err)
	}

	s.commit(ctx, session)
	if perr := s.publisher.PublishSessionCreated(session); perr != nil {
		slog.WarnContext(ctx, "Failed to publish session event", "subject", events.SubjectSessionCreated, "error", perr)
	}
	return session.Clone(), nil
}

// Join adds the user to a session that has room and puts it on their calendar
func (s *SessionService) Join(ctx context.Context, kind model.SessionKind, id string, user model.Participant) (session *model.Session, err error) {
	ctx, span := s.startSpan(ctx, "SessionService.Join", kind, id)
	defer func() { s.finish(span, "join", kind, err) }()

	current, err := s.load(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	if current.HasParticipant(user.UID) {
		return nil, ErrAlreadyJoined
	}
	if current.IsFull() {
		return nil, ErrSessionFull
	}

	updated, err := s.sessionRepo.AddParticipant(ctx, kind, id, user)
	if errors.Is(err, repository.ErrNoMatch) {
		return nil, s.classifyJoin(ctx, kind, id, user.UID)
	}
	if err != nil {
		s.resync(ctx, kind, id)
		return nil, fmt.Errorf("failed to join session: %w", err)
	}

	if err = s.calendarSvc.Add(ctx, updated, user.UID); err != nil {
		if _, rerr := s.sessionRepo.RemoveParticipant(ctx, kind, id, user.UID); rerr != nil {
			slog.ErrorContext(ctx, "Failed to roll back join after calendar error", "kind", kind, "id", id, "uid", user.UID, "error", rerr)
		}
		s.resync(ctx, kind, id)
		return nil, fmt.Errorf("failed to add session to calendar: %w", err)
	}

	// a disband that deleted the session before the calendar write could not clean this entry
	if err = s.ensureExists(ctx, updated, user.UID); err != nil {
		return nil, err
	}

	s.commit(ctx, updated)
	if perr := s.publisher.PublishSessionJoined(updated, user.UID); perr != nil {
		slog.WarnContext(ctx, "Failed to publish session event", "subject", events.SubjectSessionJoined, "error", perr)
	}
	return updated.Clone(), nil
}

// Leave removes a non-owner participant and takes the session off their calendar
func (s *SessionService) Leave(ctx context.Context, kind model.SessionKind, id, uid string) (session *model.Session, err error) {
	ctx, span := s.startSpan(ctx, "SessionService.Leave", kind, id)
	defer func() { s.finish(span, "leave", kind, err) }()

	current, err := s.load(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	if !current.HasParticipant(uid) {
		return nil, ErrNotParticipant
	}
	if current.IsOwner(uid) {
		return nil, ErrOwnerCannotLeave
	}

	if err = s.calendarSvc.Remove(ctx, current, uid); err != nil {
		s.resync(ctx, kind, id)
		return nil, fmt.Errorf("failed to remove session from calendar: %w", err)
	}

	updated, err := s.sessionRepo.RemoveParticipant(ctx, kind, id, uid)
	if errors.Is(err, repository.ErrNoMatch) {
		latest, lerr := s.load(ctx, kind, id)
		if lerr != nil {
			return nil, lerr
		}
		if latest.HasParticipant(uid) {
			s.restoreCalendar(ctx, latest, uid)
		}
		return nil, leaveRejection(latest, uid)
	}
	if err != nil {
		s.restoreCalendar(ctx, current, uid)
		s.resync(ctx, kind, id)
		return nil, fmt.Errorf("failed to leave session: %w", err)
	}

	s.commit(ctx, updated)
	if perr := s.publisher.PublishSessionLeft(updated, uid); perr != nil {
		slog.WarnContext(ctx, "Failed to publish session event", "subject", events.SubjectSessionLeft, "error", perr)
	}
	return updated.Clone(), nil
}

// Disband deletes a session. Only the owner may do this. Every participant's calendar
// and the session chat are cleaned up best effort once the delete is confirmed.
func (s *SessionService) Disband(ctx context.Context, kind model.SessionKind, id, uid string) (err error) {
	ctx, span := s.startSpan(ctx, "SessionService.Disband", kind, id)
	defer func() { s.finish(span, "disband", kind, err) }()

	current, err := s.load(ctx, kind, id)
	if err != nil {
		return err
	}
	if !current.IsOwner(uid) {
		return ErrNotOwner
	}

	deleted, err := s.sessionRepo.Delete(ctx, kind, id)
	if err != nil {
		if errors.Is(err, repository.ErrNoMatch) {
			s.forget(ctx, kind, id)
			return ErrSessionNotFound
		}
		return fmt.Errorf("failed to disband session: %w", err)
	}

	// clean up from the deleted document so late joiners are included
	var cleanup []error
	for _, p := range deleted.Participants {
		if cerr := s.calendarSvc.Remove(ctx, deleted, p.UID); cerr != nil {
			cleanup = append(cleanup, fmt.Errorf("calendar of %s: %w", p.UID, cerr))
		}
	}
	if s.messageRepo != nil {
		if merr := s.messageRepo.DeleteBySession(ctx, kind, id); merr != nil {
			cleanup = append(cleanup, fmt.Errorf("messages: %w", merr))
		}
	}
	if cerr := errors.Join(cleanup...); cerr != nil {
		slog.WarnContext(ctx, "Incomplete cleanup after disband", "kind", kind, "id", id, "error", cerr)
	}

	s.forget(ctx, kind, id)
	s.broadcaster.Broadcast(SessionsTopic(kind), MsgSessionDisbanded, map[string]string{"id": id})
	s.broadcaster.Broadcast(ChatTopic(kind, id), MsgSessionDisbanded, map[string]string{"id": id})
	s.broadcaster.CloseTopic(ChatTopic(kind, id))

	if perr := s.publisher.PublishSessionDisbanded(deleted); perr != nil {
		slog.WarnContext(ctx, "Failed to publish session event", "subject", events.SubjectSessionDisbanded, "error", perr)
	}
	return nil
}

// load reads the authoritative document and refreshes local state with it
func (s *SessionService) load(ctx context.Context, kind model.SessionKind, id string) (*model.Session, error) {
	if _, err := s.state(kind); err != nil {
		return nil, err
	}
	session, err := s.sessionRepo.GetByID(ctx, kind, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil {
		s.forget(ctx, kind, id)
		return nil, ErrSessionNotFound
	}
	s.remember(ctx, session)
	return session, nil
}

// resync re-reads a session after a failed mutation so local state matches the store
func (s *SessionService) resync(ctx context.Context, kind model.SessionKind, id string) {
	if _, err := s.load(ctx, kind, id); err != nil && !errors.Is(err, ErrSessionNotFound) {
		slog.WarnContext(ctx, "Failed to resync session", "kind", kind, "id", id, "error", err)
	}
}

// classifyJoin explains why a guarded join matched nothing
func (s *SessionService) classifyJoin(ctx context.Context, kind model.SessionKind, id, uid string) error {
	current, err := s.load(ctx, kind, id)
	if err != nil {
		return err
	}
	switch {
	case current.HasParticipant(uid):
		return ErrAlreadyJoined
	case current.IsFull():
		return ErrSessionFull
	}
	return fmt.Errorf("failed to join session: %w", repository.ErrNoMatch)
}

// leaveRejection explains why a guarded leave matched nothing, given the re-read document
func leaveRejection(latest *model.Session, uid string) error {
	switch {
	case latest.IsOwner(uid):
		return ErrOwnerCannotLeave
	case !latest.HasParticipant(uid):
		return ErrNotParticipant
	}
	return fmt.Errorf("failed to leave session: %w", repository.ErrNoMatch)
}

func (s *SessionService) restoreCalendar(ctx context.Context, session *model.Session, uid string) {
	if err := s.calendarSvc.Add(ctx, session, uid); err != nil {
		slog.ErrorContext(ctx, "Failed to restore calendar after leave error", "kind", session.Kind, "id", session.ID, "uid", uid, "error", err)
	}
}

// ensureExists re-reads a session after a member's calendar was written. If the session is gone,
// the entry is taken back out and ErrSessionNotFound returned.
func (s *SessionService) ensureExists(ctx context.Context, session *model.Session, uid string) error {
	latest, err := s.sessionRepo.GetByID(ctx, session.Kind, session.ID)
	if err != nil {
		// the disband cleanup still covers us if the session is deleted later
		slog.WarnContext(ctx, "Failed to confirm session after join", "id", session.ID, "error", err)
		return nil
	}
	if latest != nil {
		return nil
	}
	if rerr := s.calendarSvc.Remove(ctx, session, uid); rerr != nil {
		slog.ErrorContext(ctx, "Failed to clear calendar of disbanded session", "id", session.ID, "uid", uid, "error", rerr)
	}
	s.forget(ctx, session.Kind, session.ID)
	return ErrSessionNotFound
}

// commit records a confirmed document locally and pushes it to listeners
func (s *SessionService) commit(ctx context.Context, session *model.Session) {
	s.remember(ctx, session)
	s.broadcaster.Broadcast(SessionsTopic(session.Kind), MsgSessionUpdated, session)
}

func (s *SessionService) remember(ctx context.Context, session *model.Session) {
	s.kinds[session.Kind].list.Merge(session)
	if s.sessionCache != nil {
		if err := s.sessionCache.Set(ctx, session); err != nil {
			slog.WarnContext(ctx, "Session cache write failed", "id", session.ID, "error", err)
		}
	}
}

func (s *SessionService) forget(ctx context.Context, kind model.SessionKind, id string) {
	s.kinds[kind].list.Drop(id)
	if s.sessionCache != nil {
		if err := s.sessionCache.Delete(ctx, kind, id); err != nil {
			slog.WarnContext(ctx, "Session cache delete failed", "id", id, "error", err)
		}
	}
}

func (s *SessionService) startSpan(ctx context.Context, name string, kind model.SessionKind, id string) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, name, trace.WithAttributes(
		attribute.String("session.kind", string(kind)),
		attribute.String("session.id", id),
	))
}

func (s *SessionService) finish(span trace.Span, op string, kind model.SessionKind, err error) {
	result := metrics.ResultOK
	switch {
	case err == nil:
	case isRejection(err):
		result = metrics.ResultRejected
	default:
		result = metrics.ResultError
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	metrics.ObserveSessionOp(op, string(kind), result)
	span.End()
}

// isRejection reports whether err is a business rule refusal rather than a failure
func isRejection(err error) bool {
	for _, target := range []error{
		ErrSessionNotFound, ErrSessionFull, ErrAlreadyJoined, ErrNotParticipant,
		ErrOwnerCannotLeave, ErrNotOwner, ErrInvalidSession,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
