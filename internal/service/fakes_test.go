package service

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"sync"
	"time"

	"hornethelper/internal/model"
	"hornethelper/internal/repository"
)

var errStoreDown = errors.New("store unavailable")

type fakeSessionRepo struct {
	mu     sync.Mutex
	docs   map[model.SessionKind]map[string]*model.Session
	nextID int

	failAdd    error
	failRemove error
	failDelete error

	// run once, outside the lock, before the next call of that operation
	beforeRemove func()
	beforeDelete func()
}

func (r *fakeSessionRepo) takeHook(hook *func()) func() {
	r.mu.Lock()
	defer r.mu.Unlock()
	f := *hook
	*hook = nil
	return f
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{docs: map[model.SessionKind]map[string]*model.Session{
		model.KindDuo:   {},
		model.KindGroup: {},
	}}
}

func (r *fakeSessionRepo) Create(ctx context.Context, session *model.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	if session.ID == "" {
		session.ID = "s" + strconv.Itoa(r.nextID)
	}
	session.CreatedAt = time.Unix(int64(r.nextID), 0)
	session.Normalize()
	r.docs[session.Kind][session.ID] = session.Clone()
	return nil
}

func (r *fakeSessionRepo) GetByID(ctx context.Context, kind model.SessionKind, id string) (*model.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.docs[kind][id]
	if !ok {
		return nil, nil
	}
	return s.Clone(), nil
}

func (r *fakeSessionRepo) List(ctx context.Context, kind model.SessionKind) ([]*model.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*model.Session{}
	for _, s := range r.docs[kind] {
		out = append(out, s.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeSessionRepo) AddParticipant(ctx context.Context, kind model.SessionKind, id string, p model.Participant) (*model.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAdd != nil {
		return nil, r.failAdd
	}
	s, ok := r.docs[kind][id]
	if !ok || s.HasParticipant(p.UID) || len(s.Participants) >= s.Capacity {
		return nil, repository.ErrNoMatch
	}
	s.Participants = append(s.Participants, p)
	s.Normalize()
	return s.Clone(), nil
}

func (r *fakeSessionRepo) RemoveParticipant(ctx context.Context, kind model.SessionKind, id, uid string) (*model.Session, error) {
	if hook := r.takeHook(&r.beforeRemove); hook != nil {
		hook()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failRemove != nil {
		return nil, r.failRemove
	}
	s, ok := r.docs[kind][id]
	if !ok || !s.HasParticipant(uid) || s.OwnerUserID == uid {
		return nil, repository.ErrNoMatch
	}
	kept := []model.Participant{}
	for _, p := range s.Participants {
		if p.UID != uid {
			kept = append(kept, p)
		}
	}
	s.Participants = kept
	s.Normalize()
	return s.Clone(), nil
}

func (r *fakeSessionRepo) Delete(ctx context.Context, kind model.SessionKind, id string) (*model.Session, error) {
	if hook := r.takeHook(&r.beforeDelete); hook != nil {
		hook()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failDelete != nil {
		return nil, r.failDelete
	}
	s, ok := r.docs[kind][id]
	if !ok {
		return nil, repository.ErrNoMatch
	}
	delete(r.docs[kind], id)
	return s.Clone(), nil
}

func (r *fakeSessionRepo) Watch(ctx context.Context, kind model.SessionKind) (<-chan struct{}, error) {
	return nil, errors.New("change streams unsupported")
}

// put stores a session as-is, bypassing the guards
func (r *fakeSessionRepo) put(s *model.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs[s.Kind][s.ID] = s.Clone()
}

type fakeCalendarRepo struct {
	mu        sync.Mutex
	calendars map[string]*model.Calendar
	saves     int

	// failSaveFor makes every save for that uid fail
	failSaveFor map[string]error
	// conflicts makes the next n saves report a concurrent writer
	conflicts int
	// beforeSaveFor runs once, outside the lock, before the next save for that uid
	beforeSaveFor map[string]func()
}

func newFakeCalendarRepo() *fakeCalendarRepo {
	return &fakeCalendarRepo{
		calendars:     map[string]*model.Calendar{},
		failSaveFor:   map[string]error{},
		beforeSaveFor: map[string]func(){},
	}
}

func (r *fakeCalendarRepo) Get(ctx context.Context, uid string) (*model.Calendar, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cal, ok := r.calendars[uid]
	if !ok {
		return &model.Calendar{UserID: uid, Events: model.CalendarEvents{}}, nil
	}
	return &model.Calendar{UserID: uid, Events: cal.Events.Clone(), Version: cal.Version}, nil
}

func (r *fakeCalendarRepo) Save(ctx context.Context, cal *model.Calendar) error {
	r.mu.Lock()
	hook := r.beforeSaveFor[cal.UserID]
	delete(r.beforeSaveFor, cal.UserID)
	r.mu.Unlock()
	if hook != nil {
		hook()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failSaveFor[cal.UserID]; err != nil {
		return err
	}
	if r.conflicts > 0 {
		r.conflicts--
		return repository.ErrConflict
	}
	var version int64
	if stored, ok := r.calendars[cal.UserID]; ok {
		version = stored.Version
	}
	if version != cal.Version {
		return repository.ErrConflict
	}
	cal.Version++
	r.calendars[cal.UserID] = &model.Calendar{UserID: cal.UserID, Events: cal.Events.Clone(), Version: cal.Version}
	r.saves++
	return nil
}

func (r *fakeCalendarRepo) events(uid string) model.CalendarEvents {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cal, ok := r.calendars[uid]; ok {
		return cal.Events.Clone()
	}
	return model.CalendarEvents{}
}

type fakeMessageRepo struct {
	mu       sync.Mutex
	messages []*model.Message
	deleted  []string
}

func (r *fakeMessageRepo) Create(ctx context.Context, msg *model.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if msg.ID == "" {
		msg.ID = "m" + strconv.Itoa(len(r.messages)+1)
	}
	r.messages = append(r.messages, msg)
	return nil
}

func (r *fakeMessageRepo) ListBySession(ctx context.Context, kind model.SessionKind, sessionID string, limit int64) ([]*model.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*model.Message{}
	for _, m := range r.messages {
		if m.Kind == kind && m.SessionID == sessionID {
			out = append(out, m)
		}
	}
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeMessageRepo) DeleteBySession(ctx context.Context, kind model.SessionKind, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleted = append(r.deleted, sessionID)
	kept := r.messages[:0]
	for _, m := range r.messages {
		if !(m.Kind == kind && m.SessionID == sessionID) {
			kept = append(kept, m)
		}
	}
	r.messages = kept
	return nil
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*model.User{}}
}

func (r *fakeUserRepo) Upsert(ctx context.Context, user *model.User) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.users[user.UID]
	if !ok {
		stored = &model.User{UID: user.UID, CreatedAt: time.Now()}
		r.users[user.UID] = stored
	}
	stored.DisplayName = user.DisplayName
	stored.Email = user.Email
	stored.PhotoURL = user.PhotoURL
	copied := *stored
	return &copied, nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, uid string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[uid]
	if !ok {
		return nil, nil
	}
	copied := *u
	return &copied, nil
}

func (r *fakeUserRepo) UpdateMajor(ctx context.Context, uid, major string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[uid]
	if !ok {
		return repository.ErrNoMatch
	}
	u.Major = major
	return nil
}

type broadcastRecord struct {
	Topic   string
	MsgType string
	Payload interface{}
}

type recordingBroadcaster struct {
	mu     sync.Mutex
	sent   []broadcastRecord
	closed []string
}

func (b *recordingBroadcaster) Broadcast(topic, msgType string, payload interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sent = append(b.sent, broadcastRecord{Topic: topic, MsgType: msgType, Payload: payload})
}

func (b *recordingBroadcaster) CloseTopic(topic string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = append(b.closed, topic)
}

func (b *recordingBroadcaster) types(topic string) []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []string
	for _, r := range b.sent {
		if r.Topic == topic {
			out = append(out, r.MsgType)
		}
	}
	return out
}

type recordingPublisher struct {
	mu       sync.Mutex
	subjects []string
}

func (p *recordingPublisher) record(subject string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subjects = append(p.subjects, subject)
	return nil
}

func (p *recordingPublisher) PublishSessionCreated(*model.Session) error {
	return p.record("session.created")
}

func (p *recordingPublisher) PublishSessionJoined(*model.Session, string) error {
	return p.record("session.joined")
}

func (p *recordingPublisher) PublishSessionLeft(*model.Session, string) error {
	return p.record("session.left")
}

func (p *recordingPublisher) PublishSessionDisbanded(*model.Session) error {
	return p.record("session.disbanded")
}

func (p *recordingPublisher) Close() {}

func (p *recordingPublisher) all() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.subjects...)
}

type harness struct {
	sessions  *fakeSessionRepo
	calendars *fakeCalendarRepo
	messages  *fakeMessageRepo
	hub       *recordingBroadcaster
	events    *recordingPublisher
	calendar  *CalendarService
	svc       *SessionService
}

func newHarness() *harness {
	h := &harness{
		sessions:  newFakeSessionRepo(),
		calendars: newFakeCalendarRepo(),
		messages:  &fakeMessageRepo{},
		hub:       &recordingBroadcaster{},
		events:    &recordingPublisher{},
	}
	h.calendar = NewCalendarService(h.calendars)
	h.calendar.now = func() time.Time { return time.UnixMilli(1700000000000) }
	h.svc = NewSessionService(h.sessions, h.messages, h.calendar, nil, h.events)
	h.svc.SetBroadcaster(h.hub)
	return h
}

func participant(uid string) model.Participant {
	return model.Participant{UID: uid, DisplayName: "User " + uid}
}
