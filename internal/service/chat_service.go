package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"hornethelper/internal/model"
	"hornethelper/internal/repository"
)

const (
	defaultMessageLimit = 200
	maxMessageLength    = 2000
)

// ChatService handles the per-session chat. Only participants may read or post.
type ChatService struct {
	messageRepo    repository.MessageRepo
	sessionSvc     *SessionService
	recommendation *RecommendationService
	broadcaster    Broadcaster
	now            func() time.Time
}

// NewChatService creates a new chat service
func NewChatService(messageRepo repository.MessageRepo, sessionSvc *SessionService, recommendation *RecommendationService) *ChatService {
	return &ChatService{
		messageRepo:    messageRepo,
		sessionSvc:     sessionSvc,
		recommendation: recommendation,
		broadcaster:    noopBroadcaster{},
		now:            time.Now,
	}
}

// SetBroadcaster sets the WebSocket broadcaster (called after hub is created)
func (s *ChatService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// Authorize checks that uid may use the chat of the session
func (s *ChatService) Authorize(ctx context.Context, kind model.SessionKind, sessionID, uid string) (*model.Session, error) {
	session, err := s.sessionSvc.Get(ctx, kind, sessionID)
	if err != nil {
		return nil, err
	}
	if !session.HasParticipant(uid) {
		return nil, ErrNotParticipant
	}
	return session, nil
}

// List returns the chat history, oldest first
func (s *ChatService) List(ctx context.Context, kind model.SessionKind, sessionID, uid string, limit int64) ([]*model.Message, error) {
	if _, err := s.Authorize(ctx, kind, sessionID, uid); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > defaultMessageLimit {
		limit = defaultMessageLimit
	}

	messages, err := s.messageRepo.ListBySession(ctx, kind, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return messages, nil
}

// Send posts a message from author
func (s *ChatService) Send(ctx context.Context, kind model.SessionKind, sessionID string, author model.Participant, text string) (*model.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}
	if len(text) > maxMessageLength {
		return nil, ErrMessageTooLong
	}
	if _, err := s.Authorize(ctx, kind, sessionID, author.UID); err != nil {
		return nil, err
	}
	return s.post(ctx, kind, sessionID, author, text)
}

// AskAssistant asks the assistant on behalf of a participant and posts its answer to the chat
func (s *ChatService) AskAssistant(ctx context.Context, kind model.SessionKind, sessionID, uid, question string) (*model.Message, error) {
	if strings.TrimSpace(question) == "" {
		return nil, ErrEmptyMessage
	}
	if _, err := s.Authorize(ctx, kind, sessionID, uid); err != nil {
		return nil, err
	}

	answer, err := s.recommendation.Ask(ctx, question)
	if err != nil {
		return nil, err
	}
	return s.post(ctx, kind, sessionID, model.AssistantParticipant, answer.Response)
}

func (s *ChatService) post(ctx context.Context, kind model.SessionKind, sessionID string, author model.Participant, text string) (*model.Message, error) {
	msg := &model.Message{
		SessionID:   sessionID,
		Kind:        kind,
		Text:        text,
		UserID:      author.UID,
		DisplayName: author.DisplayName,
		PhotoURL:    author.PhotoURL,
		Timestamp:   s.now().UTC(),
	}
	if err := s.messageRepo.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to save message: %w", err)
	}

	s.broadcaster.Broadcast(ChatTopic(kind, sessionID), MsgChatMessage, msg)
	return msg, nil
}
