package service

import "hornethelper/internal/model"

// Broadcaster interface for WebSocket broadcasting (avoids import cycle)
type Broadcaster interface {
	Broadcast(topic string, msgType string, payload interface{})
	CloseTopic(topic string)
}

// Push message types
const (
	MsgSessionsSnapshot = "sessions_snapshot"
	MsgSessionUpdated   = "session_updated"
	MsgSessionDisbanded = "session_disbanded"
	MsgChatMessage      = "chat_message"
)

// SessionsTopic carries list snapshots of one kind
func SessionsTopic(kind model.SessionKind) string {
	return "sessions:" + string(kind)
}

// ChatTopic carries the chat of one session
func ChatTopic(kind model.SessionKind, sessionID string) string {
	return "chat:" + string(kind) + ":" + sessionID
}

type noopBroadcaster struct{}

func (noopBroadcaster) Broadcast(string, string, interface{}) {}
func (noopBroadcaster) CloseTopic(string) {}
