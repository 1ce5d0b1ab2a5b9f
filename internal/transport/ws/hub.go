package ws

import (
	"encoding/json"
	"log/slog"
	"sync"
)

// MessageType defines the type of WebSocket message
type MessageType string

// Server push message types
const (
	MsgSessionsSnapshot MessageType = "sessions_snapshot"
	MsgSessionUpdated   MessageType = "session_updated"
	MsgSessionDisbanded MessageType = "session_disbanded"
	MsgChatMessage      MessageType = "chat_message"
	MsgChatHistory      MessageType = "chat_history"
	MsgError            MessageType = "error"
)

// Message is the WebSocket envelope format
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Hub fans messages out to connections subscribed to a topic.
// Topics are "sessions:<kind>" for list updates and "chat:<kind>:<id>" for one session's chat.
type Hub struct {
	topics map[string]map[*Connection]struct{}

	mu sync.RWMutex

	// Channels for coordination
	register   chan *Connection
	unregister chan *Connection
	broadcast  chan *BroadcastMessage
	quit       chan struct{}
}

// Connection represents a WebSocket connection
type Connection struct {
	Topic  string
	UserID string
	Send   chan []byte
	Hub    *Hub
}

// BroadcastMessage is a message to broadcast. Close disconnects the topic
// after everything queued before it has been delivered.
type BroadcastMessage struct {
	Topic   string
	Message *Message
	Close   bool
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	h := &Hub{
		topics:     make(map[string]map[*Connection]struct{}),
		register:   make(chan *Connection),
		unregister: make(chan *Connection),
		broadcast:  make(chan *BroadcastMessage, 256),
		quit:       make(chan struct{}),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case <-h.quit:
			h.mu.Lock()
			for topic, conns := range h.topics {
				for conn := range conns {
					close(conn.Send)
				}
				delete(h.topics, topic)
			}
			h.mu.Unlock()
			return

		case conn := <-h.register:
			h.mu.Lock()
			if h.topics[conn.Topic] == nil {
				h.topics[conn.Topic] = make(map[*Connection]struct{})
			}
			h.topics[conn.Topic][conn] = struct{}{}
			h.mu.Unlock()
			slog.Debug("WebSocket subscribed", "topic", conn.Topic, "uid", conn.UserID)

		case conn := <-h.unregister:
			h.mu.Lock()
			if conns, ok := h.topics[conn.Topic]; ok {
				if _, ok := conns[conn]; ok {
					delete(conns, conn)
					close(conn.Send)
					if len(conns) == 0 {
						delete(h.topics, conn.Topic)
					}
					slog.Debug("WebSocket unsubscribed", "topic", conn.Topic, "uid", conn.UserID)
				}
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			if msg.Close {
				h.mu.Lock()
				for conn := range h.topics[msg.Topic] {
					close(conn.Send)
				}
				delete(h.topics, msg.Topic)
				h.mu.Unlock()
				continue
			}
			data, err := json.Marshal(msg.Message)
			if err != nil {
				slog.Error("Failed to encode WebSocket message", "topic", msg.Topic, "error", err)
				continue
			}
			h.mu.RLock()
			for conn := range h.topics[msg.Topic] {
				select {
				case conn.Send <- data:
				default:
					// Drop message if buffer full
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Register adds a connection
func (h *Hub) Register(conn *Connection) {
	select {
	case h.register <- conn:
	case <-h.quit:
		close(conn.Send)
	}
}

// Unregister removes a connection
func (h *Hub) Unregister(conn *Connection) {
	select {
	case h.unregister <- conn:
	case <-h.quit:
	}
}

// Stop closes every connection and ends the hub loop
func (h *Hub) Stop() {
	close(h.quit)
}

// Subscribers reports how many connections listen on topic
func (h *Hub) Subscribers(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[topic])
}

// Broadcast sends a message to every connection on topic (implements service.Broadcaster)
func (h *Hub) Broadcast(topic string, msgType string, payload interface{}) {
	msg, err := NewMessage(MessageType(msgType), payload)
	if err != nil {
		slog.Error("Failed to encode WebSocket payload", "topic", topic, "type", msgType, "error", err)
		return
	}
	select {
	case h.broadcast <- &BroadcastMessage{Topic: topic, Message: msg}:
	case <-h.quit:
	}
}

// CloseTopic disconnects everyone on topic (implements service.Broadcaster)
func (h *Hub) CloseTopic(topic string) {
	select {
	case h.broadcast <- &BroadcastMessage{Topic: topic, Close: true}:
	case <-h.quit:
	}
}

// NewMessage wraps payload in an envelope
func NewMessage(msgType MessageType, payload interface{}) (*Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Message{Type: msgType, Payload: data}, nil
}
