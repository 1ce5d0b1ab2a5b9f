package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"hornethelper/internal/model"
	"hornethelper/internal/service"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// Handler handles WebSocket connections
type Handler struct {
	hub        *Hub
	authSvc    *service.AuthService
	sessionSvc *service.SessionService
	chatSvc    *service.ChatService
	upgrader   websocket.Upgrader
}

// NewHandler creates a new WebSocket handler. allowedOrigins is a comma separated list; "*" allows any.
func NewHandler(hub *Hub, authSvc *service.AuthService, sessionSvc *service.SessionService, chatSvc *service.ChatService, allowedOrigins string) *Handler {
	return &Handler{
		hub:        hub,
		authSvc:    authSvc,
		sessionSvc: sessionSvc,
		chatSvc:    chatSvc,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

func originChecker(allowedOrigins string) func(r *http.Request) bool {
	allowed := map[string]bool{}
	for _, o := range strings.Split(allowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			allowed[o] = true
		}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || allowed["*"] || allowed[origin]
	}
}

func (h *Handler) authenticate(w http.ResponseWriter, r *http.Request) (*model.UserClaims, bool) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return nil, false
	}

	claims, err := h.authSvc.ValidateToken(token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return nil, false
	}
	return claims, true
}

// SessionsWS handles GET /v1/ws/sessions/{kind}
func (h *Handler) SessionsWS(w http.ResponseWriter, r *http.Request) {
	kind, err := model.ParseKind(mux.Vars(r)["kind"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	claims, ok := h.authenticate(w, r)
	if !ok {
		return
	}

	sessions, err := h.sessionSvc.List(r.Context(), kind)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to load initial sessions", "kind", kind, "error", err)
		http.Error(w, "failed to load sessions", http.StatusInternalServerError)
		return
	}

	wsConn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("WebSocket upgrade error", "error", err)
		return
	}

	conn := h.newConnection(service.SessionsTopic(kind), claims.UID)
	h.queue(conn, MsgSessionsSnapshot, sessions)
	h.hub.Register(conn)

	slog.Info("User subscribed to session list", "uid", claims.UID, "kind", kind)

	go h.writePump(wsConn, conn)
	go h.readPump(wsConn, conn, nil)
}

// ChatWS handles GET /v1/ws/sessions/{kind}/{id}/chat
func (h *Handler) ChatWS(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	kind, err := model.ParseKind(vars["kind"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	id := vars["id"]

	claims, ok := h.authenticate(w, r)
	if !ok {
		return
	}

	history, err := h.chatSvc.List(r.Context(), kind, id, claims.UID, 0)
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		http.Error(w, "session not found", http.StatusNotFound)
		return
	case errors.Is(err, service.ErrNotParticipant):
		http.Error(w, "only participants can join the chat", http.StatusForbidden)
		return
	case err != nil:
		slog.ErrorContext(r.Context(), "Failed to load chat history", "id", id, "error", err)
		http.Error(w, "failed to load chat", http.StatusInternalServerError)
		return
	}

	wsConn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("WebSocket upgrade error", "error", err)
		return
	}

	conn := h.newConnection(service.ChatTopic(kind, id), claims.UID)
	h.queue(conn, MsgChatHistory, history)
	h.hub.Register(conn)

	slog.Info("User joined session chat", "uid", claims.UID, "kind", kind, "id", id)

	author := claims.Participant()
	go h.writePump(wsConn, conn)
	go h.readPump(wsConn, conn, func(in *Message) {
		if in.Type != MsgChatMessage {
			return
		}
		var body struct {
			Text string `json:"text"`
		}
		if err := json.Unmarshal(in.Payload, &body); err != nil {
			h.queue(conn, MsgError, map[string]string{"error": "invalid payload"})
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), writeWait)
		defer cancel()
		if _, err := h.chatSvc.Send(ctx, kind, id, author, body.Text); err != nil {
			h.queue(conn, MsgError, map[string]string{"error": err.Error()})
		}
	})
}

func (h *Handler) newConnection(topic, uid string) *Connection {
	return &Connection{
		Topic:  topic,
		UserID: uid,
		Send:   make(chan []byte, 256),
		Hub:    h.hub,
	}
}

// queue sends directly to one connection; used before Register and from its own read loop
func (h *Handler) queue(conn *Connection, msgType MessageType, payload interface{}) {
	msg, err := NewMessage(msgType, payload)
	if err != nil {
		return
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	defer func() {
		// Send may already be closed by the hub
		recover()
	}()
	select {
	case conn.Send <- data:
	default:
	}
}

func (h *Handler) readPump(wsConn *websocket.Conn, conn *Connection, onMessage func(*Message)) {
	defer func() {
		h.hub.Unregister(conn)
		wsConn.Close()
	}()

	wsConn.SetReadLimit(maxMessageSize)
	wsConn.SetReadDeadline(time.Now().Add(pongWait))
	wsConn.SetPongHandler(func(string) error {
		wsConn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := wsConn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Warn("WebSocket error", "topic", conn.Topic, "error", err)
			}
			break
		}
		if onMessage == nil {
			continue
		}
		var in Message
		if err := json.Unmarshal(data, &in); err != nil {
			h.queue(conn, MsgError, map[string]string{"error": "invalid message"})
			continue
		}
		onMessage(&in)
	}
}

func (h *Handler) writePump(wsConn *websocket.Conn, conn *Connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		wsConn.Close()
	}()

	for {
		select {
		case message, ok := <-conn.Send:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				wsConn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := wsConn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := wsConn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
