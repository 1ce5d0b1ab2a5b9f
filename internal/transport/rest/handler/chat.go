package handler

import (
	"net/http"
	"strconv"

	"hornethelper/internal/service"
	"hornethelper/internal/transport/rest/middleware"
)

// ChatHandler handles session chat endpoints
type ChatHandler struct {
	chatSvc *service.ChatService
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chatSvc *service.ChatService) *ChatHandler {
	return &ChatHandler{chatSvc: chatSvc}
}

// PostMessageRequest is the request body for posting to a session chat
type PostMessageRequest struct {
	Text string `json:"text" validate:"required,max=2000"`
}

// List handles GET /v1/sessions/{kind}/{id}/messages
func (h *ChatHandler) List(w http.ResponseWriter, r *http.Request) {
	kind, id, ok := sessionRef(w, r)
	if !ok {
		return
	}
	limit, _ := strconv.ParseInt(r.URL.Query().Get("limit"), 10, 64)

	messages, err := h.chatSvc.List(r.Context(), kind, id, middleware.GetUserID(r.Context()), limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messages)
}

// Post handles POST /v1/sessions/{kind}/{id}/messages
func (h *ChatHandler) Post(w http.ResponseWriter, r *http.Request) {
	kind, id, ok := sessionRef(w, r)
	if !ok {
		return
	}
	var req PostMessageRequest
	if !decodeBody(w, r, &req) {
		return
	}

	claims := middleware.GetClaims(r.Context())
	msg, err := h.chatSvc.Send(r.Context(), kind, id, claims.Participant(), req.Text)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}

// Assistant handles POST /v1/sessions/{kind}/{id}/assistant
func (h *ChatHandler) Assistant(w http.ResponseWriter, r *http.Request) {
	kind, id, ok := sessionRef(w, r)
	if !ok {
		return
	}
	var req PostMessageRequest
	if !decodeBody(w, r, &req) {
		return
	}

	msg, err := h.chatSvc.AskAssistant(r.Context(), kind, id, middleware.GetUserID(r.Context()), req.Text)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}
