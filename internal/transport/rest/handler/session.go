package handler

import (
	"net/http"

	"hornethelper/internal/model"
	"hornethelper/internal/service"
	"hornethelper/internal/transport/rest/middleware"
)

// SessionHandler handles study session endpoints
type SessionHandler struct {
	sessionSvc *service.SessionService
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessionSvc *service.SessionService) *SessionHandler {
	return &SessionHandler{sessionSvc: sessionSvc}
}

// List handles GET /v1/sessions/{kind}
func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	kind, _, ok := sessionRef(w, r)
	if !ok {
		return
	}

	sessions, err := h.sessionSvc.List(r.Context(), kind)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sessions)
}

// Create handles POST /v1/sessions/{kind}
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	kind, _, ok := sessionRef(w, r)
	if !ok {
		return
	}
	var req model.CreateSessionRequest
	if !decodeBody(w, r, &req) {
		return
	}

	claims := middleware.GetClaims(r.Context())
	session, err := h.sessionSvc.Create(r.Context(), kind, claims.Participant(), &req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

// Get handles GET /v1/sessions/{kind}/{id}
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	kind, id, ok := sessionRef(w, r)
	if !ok {
		return
	}

	session, err := h.sessionSvc.Get(r.Context(), kind, id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// Join handles POST /v1/sessions/{kind}/{id}/join
func (h *SessionHandler) Join(w http.ResponseWriter, r *http.Request) {
	kind, id, ok := sessionRef(w, r)
	if !ok {
		return
	}

	claims := middleware.GetClaims(r.Context())
	session, err := h.sessionSvc.Join(r.Context(), kind, id, claims.Participant())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// Leave handles POST /v1/sessions/{kind}/{id}/leave
func (h *SessionHandler) Leave(w http.ResponseWriter, r *http.Request) {
	kind, id, ok := sessionRef(w, r)
	if !ok {
		return
	}

	session, err := h.sessionSvc.Leave(r.Context(), kind, id, middleware.GetUserID(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// Disband handles DELETE /v1/sessions/{kind}/{id}
func (h *SessionHandler) Disband(w http.ResponseWriter, r *http.Request) {
	kind, id, ok := sessionRef(w, r)
	if !ok {
		return
	}

	if err := h.sessionSvc.Disband(r.Context(), kind, id, middleware.GetUserID(r.Context())); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
