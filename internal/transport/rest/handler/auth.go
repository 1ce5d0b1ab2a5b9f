package handler

import (
	"net/http"

	"hornethelper/internal/model"
	"hornethelper/internal/service"
	"hornethelper/internal/transport/rest/middleware"
)

// AuthHandler handles sign-in and the caller's profile
type AuthHandler struct {
	userSvc *service.UserService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(userSvc *service.UserService) *AuthHandler {
	return &AuthHandler{userSvc: userSvc}
}

// Login handles POST /v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	resp, err := h.userSvc.SignIn(r.Context(), &req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Me handles GET /v1/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.userSvc.Get(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"user":       user,
		"needsMajor": user.NeedsMajor(),
	})
}

// UpdateMajorRequest is the request body for PUT /v1/me/major
type UpdateMajorRequest struct {
	Major string `json:"major" validate:"required,max=200"`
}

// UpdateMajor handles PUT /v1/me/major
func (h *AuthHandler) UpdateMajor(w http.ResponseWriter, r *http.Request) {
	var req UpdateMajorRequest
	if !decodeBody(w, r, &req) {
		return
	}

	user, err := h.userSvc.UpdateMajor(r.Context(), middleware.GetUserID(r.Context()), req.Major)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
