package handler

import (
	"net/http"

	"hornethelper/internal/model"
	"hornethelper/internal/service"
)

// AIHandler proxies the study-help service
type AIHandler struct {
	recommendationSvc *service.RecommendationService
}

// NewAIHandler creates a new AI handler
func NewAIHandler(recommendationSvc *service.RecommendationService) *AIHandler {
	return &AIHandler{recommendationSvc: recommendationSvc}
}

// Ask handles POST /v1/ai/ask
func (h *AIHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req model.AskRequest
	if !decodeBody(w, r, &req) {
		return
	}

	resp, err := h.recommendationSvc.Ask(r.Context(), req.Message)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Videos handles POST /v1/ai/videos
func (h *AIHandler) Videos(w http.ResponseWriter, r *http.Request) {
	var req model.VideoRequest
	if !decodeBody(w, r, &req) {
		return
	}

	videos, err := h.recommendationSvc.RecommendVideos(r.Context(), req.Major)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, videos)
}
