package handler

import (
	"net/http"

	"hornethelper/internal/service"
	"hornethelper/internal/transport/rest/middleware"
)

// CalendarHandler serves the caller's calendar
type CalendarHandler struct {
	calendarSvc *service.CalendarService
}

// NewCalendarHandler creates a new calendar handler
func NewCalendarHandler(calendarSvc *service.CalendarService) *CalendarHandler {
	return &CalendarHandler{calendarSvc: calendarSvc}
}

// Get handles GET /v1/calendar
func (h *CalendarHandler) Get(w http.ResponseWriter, r *http.Request) {
	cal, err := h.calendarSvc.Get(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cal)
}
