package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"hornethelper/internal/logging"
	"hornethelper/internal/model"
	"hornethelper/internal/service"
)

var validate = validator.New()

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// decodeBody reads a JSON body into dst and validates its tags. It writes the 400 itself.
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return false
	}
	return true
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "invalid request"
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field()+" failed "+fe.Tag())
	}
	return "validation failed: " + strings.Join(fields, ", ")
}

// writeServiceError maps service errors to HTTP statuses. Anything unrecognized is logged and hidden.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrSessionNotFound), errors.Is(err, service.ErrUserNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrSessionFull), errors.Is(err, service.ErrAlreadyJoined),
		errors.Is(err, service.ErrOwnerCannotLeave):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrNotParticipant), errors.Is(err, service.ErrNotOwner):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrInvalidSession), errors.Is(err, service.ErrEmptyMessage),
		errors.Is(err, service.ErrMessageTooLong), errors.Is(err, service.ErrInvalidMajor):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrInvalidToken):
		writeError(w, http.StatusUnauthorized, err.Error())
	default:
		logging.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// sessionRef reads {kind} and optionally {id} from the route
func sessionRef(w http.ResponseWriter, r *http.Request) (model.SessionKind, string, bool) {
	vars := mux.Vars(r)
	kind, err := model.ParseKind(vars["kind"])
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return "", "", false
	}
	return kind, vars["id"], true
}
