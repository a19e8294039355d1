package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"tradepost/internal/apperr"
)

// ErrorResponse is the error body shape for every endpoint.
type ErrorResponse struct {
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

func writeJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// statusForError maps an error kind to a status code and a public message.
// The upload sub-kinds unwrap to DomainValidation, so they land on 400 via
// the same branch.
func statusForError(err error) (int, string) {
	switch {
	case errors.Is(err, apperr.ErrInvalidShape), errors.Is(err, apperr.ErrDomainValidation):
		return http.StatusBadRequest, "Invalid request body"
	case errors.Is(err, apperr.ErrUnauthenticated):
		return http.StatusUnauthorized, "Unauthorized"
	case errors.Is(err, apperr.ErrForbidden):
		return http.StatusForbidden, "Access Forbidden"
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound, "Not Found"
	case errors.Is(err, apperr.ErrConflict):
		return http.StatusConflict, "Conflict"
	default:
		return http.StatusInternalServerError, "Something went wrong :("
	}
}

// respondError translates an error kind into an HTTP response. Client
// errors carry the detail through; server errors are logged and answered
// generically so internals never leak.
func (h *Handlers) respondError(w http.ResponseWriter, err error) {
	status, message := statusForError(err)

	if status >= http.StatusInternalServerError {
		h.Log.Error("request failed", zap.Error(err))
		writeJSON(w, status, ErrorResponse{Message: message})
		return
	}

	writeJSON(w, status, ErrorResponse{Message: message, Detail: apperr.Detail(err)})
}
