package controller

import (
	"errors"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/rabogan/esl-lesson-system/internal/service"
	"go.uber.org/zap"
)

// Local wall times cross the API as this layout plus an IANA zone name.
const timeLayout = "2006-01-02T15:04"

type errorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorBody struct {
	Error errorInfo `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorBody{Error: errorInfo{Code: code, Message: message}})
}

// respondServiceError maps the engine's typed errors onto stable HTTP codes.
// Anything unrecognised is a persistence or programming failure and stays
// opaque to the caller.
func respondServiceError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidTimezone):
		writeError(w, http.StatusBadRequest, "invalid_timezone", "timezone is not a valid IANA identifier")
	case errors.Is(err, service.ErrInvalidRange):
		writeError(w, http.StatusBadRequest, "invalid_range", "end time must be after start time")
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", "resource does not exist")
	case errors.Is(err, service.ErrNotOwner):
		writeError(w, http.StatusForbidden, "not_owner", "resource belongs to another user")
	case errors.Is(err, service.ErrSlotUnavailable):
		writeError(w, http.StatusConflict, "slot_unavailable", "slot is already booked or in the past")
	case errors.Is(err, service.ErrSlotBooked):
		writeError(w, http.StatusConflict, "slot_booked", "booked slots must be cancelled before closing")
	case errors.Is(err, service.ErrQuotaExceeded):
		writeError(w, http.StatusConflict, "quota_exceeded", "no lesson credit remaining")
	default:
		logger.Error("Request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("request_id", RequestIDFrom(r.Context())),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "internal", "internal error")
	}
}
