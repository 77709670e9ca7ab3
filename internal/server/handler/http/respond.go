package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/atinyakov/taskly/internal/service"
	"go.uber.org/zap"
)

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	// Message is a human-readable description.
	Message string `json:"message"`
	// Category is a stable machine-readable error kind.
	Category string `json:"category"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, category, message string) {
	writeJSON(w, status, ErrorResponse{Message: message, Category: category})
}

// writeServiceError maps a service error onto an HTTP response. Unknown errors
// are logged and reported as a generic internal error.
func writeServiceError(w http.ResponseWriter, log *zap.Logger, err error, internalMsg string) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "invalid_input", "Invalid request")
	case errors.Is(err, service.ErrAccountAlreadyExists):
		writeError(w, http.StatusConflict, "account_exists", "User already exists")
	case errors.Is(err, service.ErrAuthenticationFailed):
		writeError(w, http.StatusUnauthorized, "authentication_failed", "Authentication failed")
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", "Task not found")
	default:
		log.Error(internalMsg, zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal", internalMsg)
	}
}

// loggerOrNop lets handlers built as struct literals run without a logger.
func loggerOrNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
