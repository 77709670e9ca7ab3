package http

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves the liveness endpoint.
type HealthHandler struct {
	Store Pinger
	// Database names the store backend in the response ("postgres", "memory").
	Database string
	Logger   *zap.Logger
}

// Health handles GET /health. It answers 503 when the store cannot be reached.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.Store.Ping(ctx); err != nil {
		loggerOrNop(h.Logger).Warn("health check failed", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status":   "UNAVAILABLE",
			"database": h.Database,
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":   "OK",
		"database": h.Database,
	})
}
