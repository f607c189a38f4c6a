package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/vasapolrittideah/account-api/services/auth-service/internal/payload"
)

const healthCheckTimeout = 2 * time.Second

// Pinger checks that a backing service is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingerFunc adapts a function to the Pinger interface.
type PingerFunc func(ctx context.Context) error

func (f PingerFunc) Ping(ctx context.Context) error {
	return f(ctx)
}

type HealthHTTPHandler struct {
	logger *zerolog.Logger
	pinger Pinger
}

func NewHealthHTTPHandler(logger *zerolog.Logger, pinger Pinger) *HealthHTTPHandler {
	return &HealthHTTPHandler{logger: logger, pinger: pinger}
}

func (h *HealthHTTPHandler) RegisterRoutes(r chi.Router) {
	r.Get("/healthz", h.Health)
}

func (h *HealthHTTPHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	if err := h.pinger.Ping(ctx); err != nil {
		h.logger.Error().Err(err).Msg("health check failed")
		writeJSON(w, http.StatusServiceUnavailable, payload.HealthResponse{Status: "unavailable"})
		return
	}

	writeJSON(w, http.StatusOK, payload.HealthResponse{Status: "ok"})
}
