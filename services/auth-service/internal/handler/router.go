package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/vasapolrittideah/account-api/shared/middleware"
)

// RouteRegisterer mounts a group of endpoints on a router.
type RouteRegisterer interface {
	RegisterRoutes(r chi.Router)
}

// NewRouter builds the service router with the shared middleware stack.
func NewRouter(logger *zerolog.Logger, allowedOrigins []string, handlers ...RouteRegisterer) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader},
		MaxAge:         300,
	}))

	for _, h := range handlers {
		h.RegisterRoutes(r)
	}

	return r
}
