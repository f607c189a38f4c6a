package middleware

import (
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// Logger writes one access log entry per request and attaches a request-scoped
// logger to the context, retrievable with zerolog.Ctx.
func Logger(logger *zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			reqLogger := logger.With().Str("request_id", RequestIDFromContext(r.Context())).Logger()
			r = r.WithContext(reqLogger.WithContext(r.Context()))

			defer func() {
				status := ww.Status()
				if status == 0 {
					status = http.StatusOK
				}

				event := reqLogger.Info()
				if status >= http.StatusInternalServerError {
					event = reqLogger.Error()
				}

				event.
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Int("status", status).
					Int("bytes", ww.BytesWritten()).
					Dur("duration", time.Since(start)).
					Msg("request completed")
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
