package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"exposure-platform/pkg/logging"
)

// Headers read by the middleware
const (
	RequestIDHeader = "X-Request-ID"
	ActorHeader     = "X-Actor"
)

// RequestID tags every request context with an id for the structured logger,
// reusing the caller's X-Request-ID when one is sent. X-Actor names the
// editor in log lines.
func RequestID(logger *logging.StructuredLogger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(RequestIDHeader)
			if id == "" {
				id = uuid.NewString()
			}
			w.Header().Set(RequestIDHeader, id)

			ctx := logging.WithRequestID(r.Context(), id)
			if actor := r.Header.Get(ActorHeader); actor != "" {
				ctx = logging.WithActor(ctx, actor)
			}
			logger.Debug(ctx, "[API_REQUEST] Request received", logging.Fields{
				"method": r.Method,
				"path":   r.URL.Path,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
