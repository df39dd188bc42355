package middleware

import (
	"context"
	"net/http"

	"github.com/corvus-index/corvus/internal/log"
	"github.com/go-chi/chi/v5/middleware"
)

// CorrelationID is a middleware that attaches a correlation ID to the request
// context, preferring an inbound X-Correlation-ID header and falling back to
// chi's request ID. It stores the ID under log.CorrelationIDKey rather than a
// key private to this package, so a *log.Logger built with WithContext (or
// Logging below) picks up the same value GetCorrelationID returns.
func CorrelationID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		correlationID := r.Header.Get("X-Correlation-ID")
		if correlationID == "" {
			correlationID = middleware.GetReqID(r.Context())
		}

		w.Header().Set("X-Correlation-ID", correlationID)

		ctx := log.WithCorrelationID(r.Context(), correlationID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetCorrelationID retrieves the correlation ID from the context, if present.
func GetCorrelationID(ctx context.Context) string {
	return log.CorrelationID(ctx)
}
