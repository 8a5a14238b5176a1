package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront/pkg/logger"
)

const (
	RequestIDHeader = "X-Request-Id"

	maxRequestIDLength = 64
)

// RequestID propagates a well-formed inbound request id or mints one, and
// exposes it to handlers and log entries.
func RequestID(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := cleanToken(r.Header.Get(RequestIDHeader), maxRequestIDLength)
			if reqID == "" {
				reqID = uuid.NewString()
			}
			w.Header().Set(RequestIDHeader, reqID)

			ctx := withRequestID(r.Context(), reqID)
			if logg != nil {
				ctx = logg.WithRequestID(ctx, reqID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
