// Package middleware provides the small HTTP middleware chain shared by all
// routes: request IDs for log correlation and a request-scoped timestamp so
// every component in one request observes the same clock reading.
package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"veripay/pkg/requestcontext"
)

// RequestIDHeader is echoed back to clients for support correlation.
const RequestIDHeader = "X-Request-Id"

// RequestID assigns a request ID, honoring one supplied by a trusted proxy.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get(RequestIDHeader)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, reqID)
		ctx := requestcontext.WithRequestID(r.Context(), reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestTime pins a single timestamp for the whole request so TTL checks
// and issued-at claims within one request cannot disagree.
func RequestTime(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now().UTC())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
