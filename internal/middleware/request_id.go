package middleware

import (
	"net/http"

	reqcontext "github.com/prajwalbharadwajbm/fundledger/internal/context"
)

// RequestIDMiddleware adds request IDs to incoming requests
type RequestIDMiddleware struct{}

// NewRequestIDMiddleware creates a new request ID middleware
func NewRequestIDMiddleware() *RequestIDMiddleware {
	return &RequestIDMiddleware{}
}

// Middleware returns the HTTP middleware function for request IDs
func (m *RequestIDMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Reuse an upstream X-Request-ID, otherwise one is generated
		ctx := reqcontext.NewRequestContext(r.Context(), r.Header.Get("X-Request-ID"), r.UserAgent(), r.RemoteAddr)

		// Add request ID to response headers for client tracking
		w.Header().Set("X-Request-ID", reqcontext.GetRequestID(ctx))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
