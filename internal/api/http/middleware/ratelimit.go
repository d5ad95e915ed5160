package middleware

import (
	"net"
	"net/http"
	"strings"

	"github.com/dtroode/sessionkeeper/internal/logger"
	"github.com/dtroode/sessionkeeper/internal/model"
)

// RateLimit rejects clients that exceed the per-route request budget.
type RateLimit struct {
	limiter model.RateLimiter
	logger  *logger.Logger
}

// NewRateLimit creates a new RateLimit middleware instance.
func NewRateLimit(limiter model.RateLimiter, logger *logger.Logger) *RateLimit {
	return &RateLimit{limiter: limiter, logger: logger}
}

// Handle counts the request against the (client, method, path) window and
// responds 429 when the budget is exhausted. Limiter failures admit the
// request: throttling is a protection layer, not a dependency.
func (m *RateLimit) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := ClientIP(r)

		allowed, err := m.limiter.Allow(r.Context(), clientID, r.Method, r.URL.Path)
		if err != nil {
			m.logger.Error("RateLimit middleware: limiter failed",
				"client", clientID,
				"error", err.Error())
			next.ServeHTTP(w, r)
			return
		}

		if !allowed {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// ClientIP resolves the client address from X-Forwarded-For, falling back
// to the connection remote address.
func ClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		if first, _, ok := strings.Cut(forwarded, ","); ok {
			return strings.TrimSpace(first)
		}
		return strings.TrimSpace(forwarded)
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
