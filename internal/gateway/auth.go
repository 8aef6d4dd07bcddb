package gateway

import (
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/flemzord/relaybot/internal/security"
)

// authMiddleware returns a chi-compatible middleware that validates Bearer
// token or Basic auth credentials using constant-time comparison. Attempts
// are rate limited per client address.
func authMiddleware(cfg AuthConfig, limiter *security.RateLimiter, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			client := clientAddr(r)
			if err := limiter.Allow(client); err != nil {
				logger.Warn("admin auth rate limited", "remote_addr", client)
				http.Error(w, "too many requests", http.StatusTooManyRequests)
				return
			}

			auth := r.Header.Get("Authorization")
			if auth == "" {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			// Try Bearer token first.
			if cfg.BearerToken != "" {
				if after, ok := strings.CutPrefix(auth, "Bearer "); ok {
					if constantTimeEqual(after, cfg.BearerToken) {
						next.ServeHTTP(w, r)
						return
					}
				}
			}

			// Try Basic auth.
			if cfg.BasicUser != "" && cfg.BasicPass != "" {
				user, pass, ok := r.BasicAuth()
				if ok && constantTimeEqual(user, cfg.BasicUser) && constantTimeEqual(pass, cfg.BasicPass) {
					next.ServeHTTP(w, r)
					return
				}
			}

			logger.Warn("admin auth failed", "remote_addr", client, "path", r.URL.Path)
			http.Error(w, "unauthorized", http.StatusUnauthorized)
		})
	}
}

// clientAddr strips the port from the request's remote address.
func clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
