package gateway

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// buildRouter constructs the chi mux with all routes wired.
func (g *Gateway) buildRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	// Public, no auth required.
	r.Get("/", g.handleStatus())
	r.Get("/health", g.handleHealth())

	if g.deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", g.deps.Metrics)
	}

	// Telegram pushes here; the path token is the credential.
	if g.deps.Webhook != nil {
		r.Post("/webhook/{token}", g.handleWebhook())
	}

	// Admin endpoints, auth required. Not mounted if no auth configured.
	if g.config.Auth.IsConfigured() && g.deps.Sessions != nil {
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware(g.config.Auth, g.limiter, g.logger))
			r.Route("/api", func(r chi.Router) {
				r.Get("/sessions", g.handleListSessions())
				r.Get("/sessions/{id}", g.handleGetSession())
				r.Delete("/sessions/{id}", g.handleDeleteSession())
				r.Get("/credentials", g.handleListCredentials())
			})
		})
	}

	return r
}
