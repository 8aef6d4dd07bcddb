// Package gateway serves the bot's HTTP surface: liveness and health
// checks, the Telegram webhook endpoint, Prometheus metrics and a small
// authenticated admin API over live sessions.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/flemzord/relaybot/internal/provider"
	"github.com/flemzord/relaybot/internal/security"
	"github.com/flemzord/relaybot/internal/session"
)

// SessionView is the slice of the session store the gateway reads.
type SessionView interface {
	Len() int
	Get(id string) *session.Session
	Range(fn func(*session.Session) bool)
	Delete(id string)
}

// CredentialView reports the state of the API key ledger.
type CredentialView interface {
	Snapshot() []provider.KeyStatus
}

// WebhookHandler accepts one pushed update body.
type WebhookHandler interface {
	HandleWebhook(ctx context.Context, body []byte, headers http.Header) error
}

// Deps are the components the gateway exposes. Nil fields disable the
// routes that need them.
type Deps struct {
	Sessions    SessionView
	Credentials CredentialView

	// Webhook and WebhookToken enable POST /webhook/{token}. The token is
	// the path secret Telegram is told to call.
	Webhook      WebhookHandler
	WebhookToken string

	// Metrics serves GET /metrics.
	Metrics http.Handler
}

// nopHandler is a slog.Handler that discards all log records.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

// Gateway is the HTTP server.
type Gateway struct {
	config  Config
	deps    Deps
	logger  *slog.Logger
	limiter *security.RateLimiter
	handler http.Handler

	mu        sync.Mutex
	server    *http.Server
	listener  net.Listener
	startedAt time.Time

	// now is injectable for testing.
	now func() time.Time
}

// New validates cfg and builds the route table.
func New(cfg Config, deps Deps, logger *slog.Logger) (*Gateway, error) {
	cfg.Defaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if deps.Webhook != nil && deps.WebhookToken == "" {
		return nil, errors.New("gateway: webhook handler requires a webhook token")
	}
	if logger == nil {
		logger = slog.New(nopHandler{})
	}

	g := &Gateway{
		config:  cfg,
		deps:    deps,
		logger:  logger,
		limiter: security.NewRateLimiter(cfg.Auth.MaxAttempts, time.Minute),
		now:     time.Now,
	}
	g.startedAt = g.now()
	g.handler = g.buildRouter()
	return g, nil
}

// Handler returns the gateway's route table.
func (g *Gateway) Handler() http.Handler {
	return g.handler
}

// Start binds the listen address and serves in the background.
func (g *Gateway) Start(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.server != nil {
		return errors.New("gateway: already started")
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", g.config.Bind)
	if err != nil {
		return fmt.Errorf("gateway: listen failed: %w", err)
	}

	srv := &http.Server{
		Handler:           g.handler,
		ReadTimeout:       g.config.ReadTimeout,
		ReadHeaderTimeout: g.config.ReadTimeout,
		WriteTimeout:      g.config.WriteTimeout,
		ErrorLog:          slog.NewLogLogger(g.logger.Handler(), slog.LevelWarn),
	}
	g.server = srv
	g.listener = ln

	go func() {
		g.logger.Info("gateway listening", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			g.logger.Error("gateway serve error", "error", err)
		}
	}()

	return nil
}

// Addr returns the bound address, or "" before Start.
func (g *Gateway) Addr() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.listener == nil {
		return ""
	}
	return g.listener.Addr().String()
}

// Stop shuts the server down gracefully, bounded by ShutdownTimeout.
func (g *Gateway) Stop(ctx context.Context) error {
	g.mu.Lock()
	srv := g.server
	g.server = nil
	g.listener = nil
	g.mu.Unlock()

	if srv == nil {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, g.config.ShutdownTimeout)
	defer cancel()

	g.logger.Info("gateway shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		_ = srv.Close()
		return fmt.Errorf("gateway: shutdown: %w", err)
	}
	return nil
}

// writeJSON encodes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
