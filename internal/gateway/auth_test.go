package gateway

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/flemzord/relaybot/internal/security"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
}

func serveAuth(t *testing.T, cfg AuthConfig, limiter *security.RateLimiter, mutate func(*http.Request)) int {
	t.Helper()
	handler := authMiddleware(cfg, limiter, discardLogger())(okHandler())
	req := httptest.NewRequest(http.MethodGet, "/api/sessions", nil)
	if mutate != nil {
		mutate(req)
	}
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr.Code
}

func TestAuthMiddleware(t *testing.T) {
	t.Parallel()

	bearer := AuthConfig{BearerToken: "secret-token"}
	basic := AuthConfig{BasicUser: "admin", BasicPass: "pass123"}

	tests := []struct {
		name   string
		cfg    AuthConfig
		mutate func(*http.Request)
		want   int
	}{
		{
			name:   "valid bearer",
			cfg:    bearer,
			mutate: func(r *http.Request) { r.Header.Set("Authorization", "Bearer secret-token") },
			want:   http.StatusOK,
		},
		{
			name:   "invalid bearer",
			cfg:    bearer,
			mutate: func(r *http.Request) { r.Header.Set("Authorization", "Bearer wrong-token") },
			want:   http.StatusUnauthorized,
		},
		{
			name: "missing header",
			cfg:  bearer,
			want: http.StatusUnauthorized,
		},
		{
			name:   "valid basic",
			cfg:    basic,
			mutate: func(r *http.Request) { r.SetBasicAuth("admin", "pass123") },
			want:   http.StatusOK,
		},
		{
			name:   "invalid basic",
			cfg:    basic,
			mutate: func(r *http.Request) { r.SetBasicAuth("admin", "wrongpass") },
			want:   http.StatusUnauthorized,
		},
		{
			name:   "basic against bearer-only config",
			cfg:    bearer,
			mutate: func(r *http.Request) { r.SetBasicAuth("admin", "secret-token") },
			want:   http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := serveAuth(t, tt.cfg, nil, tt.mutate); got != tt.want {
				t.Errorf("status = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestAuthMiddleware_RateLimited(t *testing.T) {
	t.Parallel()

	limiter := security.NewRateLimiter(2, time.Minute)
	cfg := AuthConfig{BearerToken: "secret-token"}
	wrong := func(r *http.Request) { r.Header.Set("Authorization", "Bearer guess") }

	for i := range 2 {
		if got := serveAuth(t, cfg, limiter, wrong); got != http.StatusUnauthorized {
			t.Fatalf("attempt %d: status = %d, want 401", i, got)
		}
	}
	if got := serveAuth(t, cfg, limiter, wrong); got != http.StatusTooManyRequests {
		t.Fatalf("third attempt: status = %d, want 429", got)
	}

	// Another client is unaffected.
	other := func(r *http.Request) {
		r.RemoteAddr = "198.51.100.7:4242"
		r.Header.Set("Authorization", "Bearer secret-token")
	}
	if got := serveAuth(t, cfg, limiter, other); got != http.StatusOK {
		t.Fatalf("other client: status = %d, want 200", got)
	}
}

func TestClientAddr(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.9:55000"
	if got := clientAddr(req); got != "203.0.113.9" {
		t.Errorf("clientAddr = %q", got)
	}
	req.RemoteAddr = "unix-socket"
	if got := clientAddr(req); got != "unix-socket" {
		t.Errorf("clientAddr = %q", got)
	}
}
