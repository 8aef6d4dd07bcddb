package gateway

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/flemzord/relaybot/internal/provider"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeCredentials is a fixed ledger snapshot.
type fakeCredentials []provider.KeyStatus

func (f fakeCredentials) Snapshot() []provider.KeyStatus {
	return append([]provider.KeyStatus(nil), f...)
}

// fakeWebhook records pushed bodies and returns err.
type fakeWebhook struct {
	mu      sync.Mutex
	bodies  []string
	headers []http.Header
	err     error
}

func (f *fakeWebhook) HandleWebhook(_ context.Context, body []byte, headers http.Header) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bodies = append(f.bodies, string(body))
	f.headers = append(f.headers, headers.Clone())
	return f.err
}

func (f *fakeWebhook) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.bodies)
}

func newTestGateway(t *testing.T, cfg Config, deps Deps) *Gateway {
	t.Helper()
	g, err := New(cfg, deps, discardLogger())
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return g
}

func do(t *testing.T, h http.Handler, method, target, body string, mutate ...func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	for _, m := range mutate {
		m(req)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}
