package gateway

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/flemzord/relaybot/internal/channel"
)

const testWebhookToken = "123456:TEST-token_abc"

func webhookGateway(t *testing.T, wh *fakeWebhook) *Gateway {
	t.Helper()
	return newTestGateway(t, Config{MaxWebhookBody: 64}, Deps{
		Webhook:      wh,
		WebhookToken: testWebhookToken,
	})
}

func TestHandleWebhook_Delivers(t *testing.T) {
	t.Parallel()

	wh := &fakeWebhook{}
	g := webhookGateway(t, wh)

	rr := do(t, g.Handler(), http.MethodPost, "/webhook/"+testWebhookToken, `{"update_id":1}`,
		func(r *http.Request) { r.Header.Set("X-Telegram-Bot-Api-Secret-Token", "s3cret") })

	if rr.Code != http.StatusOK {
		t.Fatalf("code = %d, want 200", rr.Code)
	}
	if wh.calls() != 1 || wh.bodies[0] != `{"update_id":1}` {
		t.Fatalf("bodies = %v", wh.bodies)
	}
	if got := wh.headers[0].Get("X-Telegram-Bot-Api-Secret-Token"); got != "s3cret" {
		t.Errorf("secret header = %q, want s3cret", got)
	}
}

func TestHandleWebhook_WrongToken(t *testing.T) {
	t.Parallel()

	wh := &fakeWebhook{}
	g := webhookGateway(t, wh)

	for _, path := range []string{"/webhook/wrong", "/webhook/" + testWebhookToken + "x"} {
		rr := do(t, g.Handler(), http.MethodPost, path, `{}`)
		if rr.Code != http.StatusNotFound {
			t.Errorf("POST %s: code = %d, want 404", path, rr.Code)
		}
	}
	if wh.calls() != 0 {
		t.Errorf("handler called %d times for bad tokens", wh.calls())
	}
}

func TestHandleWebhook_BodyTooLarge(t *testing.T) {
	t.Parallel()

	wh := &fakeWebhook{}
	g := webhookGateway(t, wh)

	rr := do(t, g.Handler(), http.MethodPost, "/webhook/"+testWebhookToken, strings.Repeat("x", 65))
	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("code = %d, want 413", rr.Code)
	}
	if wh.calls() != 0 {
		t.Error("oversized body reached the handler")
	}
}

func TestHandleWebhook_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "secret mismatch", err: fmt.Errorf("%w: invalid webhook secret token", channel.ErrDenied), want: http.StatusUnauthorized},
		{name: "router full", err: errors.New("router: inbox full"), want: http.StatusOK},
		{name: "no inbox", err: channel.ErrNoInbox, want: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			g := webhookGateway(t, &fakeWebhook{err: tt.err})
			rr := do(t, g.Handler(), http.MethodPost, "/webhook/"+testWebhookToken, `{"update_id":2}`)
			if rr.Code != tt.want {
				t.Errorf("code = %d, want %d", rr.Code, tt.want)
			}
		})
	}
}

func TestHandleWebhook_NotMountedInPollingMode(t *testing.T) {
	t.Parallel()

	g := newTestGateway(t, Config{}, Deps{})
	rr := do(t, g.Handler(), http.MethodPost, "/webhook/"+testWebhookToken, `{}`)
	if rr.Code != http.StatusNotFound {
		t.Errorf("code = %d, want 404", rr.Code)
	}
}

func TestNew_WebhookRequiresToken(t *testing.T) {
	t.Parallel()

	_, err := New(Config{}, Deps{Webhook: &fakeWebhook{}}, nil)
	if err == nil {
		t.Fatal("New() accepted a webhook handler without a token")
	}
}
