package gateway

import (
	"crypto/subtle"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/flemzord/relaybot/internal/channel"
)

// handleWebhook returns an http.HandlerFunc for POST /webhook/{token}.
//
// A wrong path token answers 404 so the endpoint is indistinguishable from
// an unknown route. Once the token matches, the answer is 200 unless the
// update is unreadable or fails the secret header check; Telegram retries
// any other status and would redeliver updates that were already queued.
func (g *Gateway) handleWebhook() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !constantTimeEqual(chi.URLParam(r, "token"), g.deps.WebhookToken) {
			http.NotFound(w, r)
			return
		}

		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, g.config.MaxWebhookBody))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				http.Error(w, "payload too large", http.StatusRequestEntityTooLarge)
				return
			}
			http.Error(w, "failed to read body", http.StatusBadRequest)
			return
		}

		if err := g.deps.Webhook.HandleWebhook(r.Context(), body, r.Header); err != nil {
			if errors.Is(err, channel.ErrDenied) {
				g.logger.Warn("webhook update rejected", "remote_addr", r.RemoteAddr, "error", err)
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			g.logger.Error("webhook update failed", "error", err)
		}

		w.WriteHeader(http.StatusOK)
	}
}

// constantTimeEqual compares two strings in constant time.
func constantTimeEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
