package telegram

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/flemzord/relaybot/internal/channel"
)

// SecretHeader carries the secret registered with setWebhook.
const SecretHeader = "X-Telegram-Bot-Api-Secret-Token"

// ErrInvalidSecret is returned when the secret header does not match.
var ErrInvalidSecret = fmt.Errorf("%w: invalid webhook secret token", channel.ErrDenied)

// WebhookReceiver processes incoming Telegram webhook payloads.
type WebhookReceiver struct {
	deliver *deliverer
	secret  string
}

// HandleWebhook processes a webhook payload whose path token the gateway
// has already checked. It validates the secret header when one is
// configured, parses the update, and pushes the message to the inbox.
func (w *WebhookReceiver) HandleWebhook(_ context.Context, body []byte, headers http.Header) error {
	if w.secret != "" {
		token := headers.Get(SecretHeader)
		if subtle.ConstantTimeCompare([]byte(w.secret), []byte(token)) != 1 {
			return ErrInvalidSecret
		}
	}

	var update Update
	if err := json.Unmarshal(body, &update); err != nil {
		return fmt.Errorf("telegram: invalid update JSON: %w", err)
	}

	return w.deliver.deliver(&update)
}
