package telegram

import (
	"errors"
	"log/slog"

	"github.com/flemzord/relaybot/internal/channel"
	"github.com/flemzord/relaybot/pkg/message"
)

// deliverer converts updates and pushes admitted messages to the inbox.
// Shared by the poller and the webhook receiver.
type deliverer struct {
	inbox     func(message.InboundMessage) error
	allowList *channel.AllowList
	logger    *slog.Logger
}

// deliver handles one update. Skipped and denied updates are not errors.
func (d *deliverer) deliver(update *Update) error {
	msg, err := convertInbound(update)
	if err != nil {
		if errors.Is(err, errSkipUpdate) {
			d.logger.Debug("skipping update", "update_id", update.UpdateID, "reason", err)
			return nil
		}
		return err
	}

	if !d.allowList.IsAllowed(msg) {
		d.logger.Debug("update denied by allow list",
			"update_id", update.UpdateID,
			"sender", msg.Sender.ID,
			"chat", msg.Chat.ID,
		)
		return nil
	}

	if d.inbox == nil {
		return channel.ErrNoInbox
	}
	return d.inbox(msg)
}
