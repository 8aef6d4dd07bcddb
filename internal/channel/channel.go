// Package channel defines the bridge between the chat platform and the
// router: the Channel interface, typing indicators, message chunking and
// allow-list filtering.
package channel

import (
	"context"

	"github.com/flemzord/relaybot/pkg/message"
)

// Channel is the bridge between a messaging platform and the router.
//
// A channel receives updates from its platform, checks the allow-list, and
// pushes them to the router via the inbox callback. Replies come back
// through Send.
type Channel interface {
	// Send delivers an outbound message to the platform.
	Send(ctx context.Context, msg message.OutboundMessage) error

	// SendTyping shows a single typing indicator in chat.
	SendTyping(ctx context.Context, chat message.Chat) error

	// SetInbox gives the channel a function to push inbound messages to the
	// router. Called during wiring, before Start.
	SetInbox(fn func(msg message.InboundMessage) error)
}
