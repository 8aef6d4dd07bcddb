package channel

import "errors"

var (
	// ErrNoInbox is returned when an update arrives, or polling is asked to
	// start, before the router's Submit has been wired in with SetInbox.
	// Webhook callers still answer 200 so Telegram does not redeliver.
	ErrNoInbox = errors.New("channel: router inbox not wired")

	// ErrDenied marks an update refused before it reaches the router, such
	// as a webhook call with the wrong secret token. The gateway maps it to
	// 401. Chats outside the allow-list are dropped silently instead.
	ErrDenied = errors.New("channel: update denied")
)
