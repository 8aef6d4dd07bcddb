package core

import "context"

// Starter is a bot component with background work: the router's workers,
// the Telegram long poller, the cron scheduler or the HTTP gateway. Start
// returns once the work is running; ctx bounds startup only.
type Starter interface {
	Start(ctx context.Context) error
}

// Stopper releases a component's resources. App stops components in the
// reverse of their start order, so the gateway and poller stop feeding
// updates before the router drains its inbox.
type Stopper interface {
	Stop(ctx context.Context) error
}
