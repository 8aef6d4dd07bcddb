package channel

import (
	"context"
	"time"

	"github.com/flemzord/relaybot/pkg/message"
)

// TypingSender is the subset of Channel needed for typing indicators.
type TypingSender interface {
	SendTyping(ctx context.Context, chat message.Chat) error
}

// StartTypingLoop sends one typing indicator, then launches a goroutine
// that repeats it at the given interval until the context is cancelled.
func StartTypingLoop(ctx context.Context, ch TypingSender, chat message.Chat, interval time.Duration) {
	_ = ch.SendTyping(ctx, chat)

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				_ = ch.SendTyping(ctx, chat)
			}
		}
	}()
}
