// Package channeltest provides a recording channel for router tests.
package channeltest

import (
	"context"
	"sync"

	"github.com/flemzord/relaybot/internal/channel"
	"github.com/flemzord/relaybot/pkg/message"
)

// Compile-time interface guard.
var _ channel.Channel = (*MockChannel)(nil)

// MockChannel records sent messages and typing indicators.
type MockChannel struct {
	mu     sync.Mutex
	inbox  func(msg message.InboundMessage) error
	sent   []message.OutboundMessage
	typing []message.Chat

	// SendFunc, if set, is called instead of the default recording behavior.
	SendFunc func(ctx context.Context, msg message.OutboundMessage) error
}

// NewMockChannel creates an empty MockChannel.
func NewMockChannel() *MockChannel {
	return &MockChannel{}
}

// Send records the outbound message. If SendFunc is set, it delegates to it.
func (m *MockChannel) Send(ctx context.Context, msg message.OutboundMessage) error {
	if m.SendFunc != nil {
		return m.SendFunc(ctx, msg)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

// SendTyping records the chat.
func (m *MockChannel) SendTyping(_ context.Context, chat message.Chat) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.typing = append(m.typing, chat)
	return nil
}

// SetInbox stores the inbox callback provided by the router.
func (m *MockChannel) SetInbox(fn func(msg message.InboundMessage) error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inbox = fn
}

// SimulateMessage pushes msg into the inbox.
func (m *MockChannel) SimulateMessage(msg message.InboundMessage) error {
	m.mu.Lock()
	inbox := m.inbox
	m.mu.Unlock()

	if inbox == nil {
		return channel.ErrNoInbox
	}
	return inbox(msg)
}

// SentMessages returns a copy of all outbound messages recorded by Send.
func (m *MockChannel) SentMessages() []message.OutboundMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]message.OutboundMessage(nil), m.sent...)
}

// TypingCount returns how many typing indicators were sent.
func (m *MockChannel) TypingCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.typing)
}
