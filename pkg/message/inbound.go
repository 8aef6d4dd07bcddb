package message

import (
	"strings"
	"time"
)

// InboundMessage is one user message delivered by a channel.
type InboundMessage struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Chat      Chat      `json:"chat"`
	Sender    Sender    `json:"sender"`
	Text      string    `json:"text,omitempty"`

	// Media names the non-text payload kind (photo, sticker, voice, ...).
	// Empty for plain text messages.
	Media string `json:"media,omitempty"`

	ReplyToID string `json:"reply_to_id,omitempty"`
}

// HasMedia reports whether the message carries a non-text payload.
func (m *InboundMessage) HasMedia() bool {
	return m.Media != ""
}

// IsTextOnly reports whether the message has text and no media.
func (m *InboundMessage) IsTextOnly() bool {
	return !m.HasMedia() && strings.TrimSpace(m.Text) != ""
}

// Command splits a leading "/command args" text. The command is lowercased
// and stripped of any "@botname" suffix. ok is false for plain text.
func (m *InboundMessage) Command() (cmd, args string, ok bool) {
	text := strings.TrimSpace(m.Text)
	if !strings.HasPrefix(text, "/") || len(text) < 2 {
		return "", "", false
	}
	head, rest, _ := strings.Cut(text, " ")
	head, _, _ = strings.Cut(head[1:], "@")
	if head == "" {
		return "", "", false
	}
	return strings.ToLower(head), strings.TrimSpace(rest), true
}
