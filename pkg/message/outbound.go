package message

// OutboundMessage is one reply to be delivered by a channel.
type OutboundMessage struct {
	Chat      Chat   `json:"chat"`
	Text      string `json:"text"`
	ReplyToID string `json:"reply_to_id,omitempty"`
}

// NewTextMessage creates an outbound text message.
func NewTextMessage(chat Chat, text string) OutboundMessage {
	return OutboundMessage{Chat: chat, Text: text}
}

// ReplyTo returns an outbound message threaded to the inbound message.
func ReplyTo(in InboundMessage, text string) OutboundMessage {
	return OutboundMessage{Chat: in.Chat, Text: text, ReplyToID: in.ID}
}
