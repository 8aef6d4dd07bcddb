package telegram

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/flemzord/relaybot/pkg/message"
)

// errSkipUpdate marks updates that carry nothing for the router.
var errSkipUpdate = errors.New("telegram: update skipped")

// convertInbound transforms a Telegram Update into a platform-agnostic InboundMessage.
func convertInbound(update *Update) (message.InboundMessage, error) {
	msg := extractMessage(update)
	if msg == nil {
		return message.InboundMessage{}, fmt.Errorf("%w: update %d contains no message", errSkipUpdate, update.UpdateID)
	}
	if msg.From != nil && msg.From.IsBot {
		return message.InboundMessage{}, fmt.Errorf("%w: update %d sent by a bot", errSkipUpdate, update.UpdateID)
	}

	media := mediaKind(msg)
	if media == "" && msg.Text == "" && msg.Caption == "" {
		// Service messages (joins, pins, ...) have neither text nor media.
		return message.InboundMessage{}, fmt.Errorf("%w: update %d is a service message", errSkipUpdate, update.UpdateID)
	}

	inbound := message.InboundMessage{
		ID:        strconv.Itoa(msg.MessageID),
		Timestamp: time.Unix(int64(msg.Date), 0),
		Sender:    convertSender(msg.From),
		Chat:      convertChat(msg.Chat),
		Text:      msg.Text,
		Media:     media,
	}
	if inbound.Text == "" {
		inbound.Text = msg.Caption
	}
	if msg.ReplyToMessage != nil {
		inbound.ReplyToID = strconv.Itoa(msg.ReplyToMessage.MessageID)
	}

	return inbound, nil
}

// extractMessage returns the actual message from an Update, checking
// Message then EditedMessage.
func extractMessage(update *Update) *Message {
	if update.Message != nil {
		return update.Message
	}
	return update.EditedMessage
}

// mediaKind names the first non-text payload present, or "".
func mediaKind(msg *Message) string {
	switch {
	case len(msg.Photo) > 0:
		return "photo"
	case len(msg.Sticker) > 0:
		return "sticker"
	case len(msg.Voice) > 0:
		return "voice"
	case len(msg.Audio) > 0:
		return "audio"
	case len(msg.Video) > 0:
		return "video"
	case len(msg.VideoNote) > 0:
		return "video_note"
	case len(msg.Animation) > 0:
		return "animation"
	case len(msg.Document) > 0:
		return "document"
	case len(msg.Location) > 0:
		return "location"
	case len(msg.Contact) > 0:
		return "contact"
	case len(msg.Poll) > 0:
		return "poll"
	default:
		return ""
	}
}

// convertSender maps a Telegram User to a platform-agnostic Sender.
func convertSender(user *User) message.Sender {
	if user == nil {
		return message.Sender{}
	}
	displayName := user.FirstName
	if user.LastName != "" {
		displayName += " " + user.LastName
	}
	return message.Sender{
		ID:          strconv.FormatInt(user.ID, 10),
		Username:    user.Username,
		DisplayName: displayName,
	}
}

// convertChat maps a Telegram Chat to a platform-agnostic Chat.
func convertChat(chat Chat) message.Chat {
	return message.Chat{
		ID:    strconv.FormatInt(chat.ID, 10),
		Type:  mapChatType(chat.Type),
		Title: chat.Title,
	}
}

// mapChatType converts Telegram chat type strings to message.ChatType.
func mapChatType(tgType string) message.ChatType {
	switch tgType {
	case "private":
		return message.ChatDM
	case "channel":
		return message.ChatBroadcast
	default:
		return message.ChatGroup
	}
}
