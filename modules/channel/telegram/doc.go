// Package telegram implements the Telegram Bot API channel for relaybot.
//
// It bridges Telegram updates and the platform-agnostic message model:
//
//   - Inbound conversion of text messages; captions count as text and any
//     media payload is flagged so the router can answer with a notice
//   - Outbound replies chunked to Telegram's 4096-byte limit
//   - Two delivery modes: long-polling (default) and webhook
//   - Typing indicators via sendChatAction
//
// No external Telegram library is used; the package talks to the Bot API
// with net/http and encoding/json.
package telegram
