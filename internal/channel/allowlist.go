package channel

import (
	"strings"

	"github.com/flemzord/relaybot/pkg/message"
)

// AllowList restricts which users and chats may talk to the bot. An empty
// or nil AllowList admits everyone, since the bot is public by default.
type AllowList struct {
	users map[string]struct{}
	chats map[string]struct{}
}

// NewAllowList creates an AllowList with O(1) lookups. Keys are trimmed and
// lowercased at construction time. Blank entries are ignored.
func NewAllowList(users, chats []string) *AllowList {
	a := &AllowList{
		users: make(map[string]struct{}, len(users)),
		chats: make(map[string]struct{}, len(chats)),
	}
	for _, u := range users {
		if k := normalize(u); k != "" {
			a.users[k] = struct{}{}
		}
	}
	for _, c := range chats {
		if k := normalize(c); k != "" {
			a.chats[k] = struct{}{}
		}
	}
	return a
}

// Restricted reports whether the list filters anyone.
func (a *AllowList) Restricted() bool {
	return a != nil && (len(a.users) > 0 || len(a.chats) > 0)
}

// IsAllowed reports whether the message may be processed.
//
// Rules:
//   - No entries at all → allow.
//   - Sender ID or username matches a user entry → allow.
//   - Chat ID matches a chat entry → allow.
//   - Otherwise → deny.
func (a *AllowList) IsAllowed(msg message.InboundMessage) bool {
	if !a.Restricted() {
		return true
	}
	if _, ok := a.users[normalize(msg.Sender.ID)]; ok {
		return true
	}
	if msg.Sender.Username != "" {
		if _, ok := a.users[normalize(msg.Sender.Username)]; ok {
			return true
		}
	}
	if _, ok := a.chats[normalize(msg.Chat.ID)]; ok {
		return true
	}
	return false
}

func normalize(s string) string {
	return strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "@")
}
