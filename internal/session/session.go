// Package session keeps the bounded per-chat conversation state: recent
// turns, the pinned reply language and a small interest accumulator.
package session

import (
	"strings"
	"sync"
	"time"
)

const (
	// DefaultHistoryCap is the number of turns retained per chat.
	DefaultHistoryCap = 10

	// DefaultContextWindow is the number of turns rendered into a prompt.
	DefaultContextWindow = 6
)

// Role identifies the author of a conversation turn.
type Role string

// Roles.
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Entry is one conversation turn.
type Entry struct {
	Role      Role
	Text      string
	Timestamp time.Time
}

// Session is the conversation state of one chat. All methods are safe for
// concurrent use.
type Session struct {
	// ID is the externally supplied chat identifier.
	ID string

	mu           sync.Mutex
	cap          int
	history      []Entry
	lastActivity time.Time
	messageCount int
	language     Language
	mode         LanguageMode
	interests    *interests
	now          func() time.Time
}

// New creates a session holding at most historyCap turns.
// A non-positive cap falls back to DefaultHistoryCap.
func New(id string, historyCap int) *Session {
	return newSession(id, historyCap, time.Now)
}

func newSession(id string, historyCap int, now func() time.Time) *Session {
	if historyCap <= 0 {
		historyCap = DefaultHistoryCap
	}
	return &Session{
		ID:           id,
		cap:          historyCap,
		history:      make([]Entry, 0, historyCap),
		lastActivity: now(),
		language:     LanguageAuto,
		mode:         ModeAuto,
		interests:    newInterests(),
		now:          now,
	}
}

// AddMessage appends a turn, dropping the oldest turns beyond the cap.
// User turns also feed the interest accumulator.
func (s *Session) AddMessage(role Role, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.history = append(s.history, Entry{Role: role, Text: text, Timestamp: now})
	if over := len(s.history) - s.cap; over > 0 {
		s.history = append(s.history[:0], s.history[over:]...)
	}
	s.lastActivity = now
	s.messageCount++

	if role == RoleUser {
		s.interests.observe(text)
	}
}

// Context renders the last windowSize turns as "role: text" lines,
// oldest first. It returns "" when there is no history.
func (s *Session) Context(windowSize int) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if windowSize <= 0 || len(s.history) == 0 {
		return ""
	}
	start := max(len(s.history)-windowSize, 0)

	var sb strings.Builder
	for i, e := range s.history[start:] {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(string(e.Role))
		sb.WriteString(": ")
		sb.WriteString(e.Text)
	}
	return sb.String()
}

// History returns a copy of the retained turns, oldest first.
func (s *Session) History() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Entry(nil), s.history...)
}

// ClearHistory drops every turn and the interest accumulator. The message
// count and language preference survive.
func (s *Session) ClearHistory() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.history = s.history[:0]
	s.interests.reset()
	s.lastActivity = s.now()
}

// Len returns the number of retained turns.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.history)
}

// Cap returns the history capacity.
func (s *Session) Cap() int {
	return s.cap
}

// MessageCount returns the number of turns ever added.
func (s *Session) MessageCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.messageCount
}

// LastActivity returns the time of the last mutation.
func (s *Session) LastActivity() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActivity
}

// Interests returns up to n accumulated terms, most frequent first.
func (s *Session) Interests(n int) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interests.top(n)
}
