package gateway

import (
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/flemzord/relaybot/internal/session"
)

// sessionJSON is a serializable session snapshot.
type sessionJSON struct {
	ID           string               `json:"id"`
	Language     session.Language     `json:"language"`
	LanguageMode session.LanguageMode `json:"language_mode"`
	HistoryLen   int                  `json:"history_len"`
	MessageCount int                  `json:"message_count"`
	LastActivity time.Time            `json:"last_activity"`
	Interests    []string             `json:"interests,omitempty"`
	History      []entryJSON          `json:"history,omitempty"`
}

type entryJSON struct {
	Role      session.Role `json:"role"`
	Text      string       `json:"text"`
	Timestamp time.Time    `json:"timestamp"`
}

func toSessionJSON(s *session.Session, withHistory bool) sessionJSON {
	out := sessionJSON{
		ID:           s.ID,
		Language:     s.Language(),
		LanguageMode: s.LanguageMode(),
		HistoryLen:   s.Len(),
		MessageCount: s.MessageCount(),
		LastActivity: s.LastActivity().UTC(),
		Interests:    s.Interests(5),
	}
	if withHistory {
		for _, e := range s.History() {
			out.History = append(out.History, entryJSON{
				Role:      e.Role,
				Text:      e.Text,
				Timestamp: e.Timestamp.UTC(),
			})
		}
	}
	return out
}

// handleListSessions returns all live sessions, most recently active first.
func (g *Gateway) handleListSessions() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		sessions := []sessionJSON{}
		g.deps.Sessions.Range(func(s *session.Session) bool {
			sessions = append(sessions, toSessionJSON(s, false))
			return true
		})
		sort.Slice(sessions, func(i, j int) bool {
			return sessions[i].LastActivity.After(sessions[j].LastActivity)
		})
		writeJSON(w, http.StatusOK, sessions)
	}
}

// handleGetSession returns one session including its history.
func (g *Gateway) handleGetSession() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := g.deps.Sessions.Get(chi.URLParam(r, "id"))
		if sess == nil {
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, toSessionJSON(sess, true))
	}
}

// handleDeleteSession drops a session by chat id.
func (g *Gateway) handleDeleteSession() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if g.deps.Sessions.Get(id) == nil {
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}
		g.deps.Sessions.Delete(id)
		g.logger.Info("session deleted via admin api", "chat_id", id)
		w.WriteHeader(http.StatusNoContent)
	}
}

// handleListCredentials returns the masked key ledger.
func (g *Gateway) handleListCredentials() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		if g.deps.Credentials == nil {
			writeJSON(w, http.StatusOK, []any{})
			return
		}
		writeJSON(w, http.StatusOK, g.deps.Credentials.Snapshot())
	}
}
