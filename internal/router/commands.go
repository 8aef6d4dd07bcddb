package router

import (
	"log/slog"

	"github.com/flemzord/relaybot/internal/session"
)

// handleCommand executes a slash command against sess and returns the
// reply text. Unknown commands get the help text.
func handleCommand(cmd, args string, sess *session.Session, logger *slog.Logger) string {
	switch cmd {
	case "start":
		return repliesFor(sessionLanguage(sess)).Greeting

	case "help":
		return repliesFor(sessionLanguage(sess)).Help

	case "clear", "reset":
		sess.ClearHistory()
		logger.Info("pipeline: history cleared")
		return repliesFor(sessionLanguage(sess)).Cleared

	case "lang", "language":
		lang, ok := session.ParseLanguage(args)
		if !ok {
			return repliesFor(sessionLanguage(sess)).LangUsage
		}
		sess.SetLanguage(lang)
		logger.Info("pipeline: language set", "language", lang)
		r := repliesFor(sessionLanguage(sess))
		if lang == session.LanguageAuto {
			return r.langSet("auto")
		}
		return r.langSet(lang)

	default:
		return repliesFor(sessionLanguage(sess)).Help
	}
}

// replyLanguage picks the language for fixed replies: the session's pinned
// language, else a non-pinning guess from text.
func replyLanguage(sess *session.Session, text string) session.Language {
	if lang := sessionLanguage(sess); lang != session.LanguageAuto {
		return lang
	}
	return session.Guess(text)
}

func sessionLanguage(sess *session.Session) session.Language {
	if sess == nil {
		return session.LanguageAuto
	}
	return sess.Language()
}
