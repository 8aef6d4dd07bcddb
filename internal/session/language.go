package session

import (
	"strings"
	"unicode"
)

// Language is a reply language tag.
type Language string

// Supported languages.
const (
	LanguageAuto    Language = "auto"
	LanguageEnglish Language = "en"
	LanguageFrench  Language = "fr"
	LanguageArabic  Language = "ar"
	LanguageDarija  Language = "darija"
)

// ParseLanguage maps a user-supplied tag to a Language.
func ParseLanguage(s string) (Language, bool) {
	switch Language(strings.ToLower(strings.TrimSpace(s))) {
	case LanguageAuto:
		return LanguageAuto, true
	case LanguageEnglish:
		return LanguageEnglish, true
	case LanguageFrench:
		return LanguageFrench, true
	case LanguageArabic:
		return LanguageArabic, true
	case LanguageDarija:
		return LanguageDarija, true
	default:
		return "", false
	}
}

// LanguageMode records how the session's language was chosen.
type LanguageMode string

// Language modes.
const (
	// ModeAuto detects on the next conclusive message.
	ModeAuto LanguageMode = "auto"
	// ModeDetected is pinned by the first conclusive detection.
	ModeDetected LanguageMode = "detected"
	// ModeOverride is pinned by an explicit user choice.
	ModeOverride LanguageMode = "override"
)

// darijaKeywords are Moroccan dialect tokens, matched as whole words.
var darijaKeywords = map[string]struct{}{
	"واش":   {},
	"بزاف":  {},
	"دابا":  {},
	"كيفاش": {},
	"علاش":  {},
	"شنو":   {},
	"شنا":   {},
	"ديال":  {},
	"مزيان": {},
	"خويا":  {},
	"غادي":  {},
	"بغيت":  {},
	"كاين":  {},
	"ماشي":  {},
	"صافي":  {},
	"فين":   {},
}

// DetectLanguage returns the session's pinned language or, in auto mode,
// classifies text and pins the result. Text without any letters is
// inconclusive: it yields English without pinning.
func (s *Session) DetectLanguage(text string) Language {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mode != ModeAuto {
		return s.language
	}
	lang, conclusive := classify(text)
	if !conclusive {
		return lang
	}
	s.language = lang
	s.mode = ModeDetected
	return lang
}

// SetLanguage pins lang as an explicit override. LanguageAuto returns the
// session to auto-detection.
func (s *Session) SetLanguage(lang Language) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if lang == LanguageAuto || lang == "" {
		s.language = LanguageAuto
		s.mode = ModeAuto
		return
	}
	s.language = lang
	s.mode = ModeOverride
}

// Language returns the current language tag (LanguageAuto until pinned).
func (s *Session) Language() Language {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.language
}

// LanguageMode returns how the current language was chosen.
func (s *Session) LanguageMode() LanguageMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// Guess classifies text without touching any session. Inconclusive text
// yields LanguageEnglish.
func Guess(text string) Language {
	lang, _ := classify(text)
	return lang
}

// classify applies the script rule table:
//
//	any Arabic-script letter   -> ar (darija if a dialect keyword occurs)
//	any accented Latin letter  -> fr
//	any other letter           -> en
//	no letters                 -> en, inconclusive
func classify(text string) (Language, bool) {
	var hasArabic, hasAccented, hasLetter bool
	for _, r := range text {
		switch {
		case unicode.Is(unicode.Arabic, r):
			hasArabic = true
			if unicode.IsLetter(r) {
				hasLetter = true
			}
		case unicode.IsLetter(r):
			hasLetter = true
			if isAccentedLatin(r) {
				hasAccented = true
			}
		}
	}

	switch {
	case hasArabic:
		if containsDarija(text) {
			return LanguageDarija, true
		}
		return LanguageArabic, true
	case hasAccented:
		return LanguageFrench, true
	case hasLetter:
		return LanguageEnglish, true
	default:
		return LanguageEnglish, false
	}
}

// isAccentedLatin reports Latin letters outside ASCII (é, ç, œ, ...).
func isAccentedLatin(r rune) bool {
	return r > unicode.MaxASCII && unicode.Is(unicode.Latin, r)
}

func containsDarija(text string) bool {
	for _, tok := range strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r)
	}) {
		if _, ok := darijaKeywords[tok]; ok {
			return true
		}
	}
	return false
}
