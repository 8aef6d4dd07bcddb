package prompt

import (
	"strings"
	"testing"

	"github.com/flemzord/relaybot/internal/session"
)

func TestBuild_Structure(t *testing.T) {
	t.Parallel()

	sess := session.New("1", 10)
	sess.AddMessage(session.RoleUser, "I love climbing")
	sess.AddMessage(session.RoleAssistant, "Nice!")
	sess.SetLanguage(session.LanguageFrench)

	got := Builder{Persona: "You are Nova.", Window: 6}.Build("what about today?", "Sam Lee", sess)

	for _, want := range []string{
		"You are Nova.",
		"Always reply in French.",
		"Sam Lee has talked about: climbing.",
		"Conversation so far:\nuser: I love climbing\nassistant: Nice!",
		"Sam Lee says: what about today?",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("prompt missing %q:\n%s", want, got)
		}
	}
	if !strings.HasPrefix(got, "You are Nova.") {
		t.Errorf("persona must lead the prompt:\n%s", got)
	}
	if strings.Index(got, "Conversation so far") > strings.Index(got, "says: what about today?") {
		t.Error("history must precede the current message")
	}
}

func TestBuild_EmptySession(t *testing.T) {
	t.Parallel()

	got := Builder{}.Build("hi", "", session.New("1", 10))

	if !strings.HasPrefix(got, DefaultPersona) {
		t.Error("zero Builder should use DefaultPersona")
	}
	if strings.Contains(got, "Conversation so far") {
		t.Error("empty history must not render a heading")
	}
	if strings.Contains(got, "has talked about") {
		t.Error("no interests expected")
	}
	if !strings.Contains(got, "the user says: hi") {
		t.Errorf("missing fallback display name:\n%s", got)
	}
	if !strings.Contains(got, "same language the user writes in") {
		t.Error("auto language should ask to mirror the user")
	}
}

func TestBuild_RespectsWindow(t *testing.T) {
	t.Parallel()

	sess := session.New("1", 10)
	for _, m := range []string{"one", "two", "three", "four"} {
		sess.AddMessage(session.RoleUser, m)
	}
	got := Builder{Window: 2}.Build("five", "A", sess)

	if strings.Contains(got, "user: two") || !strings.Contains(got, "user: three\nuser: four") {
		t.Errorf("window not applied:\n%s", got)
	}
}

func TestBuild_Pure(t *testing.T) {
	t.Parallel()

	sess := session.New("1", 10)
	sess.AddMessage(session.RoleUser, "hello")
	b := Builder{Persona: "p"}

	first := b.Build("x", "A", sess)
	second := b.Build("x", "A", sess)
	if first != second {
		t.Error("Build must be deterministic")
	}
	if sess.Len() != 1 || sess.Language() != session.LanguageAuto {
		t.Error("Build must not mutate the session")
	}
}

func TestBuild_LanguageDirectives(t *testing.T) {
	t.Parallel()

	tests := map[session.Language]string{
		session.LanguageEnglish: "Always reply in English.",
		session.LanguageArabic:  "Modern Standard Arabic",
		session.LanguageDarija:  "Moroccan Darija",
	}
	for lang, want := range tests {
		sess := session.New("1", 10)
		sess.SetLanguage(lang)
		if got := (Builder{}).Build("x", "A", sess); !strings.Contains(got, want) {
			t.Errorf("%s: prompt missing %q", lang, want)
		}
	}
}
