package router

import (
	"fmt"

	"github.com/flemzord/relaybot/internal/session"
)

// replies holds the fixed, non-generated texts in one language.
type replies struct {
	Greeting  string
	Help      string
	TextOnly  string
	Cleared   string
	Rephrase  string
	Apology   string
	LangSet   string // formatted with the language tag
	LangUsage string
}

var repliesByLanguage = map[session.Language]replies{
	session.LanguageEnglish: {
		Greeting: "Hi! I'm here to chat. Just send me a message.",
		Help: "Send me any text message and I'll reply.\n\n" +
			"/clear  forget our conversation\n" +
			"/lang <auto|en|fr|ar|darija>  choose my reply language\n" +
			"/help  show this message",
		TextOnly:  "Sorry, I can only read text messages for now.",
		Cleared:   "Done, I've forgotten our conversation.",
		Rephrase:  "I couldn't process that message. Could you rephrase it?",
		Apology:   "Sorry, I'm having trouble answering right now. Please try again in a moment.",
		LangSet:   "OK, I'll reply in %s.",
		LangUsage: "Usage: /lang auto|en|fr|ar|darija",
	},
	session.LanguageFrench: {
		Greeting: "Salut ! Je suis là pour discuter. Envoie-moi un message.",
		Help: "Envoie-moi un message texte et je te réponds.\n\n" +
			"/clear  oublier notre conversation\n" +
			"/lang <auto|en|fr|ar|darija>  choisir ma langue\n" +
			"/help  afficher ce message",
		TextOnly:  "Désolé, je ne lis que les messages texte pour le moment.",
		Cleared:   "C'est fait, j'ai oublié notre conversation.",
		Rephrase:  "Je n'ai pas pu traiter ce message. Tu peux le reformuler ?",
		Apology:   "Désolé, je n'arrive pas à répondre pour le moment. Réessaie dans un instant.",
		LangSet:   "D'accord, je répondrai en %s.",
		LangUsage: "Utilisation : /lang auto|en|fr|ar|darija",
	},
	session.LanguageArabic: {
		Greeting: "مرحبا! أنا هنا للدردشة. أرسل لي رسالة.",
		Help: "أرسل لي أي رسالة نصية وسأرد عليك.\n\n" +
			"/clear  نسيان المحادثة\n" +
			"/lang <auto|en|fr|ar|darija>  اختيار لغة الرد\n" +
			"/help  عرض هذه الرسالة",
		TextOnly:  "عذرا، أستطيع قراءة الرسائل النصية فقط حاليا.",
		Cleared:   "تم، لقد نسيت محادثتنا.",
		Rephrase:  "لم أتمكن من معالجة هذه الرسالة. هل يمكنك إعادة صياغتها؟",
		Apology:   "عذرا، أواجه مشكلة في الرد الآن. حاول مرة أخرى بعد قليل.",
		LangSet:   "حسنا، سأرد بـ %s.",
		LangUsage: "الاستخدام: /lang auto|en|fr|ar|darija",
	},
	session.LanguageDarija: {
		Greeting: "سلام! أنا هنا باش نهضرو. صيفط ليا ميساج.",
		Help: "صيفط ليا أي ميساج وغادي نجاوبك.\n\n" +
			"/clear  ننساو الهضرة\n" +
			"/lang <auto|en|fr|ar|darija>  ختار اللغة\n" +
			"/help  عرض هاد الميساج",
		TextOnly:  "سمح ليا، كنقرا غير الميساجات ديال الكتابة دابا.",
		Cleared:   "صافي، نسيت الهضرة ديالنا.",
		Rephrase:  "ما قدرتش نفهم هاد الميساج. واش تقدر تعاودو بطريقة أخرى؟",
		Apology:   "سمح ليا، عندي مشكل دابا. عاود من بعد شوية.",
		LangSet:   "واخا، غادي نجاوبك بـ %s.",
		LangUsage: "الاستعمال: /lang auto|en|fr|ar|darija",
	},
}

// repliesFor returns the reply set for lang, English when unknown or auto.
func repliesFor(lang session.Language) replies {
	if r, ok := repliesByLanguage[lang]; ok {
		return r
	}
	return repliesByLanguage[session.LanguageEnglish]
}

func (r replies) langSet(lang session.Language) string {
	return fmt.Sprintf(r.LangSet, lang)
}
