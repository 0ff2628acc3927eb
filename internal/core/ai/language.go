package ai

import (
	"strings"
	"unicode"

	"golang.org/x/text/language"
)

// Wolof has no x/text builtin constant; parse the ISO 639-1 tag once.
var wolof = language.MustParse("wo")

var frenchHints = []string{
	"bonjour", "bonsoir", "merci", "je veux", "je voudrais", "s'il vous",
	"svp", "combien", "commande", "commander", "livraison", "menu du",
	"est-ce que", "avez-vous", "c'est", "quel", "quelle",
}

var wolofHints = []string{
	"salaam", "nanga def", "naka", "dama", "bëgg", "begg", "jërëjëf",
	"jerejef", "ñam", "lekk", "añ", "ndax", "waaw", "déedéet",
}

// DetectLanguage guesses the reply language from the inbound text.
// Best-effort heuristic, not a contract: Arabic by script, French and
// Wolof by common phrases, English otherwise.
func DetectLanguage(text string) language.Tag {
	for _, r := range text {
		if unicode.Is(unicode.Arabic, r) {
			return language.Arabic
		}
	}

	low := strings.ToLower(text)
	for _, hint := range wolofHints {
		if strings.Contains(low, hint) {
			return wolof
		}
	}
	for _, hint := range frenchHints {
		if strings.Contains(low, hint) {
			return language.French
		}
	}
	return language.English
}

func languageName(tag language.Tag) string {
	switch tag {
	case language.French:
		return "French"
	case language.Arabic:
		return "Arabic"
	case wolof:
		return "Wolof"
	default:
		return "English"
	}
}

// fallbackReply is the static degraded reply sent when the model is
// unreachable after retry.
func fallbackReply(tag language.Tag) string {
	switch tag {
	case language.French:
		return "Désolé, nous rencontrons un problème technique. Merci de réessayer dans quelques instants."
	case language.Arabic:
		return "عذراً، نواجه مشكلة تقنية. يرجى المحاولة مرة أخرى بعد قليل."
	case wolof:
		return "Jéggalu ma, am na jafe-jafe. Jéemaatal ci kanam bu néew, jërëjëf."
	default:
		return "Sorry, we're experiencing technical issues. Please try again shortly."
	}
}
