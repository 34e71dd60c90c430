package indicator

import (
	"strings"

	"golang.org/x/text/language"
)

type messages struct {
	analyzing string
	complete  string
	failed    string
}

var (
	supported = []language.Tag{language.English, language.Spanish}
	matcher   = language.NewMatcher(supported)
)

// resolveLocale maps a POSIX locale such as "es_MX.UTF-8" onto a supported language.
func resolveLocale(raw string) language.Tag {
	raw = strings.TrimSpace(raw)
	if i := strings.IndexAny(raw, ".@"); i >= 0 {
		raw = raw[:i]
	}
	raw = strings.ReplaceAll(raw, "_", "-")
	if raw == "" || raw == "C" || raw == "POSIX" {
		return language.English
	}

	_, index := language.MatchStrings(matcher, raw)
	return supported[index]
}

func messagesFor(tag language.Tag) messages {
	switch tag {
	case language.Spanish:
		return messages{
			analyzing: "Analizando…",
			complete:  "Análisis completo",
			failed:    "Análisis fallido",
		}
	default:
		return messages{
			analyzing: "Analyzing…",
			complete:  "Analysis complete",
			failed:    "Analysis failed",
		}
	}
}
