package metadata

import (
	"log/slog"

	"github.com/jeandeaual/go-locale"
	"golang.org/x/text/language"
)

// Fallbacks are the texts shown when a song has no artist or no lyrics.
type Fallbacks struct {
	UnknownArtist string
	NoLyrics      string
}

var fallbacks = map[string]Fallbacks{
	"en": {UnknownArtist: "Unknown", NoLyrics: "No lyrics"},
	"zh": {UnknownArtist: "未知", NoLyrics: "暂无歌词"},
}

// FallbacksFor picks the fallbacks of the first supported locale, walking
// each locale's parents. English is used when nothing matches.
func FallbacksFor(locales []string) Fallbacks {
	for _, loc := range locales {
		if f, ok := fallbacks[loc]; ok {
			return f
		}
		lang, err := language.Parse(loc)
		if err != nil {
			continue
		}
		base, _ := lang.Base()
		for lang != language.Und {
			if f, ok := fallbacks[lang.String()]; ok {
				return f
			}
			lang = lang.Parent()
		}
		if f, ok := fallbacks[base.String()]; ok {
			return f
		}
	}
	return fallbacks["en"]
}

// DetectFallbacks uses the locales of the current user.
func DetectFallbacks() Fallbacks {
	locs, err := locale.GetLocales()
	if err != nil {
		slog.Info("Could not detect locales - working without.", "error", err)
	}
	return FallbacksFor(locs)
}
