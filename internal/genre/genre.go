// Package genre maps raw provider category labels to display genres.
package genre

import (
	"context"
	"log/slog"
	"strings"

	"github.com/shelfkeeper/bibliothek/internal/models"
	"github.com/shelfkeeper/bibliothek/internal/translate"
)

// DefaultTarget is the display language
const DefaultTarget = "de"

// genericLabels are provider categories that only say "this is fiction".
// Translating them yields words like "Fiktion" or "Allgemein", so they are
// pinned to the default genre.
var genericLabels = map[string]bool{
	"Fiction":           true,
	"General":           true,
	"Novel":             true,
	"Fiction / General": true,
	"Literary Fiction":  true,
	"Literature":        true,
	"Roman":             true,
	"Belletristik":      true,
}

var crimeKeywords = []string{"thriller", "crime", "mystery"}

// falseCognate is what machine translation makes of "Fiction"
const falseCognate = "fiktion"

// Classifier maps raw category labels to a small set of display genres
type Classifier struct {
	Translator translate.Translator
	Target     string
}

// New returns a classifier translating into the default display language.
// A nil translator disables the translation fallback.
func New(t translate.Translator) *Classifier {
	return &Classifier{Translator: t, Target: DefaultTarget}
}

// Classify never fails: every path that cannot produce a better answer
// returns models.GenreNovel.
func (c *Classifier) Classify(ctx context.Context, raw string) string {
	label := strings.TrimSpace(raw)
	if label == "" || genericLabels[label] {
		return models.GenreNovel
	}

	lower := strings.ToLower(label)
	if strings.Contains(lower, "fantasy") {
		return models.GenreFantasy
	}
	for _, kw := range crimeKeywords {
		if strings.Contains(lower, kw) {
			return models.GenreCrime
		}
	}

	if c == nil || c.Translator == nil {
		return models.GenreNovel
	}

	target := c.Target
	if target == "" {
		target = DefaultTarget
	}
	translated, err := c.Translator.Translate(ctx, label, target)
	if err != nil {
		slog.Warn("Genre translation failed", "label", label, "err", err)
		return models.GenreNovel
	}
	translated = strings.TrimSpace(translated)
	if translated == "" || strings.Contains(strings.ToLower(translated), falseCognate) {
		return models.GenreNovel
	}
	return translated
}
