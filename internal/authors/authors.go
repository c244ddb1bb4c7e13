// Package authors resolves and normalizes author names.
package authors

import (
	"sort"
	"strings"
	"unicode"

	"github.com/shelfkeeper/bibliothek/internal/models"
)

// Resolve expands a short or partial author name to the longest known full
// name containing it (case-insensitive). Boyle resolves to
// "Tom Coraghessan Boyle" when that name is known. Without a match the
// fragment is returned unchanged; registering it as a new author is up to
// the caller.
func Resolve(fragment string, known []string) string {
	needle := strings.ToLower(strings.TrimSpace(fragment))
	if needle == "" {
		return fragment
	}

	candidates := append([]string(nil), known...)
	sort.SliceStable(candidates, func(i, j int) bool {
		return len(candidates[i]) > len(candidates[j])
	})

	for _, name := range candidates {
		if strings.Contains(strings.ToLower(name), needle) {
			return name
		}
	}
	return fragment
}

// Normalize maps non-breaking and other irregular spaces to plain spaces,
// drops zero-width characters, collapses runs of whitespace and trims.
func Normalize(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	space := false
	for _, r := range name {
		switch {
		case isInvisible(r):
			continue
		case unicode.IsSpace(r) || unicode.Is(unicode.Zs, r):
			space = true
		default:
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isInvisible(r rune) bool {
	switch r {
	case '\u200b', '\u200c', '\u200d', '\u2060', '\ufeff', '\u00ad':
		return true
	}
	return false
}

// Key is the comparison form of a name: normalized and lowercased
func Key(name string) string {
	return strings.ToLower(Normalize(name))
}

// Equal reports whether two names are the same author up to case and whitespace
func Equal(a, b string) bool {
	return Key(a) == Key(b)
}

// Summaries counts the books of every author. Counting compares keys, so
// "Juli Zeh" and " juli  zeh" count as the same author.
func Summaries(names []string, books []models.Book) []models.AuthorSummary {
	counts := make(map[string]int, len(names))
	for _, b := range books {
		counts[Key(b.Author)]++
	}

	out := make([]models.AuthorSummary, 0, len(names))
	for _, name := range names {
		out = append(out, models.AuthorSummary{Name: name, BookCount: counts[Key(name)]})
	}
	return out
}
