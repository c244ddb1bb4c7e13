package reconcile

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/shelfkeeper/bibliothek/internal/authors"
)

// Merge records a short author form folded into a longer one
type Merge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Plan is the store-independent part of a reconciliation run
type Plan struct {
	// Canonical maps a comparison key to its display form
	Canonical map[string]string
	// Replace maps the key of a short form to the display form it merges into
	Replace map[string]string
	Merges  []Merge
	// Final is the sorted, de-duplicated author list after merging
	Final []string
	// Ambiguous lists short keys that were contained in more than one
	// unrelated longer name
	Ambiguous []string
}

// NewPlan computes canonical forms and short-form merges for the given names.
//
// A short key contained in several longer keys merges into the longest of
// them, ties broken alphabetically. The target of a merge is never itself
// contained in a longer key, so applying a plan to its own output is a no-op.
func NewPlan(known []string) Plan {
	p := Plan{
		Canonical: make(map[string]string),
		Replace:   make(map[string]string),
	}

	for _, raw := range known {
		name := authors.Normalize(raw)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		current, ok := p.Canonical[key]
		if !ok || (!startsUpper(current) && startsUpper(name)) {
			p.Canonical[key] = name
		}
	}

	keys := make([]string, 0, len(p.Canonical))
	for k := range p.Canonical {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})

	for _, short := range keys {
		var containers []string
		for _, long := range keys {
			if len(long) > len(short) && strings.Contains(long, short) {
				containers = append(containers, long)
			}
		}
		if len(containers) == 0 {
			continue
		}

		target := containers[0]
		for _, c := range containers[1:] {
			if !strings.Contains(target, c) {
				p.Ambiguous = append(p.Ambiguous, short)
				break
			}
		}
		p.Replace[short] = p.Canonical[target]
		p.Merges = append(p.Merges, Merge{From: p.Canonical[short], To: p.Canonical[target]})
	}

	seen := make(map[string]bool)
	for _, key := range keys {
		name := p.Canonical[key]
		if target, ok := p.Replace[key]; ok {
			name = target
		}
		if !seen[name] {
			seen[name] = true
			p.Final = append(p.Final, name)
		}
	}
	sort.Strings(p.Final)
	sort.Slice(p.Merges, func(i, j int) bool { return p.Merges[i].From < p.Merges[j].From })

	return p
}

// Rewrite returns the value an author cell should hold and whether it differs
// from the current one.
func (p Plan) Rewrite(author string) (string, bool) {
	key := authors.Key(author)
	if key == "" {
		return author, false
	}
	if target, ok := p.Replace[key]; ok {
		return target, target != author
	}
	if canon, ok := p.Canonical[key]; ok {
		return canon, canon != author
	}
	return author, false
}

func startsUpper(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsUpper(r)
}
