// Package metadata finds cover images and category labels for books.
package metadata

import (
	"context"
	"log/slog"
	"strings"
)

// Candidate is the best match a provider found for a query
type Candidate struct {
	Title    string
	Authors  []string
	CoverURL string
	Category string
}

// Provider searches one book metadata source. Search returns nil, nil when
// the source has no match.
type Provider interface {
	Name() string
	Search(ctx context.Context, query string) (*Candidate, error)
}

// Result is the outcome of a lookup. Found reports whether a cover was
// discovered; GenreRaw may be set even when Found is false.
type Result struct {
	Found    bool
	CoverURL string
	GenreRaw string
	Source   string
}

// Service queries the primary provider and falls back to the secondary one
// when the primary yields no cover.
type Service struct {
	Primary  Provider
	Fallback Provider
}

func NewService(primary, fallback Provider) *Service {
	return &Service{Primary: primary, Fallback: fallback}
}

// Lookup never fails; provider errors are logged and treated as no data.
// The title entered by the user is authoritative and is never replaced by a
// provider title.
func (s *Service) Lookup(ctx context.Context, title, author string) Result {
	query := strings.TrimSpace(strings.TrimSpace(title) + " " + strings.TrimSpace(author))
	var res Result
	if query == "" {
		return res
	}

	if c := s.search(ctx, s.Primary, query); c != nil {
		res.GenreRaw = c.Category
		if c.CoverURL != "" {
			res.Found = true
			res.CoverURL = c.CoverURL
			res.Source = s.Primary.Name()
			return res
		}
	}

	if c := s.search(ctx, s.Fallback, query); c != nil {
		if res.GenreRaw == "" {
			res.GenreRaw = c.Category
		}
		if c.CoverURL != "" {
			res.Found = true
			res.CoverURL = c.CoverURL
			res.Source = s.Fallback.Name()
		}
	}
	return res
}

func (s *Service) search(ctx context.Context, p Provider, query string) *Candidate {
	if p == nil {
		return nil
	}
	c, err := p.Search(ctx, query)
	if err != nil {
		slog.Warn("Metadata lookup failed", "provider", p.Name(), "query", query, "err", err)
		return nil
	}
	if c == nil {
		slog.Debug("No metadata match", "provider", p.Name(), "query", query)
	}
	return c
}
