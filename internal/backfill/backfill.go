// Package backfill fills in missing covers and genres for books already in
// the store.
package backfill

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shelfkeeper/bibliothek/internal/metadata"
	"github.com/shelfkeeper/bibliothek/internal/models"
	"github.com/shelfkeeper/bibliothek/internal/store"
)

const (
	// DefaultBatch bounds an opportunistic run triggered by a page load
	DefaultBatch = 3
	// DefaultDelay is the pause between lookups of an opportunistic run
	DefaultDelay = 1 * time.Second
	// ManualDelay is the pause between lookups of a manual run
	ManualDelay = 2 * time.Second
)

// Lookup finds cover and category data for a book
type Lookup interface {
	Lookup(ctx context.Context, title, author string) metadata.Result
}

// Classifier maps a raw provider category to a display genre
type Classifier interface {
	Classify(ctx context.Context, raw string) string
}

// Options controls a single run
type Options struct {
	// Limit caps the rows processed; zero or less means no limit
	Limit int
	// RetryNotFound also re-queries rows carrying models.CoverNotFound
	RetryNotFound bool
}

// Result counts what a run did. Filled is the number of covers written.
type Result struct {
	Scanned        int `json:"scanned"`
	Filled         int `json:"filled"`
	MarkedNotFound int `json:"marked_not_found"`
	Failed         int `json:"failed"`
}

// Loop looks up metadata for books whose cover has not been checked yet
type Loop struct {
	Books      store.BookStore
	Lookup     Lookup
	Classifier Classifier
	Delay      time.Duration
}

func New(books store.BookStore, lookup Lookup, classifier Classifier) *Loop {
	return &Loop{Books: books, Lookup: lookup, Classifier: classifier, Delay: DefaultDelay}
}

// Pending returns the books a run with opts would process, in store order
func Pending(books []models.Book, opts Options) []models.Book {
	var out []models.Book
	for _, b := range books {
		switch b.CoverState() {
		case models.CoverUnchecked:
		case models.CoverMissing:
			if !opts.RetryNotFound {
				continue
			}
		default:
			continue
		}
		if strings.TrimSpace(b.Title) == "" {
			continue
		}
		out = append(out, b)
		if opts.Limit > 0 && len(out) == opts.Limit {
			break
		}
	}
	return out
}

// Run processes pending books one at a time. A failed lookup or write skips
// the row; only failing to read the book list or a cancelled context is
// returned as an error.
func (l *Loop) Run(ctx context.Context, opts Options) (Result, error) {
	var res Result

	books, err := l.Books.Books(ctx)
	if err != nil {
		return res, fmt.Errorf("failed to read books: %w", err)
	}

	pending := Pending(books, opts)
	if len(pending) == 0 {
		return res, nil
	}
	slog.Info("Starting cover backfill", "pending", len(pending), "retry_not_found", opts.RetryNotFound)

	for i, b := range pending {
		if i > 0 {
			if err := sleep(ctx, l.Delay); err != nil {
				return res, err
			}
		}
		res.Scanned++
		l.process(ctx, b, &res)
	}

	slog.Info("Cover backfill finished",
		"scanned", res.Scanned,
		"filled", res.Filled,
		"not_found", res.MarkedNotFound,
		"failed", res.Failed)
	return res, nil
}

func (l *Loop) process(ctx context.Context, b models.Book, res *Result) {
	found := l.Lookup.Lookup(ctx, b.Title, strings.TrimSpace(b.Author))

	cover := models.CoverNotFound
	if found.Found {
		cover = found.CoverURL
	}

	if cover != b.Cover {
		if err := l.Books.UpdateBookField(ctx, b.Row, models.FieldCover, cover); err != nil {
			slog.Warn("Failed to write cover", "row", b.Row, "title", b.Title, "err", err)
			res.Failed++
			return
		}
	}
	if found.Found {
		slog.Debug("Cover found", "title", b.Title, "source", found.Source)
		res.Filled++
	} else {
		res.MarkedNotFound++
	}

	if strings.TrimSpace(b.Genre) != "" || l.Classifier == nil {
		return
	}
	g := l.Classifier.Classify(ctx, found.GenreRaw)
	err := l.Books.UpdateBookField(ctx, b.Row, models.FieldGenre, g)
	switch {
	case errors.Is(err, store.ErrColumnMissing):
		slog.Debug("Book table has no genre column", "row", b.Row)
	case err != nil:
		slog.Warn("Failed to write genre", "row", b.Row, "title", b.Title, "err", err)
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
