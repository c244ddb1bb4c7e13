// Package reconcile merges duplicate and short-form author names across the
// author list and the book list.
package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shelfkeeper/bibliothek/internal/authors"
	"github.com/shelfkeeper/bibliothek/internal/models"
	"github.com/shelfkeeper/bibliothek/internal/store"
)

// DefaultDelay spaces out cell writes to stay under the store's write quota
const DefaultDelay = 500 * time.Millisecond

// Result summarizes a run. Per-row failures are counted, not returned.
type Result struct {
	RowsTouched int      `json:"rows_touched"`
	RowsFailed  int      `json:"rows_failed"`
	Merges      []Merge  `json:"merges"`
	Authors     []string `json:"authors"`
}

// Engine applies a Plan to a record store
type Engine struct {
	Books   store.BookStore
	Authors store.AuthorStore
	Delay   time.Duration
}

func New(books store.BookStore, authors store.AuthorStore) *Engine {
	return &Engine{Books: books, Authors: authors, Delay: DefaultDelay}
}

// Run reconciles the known author names against the store.
//
// Book rows are rewritten first, one cell at a time. The author list is then
// brought in line by adding the final names before removing obsolete ones, so
// an interrupted run leaves a superset of the correct list. Repeated rows
// are collapsed last. Only failing to
// read the book list or a cancelled context is returned as an error.
func (e *Engine) Run(ctx context.Context, known []string) (Result, error) {
	plan := NewPlan(known)
	res := Result{Merges: plan.Merges, Authors: plan.Final}

	for _, key := range plan.Ambiguous {
		slog.Warn("Ambiguous author merge, using longest name",
			"author", plan.Canonical[key], "merged_into", plan.Replace[key])
	}

	books, err := e.Books.Books(ctx)
	if err != nil {
		return res, fmt.Errorf("failed to read books: %w", err)
	}

	first := true
	for _, b := range books {
		value, changed := plan.Rewrite(b.Author)
		if !changed {
			continue
		}
		if !first {
			if err := sleep(ctx, e.Delay); err != nil {
				return res, err
			}
		}
		first = false

		if err := e.Books.UpdateBookField(ctx, b.Row, models.FieldAuthor, value); err != nil {
			slog.Warn("Failed to rewrite author", "row", b.Row, "title", b.Title, "author", value, "err", err)
			res.RowsFailed++
			continue
		}
		slog.Debug("Rewrote author", "row", b.Row, "from", b.Author, "to", value)
		res.RowsTouched++
	}

	if err := e.syncAuthorList(ctx, plan, known); err != nil {
		slog.Warn("Failed to update author list", "err", err)
	}

	slog.Info("Reconciliation finished",
		"rows_touched", res.RowsTouched,
		"rows_failed", res.RowsFailed,
		"merges", len(res.Merges),
		"authors", len(res.Authors))
	return res, ctx.Err()
}

func (e *Engine) syncAuthorList(ctx context.Context, plan Plan, known []string) error {
	if len(plan.Final) == 0 {
		return nil
	}

	if err := e.Authors.AddAuthors(ctx, plan.Final); err != nil {
		return fmt.Errorf("failed to add authors: %w", err)
	}

	stored, err := e.Authors.Authors(ctx)
	readOK := err == nil
	if !readOK {
		slog.Debug("Falling back to known names for obsolete authors", "err", err)
		stored = known
	}

	keep := make(map[string]bool, len(plan.Final))
	for _, name := range plan.Final {
		keep[name] = true
	}
	seen := make(map[string]bool, len(stored))
	repeated := false
	var obsolete []string
	for _, name := range stored {
		if seen[name] {
			repeated = true
			continue
		}
		seen[name] = true
		// names outside the plan were added after it was computed
		if _, planned := plan.Canonical[authors.Key(name)]; planned && !keep[name] {
			obsolete = append(obsolete, name)
		}
	}
	if len(obsolete) > 0 {
		if err := e.Authors.RemoveAuthors(ctx, obsolete); err != nil {
			return fmt.Errorf("failed to remove obsolete authors: %w", err)
		}
	}
	if readOK && repeated {
		if err := e.Authors.DedupeAuthors(ctx); err != nil {
			return fmt.Errorf("failed to dedupe authors: %w", err)
		}
	}
	return nil
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
