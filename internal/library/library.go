// Package library implements the user-facing operations on the book and
// author lists. Every operation takes the caller's session context; every
// write invalidates its snapshot.
package library

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/shelfkeeper/bibliothek/internal/authors"
	"github.com/shelfkeeper/bibliothek/internal/backfill"
	"github.com/shelfkeeper/bibliothek/internal/models"
	"github.com/shelfkeeper/bibliothek/internal/reconcile"
	"github.com/shelfkeeper/bibliothek/internal/session"
	"github.com/shelfkeeper/bibliothek/internal/store"
)

var (
	ErrMissingSeparator     = errors.New("das Komma fehlt: bitte \"Titel, Autor\" eingeben")
	ErrMissingTitleOrAuthor = errors.New("bitte Titel und Autor eingeben")
	ErrInvalidRating        = errors.New("die Bewertung muss zwischen 1 und 5 liegen")
	ErrEmptyAuthorName      = errors.New("der Autorenname ist leer")

	ErrNoLookup = errors.New("metadata lookup is not configured")
)

// IsValidation reports whether err is a rejected user input rather than a
// store or network failure.
func IsValidation(err error) bool {
	return errors.Is(err, ErrMissingSeparator) ||
		errors.Is(err, ErrMissingTitleOrAuthor) ||
		errors.Is(err, ErrInvalidRating) ||
		errors.Is(err, ErrEmptyAuthorName)
}

// Service ties the record store to lookup, classification and maintenance
type Service struct {
	Store      store.Store
	Lookup     backfill.Lookup
	Classifier backfill.Classifier

	ReconcileDelay time.Duration
	BackfillBatch  int
	BackfillDelay  time.Duration
	ManualDelay    time.Duration
}

func New(s store.Store, lookup backfill.Lookup, classifier backfill.Classifier) *Service {
	return &Service{
		Store:          s,
		Lookup:         lookup,
		Classifier:     classifier,
		ReconcileDelay: reconcile.DefaultDelay,
		BackfillBatch:  backfill.DefaultBatch,
		BackfillDelay:  backfill.DefaultDelay,
		ManualDelay:    backfill.ManualDelay,
	}
}

// AddResult describes a stored book and how its author was resolved
type AddResult struct {
	Book models.Book `json:"book"`
	// Fragment is the author text as entered
	Fragment string `json:"fragment"`
	// Completed is true when Fragment was expanded to a known full name
	Completed   bool   `json:"completed"`
	CoverSource string `json:"cover_source,omitempty"`
}

// ParseEntry splits "Title, Author" on the first comma
func ParseEntry(entry string) (title, author string, err error) {
	title, author, ok := strings.Cut(entry, ",")
	if !ok {
		return "", "", ErrMissingSeparator
	}
	title, author = strings.TrimSpace(title), strings.TrimSpace(author)
	if title == "" || author == "" {
		return "", "", ErrMissingTitleOrAuthor
	}
	return title, author, nil
}

// AddBook parses entry, completes the author against the known list, looks up
// cover and genre and appends the book. A rating of 0 selects
// models.DefaultRating. New authors are not registered here; SyncAuthors does
// that.
func (s *Service) AddBook(ctx context.Context, sc *session.Context, entry string, rating int) (AddResult, error) {
	if rating == 0 {
		rating = models.DefaultRating
	}
	if rating < 1 || rating > 5 {
		return AddResult{}, ErrInvalidRating
	}
	title, fragment, err := ParseEntry(entry)
	if err != nil {
		return AddResult{}, err
	}

	known, err := sc.Authors(ctx, s.Store)
	if err != nil {
		slog.Warn("Author list unavailable, keeping author as entered", "err", err)
	}
	author := authors.Resolve(fragment, known)

	book := models.Book{
		Title:  title,
		Author: author,
		Genre:  models.GenreNovel,
		Rating: rating,
	}
	res := AddResult{Fragment: fragment, Completed: author != fragment}

	if s.Lookup != nil {
		found := s.Lookup.Lookup(ctx, title, author)
		book.Cover = models.CoverNotFound
		if found.Found {
			book.Cover = found.CoverURL
			res.CoverSource = found.Source
		}
		if s.Classifier != nil {
			book.Genre = s.Classifier.Classify(ctx, found.GenreRaw)
		}
	}

	if err := s.Store.AppendBook(ctx, book); err != nil {
		return AddResult{}, fmt.Errorf("failed to save book: %w", err)
	}
	sc.Invalidate()

	slog.Info("Book added", "title", title, "author", author, "completed", res.Completed, "cover_source", res.CoverSource)
	res.Book = book
	return res, nil
}

// DeleteBooks removes the first row whose title matches each given title
// exactly. Titles without a match are skipped. It returns the number of rows
// removed.
func (s *Service) DeleteBooks(ctx context.Context, sc *session.Context, titles []string) (int, error) {
	defer sc.Invalidate()

	deleted := 0
	for _, title := range titles {
		// row handles shift after a delete, so every title gets a fresh read
		sc.Invalidate()
		books, err := sc.Books(ctx, s.Store)
		if err != nil {
			return deleted, fmt.Errorf("failed to read books: %w", err)
		}

		row, ok := findTitle(books, title)
		if !ok {
			slog.Debug("No book to delete", "title", title)
			continue
		}
		err = s.Store.DeleteBook(ctx, row)
		switch {
		case errors.Is(err, store.ErrRowNotFound):
			continue
		case err != nil:
			return deleted, fmt.Errorf("failed to delete %q: %w", title, err)
		}
		deleted++
		slog.Info("Book deleted", "title", title)
	}
	return deleted, nil
}

func findTitle(books []models.Book, title string) (int, bool) {
	for _, b := range books {
		if b.Title == title {
			return b.Row, true
		}
	}
	return 0, false
}

// Search returns books whose title or author contains query, ignoring case.
// An empty query returns every book.
func (s *Service) Search(ctx context.Context, sc *session.Context, query string) ([]models.Book, error) {
	books, err := sc.Books(ctx, s.Store)
	if err != nil {
		return nil, fmt.Errorf("failed to read books: %w", err)
	}

	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return books, nil
	}

	var hits []models.Book
	for _, b := range books {
		if strings.Contains(strings.ToLower(b.Title), q) || strings.Contains(strings.ToLower(b.Author), q) {
			hits = append(hits, b)
		}
	}
	return hits, nil
}

// Authors lists the master author list with the number of books per author
func (s *Service) Authors(ctx context.Context, sc *session.Context) ([]models.AuthorSummary, error) {
	names, err := sc.Authors(ctx, s.Store)
	if err != nil {
		return nil, fmt.Errorf("failed to read authors: %w", err)
	}
	books, err := sc.Books(ctx, s.Store)
	if err != nil {
		return nil, fmt.Errorf("failed to read books: %w", err)
	}
	return authors.Summaries(names, books), nil
}

func (s *Service) AddAuthor(ctx context.Context, sc *session.Context, name string) error {
	name = authors.Normalize(name)
	if name == "" {
		return ErrEmptyAuthorName
	}
	if err := s.Store.AddAuthors(ctx, []string{name}); err != nil {
		return fmt.Errorf("failed to add author: %w", err)
	}
	sc.Invalidate()
	return nil
}

// SaveAuthors overwrites the author list with names. Blank names and exact
// duplicates are dropped. It returns the number of names stored.
func (s *Service) SaveAuthors(ctx context.Context, sc *session.Context, names []string) (int, error) {
	seen := make(map[string]bool, len(names))
	var clean []string
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		clean = append(clean, name)
	}

	if err := s.Store.ReplaceAuthors(ctx, clean); err != nil {
		return 0, fmt.Errorf("failed to save authors: %w", err)
	}
	sc.Invalidate()
	slog.Info("Author list saved", "count", len(clean))
	return len(clean), nil
}

// SyncAuthors registers every book author missing from the author list. It
// returns the names added.
func (s *Service) SyncAuthors(ctx context.Context, sc *session.Context) ([]string, error) {
	names, err := sc.Authors(ctx, s.Store)
	if err != nil {
		return nil, fmt.Errorf("failed to read authors: %w", err)
	}
	books, err := sc.Books(ctx, s.Store)
	if err != nil {
		return nil, fmt.Errorf("failed to read books: %w", err)
	}

	have := make(map[string]bool, len(names))
	for _, name := range names {
		have[authors.Key(name)] = true
	}
	var missing []string
	for _, b := range books {
		key := authors.Key(b.Author)
		if key == "" || have[key] {
			continue
		}
		have[key] = true
		missing = append(missing, authors.Normalize(b.Author))
	}
	if len(missing) == 0 {
		return nil, nil
	}

	if err := s.Store.AddAuthors(ctx, missing); err != nil {
		return nil, fmt.Errorf("failed to add authors: %w", err)
	}
	sc.Invalidate()
	slog.Info("Synced authors from books", "added", len(missing))
	return missing, nil
}

// Reconcile merges duplicate author spellings across both lists
func (s *Service) Reconcile(ctx context.Context, sc *session.Context) (reconcile.Result, error) {
	names, err := sc.Authors(ctx, s.Store)
	if err != nil {
		return reconcile.Result{}, fmt.Errorf("failed to read authors: %w", err)
	}
	books, err := sc.Books(ctx, s.Store)
	if err != nil {
		return reconcile.Result{}, fmt.Errorf("failed to read books: %w", err)
	}

	known := append([]string(nil), names...)
	for _, b := range books {
		known = append(known, b.Author)
	}
	sort.Strings(known)

	engine := &reconcile.Engine{Books: s.Store, Authors: s.Store, Delay: s.ReconcileDelay}
	defer sc.Invalidate()
	return engine.Run(ctx, known)
}

// Backfill runs the cover backfill in manual mode
func (s *Service) Backfill(ctx context.Context, sc *session.Context, opts backfill.Options) (backfill.Result, error) {
	if s.Lookup == nil {
		return backfill.Result{}, ErrNoLookup
	}
	defer sc.Invalidate()
	return s.loop(s.ManualDelay).Run(ctx, opts)
}

func (s *Service) loop(delay time.Duration) *backfill.Loop {
	return &backfill.Loop{Books: s.Store, Lookup: s.Lookup, Classifier: s.Classifier, Delay: delay}
}

// MaintainOnce runs author sync, reconciliation and a small backfill batch
// the first time it is called for a session. Failures are logged, never
// returned. It reports whether maintenance ran.
func (s *Service) MaintainOnce(ctx context.Context, sc *session.Context) bool {
	if !sc.MarkMaintained() {
		return false
	}

	if _, err := s.SyncAuthors(ctx, sc); err != nil {
		slog.Warn("Author sync failed", "session", sc.ID, "err", err)
	}
	if _, err := s.Reconcile(ctx, sc); err != nil {
		slog.Warn("Reconciliation failed", "session", sc.ID, "err", err)
	}
	if s.Lookup != nil {
		if _, err := s.loop(s.BackfillDelay).Run(ctx, backfill.Options{Limit: s.BackfillBatch}); err != nil {
			slog.Warn("Cover backfill failed", "session", sc.ID, "err", err)
		}
		sc.Invalidate()
	}
	return true
}

// ImportResult counts the outcome of ImportBooks
type ImportResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
	Failed   int `json:"failed"`
}

// ImportBooks appends books from an external source. Authors are completed
// against the known list, but no metadata is looked up; empty covers and
// genres are filled by the next backfill.
func (s *Service) ImportBooks(ctx context.Context, sc *session.Context, books []models.Book) (ImportResult, error) {
	var res ImportResult

	known, err := sc.Authors(ctx, s.Store)
	if err != nil {
		return res, fmt.Errorf("failed to read authors: %w", err)
	}
	defer sc.Invalidate()

	for _, b := range books {
		b.Title = strings.TrimSpace(b.Title)
		b.Author = strings.TrimSpace(b.Author)
		if b.Title == "" || b.Author == "" {
			res.Skipped++
			continue
		}
		b.Author = authors.Resolve(b.Author, known)
		if b.Rating < 1 || b.Rating > 5 {
			b.Rating = models.DefaultRating
		}

		if err := s.Store.AppendBook(ctx, b); err != nil {
			if ctx.Err() != nil {
				return res, ctx.Err()
			}
			slog.Warn("Failed to import book", "title", b.Title, "err", err)
			res.Failed++
			continue
		}
		res.Imported++
	}

	slog.Info("Import finished", "imported", res.Imported, "skipped", res.Skipped, "failed", res.Failed)
	return res, nil
}
