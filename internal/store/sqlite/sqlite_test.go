package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/shelfkeeper/bibliothek/internal/models"
	"github.com/shelfkeeper/bibliothek/internal/store"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "library.db"))
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestBooksRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)

	if err := s.AppendBook(ctx, models.Book{Title: "Amerika", Author: "Tom Coraghessan Boyle", Genre: "Roman", Rating: 5}); err != nil {
		t.Fatalf("AppendBook failed: %v", err)
	}
	if err := s.AppendBook(ctx, models.Book{Title: "Der Hobbit", Author: "Tolkien", Genre: "Fantasy", Rating: 4, Cover: "-"}); err != nil {
		t.Fatalf("AppendBook failed: %v", err)
	}

	books, err := s.Books(ctx)
	if err != nil {
		t.Fatalf("Books failed: %v", err)
	}
	if len(books) != 2 {
		t.Fatalf("Expected 2 books, got %d", len(books))
	}
	if books[1].Cover != models.CoverNotFound {
		t.Errorf("Expected sentinel cover, got %q", books[1].Cover)
	}

	if err := s.UpdateBookField(ctx, books[0].Row, models.FieldCover, "https://example.org/c.jpg"); err != nil {
		t.Fatalf("UpdateBookField failed: %v", err)
	}
	if err := s.UpdateBookField(ctx, books[0].Row, models.FieldRating, "3"); err != nil {
		t.Fatalf("UpdateBookField failed: %v", err)
	}
	if err := s.DeleteBook(ctx, books[1].Row); err != nil {
		t.Fatalf("DeleteBook failed: %v", err)
	}

	books, _ = s.Books(ctx)
	if len(books) != 1 {
		t.Fatalf("Expected 1 book after delete, got %d", len(books))
	}
	if books[0].Cover != "https://example.org/c.jpg" || books[0].Rating != 3 {
		t.Errorf("Unexpected book after update: %+v", books[0])
	}
}

func TestMissingRow(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)

	err := s.DeleteBook(ctx, 42)
	if !errors.Is(err, store.ErrRowNotFound) {
		t.Errorf("Expected ErrRowNotFound, got %v", err)
	}
	err = s.UpdateBookField(ctx, 42, models.FieldCover, "x")
	if !errors.Is(err, store.ErrRowNotFound) {
		t.Errorf("Expected ErrRowNotFound, got %v", err)
	}
}

func TestAuthorsUpsertAndRemove(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)

	if err := s.AddAuthors(ctx, []string{"Christian Berkel", "Berkel", ""}); err != nil {
		t.Fatalf("AddAuthors failed: %v", err)
	}
	// repeating is a no-op
	if err := s.AddAuthors(ctx, []string{"Christian Berkel"}); err != nil {
		t.Fatalf("AddAuthors failed: %v", err)
	}
	if err := s.RemoveAuthors(ctx, []string{"Berkel", "Nobody"}); err != nil {
		t.Fatalf("RemoveAuthors failed: %v", err)
	}

	names, err := s.Authors(ctx)
	if err != nil {
		t.Fatalf("Authors failed: %v", err)
	}
	if !reflect.DeepEqual(names, []string{"Christian Berkel"}) {
		t.Errorf("Expected [Christian Berkel], got %v", names)
	}

	if err := s.ReplaceAuthors(ctx, []string{"Juli Zeh", "Daniel Kehlmann"}); err != nil {
		t.Fatalf("ReplaceAuthors failed: %v", err)
	}
	names, _ = s.Authors(ctx)
	if !reflect.DeepEqual(names, []string{"Juli Zeh", "Daniel Kehlmann"}) {
		t.Errorf("Unexpected authors after replace: %v", names)
	}
}

func TestDedupeAuthorsWithoutUniqueConstraint(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)

	// older databases were created without UNIQUE on name
	for _, stmt := range []string{
		`DROP TABLE authors`,
		`CREATE TABLE authors (id INTEGER PRIMARY KEY, name TEXT NOT NULL)`,
	} {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			t.Fatalf("Failed to recreate table: %v", err)
		}
	}
	for _, name := range []string{"Juli Zeh", "Berkel", "Juli Zeh", "Juli Zeh"} {
		if _, err := s.db.ExecContext(ctx, `INSERT INTO authors(name) VALUES(?)`, name); err != nil {
			t.Fatalf("Failed to insert %q: %v", name, err)
		}
	}

	if err := s.DedupeAuthors(ctx); err != nil {
		t.Fatalf("DedupeAuthors failed: %v", err)
	}
	names, err := s.Authors(ctx)
	if err != nil {
		t.Fatalf("Authors failed: %v", err)
	}
	if !reflect.DeepEqual(names, []string{"Juli Zeh", "Berkel"}) {
		t.Errorf("Expected [Juli Zeh Berkel], got %v", names)
	}
}
