// Package store defines the record store the library is persisted in.
//
// A record store holds two tables: the book list and the master list of
// author names. Each call is an independent round trip; there are no
// transactions spanning calls.
package store

import (
	"context"
	"errors"

	"github.com/shelfkeeper/bibliothek/internal/models"
)

var (
	// ErrColumnMissing is returned when a write targets a column the book table lacks
	ErrColumnMissing = errors.New("column not present in book table")
	// ErrRowNotFound is returned when a row handle no longer exists
	ErrRowNotFound = errors.New("row not found")
)

// DefaultBookHeader is written to an empty book table
var DefaultBookHeader = []string{"Titel", "Autor", "Genre", "Bewertung", "Cover"}

// AuthorHeader is the single column header of the author table
const AuthorHeader = "Name"

// BookStore reads and mutates the book list
type BookStore interface {
	Books(ctx context.Context) ([]models.Book, error)
	AppendBook(ctx context.Context, book models.Book) error
	UpdateBookField(ctx context.Context, row int, field models.Field, value string) error
	DeleteBook(ctx context.Context, row int) error
}

// AuthorStore reads and mutates the master author list.
//
// AddAuthors skips names already present verbatim and RemoveAuthors ignores
// names that are absent, so both are safe to repeat. DedupeAuthors deletes
// every repeated row after the first occurrence of a name. ReplaceAuthors is
// the destructive overwrite used only for explicit user saves.
type AuthorStore interface {
	Authors(ctx context.Context) ([]string, error)
	AddAuthors(ctx context.Context, names []string) error
	RemoveAuthors(ctx context.Context, names []string) error
	DedupeAuthors(ctx context.Context) error
	ReplaceAuthors(ctx context.Context, names []string) error
}

// Store is a complete record store backend
type Store interface {
	BookStore
	AuthorStore
	Close() error
}
