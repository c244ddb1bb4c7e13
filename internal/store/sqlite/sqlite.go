// Package sqlite is a local record store backed by a single SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shelfkeeper/bibliothek/internal/models"
	"github.com/shelfkeeper/bibliothek/internal/store"
	_ "modernc.org/sqlite"
)

const SchemaSQL = `
CREATE TABLE IF NOT EXISTS books (
    id INTEGER PRIMARY KEY,
    title TEXT NOT NULL DEFAULT '',
    author TEXT NOT NULL DEFAULT '',
    genre TEXT NOT NULL DEFAULT '',
    rating INTEGER NOT NULL DEFAULT 0,
    cover TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS authors (
    id INTEGER PRIMARY KEY,
    name TEXT NOT NULL UNIQUE
);
`

var columnNames = map[models.Field]string{
	models.FieldTitle:  "title",
	models.FieldAuthor: "author",
	models.FieldGenre:  "genre",
	models.FieldRating: "rating",
	models.FieldCover:  "cover",
}

// Store implements store.Store on SQLite
type Store struct {
	db *sql.DB
}

var _ store.Store = (*Store)(nil)

// Open opens (and if needed creates) the database at path
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// a single connection keeps ":memory:" databases shared across calls
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(SchemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Books(ctx context.Context) ([]models.Book, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, title, author, genre, rating, cover FROM books ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query books: %w", err)
	}
	defer rows.Close()

	var books []models.Book
	for rows.Next() {
		var b models.Book
		if err := rows.Scan(&b.Row, &b.Title, &b.Author, &b.Genre, &b.Rating, &b.Cover); err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate books: %w", err)
	}
	return books, nil
}

func (s *Store) AppendBook(ctx context.Context, book models.Book) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO books(title, author, genre, rating, cover) VALUES(?,?,?,?,?)`,
		book.Title, book.Author, book.Genre, book.Rating, book.Cover,
	)
	if err != nil {
		return fmt.Errorf("insert book: %w", err)
	}
	return nil
}

func (s *Store) UpdateBookField(ctx context.Context, row int, field models.Field, value string) error {
	column, ok := columnNames[field]
	if !ok {
		return fmt.Errorf("%w: %s", store.ErrColumnMissing, field)
	}

	var arg any = value
	if field == models.FieldRating {
		arg = store.ParseRating(value)
	}

	res, err := s.db.ExecContext(ctx, `UPDATE books SET `+column+` = ? WHERE id = ?`, arg, row)
	if err != nil {
		return fmt.Errorf("update book %s: %w", field, err)
	}
	return expectOneRow(res, row)
}

func (s *Store) DeleteBook(ctx context.Context, row int) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM books WHERE id = ?`, row)
	if err != nil {
		return fmt.Errorf("delete book: %w", err)
	}
	return expectOneRow(res, row)
}

func (s *Store) Authors(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM authors ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query authors: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan author: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate authors: %w", err)
	}
	return names, nil
}

func (s *Store) AddAuthors(ctx context.Context, names []string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		for _, name := range names {
			if name == "" {
				continue
			}
			if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO authors(name) VALUES(?)`, name); err != nil {
				return fmt.Errorf("insert author: %w", err)
			}
		}
		return nil
	})
}

func (s *Store) RemoveAuthors(ctx context.Context, names []string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		for _, name := range names {
			if _, err := tx.ExecContext(ctx, `DELETE FROM authors WHERE name = ?`, name); err != nil {
				return fmt.Errorf("delete author: %w", err)
			}
		}
		return nil
	})
}

// DedupeAuthors is a no-op on tables created by SchemaSQL (name is UNIQUE)
// but also cleans databases created without the constraint.
func (s *Store) DedupeAuthors(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM authors WHERE id NOT IN (SELECT MIN(id) FROM authors GROUP BY name)`)
	if err != nil {
		return fmt.Errorf("dedupe authors: %w", err)
	}
	return nil
}

func (s *Store) ReplaceAuthors(ctx context.Context, names []string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM authors`); err != nil {
			return fmt.Errorf("clear authors: %w", err)
		}
		for _, name := range names {
			if name == "" {
				continue
			}
			if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO authors(name) VALUES(?)`, name); err != nil {
				return fmt.Errorf("insert author: %w", err)
			}
		}
		return nil
	})
}

func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func expectOneRow(res sql.Result, row int) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %d", store.ErrRowNotFound, row)
	}
	return nil
}
