// Package session holds per-user state between requests: a cached snapshot of
// the record store and the once-per-session maintenance flag.
package session

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/shelfkeeper/bibliothek/internal/models"
	"github.com/shelfkeeper/bibliothek/internal/store"
)

// Context is the explicit application context passed to every library
// operation. The snapshot is discarded by Invalidate after any write.
type Context struct {
	ID string

	mu         sync.Mutex
	books      []models.Book
	authors    []string
	haveBooks  bool
	haveAuthor bool
	maintained bool
}

// New creates a context with a fresh random ID
func New() *Context {
	return &Context{ID: uuid.NewString()}
}

// Books returns the cached book list, reading it from s on first use
func (c *Context) Books(ctx context.Context, s store.BookStore) ([]models.Book, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.haveBooks {
		return c.books, nil
	}
	books, err := s.Books(ctx)
	if err != nil {
		return nil, err
	}
	c.books, c.haveBooks = books, true
	return books, nil
}

// Authors returns the cached author list, reading it from s on first use
func (c *Context) Authors(ctx context.Context, s store.AuthorStore) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.haveAuthor {
		return c.authors, nil
	}
	names, err := s.Authors(ctx)
	if err != nil {
		return nil, err
	}
	c.authors, c.haveAuthor = names, true
	return names, nil
}

// Invalidate drops the snapshot so the next read goes to the store
func (c *Context) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.books, c.authors = nil, nil
	c.haveBooks, c.haveAuthor = false, false
}

// Reset drops the snapshot and re-arms the maintenance flag
func (c *Context) Reset() {
	c.Invalidate()
	c.mu.Lock()
	c.maintained = false
	c.mu.Unlock()
}

// MarkMaintained reports true exactly once until the next Reset
func (c *Context) MarkMaintained() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.maintained {
		return false
	}
	c.maintained = true
	return true
}
