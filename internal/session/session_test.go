package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shelfkeeper/bibliothek/internal/models"
)

type countingStore struct {
	bookReads   int
	authorReads int
	err         error
}

func (c *countingStore) Books(ctx context.Context) ([]models.Book, error) {
	c.bookReads++
	if c.err != nil {
		return nil, c.err
	}
	return []models.Book{{Row: 1, Title: "Amerika"}}, nil
}

func (c *countingStore) AppendBook(ctx context.Context, book models.Book) error { return nil }

func (c *countingStore) UpdateBookField(ctx context.Context, row int, field models.Field, value string) error {
	return nil
}

func (c *countingStore) DeleteBook(ctx context.Context, row int) error { return nil }

func (c *countingStore) Authors(ctx context.Context) ([]string, error) {
	c.authorReads++
	return []string{"Juli Zeh"}, nil
}

func (c *countingStore) AddAuthors(ctx context.Context, names []string) error { return nil }
func (c *countingStore) RemoveAuthors(ctx context.Context, names []string) error { return nil }
func (c *countingStore) DedupeAuthors(ctx context.Context) error { return nil }
func (c *countingStore) ReplaceAuthors(ctx context.Context, names []string) error { return nil }

func TestSnapshotCachedUntilInvalidate(t *testing.T) {
	ctx := context.Background()
	s := &countingStore{}
	sc := New()

	for i := 0; i < 3; i++ {
		if _, err := sc.Books(ctx, s); err != nil {
			t.Fatalf("Books failed: %v", err)
		}
		if _, err := sc.Authors(ctx, s); err != nil {
			t.Fatalf("Authors failed: %v", err)
		}
	}
	if s.bookReads != 1 || s.authorReads != 1 {
		t.Errorf("Expected one read each, got %d books and %d authors", s.bookReads, s.authorReads)
	}

	sc.Invalidate()
	_, _ = sc.Books(ctx, s)
	_, _ = sc.Authors(ctx, s)
	if s.bookReads != 2 || s.authorReads != 2 {
		t.Errorf("Expected re-read after Invalidate, got %d books and %d authors", s.bookReads, s.authorReads)
	}
}

func TestFailedReadIsNotCached(t *testing.T) {
	ctx := context.Background()
	s := &countingStore{err: errors.New("unavailable")}
	sc := New()

	if _, err := sc.Books(ctx, s); err == nil {
		t.Fatal("Expected error")
	}
	s.err = nil
	books, err := sc.Books(ctx, s)
	if err != nil || len(books) != 1 {
		t.Errorf("Expected books after recovery, got %v, %v", books, err)
	}
}

func TestMarkMaintained(t *testing.T) {
	sc := New()
	if !sc.MarkMaintained() {
		t.Error("Expected first MarkMaintained to return true")
	}
	if sc.MarkMaintained() {
		t.Error("Expected second MarkMaintained to return false")
	}
	sc.Reset()
	if !sc.MarkMaintained() {
		t.Error("Expected MarkMaintained to return true after Reset")
	}
}

func TestStoreEnsure(t *testing.T) {
	s := NewStore()

	sc, created := s.Ensure("unknown")
	if !created || sc.ID == "unknown" || sc.ID == "" {
		t.Errorf("Expected new context with generated ID, got %q (created=%v)", sc.ID, created)
	}

	again, created := s.Ensure(sc.ID)
	if created || again != sc {
		t.Error("Expected existing context to be returned")
	}
	if s.Len() != 1 {
		t.Errorf("Expected 1 session, got %d", s.Len())
	}
}

func TestStoreExpiresIdleSessions(t *testing.T) {
	clock := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	s := NewStore()
	s.TTL = time.Hour
	s.now = func() time.Time { return clock }

	idle, _ := s.Ensure("")
	active, _ := s.Ensure("")

	clock = clock.Add(45 * time.Minute)
	if _, created := s.Ensure(active.ID); created {
		t.Fatal("Expected active session to be reused")
	}

	clock = clock.Add(30 * time.Minute)
	fresh, created := s.Ensure("")
	if !created {
		t.Fatal("Expected a new session")
	}

	if _, ok := s.Get(idle.ID); ok {
		t.Error("Expected idle session to be pruned")
	}
	if _, ok := s.Get(active.ID); !ok {
		t.Error("Expected recently used session to survive")
	}
	if _, ok := s.Get(fresh.ID); !ok {
		t.Error("Expected new session to be stored")
	}
	if s.Len() != 2 {
		t.Errorf("Expected 2 sessions, got %d", s.Len())
	}

	clock = clock.Add(2 * time.Hour)
	if removed := s.Prune(); removed != 2 {
		t.Errorf("Expected 2 pruned sessions, got %d", removed)
	}
	if s.Len() != 0 {
		t.Errorf("Expected empty store, got %d", s.Len())
	}
}

func TestStoreWithoutTTLKeepsSessions(t *testing.T) {
	clock := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	s := NewStore()
	s.TTL = 0
	s.now = func() time.Time { return clock }

	s.Ensure("")
	clock = clock.Add(1000 * time.Hour)
	if removed := s.Prune(); removed != 0 {
		t.Errorf("Expected nothing pruned, got %d", removed)
	}
}
