package sheets

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"google.golang.org/api/option"

	"github.com/shelfkeeper/bibliothek/internal/models"
)

type recordedCall struct {
	Method string
	Path   string
	Body   string
}

// fakeSheets serves a fixed spreadsheet and records every write
type fakeSheets struct {
	mu      sync.Mutex
	tabs    map[string][][]string
	titles  []string
	calls   []recordedCall
	sheetID map[string]int64
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	body, _ := io.ReadAll(r.Body)
	f.calls = append(f.calls, recordedCall{Method: r.Method, Path: r.URL.Path, Body: string(body)})

	path := strings.TrimPrefix(r.URL.Path, "/v4/spreadsheets/sid")
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodGet && path == "":
		var sheetsJSON []map[string]any
		for _, title := range f.titles {
			sheetsJSON = append(sheetsJSON, map[string]any{
				"properties": map[string]any{"sheetId": f.sheetID[title], "title": title},
			})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"sheets": sheetsJSON})
	case r.Method == http.MethodGet && strings.HasPrefix(path, "/values/"):
		rng := strings.TrimPrefix(path, "/values/")
		tab, a1, _ := strings.Cut(rng, "!")
		tab = strings.Trim(tab, "'")
		rows := f.tabs[tab]
		if a1 == "1:1" && len(rows) > 0 {
			rows = rows[:1]
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"range": rng, "values": rows})
	default:
		_, _ = w.Write([]byte(`{}`))
	}
}

func (f *fakeSheets) writes() []recordedCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []recordedCall
	for _, c := range f.calls {
		if c.Method != http.MethodGet {
			out = append(out, c)
		}
	}
	return out
}

func openFake(t *testing.T, fake *fakeSheets) *Store {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	s, err := Open(context.Background(), Config{
		SpreadsheetID: "sid",
		ClientOptions: []option.ClientOption{
			option.WithEndpoint(srv.URL + "/"),
			option.WithoutAuthentication(),
		},
	})
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	return s
}

func newFake() *fakeSheets {
	return &fakeSheets{
		titles:  []string{"Bücher", "Autoren"},
		sheetID: map[string]int64{"Bücher": 0, "Autoren": 7},
		tabs: map[string][][]string{
			"Bücher": {
				{"Titel", "Autor", "Genre", "Bewertung", "Bild"},
				{"Amerika", "Boyle", "Roman", "5", ""},
				{"", "", "", "", ""},
				{"Der Hobbit", "Tolkien", "Fantasy", "4", "-"},
			},
			"Autoren": {
				{"Name"},
				{"Tom Coraghessan Boyle"},
				{"Berkel"},
			},
		},
	}
}

func TestBooksUsesSheetRowNumbers(t *testing.T) {
	s := openFake(t, newFake())

	books, err := s.Books(context.Background())
	if err != nil {
		t.Fatalf("Books failed: %v", err)
	}
	if len(books) != 2 {
		t.Fatalf("Expected 2 books, got %d", len(books))
	}
	if books[0].Row != 2 || books[1].Row != 4 {
		t.Errorf("Expected rows 2 and 4, got %d and %d", books[0].Row, books[1].Row)
	}
	if books[1].Cover != models.CoverNotFound {
		t.Errorf("Expected sentinel from Bild column, got %q", books[1].Cover)
	}
}

func TestUpdateBookFieldAddressesCell(t *testing.T) {
	fake := newFake()
	s := openFake(t, fake)

	if err := s.UpdateBookField(context.Background(), 4, models.FieldCover, "https://example.org/c.jpg"); err != nil {
		t.Fatalf("UpdateBookField failed: %v", err)
	}

	writes := fake.writes()
	if len(writes) != 1 {
		t.Fatalf("Expected 1 write, got %d", len(writes))
	}
	if writes[0].Method != http.MethodPut || !strings.HasSuffix(writes[0].Path, "'Bücher'!E4") {
		t.Errorf("Unexpected write: %s %s", writes[0].Method, writes[0].Path)
	}
	if !strings.Contains(writes[0].Body, "https://example.org/c.jpg") {
		t.Errorf("Expected cover URL in body, got %s", writes[0].Body)
	}
}

func TestRemoveAuthorsDeletesBottomUp(t *testing.T) {
	fake := newFake()
	fake.tabs["Autoren"] = append(fake.tabs["Autoren"], []string{"Boyle"})
	s := openFake(t, fake)

	if err := s.RemoveAuthors(context.Background(), []string{"Berkel", "Boyle"}); err != nil {
		t.Fatalf("RemoveAuthors failed: %v", err)
	}

	writes := fake.writes()
	if len(writes) != 1 || !strings.HasSuffix(writes[0].Path, ":batchUpdate") {
		t.Fatalf("Expected a single batchUpdate, got %+v", writes)
	}

	var req struct {
		Requests []struct {
			DeleteDimension struct {
				Range struct {
					SheetID    int64 `json:"sheetId"`
					StartIndex int64 `json:"startIndex"`
					EndIndex   int64 `json:"endIndex"`
				} `json:"range"`
			} `json:"deleteDimension"`
		} `json:"requests"`
	}
	if err := json.Unmarshal([]byte(writes[0].Body), &req); err != nil {
		t.Fatalf("Failed to decode batch body: %v", err)
	}
	if len(req.Requests) != 2 {
		t.Fatalf("Expected 2 delete requests, got %d", len(req.Requests))
	}
	first, second := req.Requests[0].DeleteDimension.Range, req.Requests[1].DeleteDimension.Range
	if first.StartIndex != 3 || second.StartIndex != 2 {
		t.Errorf("Expected bottom-up deletes (3 then 2), got %d then %d", first.StartIndex, second.StartIndex)
	}
	if first.SheetID != 7 {
		t.Errorf("Expected author sheet id 7, got %d", first.SheetID)
	}
}

func TestDedupeAuthorsKeepsFirstRow(t *testing.T) {
	fake := newFake()
	fake.tabs["Autoren"] = [][]string{
		{"Name"},
		{"Juli Zeh"},
		{"Berkel"},
		{"Juli Zeh"},
		{""},
		{"Juli Zeh"},
	}
	s := openFake(t, fake)

	if err := s.DedupeAuthors(context.Background()); err != nil {
		t.Fatalf("DedupeAuthors failed: %v", err)
	}

	writes := fake.writes()
	if len(writes) != 1 || !strings.HasSuffix(writes[0].Path, ":batchUpdate") {
		t.Fatalf("Expected a single batchUpdate, got %+v", writes)
	}
	var req struct {
		Requests []struct {
			DeleteDimension struct {
				Range struct {
					StartIndex int64 `json:"startIndex"`
				} `json:"range"`
			} `json:"deleteDimension"`
		} `json:"requests"`
	}
	if err := json.Unmarshal([]byte(writes[0].Body), &req); err != nil {
		t.Fatalf("Failed to decode batch body: %v", err)
	}
	var got []int64
	for _, r := range req.Requests {
		got = append(got, r.DeleteDimension.Range.StartIndex)
	}
	// rows 6 and 4 (1-based) hold the repeats
	if len(got) != 2 || got[0] != 5 || got[1] != 3 {
		t.Errorf("Expected deletes at start indexes [5 3], got %v", got)
	}
}

func TestDedupeAuthorsWithoutRepeats(t *testing.T) {
	fake := newFake()
	s := openFake(t, fake)

	if err := s.DedupeAuthors(context.Background()); err != nil {
		t.Fatalf("DedupeAuthors failed: %v", err)
	}
	if writes := fake.writes(); len(writes) != 0 {
		t.Errorf("Expected no writes, got %+v", writes)
	}
}

func TestAddAuthorsSkipsExisting(t *testing.T) {
	fake := newFake()
	s := openFake(t, fake)

	if err := s.AddAuthors(context.Background(), []string{"Berkel", "Christian Berkel"}); err != nil {
		t.Fatalf("AddAuthors failed: %v", err)
	}

	writes := fake.writes()
	if len(writes) != 1 || !strings.HasSuffix(writes[0].Path, ":append") {
		t.Fatalf("Expected a single append, got %+v", writes)
	}
	if strings.Contains(writes[0].Body, `"Berkel"`) {
		t.Errorf("Existing author should not be appended again: %s", writes[0].Body)
	}
	if !strings.Contains(writes[0].Body, "Christian Berkel") {
		t.Errorf("Expected new author in body, got %s", writes[0].Body)
	}
}

func TestOpenCreatesAuthorTab(t *testing.T) {
	fake := newFake()
	fake.titles = []string{"Bücher"}
	openFake(t, fake)

	writes := fake.writes()
	if len(writes) != 2 {
		t.Fatalf("Expected addSheet and header write, got %+v", writes)
	}
	if !strings.Contains(writes[0].Body, "addSheet") {
		t.Errorf("Expected addSheet request, got %s", writes[0].Body)
	}
	if !strings.Contains(writes[1].Body, `"Name"`) {
		t.Errorf("Expected header write, got %s", writes[1].Body)
	}
}

func TestColumnLetter(t *testing.T) {
	tests := map[int]string{0: "A", 4: "E", 25: "Z", 26: "AA", 27: "AB", 51: "AZ", 52: "BA"}
	for in, expected := range tests {
		if got := columnLetter(in); got != expected {
			t.Errorf("columnLetter(%d): expected %s, got %s", in, expected, got)
		}
	}
}
