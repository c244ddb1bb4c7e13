// Package sheets is a record store backed by a Google Sheets spreadsheet.
//
// The book list lives in one tab (first tab by default) with a header row;
// the author list lives in a one-column tab named "Autoren" that is created
// on first use. Row handles are 1-based sheet row numbers, so they shift
// after a deletion and must not be reused across writes.
package sheets

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/shelfkeeper/bibliothek/internal/models"
	"github.com/shelfkeeper/bibliothek/internal/store"
)

const DefaultAuthorsTab = "Autoren"

// Config selects the spreadsheet and how to authenticate against it
type Config struct {
	SpreadsheetID   string
	BooksTab        string // empty selects the first tab
	AuthorsTab      string
	CredentialsFile string
	CredentialsJSON string

	// ClientOptions are appended after the credential options
	ClientOptions []option.ClientOption
}

// Store implements store.Store on a spreadsheet
type Store struct {
	svc        *sheets.Service
	id         string
	booksTab   string
	authorsTab string
	booksID    int64
	authorsID  int64
}

var _ store.Store = (*Store)(nil)

// Open connects to the spreadsheet, resolves the book tab and makes sure the
// author tab exists.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.SpreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheet id is required")
	}
	if cfg.AuthorsTab == "" {
		cfg.AuthorsTab = DefaultAuthorsTab
	}

	opts := []option.ClientOption{option.WithScopes(sheets.SpreadsheetsScope)}
	switch {
	case cfg.CredentialsJSON != "":
		opts = append(opts, option.WithCredentialsJSON([]byte(cfg.CredentialsJSON)))
	case cfg.CredentialsFile != "":
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	opts = append(opts, cfg.ClientOptions...)

	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets client: %w", err)
	}

	s := &Store{svc: svc, id: cfg.SpreadsheetID, booksTab: cfg.BooksTab, authorsTab: cfg.AuthorsTab}
	if err := s.setup(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) setup(ctx context.Context) error {
	ss, err := s.svc.Spreadsheets.Get(s.id).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to open spreadsheet: %w", err)
	}
	if len(ss.Sheets) == 0 {
		return fmt.Errorf("spreadsheet %s has no tabs", s.id)
	}

	authorsFound := false
	for i, sh := range ss.Sheets {
		if sh.Properties == nil {
			continue
		}
		if (s.booksTab == "" && i == 0) || sh.Properties.Title == s.booksTab {
			s.booksTab = sh.Properties.Title
			s.booksID = sh.Properties.SheetId
		}
		if sh.Properties.Title == s.authorsTab {
			s.authorsID = sh.Properties.SheetId
			authorsFound = true
		}
	}
	if s.booksTab == "" {
		return fmt.Errorf("book tab not found in spreadsheet %s", s.id)
	}
	if authorsFound {
		return nil
	}

	slog.Info("Creating author tab", "tab", s.authorsTab)
	resp, err := s.svc.Spreadsheets.BatchUpdate(s.id, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{Title: s.authorsTab},
			},
		}},
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to create author tab: %w", err)
	}
	if len(resp.Replies) > 0 && resp.Replies[0].AddSheet != nil && resp.Replies[0].AddSheet.Properties != nil {
		s.authorsID = resp.Replies[0].AddSheet.Properties.SheetId
	}
	return s.writeRange(ctx, cellRange(s.authorsTab, "A1"), [][]string{{store.AuthorHeader}})
}

func (s *Store) Close() error {
	return nil
}

func (s *Store) Books(ctx context.Context) ([]models.Book, error) {
	rows, err := s.readRows(ctx, s.booksTab)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	cols := store.ProbeColumns(rows[0])
	var books []models.Book
	for i, cells := range rows[1:] {
		if blank(cells) {
			continue
		}
		books = append(books, cols.Decode(i+2, cells))
	}
	return books, nil
}

func (s *Store) AppendBook(ctx context.Context, book models.Book) error {
	header, err := s.header(ctx)
	if err != nil {
		return err
	}
	if len(header) == 0 {
		header = store.DefaultBookHeader
		if err := s.writeRange(ctx, cellRange(s.booksTab, "A1"), [][]string{header}); err != nil {
			return fmt.Errorf("failed to write book header: %w", err)
		}
	}

	cols := store.ProbeColumns(header)
	return s.appendRows(ctx, s.booksTab, [][]string{cols.Encode(book)})
}

func (s *Store) UpdateBookField(ctx context.Context, row int, field models.Field, value string) error {
	header, err := s.header(ctx)
	if err != nil {
		return err
	}
	col, ok := store.ProbeColumns(header).Index(field)
	if !ok {
		return fmt.Errorf("%w: %s", store.ErrColumnMissing, field)
	}
	if row < 2 {
		return fmt.Errorf("%w: %d", store.ErrRowNotFound, row)
	}

	addr := fmt.Sprintf("%s%d", columnLetter(col), row)
	return s.writeRange(ctx, cellRange(s.booksTab, addr), [][]string{{value}})
}

func (s *Store) DeleteBook(ctx context.Context, row int) error {
	if row < 2 {
		return fmt.Errorf("%w: %d", store.ErrRowNotFound, row)
	}
	return s.deleteRows(ctx, s.booksID, []int{row})
}

func (s *Store) Authors(ctx context.Context) ([]string, error) {
	rows, err := s.readRows(ctx, s.authorsTab)
	if err != nil {
		return nil, err
	}
	var names []string
	for i, cells := range rows {
		if i == 0 || len(cells) == 0 {
			continue
		}
		if name := strings.TrimSpace(cells[0]); name != "" {
			names = append(names, cells[0])
		}
	}
	return names, nil
}

func (s *Store) AddAuthors(ctx context.Context, names []string) error {
	existing, err := s.Authors(ctx)
	if err != nil {
		return err
	}
	present := make(map[string]bool, len(existing))
	for _, name := range existing {
		present[name] = true
	}

	var rows [][]string
	for _, name := range names {
		if name == "" || present[name] {
			continue
		}
		present[name] = true
		rows = append(rows, []string{name})
	}
	if len(rows) == 0 {
		return nil
	}
	return s.appendRows(ctx, s.authorsTab, rows)
}

func (s *Store) RemoveAuthors(ctx context.Context, names []string) error {
	rows, err := s.readRows(ctx, s.authorsTab)
	if err != nil {
		return err
	}
	drop := make(map[string]bool, len(names))
	for _, name := range names {
		drop[name] = true
	}

	var targets []int
	for i, cells := range rows {
		if i == 0 || len(cells) == 0 {
			continue
		}
		if drop[cells[0]] {
			targets = append(targets, i+1)
		}
	}
	if len(targets) == 0 {
		return nil
	}
	return s.deleteRows(ctx, s.authorsID, targets)
}

func (s *Store) DedupeAuthors(ctx context.Context) error {
	rows, err := s.readRows(ctx, s.authorsTab)
	if err != nil {
		return err
	}
	seen := make(map[string]bool, len(rows))
	var targets []int
	for i, cells := range rows {
		if i == 0 || len(cells) == 0 || strings.TrimSpace(cells[0]) == "" {
			continue
		}
		if seen[cells[0]] {
			targets = append(targets, i+1)
			continue
		}
		seen[cells[0]] = true
	}
	if len(targets) == 0 {
		return nil
	}
	return s.deleteRows(ctx, s.authorsID, targets)
}

func (s *Store) ReplaceAuthors(ctx context.Context, names []string) error {
	if _, err := s.svc.Spreadsheets.Values.Clear(s.id, cellRange(s.authorsTab, "A:A"), &sheets.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to clear author tab: %w", err)
	}

	rows := [][]string{{store.AuthorHeader}}
	for _, name := range names {
		if name != "" {
			rows = append(rows, []string{name})
		}
	}
	return s.writeRange(ctx, cellRange(s.authorsTab, "A1"), rows)
}

func (s *Store) header(ctx context.Context) ([]string, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(s.id, cellRange(s.booksTab, "1:1")).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read book header: %w", err)
	}
	if len(resp.Values) == 0 {
		return nil, nil
	}
	return toStrings(resp.Values[0]), nil
}

func (s *Store) readRows(ctx context.Context, tab string) ([][]string, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(s.id, quoteTab(tab)).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read tab %s: %w", tab, err)
	}
	rows := make([][]string, len(resp.Values))
	for i, r := range resp.Values {
		rows[i] = toStrings(r)
	}
	return rows, nil
}

func (s *Store) writeRange(ctx context.Context, rng string, rows [][]string) error {
	_, err := s.svc.Spreadsheets.Values.Update(s.id, rng, &sheets.ValueRange{Values: toValues(rows)}).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", rng, err)
	}
	return nil
}

func (s *Store) appendRows(ctx context.Context, tab string, rows [][]string) error {
	_, err := s.svc.Spreadsheets.Values.Append(s.id, cellRange(tab, "A1"), &sheets.ValueRange{Values: toValues(rows)}).
		ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to append to %s: %w", tab, err)
	}
	return nil
}

// deleteRows removes 1-based rows in one batch. Requests are applied in
// order, so they are sent bottom-up to keep the remaining indexes valid.
func (s *Store) deleteRows(ctx context.Context, sheetID int64, rows []int) error {
	sorted := append([]int(nil), rows...)
	sort.Sort(sort.Reverse(sort.IntSlice(sorted)))

	requests := make([]*sheets.Request, 0, len(sorted))
	for _, row := range sorted {
		requests = append(requests, &sheets.Request{
			DeleteDimension: &sheets.DeleteDimensionRequest{
				Range: &sheets.DimensionRange{
					SheetId:         sheetID,
					Dimension:       "ROWS",
					StartIndex:      int64(row - 1),
					EndIndex:        int64(row),
					ForceSendFields: []string{"SheetId", "StartIndex"},
				},
			},
		})
	}

	_, err := s.svc.Spreadsheets.BatchUpdate(s.id, &sheets.BatchUpdateSpreadsheetRequest{Requests: requests}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to delete rows: %w", err)
	}
	return nil
}

func quoteTab(tab string) string {
	return "'" + strings.ReplaceAll(tab, "'", "''") + "'"
}

func cellRange(tab, a1 string) string {
	return quoteTab(tab) + "!" + a1
}

// columnLetter converts a zero-based column index to A1 notation
func columnLetter(i int) string {
	letters := ""
	for i >= 0 {
		letters = string(rune('A'+i%26)) + letters
		i = i/26 - 1
	}
	return letters
}

func toStrings(row []interface{}) []string {
	out := make([]string, len(row))
	for i, v := range row {
		if v == nil {
			continue
		}
		out[i] = fmt.Sprint(v)
	}
	return out
}

func toValues(rows [][]string) [][]interface{} {
	out := make([][]interface{}, len(rows))
	for i, r := range rows {
		vals := make([]interface{}, len(r))
		for j, c := range r {
			vals[j] = c
		}
		out[i] = vals
	}
	return out
}

func blank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
