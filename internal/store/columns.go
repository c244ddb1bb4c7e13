package store

import (
	"strconv"
	"strings"

	"github.com/shelfkeeper/bibliothek/internal/models"
)

// aliases are matched as case-insensitive substrings of the header cells so
// that renamed columns ("Bild", "Cover URL", "Image") keep working.
var aliases = map[models.Field][]string{
	models.FieldTitle:  {"titel", "title"},
	models.FieldAuthor: {"autor", "author"},
	models.FieldGenre:  {"genre", "kategorie", "category"},
	models.FieldRating: {"bewertung", "rating", "sterne", "stars"},
	models.FieldCover:  {"cover", "bild", "image"},
}

// Columns maps book fields to zero-based column indexes of a header row
type Columns struct {
	index map[models.Field]int
	width int
}

// ProbeColumns resolves the column of every field in header. The first
// matching header cell wins; a field without a match is absent.
func ProbeColumns(header []string) Columns {
	cols := Columns{index: make(map[models.Field]int), width: len(header)}
	for _, field := range models.Fields {
		for i, cell := range header {
			if matchesAlias(cell, aliases[field]) {
				cols.index[field] = i
				break
			}
		}
	}
	return cols
}

func matchesAlias(cell string, candidates []string) bool {
	cell = strings.ToLower(strings.TrimSpace(cell))
	if cell == "" {
		return false
	}
	for _, alias := range candidates {
		if strings.Contains(cell, alias) {
			return true
		}
	}
	return false
}

// Index returns the column of field and whether it exists
func (c Columns) Index(field models.Field) (int, bool) {
	i, ok := c.index[field]
	return i, ok
}

// Width is the number of cells in the header row
func (c Columns) Width() int {
	return c.width
}

// Decode builds a book from a row of cells. Missing cells read as empty.
// The author is kept verbatim so reconciliation can see stray invisible
// characters in the stored cell.
func (c Columns) Decode(row int, cells []string) models.Book {
	raw := func(field models.Field) string {
		i, ok := c.index[field]
		if !ok || i >= len(cells) {
			return ""
		}
		return cells[i]
	}
	get := func(field models.Field) string {
		return strings.TrimSpace(raw(field))
	}
	return models.Book{
		Row:    row,
		Title:  get(models.FieldTitle),
		Author: raw(models.FieldAuthor),
		Genre:  get(models.FieldGenre),
		Rating: ParseRating(get(models.FieldRating)),
		Cover:  get(models.FieldCover),
	}
}

// Encode lays a book out in header order. Columns the header does not know
// about stay empty.
func (c Columns) Encode(book models.Book) []string {
	cells := make([]string, c.width)
	for field, i := range c.index {
		cells[i] = FieldValue(book, field)
	}
	return cells
}

// FieldValue returns the string form of one field of book
func FieldValue(book models.Book, field models.Field) string {
	switch field {
	case models.FieldTitle:
		return book.Title
	case models.FieldAuthor:
		return book.Author
	case models.FieldGenre:
		return book.Genre
	case models.FieldRating:
		if book.Rating == 0 {
			return ""
		}
		return strconv.Itoa(book.Rating)
	case models.FieldCover:
		return book.Cover
	default:
		return ""
	}
}

// ParseRating reads a stored rating. Sheets may hand back "4", "4.0" or
// garbage; anything unparsable reads as 0.
func ParseRating(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64); err == nil {
		return int(f)
	}
	return 0
}
