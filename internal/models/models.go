package models

import "strings"

// CoverNotFound marks a book whose cover was looked up without success.
// It is distinct from an empty cover, which means "not checked yet".
const CoverNotFound = "-"

const (
	GenreNovel   = "Roman"
	GenreFantasy = "Fantasy"
	GenreCrime   = "Krimi"
)

// DefaultRating is used when an entry does not carry an explicit rating.
const DefaultRating = 5

// Book represents one row of the book list
type Book struct {
	Row    int    `json:"row" yaml:"-"`
	Title  string `json:"title" yaml:"title"`
	Author string `json:"author" yaml:"author"`
	Genre  string `json:"genre" yaml:"genre"`
	Rating int    `json:"rating" yaml:"rating"`
	Cover  string `json:"cover" yaml:"cover,omitempty"`
}

// CoverState describes which of the three cover states a book is in
type CoverState int

const (
	CoverUnchecked CoverState = iota
	CoverPresent
	CoverMissing
)

func (b Book) CoverState() CoverState {
	cover := strings.TrimSpace(b.Cover)
	switch cover {
	case "":
		return CoverUnchecked
	case CoverNotFound:
		return CoverMissing
	default:
		return CoverPresent
	}
}

// Field identifies a book column independently of the header spelling
type Field int

const (
	FieldTitle Field = iota
	FieldAuthor
	FieldGenre
	FieldRating
	FieldCover
)

func (f Field) String() string {
	switch f {
	case FieldTitle:
		return "title"
	case FieldAuthor:
		return "author"
	case FieldGenre:
		return "genre"
	case FieldRating:
		return "rating"
	case FieldCover:
		return "cover"
	default:
		return "unknown"
	}
}

// Fields lists every book field in sheet order
var Fields = []Field{FieldTitle, FieldAuthor, FieldGenre, FieldRating, FieldCover}

// AuthorSummary is an author name with the number of books referencing it
type AuthorSummary struct {
	Name      string `json:"name"`
	BookCount int    `json:"book_count"`
}
