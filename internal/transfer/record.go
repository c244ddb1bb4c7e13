// Package transfer exports the library to YAML or Parquet and imports books
// from JSONL or Parquet files.
package transfer

import (
	"github.com/shelfkeeper/bibliothek/internal/models"
)

// Record is the Parquet row layout of a book
type Record struct {
	Title  string `parquet:"title" json:"title"`
	Author string `parquet:"author" json:"author"`
	Genre  string `parquet:"genre,optional" json:"genre"`
	Rating int64  `parquet:"rating" json:"rating"`
	Cover  string `parquet:"cover,optional" json:"cover"`
}

func recordFromBook(b models.Book) Record {
	return Record{Title: b.Title, Author: b.Author, Genre: b.Genre, Rating: int64(b.Rating), Cover: b.Cover}
}

func (r Record) Book() models.Book {
	return models.Book{Title: r.Title, Author: r.Author, Genre: r.Genre, Rating: int(r.Rating), Cover: r.Cover}
}

// jsonRecord accepts the German column names used in the spreadsheet as well
type jsonRecord struct {
	Title     string `json:"title"`
	Titel     string `json:"titel"`
	Author    string `json:"author"`
	Autor     string `json:"autor"`
	Genre     string `json:"genre"`
	Rating    int    `json:"rating"`
	Bewertung int    `json:"bewertung"`
	Cover     string `json:"cover"`
}

func (r jsonRecord) Book() models.Book {
	b := models.Book{Title: r.Title, Author: r.Author, Genre: r.Genre, Rating: r.Rating, Cover: r.Cover}
	if b.Title == "" {
		b.Title = r.Titel
	}
	if b.Author == "" {
		b.Author = r.Autor
	}
	if b.Rating == 0 {
		b.Rating = r.Bewertung
	}
	return b
}
