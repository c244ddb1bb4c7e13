package transfer

import (
	"fmt"
	"io"
	"time"

	"github.com/parquet-go/parquet-go"
	"gopkg.in/yaml.v3"

	"github.com/shelfkeeper/bibliothek/internal/models"
)

// Document is the YAML export layout
type Document struct {
	ExportedAt string        `yaml:"exported_at"`
	Books      []models.Book `yaml:"books"`
	Authors    []string      `yaml:"authors"`
}

// WriteYAML writes books and authors as a single YAML document
func WriteYAML(w io.Writer, books []models.Book, authors []string) error {
	doc := Document{
		ExportedAt: time.Now().Format(time.RFC3339),
		Books:      books,
		Authors:    authors,
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to flush YAML: %w", err)
	}
	return nil
}

// WriteParquet writes the book list as Parquet rows
func WriteParquet(w io.Writer, books []models.Book) error {
	rows := make([]Record, len(books))
	for i, b := range books {
		rows[i] = recordFromBook(b)
	}

	pw := parquet.NewGenericWriter[Record](w)
	if _, err := pw.Write(rows); err != nil {
		return fmt.Errorf("failed to write parquet rows: %w", err)
	}
	if err := pw.Close(); err != nil {
		return fmt.Errorf("failed to close parquet writer: %w", err)
	}
	return nil
}
