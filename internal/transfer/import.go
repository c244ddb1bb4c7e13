package transfer

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/parquet-go/parquet-go"

	"github.com/shelfkeeper/bibliothek/internal/models"
)

// Loader reads books from a JSONL or Parquet file
type Loader struct {
	path string
}

func NewLoader(path string) *Loader {
	return &Loader{path: path}
}

// Load picks the format from the file extension
func (l *Loader) Load() ([]models.Book, error) {
	ext := strings.ToLower(filepath.Ext(l.path))

	switch ext {
	case ".parquet":
		return l.loadParquet()
	case ".jsonl", ".json":
		return l.loadJSONL()
	default:
		return nil, fmt.Errorf("unsupported file format: %s (supported: .parquet, .jsonl)", ext)
	}
}

func (l *Loader) loadJSONL() ([]models.Book, error) {
	slog.Debug("Opening JSONL file", "path", l.path)

	file, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open import file: %w", err)
	}
	defer file.Close()

	var books []models.Book
	scanner := bufio.NewScanner(file)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var record jsonRecord
		if err := json.Unmarshal([]byte(line), &record); err != nil {
			return nil, fmt.Errorf("failed to parse JSON at line %d: %w", lineNum, err)
		}
		books = append(books, record.Book())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading import file: %w", err)
	}

	slog.Debug("Finished reading JSONL file", "books", len(books), "lines", lineNum)
	return books, nil
}

func (l *Loader) loadParquet() ([]models.Book, error) {
	slog.Debug("Opening Parquet file", "path", l.path)

	file, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	pf, err := parquet.OpenFile(file, info.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet: %w", err)
	}
	slog.Debug("Parquet file opened", "num_rows", pf.NumRows(), "num_row_groups", len(pf.RowGroups()))

	reader := parquet.NewGenericReader[Record](pf)
	defer reader.Close()

	var books []models.Book
	rows := make([]Record, 128)
	for {
		n, err := reader.Read(rows)
		for _, r := range rows[:n] {
			books = append(books, r.Book())
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read parquet rows: %w", err)
		}
	}

	slog.Debug("Finished reading Parquet file", "books", len(books))
	return books, nil
}
