package authors

import (
	"testing"

	"github.com/shelfkeeper/bibliothek/internal/models"
)

func TestResolve(t *testing.T) {
	known := []string{"Juli Zeh", "T.C. Boyle", "Tom Coraghessan Boyle", "Christian Berkel"}

	tests := []struct {
		name     string
		fragment string
		known    []string
		expected string
	}{
		{"surname expands to full name", "Boyle", known, "Tom Coraghessan Boyle"},
		{"case insensitive", "bOyLe", known, "Tom Coraghessan Boyle"},
		{"surrounding whitespace ignored", "  Zeh ", known, "Juli Zeh"},
		{"partial substring", "Berk", known, "Christian Berkel"},
		{"exact full name", "Juli Zeh", known, "Juli Zeh"},
		{"unknown returned unchanged", "Kehlmann", known, "Kehlmann"},
		{"empty known list", "Boyle", nil, "Boyle"},
		{"blank fragment unchanged", "   ", known, "   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resolve(tt.fragment, tt.known)
			if got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestResolveDoesNotReorderInput(t *testing.T) {
	known := []string{"A B", "Alpha Beta"}
	Resolve("a", known)
	if known[0] != "A B" {
		t.Errorf("Resolve must not mutate the caller's slice, got %v", known)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{"Juli\u00a0Zeh", "Juli Zeh"},
		{"  Juli   Zeh  ", "Juli Zeh"},
		{"\ufeffJuli Zeh", "Juli Zeh"},
		{"Juli\u200b Zeh", "Juli Zeh"},
		{"Juli\u202fZeh\t", "Juli Zeh"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.expected {
			t.Errorf("Normalize(%q): expected %q, got %q", tt.in, tt.expected, got)
		}
	}
}

func TestSummaries(t *testing.T) {
	books := []models.Book{
		{Title: "Corpus Delicti", Author: "Juli Zeh"},
		{Title: "Unterleuten", Author: "juli\u00a0zeh"},
		{Title: "Amerika", Author: "Tom Coraghessan Boyle"},
	}

	got := Summaries([]string{"Juli Zeh", "Christian Berkel"}, books)
	if len(got) != 2 {
		t.Fatalf("Expected 2 summaries, got %d", len(got))
	}
	if got[0].BookCount != 2 {
		t.Errorf("Expected 2 books for Juli Zeh, got %d", got[0].BookCount)
	}
	if got[1].BookCount != 0 {
		t.Errorf("Expected 0 books for Christian Berkel, got %d", got[1].BookCount)
	}
}
