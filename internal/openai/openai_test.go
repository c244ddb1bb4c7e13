package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shelfkeeper/bibliothek/internal/providers"
)

func TestGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer key" {
			t.Errorf("Unexpected auth header %q", got)
		}
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["model"] != DefaultModel {
			t.Errorf("Expected default model, got %v", body["model"])
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"Kinderbuch"}}]}`))
	}))
	defer srv.Close()

	got, err := New("key", srv.URL).Generate(context.Background(), providers.Config{Prompt: "translate"})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if got != "Kinderbuch" {
		t.Errorf("Expected Kinderbuch, got %q", got)
	}
}

func TestGenerateErrors(t *testing.T) {
	if _, err := New("", "").Generate(context.Background(), providers.Config{}); err == nil {
		t.Error("Expected error without api key")
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "slow down", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	if _, err := New("key", srv.URL).Generate(context.Background(), providers.Config{}); err == nil {
		t.Error("Expected error on non-200 status")
	}
}
