package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shelfkeeper/bibliothek/internal/config"
	"github.com/shelfkeeper/bibliothek/internal/gemini"
	"github.com/shelfkeeper/bibliothek/internal/genre"
	"github.com/shelfkeeper/bibliothek/internal/library"
	"github.com/shelfkeeper/bibliothek/internal/metadata"
	"github.com/shelfkeeper/bibliothek/internal/ollama"
	"github.com/shelfkeeper/bibliothek/internal/openai"
	"github.com/shelfkeeper/bibliothek/internal/store"
	"github.com/shelfkeeper/bibliothek/internal/store/sheets"
	"github.com/shelfkeeper/bibliothek/internal/store/sqlite"
	"github.com/shelfkeeper/bibliothek/internal/translate"
)

// app is the wired library service for one command invocation
type app struct {
	store   store.Store
	library *library.Service
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	st, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	lookup, err := newLookup(ctx, cfg)
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	classifier := genre.New(nil)
	classifier.Target = cfg.Translate.Target
	if t := newTranslator(ctx, cfg); t != nil {
		classifier.Translator = t
	}

	lib := library.New(st, lookup, classifier)
	lib.ReconcileDelay = cfg.Reconcile.Delay
	lib.BackfillBatch = cfg.Backfill.Batch
	lib.BackfillDelay = cfg.Backfill.Delay
	lib.ManualDelay = cfg.Backfill.ManualDelay

	return &app{store: st, library: lib}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}

func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.Store.Backend {
	case "sheets":
		slog.Debug("Opening spreadsheet store", "spreadsheet_id", cfg.Sheets.SpreadsheetID)
		s, err := sheets.Open(ctx, sheets.Config{
			SpreadsheetID:   cfg.Sheets.SpreadsheetID,
			BooksTab:        cfg.Sheets.BooksTab,
			AuthorsTab:      cfg.Sheets.AuthorsTab,
			CredentialsFile: cfg.Sheets.CredentialsFile,
			CredentialsJSON: cfg.Sheets.CredentialsJSON,
		})
		if err != nil {
			return nil, err
		}
		return s, nil
	case "sqlite":
		slog.Debug("Opening sqlite store", "path", cfg.Store.SQLitePath)
		s, err := sqlite.Open(cfg.Store.SQLitePath)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

func newLookup(ctx context.Context, cfg *config.Config) (*metadata.Service, error) {
	books, err := metadata.NewGoogleBooks(ctx, cfg.Google.APIKey, cfg.Metadata.Language)
	if err != nil {
		return nil, err
	}
	return metadata.NewService(books, metadata.NewOpenLibrary(cfg.Metadata.OpenLibraryInterval)), nil
}

// newTranslator returns nil when translation is disabled or cannot be set up;
// the classifier then falls back to its default genre
func newTranslator(ctx context.Context, cfg *config.Config) translate.Translator {
	var chain translate.Chain

	switch cfg.Translate.Backend {
	case "google":
		if cfg.Google.APIKey == "" {
			slog.Warn("google.api_key is not set, genre translation disabled")
			break
		}
		g, err := translate.NewGoogle(ctx, cfg.Google.APIKey)
		if err != nil {
			slog.Warn("Unable to create Google translator", "err", err)
			break
		}
		chain = append(chain, g)
		// an LLM, when configured, covers Cloud Translation outages
		if cfg.Gemini.APIKey != "" {
			chain = append(chain, &translate.LLM{Provider: gemini.New(cfg.Gemini.APIKey), Model: cfg.Translate.Model})
		}
	case "gemini":
		chain = append(chain, &translate.LLM{Provider: gemini.New(cfg.Gemini.APIKey), Model: cfg.Translate.Model})
	case "openai":
		chain = append(chain, &translate.LLM{Provider: openai.New(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL), Model: cfg.Translate.Model})
	case "ollama":
		chain = append(chain, &translate.LLM{Provider: ollama.New(cfg.Ollama.URL), Model: cfg.Translate.Model})
	}

	switch len(chain) {
	case 0:
		return nil
	case 1:
		return chain[0]
	default:
		return chain
	}
}
