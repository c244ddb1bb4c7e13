// Package config loads bibliothek settings from defaults, an optional YAML
// file and BIBLIOTHEK_* environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "BIBLIOTHEK"

type Config struct {
	Store     StoreConfig     `mapstructure:"store"`
	Sheets    SheetsConfig    `mapstructure:"sheets"`
	Google    GoogleConfig    `mapstructure:"google"`
	Metadata  MetadataConfig  `mapstructure:"metadata"`
	Translate TranslateConfig `mapstructure:"translate"`
	Gemini    GeminiConfig    `mapstructure:"gemini"`
	OpenAI    OpenAIConfig    `mapstructure:"openai"`
	Ollama    OllamaConfig    `mapstructure:"ollama"`
	Backfill  BackfillConfig  `mapstructure:"backfill"`
	Reconcile ReconcileConfig `mapstructure:"reconcile"`
	Serve     ServeConfig     `mapstructure:"serve"`
	Log       LogConfig       `mapstructure:"log"`
}

type StoreConfig struct {
	Backend    string `mapstructure:"backend"`
	SQLitePath string `mapstructure:"sqlite_path"`
}

type SheetsConfig struct {
	SpreadsheetID   string `mapstructure:"spreadsheet_id"`
	CredentialsFile string `mapstructure:"credentials_file"`
	CredentialsJSON string `mapstructure:"credentials_json"`
	BooksTab        string `mapstructure:"books_tab"`
	AuthorsTab      string `mapstructure:"authors_tab"`
}

type GoogleConfig struct {
	APIKey string `mapstructure:"api_key"`
}

type MetadataConfig struct {
	Language string `mapstructure:"language"`
	// OpenLibraryInterval is the minimum spacing of Open Library requests
	OpenLibraryInterval time.Duration `mapstructure:"openlibrary_interval"`
}

type TranslateConfig struct {
	Backend string `mapstructure:"backend"`
	Target  string `mapstructure:"target"`
	Model   string `mapstructure:"model"`
}

type GeminiConfig struct {
	APIKey string `mapstructure:"api_key"`
}

type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

type OllamaConfig struct {
	URL string `mapstructure:"url"`
}

type BackfillConfig struct {
	Batch       int           `mapstructure:"batch"`
	Delay       time.Duration `mapstructure:"delay"`
	ManualDelay time.Duration `mapstructure:"manual_delay"`
}

type ReconcileConfig struct {
	Delay time.Duration `mapstructure:"delay"`
}

type ServeConfig struct {
	Port       string        `mapstructure:"port"`
	SessionTTL time.Duration `mapstructure:"session_ttl"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// DefaultPath returns the default config file path
func DefaultPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "bibliothek", "config.yml")
}

// Load reads the configuration. An empty path falls back to BIBLIOTHEK_CONFIG
// and then DefaultPath; only an explicitly named file has to exist.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	explicit := path != ""
	if !explicit {
		path = os.Getenv(envPrefix + "_CONFIG")
		explicit = path != ""
	}
	if path == "" {
		path = DefaultPath()
	}
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		missing := os.IsNotExist(err) || errors.As(err, &notFound)
		if explicit || !missing {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	} else {
		slog.Debug("Loaded config file", "path", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.applyEnvFallbacks()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("store.backend", "sqlite")
	v.SetDefault("store.sqlite_path", "bibliothek.db")
	v.SetDefault("sheets.spreadsheet_id", "")
	v.SetDefault("sheets.credentials_file", "")
	v.SetDefault("sheets.credentials_json", "")
	v.SetDefault("sheets.books_tab", "")
	v.SetDefault("sheets.authors_tab", "Autoren")
	v.SetDefault("google.api_key", "")
	v.SetDefault("metadata.language", "de")
	v.SetDefault("metadata.openlibrary_interval", "3s")
	v.SetDefault("translate.backend", "google")
	v.SetDefault("translate.target", "de")
	v.SetDefault("translate.model", "")
	v.SetDefault("gemini.api_key", "")
	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.base_url", "")
	v.SetDefault("ollama.url", "")
	v.SetDefault("backfill.batch", 3)
	v.SetDefault("backfill.delay", "1s")
	v.SetDefault("backfill.manual_delay", "2s")
	v.SetDefault("reconcile.delay", "500ms")
	v.SetDefault("serve.port", "8888")
	v.SetDefault("serve.session_ttl", "24h")
	v.SetDefault("log.level", "info")
}

// applyEnvFallbacks honours the provider variables other tools already set
func (c *Config) applyEnvFallbacks() {
	if c.Google.APIKey == "" {
		c.Google.APIKey = os.Getenv("GOOGLE_API_KEY")
	}
	if c.Gemini.APIKey == "" {
		c.Gemini.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if c.OpenAI.APIKey == "" {
		c.OpenAI.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if c.Ollama.URL == "" {
		c.Ollama.URL = os.Getenv("OLLAMA_URL")
	}
	if c.Ollama.URL == "" {
		c.Ollama.URL = os.Getenv("OLLAMA_HOST")
	}
}

func (c *Config) Validate() error {
	switch c.Store.Backend {
	case "sqlite":
		if c.Store.SQLitePath == "" {
			return fmt.Errorf("store.sqlite_path is required for the sqlite backend")
		}
	case "sheets":
		if c.Sheets.SpreadsheetID == "" {
			return fmt.Errorf("sheets.spreadsheet_id is required for the sheets backend")
		}
	default:
		return fmt.Errorf("unknown store backend %q (use sqlite or sheets)", c.Store.Backend)
	}

	switch c.Translate.Backend {
	case "google", "gemini", "openai", "ollama", "none":
	default:
		return fmt.Errorf("unknown translate backend %q", c.Translate.Backend)
	}

	if c.Backfill.Batch < 1 {
		return fmt.Errorf("backfill.batch must be at least 1, got %d", c.Backfill.Batch)
	}
	return nil
}

// Level maps log.level to a slog level, defaulting to info
func (c *Config) Level() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo
	}
	return level
}
