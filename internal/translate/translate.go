// Package translate turns short category labels into the display language.
package translate

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"google.golang.org/api/option"
	gtranslate "google.golang.org/api/translate/v2"

	"github.com/shelfkeeper/bibliothek/internal/providers"
)

// ErrEmptyTranslation is returned when a backend answers with nothing
var ErrEmptyTranslation = errors.New("empty translation")

// Translator translates text into the target language (ISO 639-1 code)
type Translator interface {
	Translate(ctx context.Context, text, target string) (string, error)
}

// Google uses the Cloud Translation v2 API
type Google struct {
	svc *gtranslate.Service
}

// NewGoogle creates a Cloud Translation client authenticated with apiKey.
// Extra options are applied after the key.
func NewGoogle(ctx context.Context, apiKey string, opts ...option.ClientOption) (*Google, error) {
	all := append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	svc, err := gtranslate.NewService(ctx, all...)
	if err != nil {
		return nil, fmt.Errorf("failed to create translation client: %w", err)
	}
	return &Google{svc: svc}, nil
}

func (g *Google) Translate(ctx context.Context, text, target string) (string, error) {
	resp, err := g.svc.Translations.List([]string{text}, target).Format("text").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to translate %q: %w", text, err)
	}
	if len(resp.Translations) == 0 {
		return "", ErrEmptyTranslation
	}
	out := strings.TrimSpace(html.UnescapeString(resp.Translations[0].TranslatedText))
	if out == "" {
		return "", ErrEmptyTranslation
	}
	return out, nil
}

// LLM translates with a text generation provider
type LLM struct {
	Provider providers.Provider
	Model    string
}

var languageNames = map[string]string{
	"de": "German",
	"en": "English",
	"fr": "French",
	"es": "Spanish",
	"it": "Italian",
}

func (l *LLM) Translate(ctx context.Context, text, target string) (string, error) {
	language, ok := languageNames[target]
	if !ok {
		language = target
	}

	prompt := fmt.Sprintf(`Translate the following book category label into %s.
Reply with the translated label only, without quotes or explanations.

%s`, language, text)

	out, err := l.Provider.Generate(ctx, providers.Config{Model: l.Model, Prompt: prompt, Temperature: 0})
	if err != nil {
		return "", fmt.Errorf("failed to translate %q: %w", text, err)
	}

	// models like to answer with a full sentence on the first line
	out, _, _ = strings.Cut(strings.TrimSpace(out), "\n")
	out = strings.Trim(strings.TrimSpace(out), `"'.`)
	if out == "" {
		return "", ErrEmptyTranslation
	}
	return out, nil
}

// Chain tries each translator in turn and returns the first answer
type Chain []Translator

func (c Chain) Translate(ctx context.Context, text, target string) (string, error) {
	var errs []error
	for _, t := range c {
		out, err := t.Translate(ctx, text, target)
		if err == nil && out != "" {
			return out, nil
		}
		if err == nil {
			err = ErrEmptyTranslation
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return "", fmt.Errorf("no translator configured")
	}
	return "", errors.Join(errs...)
}
