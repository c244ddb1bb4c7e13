package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

const (
	DefaultOpenLibraryURL = "https://openlibrary.org"
	DefaultCoversURL      = "https://covers.openlibrary.org"
)

// OpenLibrary searches openlibrary.org. Requests go through a limiter since
// Open Library allows roughly 100 requests per 5 minutes.
type OpenLibrary struct {
	BaseURL    string
	CoversURL  string
	HTTPClient *http.Client
	limiter    *rate.Limiter
}

// NewOpenLibrary creates an Open Library provider allowing one request per
// interval.
func NewOpenLibrary(interval time.Duration) *OpenLibrary {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &OpenLibrary{
		BaseURL:   DefaultOpenLibraryURL,
		CoversURL: DefaultCoversURL,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		limiter: rate.NewLimiter(limit, 1),
	}
}

type openLibrarySearchResponse struct {
	NumFound int `json:"numFound"`
	Docs     []struct {
		Title      string   `json:"title"`
		AuthorName []string `json:"author_name"`
		CoverID    int      `json:"cover_i"`
		Subject    []string `json:"subject"`
	} `json:"docs"`
}

func (o *OpenLibrary) Name() string {
	return "open_library"
}

func (o *OpenLibrary) Search(ctx context.Context, query string) (*Candidate, error) {
	if err := o.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	searchURL := fmt.Sprintf("%s/search.json?q=%s&limit=1&fields=title,author_name,cover_i,subject",
		o.BaseURL, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := o.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to query Open Library: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Open Library API returned status %d", resp.StatusCode)
	}

	var result openLibrarySearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode Open Library response: %w", err)
	}
	if len(result.Docs) == 0 {
		return nil, nil
	}

	doc := result.Docs[0]
	c := &Candidate{Title: doc.Title, Authors: doc.AuthorName}
	if doc.CoverID > 0 {
		c.CoverURL = fmt.Sprintf("%s/b/id/%d-M.jpg", o.CoversURL, doc.CoverID)
	}
	if len(doc.Subject) > 0 {
		c.Category = doc.Subject[0]
	}
	return c, nil
}
