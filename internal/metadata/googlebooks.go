package metadata

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/api/books/v1"
	"google.golang.org/api/option"
)

// GoogleBooks searches the Google Books volumes API
type GoogleBooks struct {
	svc      *books.Service
	language string
}

// NewGoogleBooks creates a Google Books provider. An empty apiKey uses the
// anonymous quota. language restricts results ("de"); empty means any.
func NewGoogleBooks(ctx context.Context, apiKey, language string, opts ...option.ClientOption) (*GoogleBooks, error) {
	auth := option.WithoutAuthentication()
	if apiKey != "" {
		auth = option.WithAPIKey(apiKey)
	}
	svc, err := books.NewService(ctx, append([]option.ClientOption{auth}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create google books client: %w", err)
	}
	return &GoogleBooks{svc: svc, language: language}, nil
}

func (g *GoogleBooks) Name() string {
	return "google_books"
}

func (g *GoogleBooks) Search(ctx context.Context, query string) (*Candidate, error) {
	call := g.svc.Volumes.List(query).MaxResults(1).Context(ctx)
	if g.language != "" {
		call = call.LangRestrict(g.language)
	}

	vols, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("failed to query Google Books API: %w", err)
	}
	if len(vols.Items) == 0 || vols.Items[0].VolumeInfo == nil {
		return nil, nil
	}

	info := vols.Items[0].VolumeInfo
	c := &Candidate{Title: info.Title, Authors: info.Authors}
	if info.ImageLinks != nil {
		cover := info.ImageLinks.Thumbnail
		if cover == "" {
			cover = info.ImageLinks.SmallThumbnail
		}
		// thumbnails come back as http:// links, which browsers block on https pages
		c.CoverURL = strings.Replace(cover, "http://", "https://", 1)
	}
	if len(info.Categories) > 0 {
		c.Category = info.Categories[0]
	}
	return c, nil
}
