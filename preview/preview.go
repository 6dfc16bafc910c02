// Package preview resolves an article's source URL into lightweight page
// metadata for click-through previews.
package preview

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Metadata is what a preview card shows for a source page.
type Metadata struct {
	Title       string
	Description string
	Site        string
}

// Fetcher downloads source pages and extracts preview metadata.
type Fetcher struct {
	client *http.Client
}

// NewFetcher creates a preview fetcher. A nil client gets a default with
// a 15 second timeout.
func NewFetcher(client *http.Client) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &Fetcher{client: client}
}

// Fetch downloads rawURL and extracts its title, description, and site
// name, preferring Open Graph tags over plain HTML fallbacks.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (Metadata, error) {
	var meta Metadata

	u, err := url.Parse(rawURL)
	if err != nil {
		return meta, fmt.Errorf("invalid source URL %q: %w", rawURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return meta, fmt.Errorf("unsupported URL scheme %q", u.Scheme)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return meta, fmt.Errorf("failed to build preview request: %w", err)
	}
	req.Header.Set("User-Agent", "newsdesk/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return meta, fmt.Errorf("failed to fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return meta, fmt.Errorf("fetching %s: unexpected status %d", rawURL, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return meta, fmt.Errorf("failed to parse %s: %w", rawURL, err)
	}

	meta.Title = firstOf(
		metaContent(doc, `meta[property="og:title"]`),
		strings.TrimSpace(doc.Find("title").First().Text()),
	)
	meta.Description = firstOf(
		metaContent(doc, `meta[property="og:description"]`),
		metaContent(doc, `meta[name="description"]`),
		strings.TrimSpace(doc.Find("p").First().Text()),
	)
	meta.Site = firstOf(
		metaContent(doc, `meta[property="og:site_name"]`),
		u.Host,
	)

	return meta, nil
}

func metaContent(doc *goquery.Document, selector string) string {
	content, _ := doc.Find(selector).First().Attr("content")
	return strings.TrimSpace(content)
}

func firstOf(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
