// Package parse extracts article batches from free-form model output.
// The remote API is asked for a bare JSON array, but responses regularly
// arrive wrapped in conversational text or markdown fences; the parser
// strips that wrapper with a best-effort bracket slice and no deeper
// recovery.
package parse

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/scipunch/newsdesk/feed"
)

var (
	// ErrNoArray means the response contained no JSON array at all.
	ErrNoArray = errors.New("no JSON array found in response")
	// ErrDecode means the array substring was not valid article JSON.
	ErrDecode = errors.New("failed to parse news data")
)

type rawArticle struct {
	Title     string `json:"title"`
	Summary   string `json:"summary"`
	Category  string `json:"category"`
	SourceURL string `json:"sourceUrl"`
}

// Articles extracts the first-`[`-to-last-`]` substring of raw, decodes
// it, and assigns each record a synthetic ID of now's epoch millis plus
// its index in the batch. IDs are unique within one batch only.
func Articles(raw string, now time.Time) ([]feed.Article, error) {
	start := strings.Index(raw, "[")
	end := strings.LastIndex(raw, "]")
	if start == -1 || end == -1 || end < start {
		return nil, ErrNoArray
	}

	var records []rawArticle
	if err := json.Unmarshal([]byte(raw[start:end+1]), &records); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	base := now.UnixMilli()
	articles := make([]feed.Article, len(records))
	for i, r := range records {
		articles[i] = feed.Article{
			ID:        base + int64(i),
			Title:     r.Title,
			Summary:   r.Summary,
			Category:  r.Category,
			SourceURL: r.SourceURL,
		}
	}
	return articles, nil
}
