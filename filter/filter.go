package filter

import (
	"log/slog"
	"regexp"
	"strings"
	"unicode"

	"github.com/scipunch/newsdesk/config"
	"github.com/scipunch/newsdesk/feed"
)

// Pipeline applies a series of named filters to feed articles before
// they reach the digest.
type Pipeline struct {
	filters map[string]*compiledFilter
}

type compiledFilter struct {
	config          config.Filter
	excludePatterns []*regexp.Regexp
}

// NewPipeline creates a filter pipeline from config
func NewPipeline(filtersConfig map[string]config.Filter) (*Pipeline, error) {
	compiled := make(map[string]*compiledFilter)

	for name, filterCfg := range filtersConfig {
		cf := &compiledFilter{
			config:          filterCfg,
			excludePatterns: make([]*regexp.Regexp, 0, len(filterCfg.ExcludePatterns)),
		}

		for _, pattern := range filterCfg.ExcludePatterns {
			re, err := regexp.Compile(pattern)
			if err != nil {
				slog.Warn("invalid regex pattern in filter", "filter", name, "pattern", pattern, "error", err)
				continue
			}
			cf.excludePatterns = append(cf.excludePatterns, re)
		}

		compiled[name] = cf
	}

	return &Pipeline{filters: compiled}, nil
}

// Apply returns the articles that pass all named filters, in order.
func (p *Pipeline) Apply(articles []feed.Article, filterNames []string) []feed.Article {
	if len(filterNames) == 0 {
		return articles
	}

	kept := make([]feed.Article, 0, len(articles))
	for _, a := range articles {
		if include, reason := p.ShouldInclude(a, filterNames); include {
			kept = append(kept, a)
		} else {
			slog.Debug("article filtered out", "title", a.Title, "reason", reason)
		}
	}
	return kept
}

// ShouldInclude returns true if the article passes all filters in the pipeline
func (p *Pipeline) ShouldInclude(a feed.Article, filterNames []string) (bool, string) {
	for _, filterName := range filterNames {
		filter, exists := p.filters[filterName]
		if !exists {
			slog.Warn("filter not found, skipping", "filter_name", filterName)
			continue
		}

		if include, reason := p.applyFilter(a, filter, filterName); !include {
			return false, reason
		}
	}

	return true, ""
}

func (p *Pipeline) applyFilter(a feed.Article, filter *compiledFilter, filterName string) (bool, string) {
	// 1. Check category allow-list
	if len(filter.config.Categories) > 0 {
		matched := false
		for _, c := range filter.config.Categories {
			if strings.EqualFold(c, a.Category) {
				matched = true
				break
			}
		}
		if !matched {
			return false, filterName + ":category"
		}
	}

	// 2. Check minimum summary word count
	if filter.config.MinSummaryWords > 0 {
		if countWords(a.Summary) < filter.config.MinSummaryWords {
			return false, filterName + ":min_summary_words"
		}
	}

	// 3. Check exclude patterns against title and summary
	text := a.Title + " " + a.Summary
	for i, pattern := range filter.excludePatterns {
		if pattern.MatchString(text) {
			return false, filterName + ":exclude_pattern[" + filter.config.ExcludePatterns[i] + "]"
		}
	}

	return true, ""
}

// countWords counts the number of words in text
func countWords(text string) int {
	words := 0
	inWord := false

	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			if !inWord {
				words++
				inWord = true
			}
		} else {
			inWord = false
		}
	}

	return words
}
