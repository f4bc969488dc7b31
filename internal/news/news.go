// Package news fetches news items from the World News API or from configured RSS feeds.
package news

import (
	"context"
	"strconv"
	"strings"
)

const (
	// AllCountries disables the country filter.
	AllCountries = "all"

	summaryLimit   = 250
	defaultSummary = "No summary available."
)

// Item is one news article as served by /load.
type Item struct {
	Title       string `json:"title"`
	Summary     string `json:"summary"`
	Text        string `json:"text"`
	URL         string `json:"url"`
	PublishDate string `json:"publish_date"`
	Country     string `json:"country"`
}

// Query selects one page of news.
type Query struct {
	Country string
	Search  string
	Page    int
}

// Source returns one page of items. A failed fetch is reported as an error;
// callers serve an empty list in that case.
type Source interface {
	Name() string
	Fetch(ctx context.Context, q Query) ([]Item, error)
}

// ParsePage reads a 1-based page number; anything unparsable or below 1 is page 1.
func ParsePage(raw string) int {
	page, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func (q Query) offset(pageSize int) int {
	page := q.Page
	if page < 1 {
		page = 1
	}
	return (page - 1) * pageSize
}

func (q Query) allCountries() bool {
	return q.Country == "" || strings.EqualFold(q.Country, AllCountries)
}

// BackfillSummary derives a summary from text when the source sent none.
func BackfillSummary(summary, text string) string {
	if summary != "" {
		return summary
	}
	runes := []rune(text)
	if len(runes) > summaryLimit {
		return string(runes[:summaryLimit]) + "..."
	}
	if text != "" {
		return text
	}
	return defaultSummary
}

func newItem(title, summary, text, url, published, country string) Item {
	return Item{
		Title:       title,
		Summary:     BackfillSummary(summary, text),
		Text:        text,
		URL:         url,
		PublishDate: published,
		Country:     country,
	}
}
