package news

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/deusflow/factcheck/internal/config"
	"github.com/deusflow/factcheck/internal/htmltext"
	"github.com/deusflow/factcheck/internal/logger"
	"github.com/deusflow/factcheck/internal/metrics"
	"github.com/mmcdole/gofeed"
)

const publishLayout = "2006-01-02 15:04:05"

// FeedSource serves pages out of RSS/Atom feeds. Feeds are read on every request.
type FeedSource struct {
	feeds    []config.Feed
	pageSize int
	client   *http.Client
}

func NewFeedSource(feeds []config.Feed, pageSize int, timeout time.Duration) *FeedSource {
	return &FeedSource{
		feeds:    feeds,
		pageSize: pageSize,
		client:   &http.Client{Timeout: timeout},
	}
}

func (f *FeedSource) Name() string { return "rss" }

// Fetch downloads and parses all feeds, filters by country and search text, and slices out one page.
// A broken feed is logged and skipped.
func (f *FeedSource) Fetch(ctx context.Context, q Query) ([]Item, error) {
	parser := gofeed.NewParser()
	parser.Client = f.client

	search := strings.ToLower(strings.TrimSpace(q.Search))
	var matched []Item
	successCount := 0

	for _, feedCfg := range f.feeds {
		if !q.allCountries() && !strings.EqualFold(feedCfg.Country, q.Country) {
			continue
		}

		feed, err := parser.ParseURLWithContext(feedCfg.URL, ctx)
		if err != nil {
			logger.Warn("error parsing feed", "url", feedCfg.URL, "error", err)
			metrics.NewsItemsFetched.WithLabelValues(f.Name(), "error").Inc()
			continue
		}
		successCount++
		logger.Debug("loaded feed", "url", feedCfg.URL, "items", len(feed.Items))

		for _, it := range feed.Items {
			item := fromFeedItem(it, feedCfg.Country)
			if search != "" && !matches(item, search) {
				continue
			}
			matched = append(matched, item)
		}
	}

	logger.Debug("processed feeds", "ok", successCount, "total", len(f.feeds))

	page := paginate(matched, q.offset(f.pageSize), f.pageSize)
	metrics.NewsItemsFetched.WithLabelValues(f.Name(), "ok").Add(float64(len(page)))
	return page, nil
}

func fromFeedItem(it *gofeed.Item, country string) Item {
	text := it.Content
	if paragraphs := htmltext.Paragraphs(text, 0); len(paragraphs) > 0 {
		text = strings.Join(paragraphs, " ")
	}

	published := it.Published
	if it.PublishedParsed != nil {
		published = it.PublishedParsed.UTC().Format(publishLayout)
	}

	// Feed bodies are HTML; World News items are passed through as sent.
	return newItem(it.Title, htmltext.PlainText(it.Description), htmltext.PlainText(text), it.Link, published, country)
}

func matches(item Item, needle string) bool {
	for _, field := range []string{item.Title, item.Summary, item.Text} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

func paginate(items []Item, offset, size int) []Item {
	if offset >= len(items) {
		return []Item{}
	}
	end := offset + size
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
