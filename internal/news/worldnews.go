package news

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/deusflow/factcheck/internal/logger"
	"github.com/deusflow/factcheck/internal/metrics"
)

// WorldNewsClient queries the World News API search-news endpoint.
type WorldNewsClient struct {
	baseURL  string
	apiKey   string
	pageSize int
	client   *http.Client
}

func NewWorldNewsClient(baseURL, apiKey string, pageSize int, timeout time.Duration) *WorldNewsClient {
	return &WorldNewsClient{
		baseURL:  baseURL,
		apiKey:   apiKey,
		pageSize: pageSize,
		client:   &http.Client{Timeout: timeout},
	}
}

func (c *WorldNewsClient) Name() string { return "worldnews" }

type searchResponse struct {
	News []rawItem `json:"news"`
}

type rawItem struct {
	Title         string `json:"title"`
	Summary       string `json:"summary"`
	Text          string `json:"text"`
	URL           string `json:"url"`
	PublishDate   string `json:"publish_date"`
	SourceCountry string `json:"source_country"`
}

func (c *WorldNewsClient) requestURL(q Query) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}

	params := u.Query()
	params.Set("number", strconv.Itoa(c.pageSize))
	params.Set("offset", strconv.Itoa(q.offset(c.pageSize)))
	params.Set("language", "en")
	if !q.allCountries() {
		params.Set("source-countries", q.Country)
	}
	if q.Search != "" {
		params.Set("text", q.Search)
	}
	u.RawQuery = params.Encode()
	return u.String(), nil
}

func (c *WorldNewsClient) Fetch(ctx context.Context, q Query) ([]Item, error) {
	items, err := c.fetch(ctx, q)
	if err != nil {
		logger.Warn("world news fetch failed", "country", q.Country, "page", q.Page, "error", err)
		metrics.NewsItemsFetched.WithLabelValues(c.Name(), "error").Inc()
		return nil, err
	}
	metrics.NewsItemsFetched.WithLabelValues(c.Name(), "ok").Add(float64(len(items)))
	return items, nil
}

func (c *WorldNewsClient) fetch(ctx context.Context, q Query) ([]Item, error) {
	reqURL, err := c.requestURL(q)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("x-api-key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	// Error responses still carry JSON; only an undecodable body is a failure.
	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode response (status %d): %w", resp.StatusCode, err)
	}

	items := make([]Item, 0, len(parsed.News))
	for _, r := range parsed.News {
		items = append(items, newItem(r.Title, r.Summary, r.Text, r.URL, r.PublishDate, r.SourceCountry))
	}
	return items, nil
}
