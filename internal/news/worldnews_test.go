package news

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, body string, seen *url.Values, key *string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if seen != nil {
			*seen = r.URL.Query()
		}
		if key != nil {
			*key = r.Header.Get("x-api-key")
		}
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestWorldNews_EmptyNews(t *testing.T) {
	srv := newTestServer(t, `{"news": []}`, nil, nil)
	c := NewWorldNewsClient(srv.URL, "k", 10, time.Second)

	items, err := c.Fetch(context.Background(), Query{Country: "all", Page: 1})
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestWorldNews_NonJSON(t *testing.T) {
	srv := newTestServer(t, `<html>rate limited</html>`, nil, nil)
	c := NewWorldNewsClient(srv.URL, "k", 10, time.Second)

	items, err := c.Fetch(context.Background(), Query{Country: "all", Page: 1})
	assert.Error(t, err)
	assert.Empty(t, items)
}

func TestWorldNews_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	c := NewWorldNewsClient(srv.URL, "k", 10, time.Second)

	items, err := c.Fetch(context.Background(), Query{Page: 1})
	assert.Error(t, err)
	assert.Empty(t, items)
}

func TestWorldNews_QueryParams(t *testing.T) {
	var seen url.Values
	var key string
	srv := newTestServer(t, `{"news": []}`, &seen, &key)
	c := NewWorldNewsClient(srv.URL, "secret", 10, time.Second)

	_, err := c.Fetch(context.Background(), Query{Country: "us", Search: "climate change", Page: 3})
	require.NoError(t, err)

	assert.Equal(t, "secret", key)
	assert.Equal(t, "10", seen.Get("number"))
	assert.Equal(t, "20", seen.Get("offset"))
	assert.Equal(t, "en", seen.Get("language"))
	assert.Equal(t, "us", seen.Get("source-countries"))
	assert.Equal(t, "climate change", seen.Get("text"))
}

func TestWorldNews_AllCountriesOmitsFilter(t *testing.T) {
	var seen url.Values
	srv := newTestServer(t, `{"news": []}`, &seen, nil)
	c := NewWorldNewsClient(srv.URL, "k", 10, time.Second)

	_, err := c.Fetch(context.Background(), Query{Country: "all", Page: 1})
	require.NoError(t, err)

	assert.False(t, seen.Has("source-countries"))
	assert.False(t, seen.Has("text"))
	assert.Equal(t, "0", seen.Get("offset"))
}

func TestWorldNews_MapsItems(t *testing.T) {
	long := strings.Repeat("x", 260)
	body := `{"news": [
		{"title": "One", "summary": "S1", "text": "T1", "url": "http://a", "publish_date": "2024-05-01 10:00:00", "source_country": "us"},
		{"title": "Two", "summary": "", "text": "` + long + `", "url": "http://b", "publish_date": "2024-05-02 10:00:00", "source_country": "gb"},
		{"title": "Three", "url": "http://c", "source_country": "in"}
	]}`
	srv := newTestServer(t, body, nil, nil)
	c := NewWorldNewsClient(srv.URL, "k", 10, time.Second)

	items, err := c.Fetch(context.Background(), Query{Country: "all", Page: 1})
	require.NoError(t, err)
	require.Len(t, items, 3)

	assert.Equal(t, Item{Title: "One", Summary: "S1", Text: "T1", URL: "http://a", PublishDate: "2024-05-01 10:00:00", Country: "us"}, items[0])
	assert.Equal(t, strings.Repeat("x", 250)+"...", items[1].Summary)
	assert.Equal(t, "gb", items[1].Country)
	assert.Equal(t, "No summary available.", items[2].Summary)
}

func TestWorldNews_TextPassedThroughVerbatim(t *testing.T) {
	text := "If x<y and y>z then x<z.\n\nSecond paragraph & more."
	raw, err := json.Marshal(map[string]any{"news": []map[string]string{
		{"title": "A & B", "summary": "", "text": text, "url": "http://a", "source_country": "us"},
		{"title": "C", "summary": "1 < 2 & <b>kept</b>", "text": text, "url": "http://c", "source_country": "us"},
	}})
	require.NoError(t, err)

	srv := newTestServer(t, string(raw), nil, nil)
	c := NewWorldNewsClient(srv.URL, "k", 10, time.Second)

	items, err := c.Fetch(context.Background(), Query{Country: "all", Page: 1})
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "A & B", items[0].Title)
	assert.Equal(t, text, items[0].Text)
	assert.Equal(t, text, items[0].Summary)
	assert.Equal(t, text, items[1].Text)
	assert.Equal(t, "1 < 2 & <b>kept</b>", items[1].Summary)
}
