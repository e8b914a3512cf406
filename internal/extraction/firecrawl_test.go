package extraction

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipebox/backend/internal/logging"
)

func newTestFirecrawl(t *testing.T, handler http.HandlerFunc, maxPolls int) *FirecrawlClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewFirecrawlClient(FirecrawlConfig{
		APIKey:       "fc-test",
		BaseURL:      srv.URL,
		PollInterval: time.Millisecond,
		MaxPolls:     maxPolls,
	}, logging.Discard())
}

func TestFirecrawlScrape(t *testing.T) {
	fc := newTestFirecrawl(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/scrape", r.URL.Path)
		assert.Equal(t, "Bearer fc-test", r.Header.Get("Authorization"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "https://example.com/chili", body["url"])
		assert.Equal(t, []any{"markdown", "html"}, body["formats"])

		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data": map[string]any{
				"markdown": "# Chili\n\n- beans",
				"html":     `<html><head><meta property="og:image" content="/img/chili.jpg"><meta name="author" content="Kenji"></head><body>chili</body></html>`,
				"metadata": map[string]any{"title": "Best Chili", "url": "https://example.com/chili"},
			},
		})
	}, 3)

	content, err := fc.Fetch(context.Background(), "https://example.com/chili")
	require.NoError(t, err)
	assert.Equal(t, "# Chili\n\n- beans", content.Markdown)
	assert.Equal(t, "Best Chili", content.Title)
	assert.Equal(t, "Kenji", content.AuthorHandle)
	assert.Equal(t, "https://example.com/img/chili.jpg", content.ThumbnailURL)
	assert.Equal(t, []string{"firecrawl"}, content.Sources)
}

func TestFirecrawlFallsBackToCrawlJob(t *testing.T) {
	var polls int32
	fc := newTestFirecrawl(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/v1/scrape":
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte(`{"success":false,"error":"blocked"}`))
		case r.URL.Path == "/v1/crawl" && r.Method == http.MethodPost:
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.EqualValues(t, 1, body["limit"])
			w.Write([]byte(`{"success":true,"id":"job-1"}`))
		case r.URL.Path == "/v1/crawl/job-1":
			if atomic.AddInt32(&polls, 1) < 3 {
				w.Write([]byte(`{"status":"scraping"}`))
				return
			}
			w.Write([]byte(`{"status":"completed","data":[{"markdown":"crawled","html":"<p>crawled</p>"}]}`))
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	}, 5)

	content, err := fc.Fetch(context.Background(), "https://example.com/x")
	require.NoError(t, err)
	assert.Equal(t, "crawled", content.Markdown)
	assert.EqualValues(t, 3, atomic.LoadInt32(&polls))
}

func TestFirecrawlPollingIsBounded(t *testing.T) {
	var polls int32
	fc := newTestFirecrawl(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/scrape":
			w.WriteHeader(http.StatusBadGateway)
		case "/v1/crawl":
			w.Write([]byte(`{"success":true,"id":"slow"}`))
		default:
			atomic.AddInt32(&polls, 1)
			w.Write([]byte(`{"status":"scraping"}`))
		}
	}, 4)

	_, err := fc.Fetch(context.Background(), "https://example.com/slow")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrScrapeTimeout)
	assert.EqualValues(t, 4, atomic.LoadInt32(&polls))
}

func TestFirecrawlCrawlFailed(t *testing.T) {
	fc := newTestFirecrawl(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/scrape":
			w.WriteHeader(http.StatusInternalServerError)
		case "/v1/crawl":
			w.Write([]byte(`{"success":true,"id":"bad"}`))
		default:
			w.Write([]byte(`{"status":"failed","error":"robots.txt"}`))
		}
	}, 4)

	_, err := fc.Fetch(context.Background(), "https://example.com/x")
	assert.ErrorContains(t, err, "robots.txt")
}

func TestFirecrawlNotConfigured(t *testing.T) {
	fc := NewFirecrawlClient(FirecrawlConfig{BaseURL: "http://unused"}, logging.Discard())
	_, err := fc.Fetch(context.Background(), "https://example.com")
	require.Error(t, err)
	assert.True(t, IsNotConfigured(err))
	assert.Equal(t, "Firecrawl is not configured", err.(*Error).Message)
}
