package extraction

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrScrapeTimeout is returned when an asynchronous crawl job does not
// finish within the configured number of polls.
var ErrScrapeTimeout = errors.New("scrape job did not complete in time")

const firecrawlProvider = "Firecrawl"

// FirecrawlConfig configures the scraping provider client.
type FirecrawlConfig struct {
	APIKey       string
	BaseURL      string
	PollInterval time.Duration
	MaxPolls     int
	HTTPClient   *http.Client
}

// FirecrawlClient scrapes pages through a Firecrawl-compatible API. It uses
// the synchronous scrape endpoint and falls back to a single-page crawl job.
type FirecrawlClient struct {
	apiKey       string
	baseURL      string
	pollInterval time.Duration
	maxPolls     int
	http         *http.Client
	log          logrus.FieldLogger
}

func NewFirecrawlClient(cfg FirecrawlConfig, log logrus.FieldLogger) *FirecrawlClient {
	client := cfg.HTTPClient
	if client == nil {
		client = newHTTPClient(60 * time.Second)
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 2 * time.Second
	}
	if cfg.MaxPolls <= 0 {
		cfg.MaxPolls = 15
	}
	return &FirecrawlClient{
		apiKey:       cfg.APIKey,
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		pollInterval: cfg.PollInterval,
		maxPolls:     cfg.MaxPolls,
		http:         client,
		log:          log,
	}
}

type firecrawlDocument struct {
	Markdown string `json:"markdown"`
	HTML     string `json:"html"`
	Metadata struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		OGImage     string `json:"ogImage"`
		SourceURL   string `json:"sourceURL"`
		URL         string `json:"url"`
	} `json:"metadata"`
}

type firecrawlScrapeResponse struct {
	Success bool              `json:"success"`
	Data    firecrawlDocument `json:"data"`
	Error   string            `json:"error"`
}

type firecrawlCrawlStart struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
	Error   string `json:"error"`
}

type firecrawlCrawlStatus struct {
	Status string              `json:"status"`
	Data   []firecrawlDocument `json:"data"`
	Error  string              `json:"error"`
}

// Fetch scrapes target and returns its markdown and HTML.
func (f *FirecrawlClient) Fetch(ctx context.Context, target string) (*AcquiredContent, error) {
	if f.apiKey == "" {
		return nil, NotConfigured(firecrawlProvider)
	}
	headers := map[string]string{"Authorization": "Bearer " + f.apiKey}
	formats := []string{"markdown", "html"}

	var scraped firecrawlScrapeResponse
	err := doJSON(ctx, f.http, firecrawlProvider, http.MethodPost, f.baseURL+"/v1/scrape", headers,
		map[string]any{"url": target, "formats": formats}, &scraped)
	if err == nil && (scraped.Data.Markdown != "" || scraped.Data.HTML != "") {
		return f.toContent(scraped.Data, target), nil
	}
	if err == nil {
		err = fmt.Errorf("%s scrape returned no content: %s", firecrawlProvider, scraped.Error)
	}
	f.log.WithError(err).WithField("url", target).Warn("Scrape failed, falling back to crawl job")

	var started firecrawlCrawlStart
	if err := doJSON(ctx, f.http, firecrawlProvider, http.MethodPost, f.baseURL+"/v1/crawl", headers,
		map[string]any{"url": target, "limit": 1, "scrapeOptions": map[string]any{"formats": formats}}, &started); err != nil {
		return nil, fmt.Errorf("failed to start crawl: %w", err)
	}
	if started.ID == "" {
		return nil, fmt.Errorf("%s crawl returned no job id: %s", firecrawlProvider, started.Error)
	}
	return f.poll(ctx, started.ID, target, headers)
}

func (f *FirecrawlClient) poll(ctx context.Context, id, target string, headers map[string]string) (*AcquiredContent, error) {
	statusURL := f.baseURL + "/v1/crawl/" + id
	for attempt := 1; attempt <= f.maxPolls; attempt++ {
		if err := sleepCtx(ctx, f.pollInterval); err != nil {
			return nil, fmt.Errorf("crawl %s: %w", id, err)
		}

		var status firecrawlCrawlStatus
		if err := doJSON(ctx, f.http, firecrawlProvider, http.MethodGet, statusURL, headers, nil, &status); err != nil {
			if IsRetryable(err) {
				f.log.WithError(err).WithField("attempt", attempt).Debug("Crawl status check failed")
				continue
			}
			return nil, fmt.Errorf("failed to check crawl status: %w", err)
		}

		switch status.Status {
		case "completed":
			for _, doc := range status.Data {
				if doc.Markdown != "" || doc.HTML != "" {
					return f.toContent(doc, target), nil
				}
			}
			return nil, fmt.Errorf("%s crawl completed without content", firecrawlProvider)
		case "failed", "cancelled":
			return nil, fmt.Errorf("%s crawl %s: %s", firecrawlProvider, status.Status, status.Error)
		}
	}
	return nil, fmt.Errorf("crawl %s after %d polls: %w", id, f.maxPolls, ErrScrapeTimeout)
}

func (f *FirecrawlClient) toContent(doc firecrawlDocument, target string) *AcquiredContent {
	out := &AcquiredContent{
		Markdown: doc.Markdown,
		HTML:     doc.HTML,
		Title:    doc.Metadata.Title,
		Caption:  stripTags(doc.Metadata.Description),
		FinalURL: firstNonEmpty(doc.Metadata.URL, doc.Metadata.SourceURL, target),
		Sources:  []string{"firecrawl"},
	}
	out.ThumbnailURL = doc.Metadata.OGImage
	if doc.HTML != "" {
		meta := parsePageMeta(doc.HTML)
		out.ThumbnailURL = firstNonEmpty(meta.Image, out.ThumbnailURL)
		out.AuthorHandle = meta.Author
		if out.Title == "" {
			out.Title = meta.Title
		}
	}
	out.ThumbnailURL = absoluteURL(out.FinalURL, out.ThumbnailURL)
	return out
}
