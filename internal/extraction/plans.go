package extraction

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Fetcher retrieves content for a single URL.
type Fetcher interface {
	Fetch(ctx context.Context, target string) (*AcquiredContent, error)
}

// Providers are the collaborators the default plans are assembled from.
// A nil Browser leaves the headless strategy out of the TikTok chain.
type Providers struct {
	Scraper         Fetcher
	Page            Fetcher
	Browser         Fetcher
	InstagramOEmbed Fetcher
	YouTubeOEmbed   Fetcher
	TikTokOEmbed    Fetcher
	StrategyTimeout time.Duration
}

// Strategy names, usable in chain overrides.
const (
	StrategyScrape          = "scrape"
	StrategyPageFetch       = "page-fetch"
	StrategyBrowser         = "browser"
	StrategyInstagramOEmbed = "instagram-oembed"
	StrategyYouTubeOEmbed   = "youtube-oembed"
	StrategyTikTokOEmbed    = "tiktok-oembed"
	StrategyURLStructure    = "url-structure"
)

// DefaultPlans builds the per-platform fallback chains.
func DefaultPlans(p Providers) map[Platform]Plan {
	timeout := p.StrategyTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	slot := func(name string, src Source, f Fetcher, d time.Duration) Strategy {
		return Strategy{Name: name, Source: src, Timeout: d, Fetch: fetchURL(f, name)}
	}

	// Crawl jobs poll for a while; give the scraper its own budget.
	scrapeTimeout := 4 * timeout
	scrape := slot(StrategyScrape, SourceScrape, p.Scraper, scrapeTimeout)
	urlStructure := Strategy{Name: StrategyURLStructure, Source: SourceURL, Fetch: fromURLStructure}

	tiktok := []Strategy{scrape}
	if p.Browser != nil {
		tiktok = append(tiktok, slot(StrategyBrowser, SourceBrowser, p.Browser, 2*timeout))
	}
	tiktok = append(tiktok,
		slot(StrategyTikTokOEmbed, SourceOEmbed, p.TikTokOEmbed, timeout),
		urlStructure,
	)

	return map[Platform]Plan{
		PlatformGeneric: {
			Chain: []Strategy{
				scrape,
				slot(StrategyPageFetch, SourcePage, p.Page, timeout),
			},
			Required:    true,
			Unavailable: "could not read this web page",
			Hint:        "check that the link is publicly accessible and try again",
		},
		PlatformYouTube: {
			Chain:     []Strategy{scrape},
			Enrichers: []Strategy{slot(StrategyYouTubeOEmbed, SourceOEmbed, p.YouTubeOEmbed, timeout)},
		},
		PlatformTikTok: {
			Chain: tiktok,
		},
		PlatformInstagram: {
			Chain: []Strategy{
				slot(StrategyInstagramOEmbed, SourceOEmbed, p.InstagramOEmbed, timeout),
				scrape,
				urlStructure,
			},
			Required:    true,
			Unavailable: "Instagram post content is unavailable; it may be private or temporarily blocked",
			Hint:        "make sure the post is public and try again later",
		},
	}
}

// OverrideChain reorders or narrows a plan's chain to the named strategies.
func OverrideChain(plan Plan, names []string) (Plan, error) {
	if len(names) == 0 {
		return plan, nil
	}
	byName := make(map[string]Strategy, len(plan.Chain))
	for _, s := range plan.Chain {
		byName[s.Name] = s
	}
	chain := make([]Strategy, 0, len(names))
	for _, n := range names {
		s, ok := byName[n]
		if !ok {
			return plan, fmt.Errorf("unknown strategy %q", n)
		}
		chain = append(chain, s)
	}
	plan.Chain = chain
	return plan, nil
}

func fetchURL(f Fetcher, name string) FetchFunc {
	return func(ctx context.Context, c Classification) (*AcquiredContent, error) {
		if f == nil {
			return nil, NotConfigured(name)
		}
		return f.Fetch(ctx, c.URL)
	}
}

var errNoURLIdentity = errors.New("URL carries no creator handle")

// fromURLStructure is the last resort: whatever the URL itself reveals.
func fromURLStructure(_ context.Context, c Classification) (*AcquiredContent, error) {
	author := c.Author()
	if author == "" {
		return nil, errNoURLIdentity
	}
	return &AcquiredContent{
		AuthorHandle: author,
		ThumbnailURL: c.ThumbnailURL(),
		Sources:      []string{StrategyURLStructure},
	}, nil
}
