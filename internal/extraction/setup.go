package extraction

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/pageza/recipebox/backend/config"
	"github.com/pageza/recipebox/backend/internal/logging"
)

// Deps are the collaborators Build does not construct itself. All are
// optional except Store, which is needed unless every call is a dry run.
type Deps struct {
	Store   RecipeStore
	Cache   AcquisitionCache
	Mirror  ImageMirror
	Metrics *Metrics
}

// Build assembles an Orchestrator from configuration.
func Build(cfg *config.Config, deps Deps, log logrus.FieldLogger) (*Orchestrator, error) {
	p := cfg.Providers
	ex := cfg.Extraction

	providers := Providers{
		Scraper: NewFirecrawlClient(FirecrawlConfig{
			APIKey:       p.FirecrawlAPIKey,
			BaseURL:      p.FirecrawlBaseURL,
			PollInterval: ex.ScrapePollInterval,
			MaxPolls:     ex.ScrapeMaxPolls,
		}, logging.Component(log, "firecrawl")),
		Page:            NewPageFetcher(nil),
		InstagramOEmbed: NewInstagramOEmbed(p.InstagramOEmbedURL, p.FacebookAppID, p.FacebookAppSecret, nil),
		YouTubeOEmbed:   NewYouTubeOEmbed(p.YouTubeOEmbedURL, nil),
		TikTokOEmbed:    NewTikTokOEmbed(p.TikTokOEmbedURL, nil),
		StrategyTimeout: ex.StrategyTimeout,
	}
	if ex.BrowserScrapeEnabled {
		providers.Browser = NewBrowserScraper(2*ex.StrategyTimeout, logging.Component(log, "browser"))
	}

	plans := DefaultPlans(providers)
	for platform, names := range ex.Chains {
		plan, ok := plans[Platform(platform)]
		if !ok {
			return nil, fmt.Errorf("chain override for unknown platform %q", platform)
		}
		overridden, err := OverrideChain(plan, names)
		if err != nil {
			return nil, fmt.Errorf("chain override for %s: %w", platform, err)
		}
		plans[Platform(platform)] = overridden
	}

	var generators []Generator
	if p.GeminiAPIKey != "" {
		generators = append(generators, NewGeminiGenerator(p.GeminiAPIKey, p.GeminiModel, p.GeminiBaseURL, nil))
	}
	if p.OpenAIAPIKey != "" {
		generators = append(generators, NewChatGenerator("OpenAI", p.OpenAIAPIKey, p.OpenAIModel, p.OpenAIBaseURL, nil))
	}

	opts := []AcquirerOption{WithAcquirerMetrics(deps.Metrics)}
	if deps.Cache != nil {
		opts = append(opts, WithCache(deps.Cache, ex.CacheTTL))
	}
	acquirer := NewAcquirer(plans, logging.Component(log, "acquirer"), opts...)
	extractor := NewExtractor(generators, ExtractorConfig{Metrics: deps.Metrics}, logging.Component(log, "extractor"))

	enabled := make([]Platform, 0, len(ex.EnabledPlatforms))
	for _, name := range ex.EnabledPlatforms {
		enabled = append(enabled, Platform(name))
	}

	return NewOrchestrator(acquirer, extractor, NewGateway(deps.Store), OrchestratorConfig{
		Mirror:  deps.Mirror,
		Enabled: enabled,
		Timeout: ex.RequestTimeout,
		Metrics: deps.Metrics,
	}, logging.Component(log, "orchestrator")), nil
}
