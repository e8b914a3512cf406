package extraction

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Source names the kind of provider behind a strategy, for attributing
// failures.
type Source string

const (
	SourceOEmbed  Source = "oembed"
	SourceScrape  Source = "scrape"
	SourceBrowser Source = "browser"
	SourcePage    Source = "page"
	SourceURL     Source = "url"
	SourceCache   Source = "cache"
	SourceAI      Source = "ai"
)

// FetchFunc is the uniform shape of every acquisition strategy.
type FetchFunc func(ctx context.Context, c Classification) (*AcquiredContent, error)

// Strategy is one slot in a fallback chain.
type Strategy struct {
	Name    string
	Source  Source
	Timeout time.Duration
	Fetch   FetchFunc
}

// Plan is the acquisition policy for one platform. Chain is tried in order
// until a strategy yields content. Enrichers run alongside the chain and
// only fill fields the chain left empty. When Required is set, exhausting
// the chain fails the request with Unavailable as the reason.
type Plan struct {
	Chain       []Strategy
	Enrichers   []Strategy
	Required    bool
	Unavailable string
	Hint        string
}

// Attempt records the outcome of one strategy.
type Attempt struct {
	Strategy string        `json:"strategy"`
	Source   Source        `json:"source"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"-"`
	Millis   int64         `json:"duration_ms"`

	err error
}

// OK reports whether the strategy produced content.
func (a Attempt) OK() bool { return a.err == nil && a.Error == "" }

// Acquisition is the Acquirer's result.
type Acquisition struct {
	Content  *AcquiredContent
	Attempts []Attempt
	Cached   bool
}

// Acquirer runs platform plans. It holds no per-request state.
type Acquirer struct {
	plans   map[Platform]Plan
	cache   AcquisitionCache
	ttl     time.Duration
	metrics *Metrics
	log     logrus.FieldLogger
}

// AcquirerOption customises an Acquirer.
type AcquirerOption func(*Acquirer)

func WithCache(cache AcquisitionCache, ttl time.Duration) AcquirerOption {
	return func(a *Acquirer) {
		a.cache = cache
		a.ttl = ttl
	}
}

func WithAcquirerMetrics(m *Metrics) AcquirerOption {
	return func(a *Acquirer) { a.metrics = m }
}

func NewAcquirer(plans map[Platform]Plan, log logrus.FieldLogger, opts ...AcquirerOption) *Acquirer {
	a := &Acquirer{plans: plans, log: log}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Plan returns the plan registered for p.
func (a *Acquirer) Plan(p Platform) (Plan, bool) {
	plan, ok := a.plans[p]
	return plan, ok
}

// Acquire runs the plan for c.Platform. Individual strategy failures are
// logged and recorded; only exhausting a required chain is an error.
func (a *Acquirer) Acquire(ctx context.Context, c Classification) (*Acquisition, error) {
	plan, ok := a.plans[c.Platform]
	if !ok {
		return nil, &Error{
			Kind:     KindUnsupportedPlatform,
			Stage:    StageAcquiring,
			Platform: c.Platform,
			Message:  fmt.Sprintf("%s links are not supported", c.Platform),
			Hint:     "try a YouTube, TikTok, Instagram or recipe website link",
		}
	}
	log := a.log.WithFields(logrus.Fields{"platform": c.Platform, "url": c.URL})

	if cached := a.fromCache(ctx, c, log); cached != nil {
		return cached, nil
	}

	var (
		mu        sync.Mutex
		enriched  []*AcquiredContent
		enrichAtt []Attempt
		g         errgroup.Group
	)
	for _, s := range plan.Enrichers {
		g.Go(func() error {
			content, att := a.run(ctx, s, c, log)
			mu.Lock()
			defer mu.Unlock()
			enrichAtt = append(enrichAtt, att)
			if content != nil {
				enriched = append(enriched, content)
			}
			return nil
		})
	}

	var (
		content  *AcquiredContent
		attempts []Attempt
	)
	for _, s := range plan.Chain {
		if ctx.Err() != nil {
			break
		}
		got, att := a.run(ctx, s, c, log)
		attempts = append(attempts, att)
		if got != nil {
			content = got
			break
		}
	}
	_ = g.Wait()
	attempts = append(attempts, enrichAtt...)

	chainOK := content != nil
	if !chainOK {
		if plan.Required {
			return nil, a.exhausted(c, plan, attempts)
		}
		log.Warn("Acquisition chain exhausted, continuing with degraded context")
		content = &AcquiredContent{}
	}
	for _, e := range enriched {
		content.Merge(e)
	}
	if thumb := c.ThumbnailURL(); thumb != "" {
		content.ThumbnailURL = thumb
	}

	if chainOK && content.HasText() {
		a.toCache(ctx, c, content, log)
	}
	return &Acquisition{Content: content, Attempts: attempts}, nil
}

func (a *Acquirer) run(ctx context.Context, s Strategy, c Classification, log logrus.FieldLogger) (*AcquiredContent, Attempt) {
	att := Attempt{Strategy: s.Name, Source: s.Source}
	sctx := ctx
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		sctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	start := time.Now()
	content, err := fetchSafely(sctx, s, c)
	att.Duration = time.Since(start)
	att.Millis = att.Duration.Milliseconds()
	if err == nil && content.IsEmpty() {
		err = errors.New("no content")
	}

	a.metrics.observeStrategy(c.Platform, s.Name, err)
	if err != nil {
		att.err = err
		att.Error = err.Error()
		log.WithFields(logrus.Fields{
			"stage":    StageAcquiring,
			"strategy": s.Name,
			"source":   s.Source,
		}).WithError(err).Warn("Acquisition strategy failed")
		return nil, att
	}
	if len(content.Sources) == 0 {
		content.Sources = []string{s.Name}
	}
	log.WithField("strategy", s.Name).Debug("Acquisition strategy succeeded")
	return content, att
}

// fetchSafely turns a panicking strategy into a failed attempt. Enrichers
// run on their own goroutines, out of reach of the orchestrator's recover.
func fetchSafely(ctx context.Context, s Strategy, c Classification) (content *AcquiredContent, err error) {
	defer func() {
		if r := recover(); r != nil {
			content, err = nil, fmt.Errorf("strategy %s panicked: %v", s.Name, r)
		}
	}()
	return s.Fetch(ctx, c)
}

// exhausted builds the terminal error for a required plan. When every
// failure was a missing credential the deployment is at fault, not the URL.
func (a *Acquirer) exhausted(c Classification, plan Plan, attempts []Attempt) *Error {
	var providers []string
	allMisconfigured := len(attempts) > 0
	for _, att := range attempts {
		if !att.OK() && !IsNotConfigured(att.err) {
			allMisconfigured = false
		}
		var e *Error
		if errors.As(att.err, &e) && e.Provider != "" {
			providers = append(providers, e.Provider)
		}
	}
	if allMisconfigured {
		return &Error{
			Kind:     KindProviderMisconfigured,
			Stage:    StageAcquiring,
			Platform: c.Platform,
			Provider: strings.Join(providers, ", "),
			Message:  strings.Join(providers, ", ") + " is not configured",
			Hint:     "contact the site administrator",
		}
	}

	msg := plan.Unavailable
	if msg == "" {
		msg = fmt.Sprintf("could not retrieve content from this %s link", c.Platform)
	}
	return &Error{
		Kind:     KindAcquisitionExhausted,
		Stage:    StageAcquiring,
		Platform: c.Platform,
		Message:  msg,
		Hint:     plan.Hint,
		Err:      attemptsError(attempts),
	}
}

func attemptsError(attempts []Attempt) error {
	var errs []error
	for _, att := range attempts {
		if att.err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", att.Strategy, att.err))
		}
	}
	return errors.Join(errs...)
}

func (a *Acquirer) fromCache(ctx context.Context, c Classification, log logrus.FieldLogger) *Acquisition {
	if a.cache == nil {
		return nil
	}
	content, ok, err := a.cache.Get(ctx, cacheKey(c.URL))
	if err != nil {
		log.WithError(err).Warn("Acquisition cache lookup failed")
		return nil
	}
	if !ok {
		return nil
	}
	log.Debug("Acquisition cache hit")
	return &Acquisition{
		Content:  content,
		Attempts: []Attempt{{Strategy: "cache", Source: SourceCache}},
		Cached:   true,
	}
}

func (a *Acquirer) toCache(ctx context.Context, c Classification, content *AcquiredContent, log logrus.FieldLogger) {
	if a.cache == nil {
		return
	}
	if err := a.cache.Set(ctx, cacheKey(c.URL), content, a.ttl); err != nil {
		log.WithError(err).Warn("Failed to store acquisition in cache")
	}
}
