package extraction

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pageza/recipebox/backend/internal/logging"
)

const (
	maxInlineImageBytes = 5 << 20
	imageFetchTimeout   = 10 * time.Second
	placeholderNote     = "Automatic extraction could not read this recipe. Please review and complete it."
)

// Extraction is the extractor's output: always a candidate, possibly the
// placeholder.
type Extraction struct {
	Candidate   Candidate
	NeedsReview bool
	Generator   string
	Attempts    []Attempt
}

// Extractor turns acquired content into a recipe candidate using an
// ordered list of generators, primary first.
type Extractor struct {
	generators  []Generator
	images      *http.Client
	maxAttempts int
	backoff     time.Duration
	metrics     *Metrics
	log         logrus.FieldLogger
}

// ExtractorConfig tunes retries. Zero values select defaults.
type ExtractorConfig struct {
	MaxAttempts int
	Backoff     time.Duration
	ImageClient *http.Client
	Metrics     *Metrics
}

func NewExtractor(generators []Generator, cfg ExtractorConfig, log logrus.FieldLogger) *Extractor {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = time.Second
	}
	if cfg.ImageClient == nil {
		cfg.ImageClient = newHTTPClient(imageFetchTimeout)
	}
	return &Extractor{
		generators:  generators,
		images:      cfg.ImageClient,
		maxAttempts: cfg.MaxAttempts,
		backoff:     cfg.Backoff,
		metrics:     cfg.Metrics,
		log:         log,
	}
}

// Extract never fails on malformed model output; it only fails when no
// generator could be reached at all.
func (e *Extractor) Extract(ctx context.Context, c Classification, content *AcquiredContent) (*Extraction, error) {
	if len(e.generators) == 0 {
		return nil, extractionError(c, NotConfigured("AI provider"))
	}
	if content == nil {
		content = &AcquiredContent{}
	}
	log := e.log.WithFields(logrus.Fields{"platform": c.Platform, "stage": StageExtracting})

	prompt := BuildPrompt(c, content)
	if content.ThumbnailURL != "" {
		img, err := e.fetchImage(ctx, content.ThumbnailURL)
		if err != nil {
			log.WithError(err).Warn("Thumbnail unavailable, continuing with text only")
		} else {
			prompt.Image = img
		}
	}

	var (
		attempts  []Attempt
		reached   bool
		malformed string
	)
	for _, g := range e.generators {
		start := time.Now()
		text, err := e.generate(ctx, g, prompt, log)
		att := Attempt{Strategy: g.Name(), Source: SourceAI, Duration: time.Since(start)}
		att.Millis = att.Duration.Milliseconds()
		e.metrics.observeStrategy(c.Platform, g.Name(), err)
		if err != nil {
			att.err, att.Error = err, err.Error()
			attempts = append(attempts, att)
			log.WithError(err).WithField("generator", g.Name()).Warn("Generator failed")
			continue
		}
		reached = true

		candidate, ok := ParseCandidate(text)
		if !ok {
			att.Error = "unparseable output"
			attempts = append(attempts, att)
			malformed = text
			log.WithField("generator", g.Name()).
				WithField("output", logging.Truncate(text, 512)).
				Warn("Model output contained no JSON object")
			continue
		}
		attempts = append(attempts, att)
		return &Extraction{Candidate: candidate, Generator: g.Name(), Attempts: attempts}, nil
	}

	if !reached {
		return nil, extractionError(c, lastErr(attempts))
	}

	log.WithField("output_bytes", len(malformed)).Info("Substituting placeholder for malformed model output")
	note := placeholderNote
	if content.Caption != "" {
		note = content.Caption
	}
	return &Extraction{
		Candidate:   PlaceholderCandidate(note),
		NeedsReview: true,
		Attempts:    attempts,
	}, nil
}

// generate retries transient failures with a linear backoff.
func (e *Extractor) generate(ctx context.Context, g Generator, p Prompt, log logrus.FieldLogger) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= e.maxAttempts; attempt++ {
		text, err := g.Generate(ctx, p)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if !IsRetryable(err) || attempt == e.maxAttempts {
			break
		}
		log.WithError(err).WithFields(logrus.Fields{
			"generator": g.Name(),
			"attempt":   attempt,
		}).Debug("Retrying generator")
		if err := sleepCtx(ctx, time.Duration(attempt)*e.backoff); err != nil {
			return "", err
		}
	}
	return "", lastErr
}

func (e *Extractor) fetchImage(ctx context.Context, imageURL string) (*InlineImage, error) {
	ctx, cancel := context.WithTimeout(ctx, imageFetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	resp, err := e.images.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("image fetch returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxInlineImageBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxInlineImageBytes {
		return nil, errors.New("image exceeds inline size limit")
	}
	mime := resp.Header.Get("Content-Type")
	if i := strings.Index(mime, ";"); i >= 0 {
		mime = mime[:i]
	}
	if !strings.HasPrefix(mime, "image/") {
		mime = http.DetectContentType(data)
	}
	if !strings.HasPrefix(mime, "image/") {
		return nil, fmt.Errorf("unexpected image content type %q", mime)
	}
	return &InlineImage{MIMEType: mime, Data: data}, nil
}

// lastErr picks the error to report once every generator failed. A missing
// credential only wins when no generator got as far as the network.
func lastErr(attempts []Attempt) error {
	var misconfigured error
	for i := len(attempts) - 1; i >= 0; i-- {
		err := attempts[i].err
		if err == nil {
			continue
		}
		if !IsNotConfigured(err) {
			return err
		}
		if misconfigured == nil {
			misconfigured = err
		}
	}
	if misconfigured != nil {
		return misconfigured
	}
	return errors.New("no generator produced output")
}

// extractionError classifies a total generator failure. Missing credentials
// are reported as such rather than as a transport problem.
func extractionError(c Classification, err error) *Error {
	var perr *Error
	if errors.As(err, &perr) && perr.Kind == KindProviderMisconfigured {
		return &Error{
			Kind:     KindProviderMisconfigured,
			Stage:    StageExtracting,
			Platform: c.Platform,
			Provider: perr.Provider,
			Message:  perr.Message,
			Hint:     perr.Hint,
		}
	}
	return &Error{
		Kind:     KindExtractionFailed,
		Stage:    StageExtracting,
		Platform: c.Platform,
		Message:  "the recipe AI service could not be reached",
		Hint:     "try again in a few minutes",
		Err:      err,
	}
}
