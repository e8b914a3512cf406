package extraction

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pageza/recipebox/backend/internal/models"
)

// Stage is a state of the extraction state machine.
type Stage string

const (
	StageClassifying Stage = "classifying"
	StageAcquiring   Stage = "acquiring"
	StageExtracting  Stage = "extracting"
	StageNormalizing Stage = "normalizing"
	StagePersisting  Stage = "persisting"
	StageDone        Stage = "done"
	StageFailed      Stage = "failed"
)

// ImageMirror copies an external image somewhere durable and returns the
// new URL.
type ImageMirror interface {
	Mirror(ctx context.Context, sourceURL, key string) (string, error)
}

// ExtractRequest is one submission. DryRun skips persistence.
type ExtractRequest struct {
	URL    string
	UserID string
	DryRun bool
}

// Result describes a successful run.
type Result struct {
	Recipe         *models.Recipe
	Classification Classification
	NeedsReview    bool
	Generator      string
	Cached         bool
	Attempts       []Attempt
}

// Orchestrator composes classifier, acquirer, extractor, normalizer and
// gateway. It is safe for concurrent use.
type Orchestrator struct {
	acquirer  *Acquirer
	extractor *Extractor
	gateway   *Gateway
	mirror    ImageMirror
	enabled   map[Platform]bool
	timeout   time.Duration
	metrics   *Metrics
	log       logrus.FieldLogger
}

// OrchestratorConfig carries the optional parts. A nil Enabled map enables
// every platform that has a plan.
type OrchestratorConfig struct {
	Mirror  ImageMirror
	Enabled []Platform
	Timeout time.Duration
	Metrics *Metrics
}

func NewOrchestrator(acquirer *Acquirer, extractor *Extractor, gateway *Gateway, cfg OrchestratorConfig, log logrus.FieldLogger) *Orchestrator {
	o := &Orchestrator{
		acquirer:  acquirer,
		extractor: extractor,
		gateway:   gateway,
		mirror:    cfg.Mirror,
		timeout:   cfg.Timeout,
		metrics:   cfg.Metrics,
		log:       log,
	}
	if cfg.Enabled != nil {
		o.enabled = make(map[Platform]bool, len(cfg.Enabled))
		for _, p := range cfg.Enabled {
			o.enabled[p] = true
		}
	}
	if o.timeout <= 0 {
		o.timeout = 90 * time.Second
	}
	return o
}

// Extract runs the pipeline for one request. Every failure is returned as
// *Error; a panic anywhere below is converted into a KindInternal error.
func (o *Orchestrator) Extract(ctx context.Context, req ExtractRequest) (res *Result, err error) {
	run := &pipelineRun{o: o, stage: StageClassifying, started: time.Now()}
	run.log = o.log.WithField("user_id", req.UserID)

	defer func() {
		if r := recover(); r != nil {
			run.log.WithFields(logrus.Fields{
				"panic": r,
				"stack": string(debug.Stack()),
			}).Error("Extraction panicked")
			res, err = nil, &Error{
				Kind:     KindInternal,
				Stage:    run.stage,
				Platform: run.platform,
				Message:  "unexpected error while extracting the recipe",
				Hint:     "try again",
				Err:      fmt.Errorf("panic: %v", r),
			}
		}
		if err != nil {
			run.fail(err)
		}
	}()

	rawURL := strings.TrimSpace(req.URL)
	userID := strings.TrimSpace(req.UserID)
	if rawURL == "" {
		return nil, validationError("videoUrl is required")
	}
	if userID == "" && !req.DryRun {
		return nil, validationError("userId is required")
	}

	c := Classify(rawURL)
	run.platform = c.Platform
	run.log = run.log.WithFields(logrus.Fields{"platform": c.Platform, "url": rawURL})
	if c.Platform == PlatformUnknown {
		return nil, &Error{
			Kind:     KindRequestValidation,
			Stage:    StageClassifying,
			Platform: c.Platform,
			Message:  "the link could not be understood",
			Hint:     "paste the full address of the recipe or video",
		}
	}
	if o.enabled != nil && !o.enabled[c.Platform] {
		return nil, &Error{
			Kind:     KindUnsupportedPlatform,
			Stage:    StageClassifying,
			Platform: c.Platform,
			Message:  fmt.Sprintf("%s links are not supported", c.Platform),
			Hint:     "try a link from a supported site",
		}
	}

	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	run.enter(StageAcquiring)
	acq, err := o.acquirer.Acquire(ctx, c)
	if err != nil {
		return nil, err
	}

	run.enter(StageExtracting)
	ext, err := o.extractor.Extract(ctx, c, acq.Content)
	if err != nil {
		return nil, err
	}

	run.enter(StageNormalizing)
	recipe := Normalize(ext.Candidate, acq.Content.ThumbnailURL, firstNonEmpty(acq.Content.AuthorHandle, c.Author()))
	sourceURL := req.URL
	recipe.SourceURL = &sourceURL
	needsReview := ext.NeedsReview || (len(recipe.Ingredients) == 0 && len(recipe.Instructions) == 0)

	result := &Result{
		Recipe:         &recipe,
		Classification: c,
		NeedsReview:    needsReview,
		Generator:      ext.Generator,
		Cached:         acq.Cached,
		Attempts:       append(acq.Attempts, ext.Attempts...),
	}
	if req.DryRun {
		run.enter(StageDone)
		o.metrics.observeResult(c.Platform, "dry_run")
		return result, nil
	}

	run.enter(StagePersisting)
	o.mirrorImage(ctx, &recipe, c, run.log)
	stored, err := o.gateway.Save(ctx, recipe, userID)
	if err != nil {
		return nil, err
	}
	result.Recipe = stored
	run.enter(StageDone)

	o.metrics.observeResult(c.Platform, "success")
	run.log.WithFields(logrus.Fields{
		"recipe_id":    stored.ID,
		"needs_review": needsReview,
		"generator":    ext.Generator,
	}).Info("Recipe extracted")
	return result, nil
}

func (o *Orchestrator) mirrorImage(ctx context.Context, recipe *models.Recipe, c Classification, log logrus.FieldLogger) {
	if o.mirror == nil || recipe.ImageURL == nil {
		return
	}
	key := fmt.Sprintf("recipes/%s/%d", c.Platform, time.Now().UnixNano())
	mirrored, err := o.mirror.Mirror(ctx, *recipe.ImageURL, key)
	if err != nil {
		log.WithError(err).Warn("Image mirroring failed, keeping original URL")
		return
	}
	recipe.ImageURL = &mirrored
}

// pipelineRun tracks the state of one Extract call.
type pipelineRun struct {
	o        *Orchestrator
	stage    Stage
	platform Platform
	started  time.Time
	log      logrus.FieldLogger
}

func (r *pipelineRun) enter(next Stage) {
	now := time.Now()
	r.o.metrics.observeStage(r.stage, now.Sub(r.started))
	r.log.WithFields(logrus.Fields{"from": r.stage, "to": next}).Debug("Extraction state transition")
	r.stage = next
	r.started = now
}

func (r *pipelineRun) fail(err error) {
	kind := KindOf(err)
	r.o.metrics.observeResult(r.platform, string(kind))
	entry := r.log.WithFields(logrus.Fields{"stage": r.stage, "kind": kind}).WithError(err)
	if kind == KindRequestValidation || kind == KindUnsupportedPlatform {
		entry.Info("Extraction rejected")
	} else {
		entry.Error("Extraction failed")
	}
	r.stage = StageFailed
}
