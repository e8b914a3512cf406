package extraction

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/sirupsen/logrus"
)

// BrowserScraper renders a page in headless Chromium. It is slow and only
// used for platforms whose HTML is assembled client-side.
type BrowserScraper struct {
	timeout time.Duration
	log     logrus.FieldLogger
}

func NewBrowserScraper(timeout time.Duration, log logrus.FieldLogger) *BrowserScraper {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &BrowserScraper{timeout: timeout, log: log}
}

func (b *BrowserScraper) Fetch(ctx context.Context, target string) (content *AcquiredContent, err error) {
	path, exists := launcher.LookPath()
	if !exists {
		return nil, NotConfigured("headless browser")
	}

	controlURL, err := launcher.New().Bin(path).Headless(true).Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}
	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}
	defer func() {
		if closeErr := browser.Close(); closeErr != nil {
			b.log.WithError(closeErr).Warn("Error closing browser")
		}
	}()

	page, err := browser.Page(proto.TargetCreateTarget{URL: target})
	if err != nil {
		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	pageCtx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()
	page = page.Context(pageCtx)

	if err := page.WaitLoad(); err != nil {
		if errors.Is(pageCtx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("browser render timed out for %s: %w", target, pageCtx.Err())
		}
		return nil, fmt.Errorf("failed waiting for page load: %w", err)
	}

	doc, err := page.HTML()
	if err != nil {
		return nil, fmt.Errorf("failed to read rendered page: %w", err)
	}
	return contentFromHTML(doc, target, "browser")
}
