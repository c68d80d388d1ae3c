// Package scrape extracts the displayed version string from the source page.
// Browser mode renders the page in headless Chrome for JavaScript-built
// pages; static mode does a plain HTTP fetch for server-rendered ones.
package scrape

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
)

// DefaultTimeout is the bounded wait for the version text to appear.
const DefaultTimeout = 15 * time.Second

// Modes accepted by the Scraper.
const (
	ModeBrowser = "browser"
	ModeStatic  = "static"
)

// Scraper fetches the version text at a CSS selector on a page.
type Scraper struct {
	Mode    string
	Timeout time.Duration
}

// New returns a Scraper for the given mode with the given bounded wait.
// A zero timeout falls back to DefaultTimeout.
func New(mode string, timeout time.Duration) *Scraper {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Scraper{Mode: mode, Timeout: timeout}
}

// VersionText returns the trimmed text content of the element matching
// selector on pageURL. An error or empty result means no usable version text
// was obtainable this run.
func (s *Scraper) VersionText(ctx context.Context, pageURL, selector string) (string, error) {
	if s.Mode == ModeStatic {
		return staticVersionText(ctx, pageURL, selector, s.Timeout)
	}
	return browserVersionText(ctx, pageURL, selector, s.Timeout)
}

// browserVersionText renders pageURL in a headless browser and waits, bounded
// by timeout, for the selector to become visible. All browser contexts are
// cancelled on every exit path. Requires Chrome/Chromium on the system.
func browserVersionText(ctx context.Context, pageURL, selector string, timeout time.Duration) (string, error) {
	allocCtx, cancel := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
		)...,
	)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, timeout)
	defer cancel()

	var text string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(pageURL),
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.Text(selector, &text, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("browser scrape of %s failed: %w", pageURL, err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("selector %q matched on %s but holds no text", selector, pageURL)
	}
	return text, nil
}
