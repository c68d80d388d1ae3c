package scrape

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// defaultUserAgent is the user agent string for static page fetches.
const defaultUserAgent = "Mozilla/5.0 (compatible; ApkWatch/1.0)"

// staticVersionText fetches pageURL without a browser and evaluates selector
// against the served HTML. Only works when the version text is present in the
// initial document rather than rendered by JavaScript.
func staticVersionText(ctx context.Context, pageURL, selector string, timeout time.Duration) (string, error) {
	client := &http.Client{Timeout: timeout}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("creating request for %s: %w", pageURL, err)
	}
	req.Header.Set("User-Agent", defaultUserAgent)

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetching %s: unexpected status %d", pageURL, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("parsing HTML from %s: %w", pageURL, err)
	}

	sel := doc.Find(selector)
	if sel.Length() == 0 {
		return "", fmt.Errorf("selector %q matched nothing on %s", selector, pageURL)
	}

	text := strings.TrimSpace(sel.First().Text())
	if text == "" {
		return "", fmt.Errorf("selector %q matched on %s but holds no text", selector, pageURL)
	}
	return text, nil
}
