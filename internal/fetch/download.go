// Package fetch downloads artifacts over HTTP with streamed transfers.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"
)

// DefaultTimeout bounds a whole download, body included. APK payloads run to
// tens of megabytes, so this is much longer than a page-fetch timeout.
const DefaultTimeout = 5 * time.Minute

// DefaultUserAgent is the user agent string for HTTP requests.
const DefaultUserAgent = "Mozilla/5.0 (compatible; ApkWatch/1.0)"

// Error represents an error during artifact download.
type Error struct {
	URL     string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("download error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("download error for %s: %s", e.URL, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Options configures the download behavior.
type Options struct {
	Timeout   time.Duration
	UserAgent string
}

// DefaultOptions returns sensible defaults for downloading.
func DefaultOptions() *Options {
	return &Options{
		Timeout:   DefaultTimeout,
		UserAgent: DefaultUserAgent,
	}
}

// ToFile streams the response body for urlStr into destPath. Any non-success
// status, transport error, or truncated body is an error; destPath is left
// behind in whatever partial form it reached and the caller owns cleanup.
func ToFile(ctx context.Context, urlStr, destPath string, opts *Options) error {
	if opts == nil {
		opts = DefaultOptions()
	}

	parsedURL, err := url.Parse(urlStr)
	if err != nil || parsedURL.Scheme == "" || parsedURL.Host == "" {
		return &Error{URL: urlStr, Message: "invalid URL", Cause: err}
	}

	client := &http.Client{Timeout: opts.Timeout}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return &Error{URL: urlStr, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("User-Agent", opts.UserAgent)

	resp, err := client.Do(req)
	if err != nil {
		return &Error{URL: urlStr, Message: "request failed", Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &Error{URL: urlStr, Message: fmt.Sprintf("unexpected status %d", resp.StatusCode)}
	}

	out, err := os.Create(destPath)
	if err != nil {
		return &Error{URL: urlStr, Message: fmt.Sprintf("failed to create %s", destPath), Cause: err}
	}

	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		return &Error{URL: urlStr, Message: "streaming body failed", Cause: err}
	}
	if err := out.Close(); err != nil {
		return &Error{URL: urlStr, Message: fmt.Sprintf("failed to close %s", destPath), Cause: err}
	}

	return nil
}
