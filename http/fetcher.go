// Package http provides the HTTP implementation of docdex.Fetcher along
// with sitemap seed discovery. It fetches static documentation pages,
// honors robots.txt, normalizes charsets, and converts extracted content
// to markdown.
package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/docdex/docdex"
	"golang.org/x/net/html/charset"
)

// DefaultFetchTimeout is the per-request timeout, distinct from the
// run-level context deadline.
const DefaultFetchTimeout = 10 * time.Second

// maxBodyBytes caps response bodies so a pathological page cannot
// exhaust memory.
const maxBodyBytes = 10 << 20

// Ensure Fetcher implements docdex.Fetcher at compile time.
var _ docdex.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves documentation pages over HTTP and normalizes them to
// markdown. Redirects are followed by the underlying client; the unit's
// locator records the final URL so identities stay stable.
type Fetcher struct {
	client    *http.Client
	extractor docdex.Extractor
	fallback  docdex.Extractor
	converter docdex.Converter
	robots    *robotsCache
	retry     docdex.RetryPolicy
	timeout   time.Duration
	userAgent string
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the per-request timeout.
// Defaults to DefaultFetchTimeout.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithRetryDelays sets the backoff delays for transient failures.
// Defaults to docdex.DefaultRetryDelays.
func WithRetryDelays(delays []time.Duration) Option {
	return func(f *Fetcher) {
		f.retry.Delays = delays
	}
}

// WithClient replaces the underlying HTTP client (used by tests).
func WithClient(client *http.Client) Option {
	return func(f *Fetcher) {
		f.client = client
	}
}

// WithFallbackExtractor sets an extractor tried when the primary yields
// no content.
func WithFallbackExtractor(e docdex.Extractor) Option {
	return func(f *Fetcher) {
		f.fallback = e
	}
}

// NewFetcher creates an HTTP Fetcher that extracts main content with
// extractor and converts it to markdown with converter.
func NewFetcher(extractor docdex.Extractor, converter docdex.Converter, opts ...Option) *Fetcher {
	f := &Fetcher{
		extractor: extractor,
		converter: converter,
		retry:     docdex.RetryPolicy{Delays: docdex.DefaultRetryDelays()},
		timeout:   DefaultFetchTimeout,
		userAgent: "docdex/1.0 (+https://github.com/docdex/docdex)",
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.client == nil {
		f.client = &http.Client{Timeout: f.timeout}
	}
	f.robots = newRobotsCache(f.client, f.userAgent)
	return f
}

// Fetch retrieves the page at locator and normalizes it to markdown.
// Transient errors (5xx, timeouts, connection resets) are retried with
// exponential backoff; permanent errors (4xx, robots denial, unsupported
// content type) fail immediately.
func (f *Fetcher) Fetch(ctx context.Context, locator string) (*docdex.ContentUnit, error) {
	allowed, err := f.robots.Allowed(ctx, locator)
	if err == nil && !allowed {
		return nil, docdex.Errorf(docdex.EINVALID, "robots.txt disallows %s", locator)
	}

	var rawHTML string
	var finalURL string
	err = f.retry.Do(ctx, func(ctx context.Context) error {
		var fetchErr error
		rawHTML, finalURL, fetchErr = f.get(ctx, locator)
		return fetchErr
	})
	if err != nil {
		return nil, err
	}

	extracted, err := f.extract(rawHTML)
	if err != nil {
		return nil, err
	}

	markdown := ""
	if strings.TrimSpace(extracted.ContentHTML) != "" {
		markdown, err = f.converter.Convert(extracted.ContentHTML)
		if err != nil {
			return nil, err
		}
	}

	return &docdex.ContentUnit{
		Locator:   docdex.CanonicalLocator(finalURL),
		Title:     extracted.Title,
		Raw:       rawHTML,
		Text:      markdown,
		Hash:      docdex.HashText(markdown),
		FetchedAt: time.Now().UTC(),
	}, nil
}

// Close releases resources. The plain HTTP client needs no cleanup.
func (f *Fetcher) Close() error {
	return nil
}

// get performs one GET attempt and classifies the failure mode.
func (f *Fetcher) get(ctx context.Context, locator string) (body string, finalURL string, err error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, locator, nil)
	if err != nil {
		return "", "", docdex.Errorf(docdex.EINVALID, "invalid locator %q: %v", locator, err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", "", classifyNetErr(locator, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
		return "", "", docdex.Errorf(docdex.EUNAVAILABLE, "HTTP %d for %s", resp.StatusCode, locator)
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return "", "", docdex.Errorf(docdex.ENOTFOUND, "HTTP %d for %s", resp.StatusCode, locator)
	default:
		return "", "", docdex.Errorf(docdex.EINVALID, "HTTP %d for %s", resp.StatusCode, locator)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType != "" && !strings.Contains(contentType, "html") && !strings.Contains(contentType, "text/plain") {
		return "", "", docdex.Errorf(docdex.EINVALID, "unsupported content type %q for %s", contentType, locator)
	}

	// Decode whatever charset the server declared into UTF-8.
	reader, err := charset.NewReader(io.LimitReader(resp.Body, maxBodyBytes), contentType)
	if err != nil {
		return "", "", docdex.Errorf(docdex.EINVALID, "charset detection for %s: %v", locator, err)
	}
	raw, err := io.ReadAll(reader)
	if err != nil {
		return "", "", classifyNetErr(locator, err)
	}

	return string(raw), resp.Request.URL.String(), nil
}

// extract runs the primary extractor and falls back to the secondary
// when the primary fails or yields an empty body.
func (f *Fetcher) extract(rawHTML string) (*docdex.ExtractResult, error) {
	result, err := f.extractor.Extract(rawHTML)
	if err == nil && strings.TrimSpace(result.ContentHTML) != "" {
		return result, nil
	}
	if f.fallback != nil {
		if fbResult, fbErr := f.fallback.Extract(rawHTML); fbErr == nil {
			return fbResult, nil
		}
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

// classifyNetErr maps transport failures onto the error taxonomy:
// timeouts and connection problems are transient, everything else is
// internal.
func classifyNetErr(locator string, err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return docdex.Errorf(docdex.EUNAVAILABLE, "timeout fetching %s: %v", locator, err)
	}
	if strings.Contains(err.Error(), "connection reset") || strings.Contains(err.Error(), "connection refused") || strings.Contains(err.Error(), "EOF") {
		return docdex.Errorf(docdex.EUNAVAILABLE, "connection failure fetching %s: %v", locator, err)
	}
	return fmt.Errorf("fetching %s: %w", locator, err)
}
