// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fetch retrieves web pages for note conversion, either directly or
// from the closest Wayback Machine snapshot.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html/charset"

	"github.com/pdiddy/linknotes/internal/httputil"
	"github.com/pdiddy/linknotes/pkg/types"
)

const (
	// DefaultUserAgent mimics a desktop browser; many sites reject obvious bots.
	DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) " +
		"Chrome/120.0.0.0 Safari/537.36"

	// DefaultAcceptLanguage is sent when no Accept-Language is configured.
	DefaultAcceptLanguage = "en-US,en;q=0.9"

	defaultMaxBodyBytes = 10 << 20

	acceptHTML = "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8"
)

// ErrNotHTML is returned when a response declares a non-HTML content type.
var ErrNotHTML = errors.New("response is not an HTML document")

// StatusError reports a non-2xx HTTP response.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d from %s", e.StatusCode, e.URL)
}

// StatusCode returns the HTTP status carried by err, or 0 when err is not
// a *StatusError.
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}

// Result is a fetched HTML page decoded to UTF-8.
type Result struct {
	// RequestedURL is the URL passed to the fetch.
	RequestedURL string
	// URL is the final URL after redirects.
	URL string
	// ContentType is the response Content-Type header.
	ContentType string
	// HTML is the decoded response body.
	HTML string
}

// Fetcher retrieves pages over HTTP. The zero value is not usable; build one
// with New.
type Fetcher struct {
	client *http.Client
	cfg    types.HTTPConfig
	log    *zap.Logger

	// waybackAPI is the availability endpoint queried by Snapshot.
	waybackAPI string
}

// New creates a Fetcher that sends requests through client using the
// headers and limits in cfg. A nil logger disables diagnostic logging.
func New(client *http.Client, cfg types.HTTPConfig, log *zap.Logger) *Fetcher {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.AcceptLanguage == "" {
		cfg.AcceptLanguage = DefaultAcceptLanguage
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = defaultMaxBodyBytes
	}
	return &Fetcher{
		client:     client,
		cfg:        cfg,
		log:        log,
		waybackAPI: waybackAPIBase,
	}
}

// WithWaybackAPI returns a copy of f that queries endpoint for snapshots.
func (f *Fetcher) WithWaybackAPI(endpoint string) *Fetcher {
	c := *f
	if endpoint != "" {
		c.waybackAPI = endpoint
	}
	return &c
}

// Page fetches rawURL with browser-like headers, retrying transient
// failures. Redirects are followed by the HTTP client. Non-2xx responses
// yield a *StatusError.
func (f *Fetcher) Page(ctx context.Context, rawURL string) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", f.cfg.UserAgent)
	req.Header.Set("Accept", acceptHTML)
	req.Header.Set("Accept-Language", f.cfg.AcceptLanguage)
	req.Header.Set("DNT", "1")
	req.Header.Set("Upgrade-Insecure-Requests", "1")
	req.Header.Set("Referer", "https://www.google.com/")
	req.Header.Set("Cache-Control", "max-age=0")

	f.log.Debug("fetching page", zap.String("url", rawURL))

	resp, err := httputil.DoWithRetry(ctx, f.client, req, f.cfg.MaxRetries)
	if err != nil {
		return nil, fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return nil, &StatusError{URL: rawURL, StatusCode: resp.StatusCode}
	}

	contentType := resp.Header.Get("Content-Type")
	if !isHTML(contentType) {
		return nil, fmt.Errorf("%s (%s): %w", rawURL, contentType, ErrNotHTML)
	}

	body, err := decodeBody(io.LimitReader(resp.Body, f.cfg.MaxBodyBytes), contentType)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	final := rawURL
	if resp.Request != nil && resp.Request.URL != nil {
		final = resp.Request.URL.String()
	}
	f.log.Debug("fetched page",
		zap.String("url", final),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(body)))

	return &Result{
		RequestedURL: rawURL,
		URL:          final,
		ContentType:  contentType,
		HTML:         body,
	}, nil
}

// decodeBody converts the body to UTF-8 using the charset declared in the
// Content-Type header, a <meta> declaration, or content sniffing.
func decodeBody(r io.Reader, contentType string) (string, error) {
	utf8Reader, err := charset.NewReader(r, contentType)
	if err != nil {
		return "", fmt.Errorf("detecting charset: %w", err)
	}
	data, err := io.ReadAll(utf8Reader)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// isHTML reports whether contentType can hold an HTML document. An empty
// header is accepted; servers often omit it.
func isHTML(contentType string) bool {
	if strings.TrimSpace(contentType) == "" {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return true
	}
	switch mediaType {
	case "text/html", "application/xhtml+xml", "application/xml", "text/xml", "text/plain":
		return true
	}
	return false
}
