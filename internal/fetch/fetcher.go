// Package fetch retrieves pages through the response cache.
//
// A Fetcher answers from the cache.Store when it can and otherwise performs
// a single HTTP GET, stores the decoded body and returns it. Failed requests
// are reported as *TransportError and nothing is cached for them.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/nao1215/linetable/internal/cache"
	"github.com/nao1215/linetable/internal/config"
)

// Fetcher returns page bodies, from the cache when possible.
type Fetcher struct {
	// store is the response cache consulted before any request.
	store *cache.Store

	// client performs the network requests.
	client *http.Client

	// timeout is the per-request timeout of client.
	timeout time.Duration

	// userAgent is sent as the User-Agent header on every request.
	userAgent string

	// headers are extra request headers.
	headers map[string]string

	// recorder receives hit/download/error counts.
	recorder Recorder

	// logger for structured logging.
	logger *slog.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the timeout of the HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithHeaders sets extra request headers. They are applied after the
// User-Agent, so a "User-Agent" entry here wins.
func WithHeaders(headers map[string]string) Option {
	return func(f *Fetcher) {
		f.headers = headers
	}
}

// WithRecorder sets the counter sink.
func WithRecorder(r Recorder) Option {
	return func(f *Fetcher) {
		if r != nil {
			f.recorder = r
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) {
		f.logger = logger
	}
}

// New creates a Fetcher reading through store.
func New(store *cache.Store, opts ...Option) *Fetcher {
	f := &Fetcher{
		store:     store,
		timeout:   config.DefaultTimeout,
		userAgent: config.DefaultUserAgent,
		headers:   make(map[string]string),
		recorder:  nopRecorder{},
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		opt(f)
	}

	f.client = &http.Client{Timeout: f.timeout}

	return f
}

// Fetch returns the body of url. A cached body is returned without any
// network activity; otherwise the page is downloaded, cached and returned.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	body, ok, err := f.store.Get(url)
	if err != nil {
		return "", err
	}
	if ok {
		f.recorder.CacheHit()
		return body, nil
	}

	body, err = f.download(ctx, url)
	if err != nil {
		f.recorder.FetchError()
		return "", err
	}

	if err := f.store.Put(url, body); err != nil {
		return "", err
	}
	f.recorder.Download(len(body))

	return body, nil
}

// download performs the GET request and decodes the body as text.
func (f *Fetcher) download(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", &TransportError{URL: url, Err: err}
	}

	req.Header.Set("User-Agent", f.userAgent)
	for k, v := range f.headers {
		req.Header.Set(k, v)
	}

	f.logger.Debug("requesting page", "url", url, headerGroup(req.Header))

	resp, err := f.client.Do(req)
	if err != nil {
		return "", &TransportError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		_, _ = io.Copy(io.Discard, resp.Body) //nolint:errcheck // draining for connection reuse
		return "", &TransportError{
			URL:        url,
			StatusCode: resp.StatusCode,
			Err:        errors.New(http.StatusText(resp.StatusCode)),
		}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &TransportError{URL: url, StatusCode: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}

	if !utf8.Valid(data) {
		return "", &TransportError{URL: url, StatusCode: resp.StatusCode, Err: ErrInvalidEncoding}
	}

	f.logger.Debug("page downloaded", "url", url, "status", resp.StatusCode, "bytes", len(data))

	return string(data), nil
}

// headerGroup renders request headers as a log group, one attribute per
// header, so credential headers are masked by the secure log handler.
func headerGroup(h http.Header) slog.Attr {
	attrs := make([]any, 0, len(h))
	for k := range h {
		attrs = append(attrs, slog.String(k, h.Get(k)))
	}
	return slog.Group("headers", attrs...)
}
