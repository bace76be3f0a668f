package crawler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/PuerkitoBio/goquery"
	"github.com/nao1215/linetable/internal/config"
)

// Fetcher returns the body of a page. *fetch.Fetcher implements it.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Extractor reads timetable pages and turns them into model values.
// All pages are read through one Fetcher, so repeated requests for the
// same URL are served by its cache.
type Extractor struct {
	// fetcher retrieves page bodies.
	fetcher Fetcher

	// site builds page URLs.
	site Site

	// logger for structured logging.
	logger *slog.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithBaseURL sets the site host. Tests point it at a local server.
func WithBaseURL(baseURL string) Option {
	return func(e *Extractor) {
		e.site = NewSite(baseURL)
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) {
		e.logger = logger
	}
}

// NewExtractor creates an Extractor reading pages through fetcher.
func NewExtractor(fetcher Fetcher, opts ...Option) *Extractor {
	e := &Extractor{
		fetcher: fetcher,
		site:    NewSite(config.DefaultBaseURL),
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// load fetches url and parses it.
func (e *Extractor) load(ctx context.Context, url string) (*goquery.Document, error) {
	body, err := e.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	doc, err := parseDocument(body)
	if err != nil {
		return nil, &ExtractionError{URL: url, Reason: "parse html", Err: err}
	}
	return doc, nil
}

// extractionErrorf builds an *ExtractionError with a formatted reason.
func extractionErrorf(url, format string, args ...any) *ExtractionError {
	return &ExtractionError{URL: url, Reason: fmt.Sprintf(format, args...)}
}
