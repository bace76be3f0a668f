package report

import (
	"io"

	"github.com/nao1215/linetable/internal/model"
)

// Writer outputs a crawl in one format.
type Writer interface {
	// Write outputs the crawl to the configured destination.
	// Returns the number of bytes written and any error encountered.
	Write(crawl *model.LineCrawl) (int, error)
}

// MultiWriter writes to multiple Writers in order.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the crawl to all configured Writers and stops on the first
// error.
func (m *MultiWriter) Write(crawl *model.LineCrawl) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(crawl)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// Stats are fetch counters shown in summaries.
type Stats struct {
	// CacheHits is the number of pages served from the cache.
	CacheHits int

	// Downloads is the number of pages fetched from the network.
	Downloads int
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
	stats  *Stats
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}
