package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/linetable/internal/model"
)

// SimpleWriter outputs a short human-readable summary for the terminal.
type SimpleWriter struct {
	baseWriter

	// outputPath is the document path shown in the summary, if any.
	outputPath string
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithSimpleStats adds fetch counters to the summary.
func WithSimpleStats(stats Stats) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.stats = &stats
	}
}

// WithOutputPath names the written document in the summary.
func WithOutputPath(path string) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.outputPath = path
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the summary of crawl.
func (w *SimpleWriter) Write(crawl *model.LineCrawl) (int, error) {
	var sb strings.Builder

	fmt.Fprintf(&sb, "line %d: %d timetables, %d trains (%d references), %d stops\n",
		crawl.LineID,
		len(crawl.Timetables),
		len(crawl.Records),
		crawl.TrainRefsSeen,
		crawl.StopCount(),
	)
	if w.stats != nil {
		fmt.Fprintf(&sb, "pages: %d from cache, %d downloaded\n", w.stats.CacheHits, w.stats.Downloads)
	}
	if w.outputPath != "" {
		fmt.Fprintf(&sb, "written to %s\n", w.outputPath)
	}

	return io.WriteString(w.output, sb.String())
}
