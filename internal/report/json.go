package report

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/nao1215/linetable/internal/model"
)

// TrainDocument is one element of the output file: the train labels next
// to its stops.
type TrainDocument struct {
	// Type is the train type label, null when absent.
	Type *string `json:"type"`

	// Destination is the destination label, null when absent.
	Destination *string `json:"destination"`

	// Stops lists the stops in physical order. Never null.
	Stops []model.TrainStop `json:"stops"`
}

// NewDocument converts the records of crawl to output elements, in record
// order. The result is never nil.
func NewDocument(crawl *model.LineCrawl) []TrainDocument {
	doc := make([]TrainDocument, 0, len(crawl.Records))
	for _, r := range crawl.Records {
		stops := r.Stops
		if stops == nil {
			stops = make([]model.TrainStop, 0)
		}
		doc = append(doc, TrainDocument{
			Type:        r.Train.Type,
			Destination: r.Train.Destination,
			Stops:       stops,
		})
	}
	return doc
}

// JSONWriter outputs the timetable document of a crawl.
type JSONWriter struct {
	baseWriter

	// indent is the per-level indentation; empty means compact output.
	indent string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithPrettyPrint enables indented output.
func WithPrettyPrint() JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = "  "
	}
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the document of crawl. Station names and labels are written
// as UTF-8 without HTML escaping.
func (w *JSONWriter) Write(crawl *model.LineCrawl) (int, error) {
	data, err := marshalDocument(NewDocument(crawl), w.indent)
	if err != nil {
		return 0, err
	}
	return w.output.Write(data)
}

// marshalDocument encodes doc with a trailing newline. indent may be empty.
func marshalDocument(doc []TrainDocument, indent string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent != "" {
		enc.SetIndent("", indent)
	}
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
