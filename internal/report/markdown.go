package report

import (
	"io"
	"strconv"
	"time"

	"github.com/nao1215/linetable/internal/model"
	"github.com/nao1215/markdown"
)

// MarkdownWriter outputs a crawl summary in Markdown format.
type MarkdownWriter struct {
	baseWriter
}

// MarkdownWriterOption configures a MarkdownWriter.
type MarkdownWriterOption func(*MarkdownWriter)

// WithMarkdownStats adds fetch counters to the summary.
func WithMarkdownStats(stats Stats) MarkdownWriterOption {
	return func(w *MarkdownWriter) {
		w.stats = &stats
	}
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer, opts ...MarkdownWriterOption) *MarkdownWriter {
	w := &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the summary of crawl.
func (w *MarkdownWriter) Write(crawl *model.LineCrawl) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, crawl)
	w.writeTimetables(md, crawl)
	w.writeTrains(md, crawl)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the crawl overview table.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, crawl *model.LineCrawl) {
	md.H1("Line " + strconv.Itoa(crawl.LineID) + " Timetable")
	md.PlainText("")

	rows := [][]string{
		{"Line", strconv.Itoa(crawl.LineID)},
		{"Crawled", crawl.StartedAt.Format("2006-01-02 15:04:05 MST")},
		{"Duration", crawl.Duration().Round(time.Millisecond).String()},
		{"Timetables", strconv.Itoa(len(crawl.Timetables))},
		{"Trains", strconv.Itoa(len(crawl.Records))},
		{"Train references", strconv.Itoa(crawl.TrainRefsSeen)},
		{"Stops", strconv.Itoa(crawl.StopCount())},
	}
	if w.stats != nil {
		rows = append(rows,
			[]string{"Cache hits", strconv.Itoa(w.stats.CacheHits)},
			[]string{"Downloads", strconv.Itoa(w.stats.Downloads)},
		)
	}

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")

	if len(crawl.Records) == 0 {
		md.Note("No trains were found on this line.")
		md.PlainText("")
	}
}

// writeTimetables lists the station timetables.
func (w *MarkdownWriter) writeTimetables(md *markdown.Markdown, crawl *model.LineCrawl) {
	if len(crawl.Timetables) == 0 {
		return
	}

	md.H2("Timetables")
	md.PlainText("")

	items := make([]string, len(crawl.Timetables))
	for i, tt := range crawl.Timetables {
		items[i] = tt.StationName + " (" + tt.DirectionName + ")"
	}
	md.BulletList(items...)
	md.PlainText("")
}

// writeTrains writes one table row per train.
func (w *MarkdownWriter) writeTrains(md *markdown.Markdown, crawl *model.LineCrawl) {
	if len(crawl.Records) == 0 {
		return
	}

	md.H2("Trains")
	md.PlainText("")

	rows := make([][]string, len(crawl.Records))
	for i, r := range crawl.Records {
		rows[i] = []string{
			strconv.Itoa(i + 1),
			model.StringValue(r.Train.Type, "-"),
			model.StringValue(r.Train.Destination, "-"),
			firstDeparture(r.Stops),
			lastArrival(r.Stops),
			strconv.Itoa(len(r.Stops)),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"#", "Type", "Destination", "From", "To", "Stops"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFooter writes the summary footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Generated by linetable*")
}

// firstDeparture formats the origin of a train as "station time".
func firstDeparture(stops []model.TrainStop) string {
	if len(stops) == 0 {
		return "-"
	}
	s := stops[0]
	return s.Station + " " + model.StringValue(s.Departure, "")
}

// lastArrival formats the terminal of a train as "station time".
func lastArrival(stops []model.TrainStop) string {
	if len(stops) == 0 {
		return "-"
	}
	s := stops[len(stops)-1]
	return s.Station + " " + model.StringValue(s.Arrival, "")
}
