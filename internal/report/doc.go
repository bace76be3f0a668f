// Package report renders a finished line crawl.
//
//   - JSONWriter: the timetable document, one object per train
//   - MarkdownWriter: a crawl summary with a per-train table
//   - SimpleWriter: a short plain-text summary for the terminal
//
// Writers implement the Writer interface and can be combined with
// MultiWriter.
package report
