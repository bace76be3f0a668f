// Package crawler extracts timetable data from the railway timetable site.
//
// An Extractor reads three kinds of pages through a Fetcher:
//
//   - the line page, listing one timetable per station and direction
//   - the station timetable page, listing the trains departing there
//   - the train page, listing every stop of one train
//
// Every page is scanned for links with a known path prefix. Related values
// are read from fixed positions around each link (the containing station
// block, the stop row). When such a position is missing the page does not
// have the expected layout and the extraction fails with *ExtractionError;
// no partial result is returned.
//
// # Usage
//
//	ex := crawler.NewExtractor(fetcher)
//	timetables, err := ex.LineTimetables(ctx, 1234)
package crawler
