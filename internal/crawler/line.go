package crawler

import (
	"context"

	"github.com/PuerkitoBio/goquery"
	"github.com/nao1215/linetable/internal/model"
)

// LineTimetables returns the station timetables listed on the line page, in
// document order. Duplicates are kept.
func (e *Extractor) LineTimetables(ctx context.Context, lineID int) ([]model.TimetableRef, error) {
	url := e.site.LineURL(lineID)
	doc, err := e.load(ctx, url)
	if err != nil {
		return nil, err
	}

	timetables := make([]model.TimetableRef, 0)
	err = eachLink(doc, TimetablePathPrefix, func(a *goquery.Selection, id string) error {
		block, ok := stationBlock(a)
		if !ok {
			return extractionErrorf(url, "timetable link %q is not inside a station block", id)
		}
		name, ok := stationName(block)
		if !ok {
			return extractionErrorf(url, "station block of timetable %q has no station name", id)
		}

		timetables = append(timetables, model.TimetableRef{
			ID:            id,
			StationName:   name,
			DirectionName: a.Text(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.logger.Debug("line page extracted", "line", lineID, "timetables", len(timetables))
	return timetables, nil
}
