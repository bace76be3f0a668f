package crawler

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/nao1215/linetable/internal/model"
)

// Suffixes marking the tokens of a time cell.
const (
	arrivalMark   = "着"
	departureMark = "発"
)

// TrainStops returns the stops listed on the detail page of ref, in
// document order.
func (e *Extractor) TrainStops(ctx context.Context, ref model.TrainRef) ([]model.TrainStop, error) {
	url := e.site.TrainURL(ref.ID, ref.StationContext)
	doc, err := e.load(ctx, url)
	if err != nil {
		return nil, err
	}

	stops := make([]model.TrainStop, 0)
	err = eachLink(doc, StationPathPrefix, func(a *goquery.Selection, _ string) error {
		station := a.Text()

		row, ok := stopRow(a)
		if !ok {
			return extractionErrorf(url, "station link %q is not inside a stop row", station)
		}
		cell, ok := firstCell(row)
		if !ok {
			return extractionErrorf(url, "stop row of %q has no time cell", station)
		}

		arr, dep := parseTimes(cell.Text())
		stops = append(stops, model.TrainStop{
			Station:   station,
			Arrival:   arr,
			Departure: dep,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.logger.Debug("train page extracted", "train", ref.ID, "stops", len(stops))
	return stops, nil
}

// parseTimes reads the arrival and departure times from a time cell such as
// "10:02着 10:03発". Tokens are separated by single ASCII spaces; a token
// ending in the arrival mark is the arrival, one ending in the departure
// mark is the departure. Times are kept verbatim, other tokens are ignored
// and a missing time is nil.
func parseTimes(cell string) (arrival, departure *string) {
	text := strings.ReplaceAll(strings.TrimSpace(cell), "\t", "")

	for _, token := range strings.Split(text, " ") {
		switch {
		case strings.HasSuffix(token, arrivalMark):
			arrival = model.StringPtr(strings.TrimSuffix(token, arrivalMark))
		case strings.HasSuffix(token, departureMark):
			departure = model.StringPtr(strings.TrimSuffix(token, departureMark))
		}
	}
	return arrival, departure
}
