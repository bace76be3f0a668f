package crawler

import (
	"context"
	"net/url"

	"github.com/PuerkitoBio/goquery"
	"github.com/nao1215/linetable/internal/model"
)

// Attributes of the element wrapping a train link on a timetable page.
const (
	trainTypeAttr        = "data-tr-type"
	trainDestinationAttr = "data-dest"
)

// StationTrains returns the trains listed on a station timetable page, in
// document order. A train listed several times is returned several times;
// de-duplication happens over the whole line.
func (e *Extractor) StationTrains(ctx context.Context, ref model.TimetableRef) ([]model.TrainRef, error) {
	pageURL := e.site.TimetableURL(ref.ID)
	doc, err := e.load(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	trains := make([]model.TrainRef, 0)
	err = eachLink(doc, TrainPathPrefix, func(a *goquery.Selection, query string) error {
		// Malformed pairs are skipped; only tx and sf matter.
		params, parseErr := url.ParseQuery(query)

		tx := firstValue(params, "tx")
		if tx == "" {
			return &ExtractionError{URL: pageURL, Reason: "train link without tx: " + query, Err: parseErr}
		}
		sf := firstValue(params, "sf")
		if sf == "" {
			return &ExtractionError{URL: pageURL, Reason: "train link without sf: " + query, Err: parseErr}
		}

		holder := a.Parent()
		trains = append(trains, model.TrainRef{
			ID:             tx,
			StationContext: sf,
			Type:           optionalAttr(holder, trainTypeAttr),
			Destination:    optionalAttr(holder, trainDestinationAttr),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.logger.Debug("timetable page extracted", "timetable", ref.String(), "trains", len(trains))
	return trains, nil
}

// firstValue returns the first non-empty value of key. Blank values count
// as missing.
func firstValue(params url.Values, key string) string {
	for _, v := range params[key] {
		if v != "" {
			return v
		}
	}
	return ""
}
