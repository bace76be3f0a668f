package crawler

import (
	"strconv"
	"strings"
)

// Link prefixes that select the relevant anchors on each page.
const (
	// TimetablePathPrefix marks a station timetable link on the line page.
	TimetablePathPrefix = "/timetable/railway/line-station/"

	// TrainPathPrefix marks a train link on a station timetable page.
	// The query string carries the tx and sf parameters.
	TrainPathPrefix = "/timetable/railway/train?"

	// StationPathPrefix marks a station link on a train page.
	StationPathPrefix = "/timetable/railway/station/"

	linePathPrefix = "/timetable/railway/line/"
)

// Site builds page URLs against one host.
//
// URLs are built by plain concatenation, without re-encoding the ids,
// so the same page always maps to the same cache key.
type Site struct {
	baseURL string
}

// NewSite returns a Site for baseURL. A trailing slash is ignored.
func NewSite(baseURL string) Site {
	return Site{baseURL: strings.TrimRight(baseURL, "/")}
}

// LineURL returns the overview page of a line.
func (s Site) LineURL(lineID int) string {
	return s.baseURL + linePathPrefix + strconv.Itoa(lineID)
}

// TimetableURL returns the station timetable page with the given id.
func (s Site) TimetableURL(id string) string {
	return s.baseURL + TimetablePathPrefix + id
}

// TrainURL returns the detail page of train tx opened from station context sf.
func (s Site) TrainURL(tx, sf string) string {
	return s.baseURL + TrainPathPrefix + "tx=" + tx + "&sf=" + sf
}
