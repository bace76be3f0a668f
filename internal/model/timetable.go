package model

import "fmt"

// TimetableRef identifies the timetable of one station in one direction.
// It is only used to reach the trains listed on that timetable and is never
// written to the output document.
type TimetableRef struct {
	// ID is the opaque page identifier taken from the timetable link path.
	ID string `json:"id"`

	// StationName is the human-readable station name.
	StationName string `json:"name"`

	// DirectionName is the direction or destination label of the timetable.
	DirectionName string `json:"direction"`
}

// String implements fmt.Stringer for log output.
func (r TimetableRef) String() string {
	return fmt.Sprintf("%s (%s) [%s]", r.StationName, r.DirectionName, r.ID)
}
