package model

// TrainRef identifies one train and the station context its detail page is
// opened from.
//
// Two TrainRefs denote the same train when their IDs are equal; the station
// context and the labels are not part of the identity.
type TrainRef struct {
	// ID is the train identifier ("tx" query parameter).
	ID string `json:"-"`

	// StationContext is the boarding station token ("sf" query parameter).
	// The detail page of a train is parameterized by it.
	StationContext string `json:"-"`

	// Type is the train type label, nil when the timetable does not carry one.
	Type *string `json:"type"`

	// Destination is the destination label, nil when absent.
	Destination *string `json:"destination"`
}

// SameTrain reports whether r and other refer to the same train.
func (r TrainRef) SameTrain(other TrainRef) bool {
	return r.ID == other.ID
}

// TrainStop is one scheduled stop of a train.
type TrainStop struct {
	// Station is the station name as shown on the train page.
	Station string `json:"station"`

	// Arrival is the arrival time; nil at the origin station.
	Arrival *string `json:"arr"`

	// Departure is the departure time; nil at the terminal station.
	Departure *string `json:"dep"`
}

// TrainRecord pairs a de-duplicated train with its stops in physical order.
type TrainRecord struct {
	Train TrainRef
	Stops []TrainStop
}

// StringPtr returns a pointer to s. It keeps optional label construction
// readable at call sites.
func StringPtr(s string) *string {
	return &s
}

// StringValue returns *s, or fallback when s is nil.
func StringValue(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}
