// Package model defines the data structures shared by the crawler, the
// orchestrating pipeline and the report writers.
//
// This package contains the following main types:
//   - TimetableRef: One (station, direction) timetable page of a line
//   - TrainRef: One train, plus the station context used to open its page
//   - TrainStop: One scheduled stop of a train
//   - TrainRecord: A de-duplicated train with its ordered stops
//   - LineCrawl: The accumulated state of crawling one line
package model
