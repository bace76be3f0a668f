package pipeline

import (
	"context"
	"log/slog"

	"github.com/nao1215/linetable/internal/model"
)

// Step names, recorded in LineCrawl.PerformedSteps.
const (
	StepTimetables = "timetables"
	StepTrains     = "trains"
	StepStops      = "stops"
)

// Extractor reads the three page kinds of a line. *crawler.Extractor
// implements it.
type Extractor interface {
	LineTimetables(ctx context.Context, lineID int) ([]model.TimetableRef, error)
	StationTrains(ctx context.Context, ref model.TimetableRef) ([]model.TrainRef, error)
	TrainStops(ctx context.Context, ref model.TrainRef) ([]model.TrainStop, error)
}

// TimetablesStep reads the station timetables of the line.
type TimetablesStep struct {
	extractor Extractor
}

// NewTimetablesStep creates the timetables step.
func NewTimetablesStep(extractor Extractor) *TimetablesStep {
	return &TimetablesStep{extractor: extractor}
}

// Name returns the step name.
func (s *TimetablesStep) Name() string {
	return StepTimetables
}

// Do executes the timetables step.
func (s *TimetablesStep) Do(ctx context.Context, crawl *model.LineCrawl) error {
	timetables, err := s.extractor.LineTimetables(ctx, crawl.LineID)
	if err != nil {
		return err
	}
	crawl.Timetables = timetables
	return nil
}

// TrainsStep reads every timetable and records each train id once. When a
// train appears under several timetables, the first reference is kept.
type TrainsStep struct {
	extractor Extractor
	logger    *slog.Logger
}

// NewTrainsStep creates the trains step.
func NewTrainsStep(extractor Extractor, logger *slog.Logger) *TrainsStep {
	return &TrainsStep{extractor: extractor, logger: logger}
}

// Name returns the step name.
func (s *TrainsStep) Name() string {
	return StepTrains
}

// Do executes the trains step.
func (s *TrainsStep) Do(ctx context.Context, crawl *model.LineCrawl) error {
	for _, timetable := range crawl.Timetables {
		trains, err := s.extractor.StationTrains(ctx, timetable)
		if err != nil {
			return err
		}

		added := 0
		for _, train := range trains {
			if crawl.AddTrain(train) {
				added++
			}
		}
		s.logger.Debug("timetable read",
			"timetable", timetable.String(),
			"trains", len(trains),
			"new", added,
		)
	}
	return nil
}

// StopsStep reads the stops of every recorded train.
type StopsStep struct {
	extractor Extractor
}

// NewStopsStep creates the stops step.
func NewStopsStep(extractor Extractor) *StopsStep {
	return &StopsStep{extractor: extractor}
}

// Name returns the step name.
func (s *StopsStep) Name() string {
	return StepStops
}

// Do executes the stops step.
func (s *StopsStep) Do(ctx context.Context, crawl *model.LineCrawl) error {
	for i := range crawl.Records {
		stops, err := s.extractor.TrainStops(ctx, crawl.Records[i].Train)
		if err != nil {
			return err
		}
		crawl.Records[i].Stops = stops
	}
	return nil
}

// CrawlLine crawls one line: timetables, then de-duplicated trains, then
// the stops of each train. On error the partially filled crawl is returned
// together with the error.
func CrawlLine(ctx context.Context, extractor Extractor, lineID int, opts ...Option) (*model.LineCrawl, error) {
	p := New(opts...)
	p.AddSteps(
		NewTimetablesStep(extractor),
		NewTrainsStep(extractor, p.logger),
		NewStopsStep(extractor),
	)

	crawl := model.NewLineCrawl(lineID)
	if err := p.Execute(ctx, crawl); err != nil {
		return crawl, err
	}

	p.logger.Info("line crawled",
		"line", lineID,
		"timetables", len(crawl.Timetables),
		"trains", len(crawl.Records),
		"stops", crawl.StopCount(),
		"duration", crawl.Duration(),
	)
	return crawl, nil
}
