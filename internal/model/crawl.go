package model

import "time"

// LineCrawl is the accumulated result of crawling one rail line.
// Pipeline steps fill it in order: timetables first, then the de-duplicated
// train records, then the stops of each record.
type LineCrawl struct {
	// LineID is the line being crawled.
	LineID int `json:"line_id"`

	// StartedAt is when the crawl began.
	StartedAt time.Time `json:"started_at"`

	// FinishedAt is when the last step completed. Zero until then.
	FinishedAt time.Time `json:"finished_at"`

	// Timetables are the station timetables of the line in document order.
	Timetables []TimetableRef `json:"timetables"`

	// Records holds exactly one entry per distinct train ID, in first-seen order.
	Records []TrainRecord `json:"-"`

	// TrainRefsSeen counts every train reference read from the timetables,
	// duplicates included.
	TrainRefsSeen int `json:"train_refs_seen"`

	// PerformedSteps lists the pipeline steps that completed.
	PerformedSteps []string `json:"performed_steps"`
}

// NewLineCrawl creates an empty crawl for the given line.
func NewLineCrawl(lineID int) *LineCrawl {
	return &LineCrawl{
		LineID:         lineID,
		StartedAt:      time.Now(),
		Timetables:     make([]TimetableRef, 0),
		Records:        make([]TrainRecord, 0),
		PerformedSteps: make([]string, 0),
	}
}

// AddTrain records ref unless a train with the same ID was already recorded.
// The first-seen reference wins: a later duplicate's station context and
// labels are discarded. It reports whether ref was added.
func (c *LineCrawl) AddTrain(ref TrainRef) bool {
	c.TrainRefsSeen++
	if c.recordOf(ref) != nil {
		return false
	}
	c.Records = append(c.Records, TrainRecord{Train: ref})
	return true
}

// FindTrain returns the record of the train with the given ID, or nil.
// The search is a linear scan in first-seen order.
func (c *LineCrawl) FindTrain(id string) *TrainRecord {
	return c.recordOf(TrainRef{ID: id})
}

func (c *LineCrawl) recordOf(ref TrainRef) *TrainRecord {
	for i := range c.Records {
		if c.Records[i].Train.SameTrain(ref) {
			return &c.Records[i]
		}
	}
	return nil
}

// StopCount returns the total number of stops over all records.
func (c *LineCrawl) StopCount() int {
	total := 0
	for _, r := range c.Records {
		total += len(r.Stops)
	}
	return total
}

// Duration returns how long the crawl took, or zero if it has not finished.
func (c *LineCrawl) Duration() time.Duration {
	if c.FinishedAt.IsZero() {
		return 0
	}
	return c.FinishedAt.Sub(c.StartedAt)
}
