package fetch

// Recorder receives fetch counters. *metrics.Collector and *Tally implement it.
type Recorder interface {
	CacheHit()
	Download(size int)
	FetchError()
}

// nopRecorder discards all counters.
type nopRecorder struct{}

func (nopRecorder) CacheHit()    {}
func (nopRecorder) Download(int) {}
func (nopRecorder) FetchError()  {}

// Tally is a plain in-memory Recorder.
type Tally struct {
	CacheHits int
	Downloads int
	Bytes     int
	Errors    int
}

// CacheHit implements Recorder.
func (t *Tally) CacheHit() { t.CacheHits++ }

// Download implements Recorder.
func (t *Tally) Download(size int) {
	t.Downloads++
	t.Bytes += size
}

// FetchError implements Recorder.
func (t *Tally) FetchError() { t.Errors++ }

// Requests returns the number of pages requested, served or not.
func (t *Tally) Requests() int {
	return t.CacheHits + t.Downloads + t.Errors
}

// multiRecorder fans counters out to several recorders.
type multiRecorder []Recorder

// MultiRecorder returns a Recorder that forwards to every non-nil r.
func MultiRecorder(recorders ...Recorder) Recorder {
	m := make(multiRecorder, 0, len(recorders))
	for _, r := range recorders {
		if r != nil {
			m = append(m, r)
		}
	}
	return m
}

func (m multiRecorder) CacheHit() {
	for _, r := range m {
		r.CacheHit()
	}
}

func (m multiRecorder) Download(size int) {
	for _, r := range m {
		r.Download(size)
	}
}

func (m multiRecorder) FetchError() {
	for _, r := range m {
		r.FetchError()
	}
}
