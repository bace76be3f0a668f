// Package metrics collects crawl counters and exports them in the
// Prometheus text format, suitable for the node_exporter textfile collector
// when linetable runs from cron.
package metrics

import (
	"strconv"

	"github.com/nao1215/linetable/internal/model"
	"github.com/prometheus/client_golang/prometheus"
)

// Collector holds the counters of one crawl. It uses its own registry so
// several collectors can coexist (tests, repeated runs in one process).
type Collector struct {
	registry *prometheus.Registry

	cacheHits       prometheus.Counter
	downloads       prometheus.Counter
	downloadedBytes prometheus.Counter
	fetchErrors     prometheus.Counter

	timetables    prometheus.Gauge
	trains        prometheus.Gauge
	trainRefs     prometheus.Gauge
	stops         prometheus.Gauge
	crawlSeconds  prometheus.Gauge
	lastSuccessTS prometheus.Gauge
}

// New creates a Collector whose series carry a line label.
func New(lineID int) *Collector {
	labels := prometheus.Labels{"line": strconv.Itoa(lineID)}

	c := &Collector{
		registry: prometheus.NewRegistry(),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "linetable_cache_hits_total",
			Help:        "Number of pages served from the response cache",
			ConstLabels: labels,
		}),
		downloads: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "linetable_downloads_total",
			Help:        "Number of pages fetched from the network (uncached)",
			ConstLabels: labels,
		}),
		downloadedBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "linetable_downloaded_bytes_total",
			Help:        "Bytes of response bodies fetched from the network",
			ConstLabels: labels,
		}),
		fetchErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "linetable_fetch_errors_total",
			Help:        "Number of failed network fetches",
			ConstLabels: labels,
		}),
		timetables: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "linetable_timetables",
			Help:        "Station timetables found on the line page",
			ConstLabels: labels,
		}),
		trains: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "linetable_trains",
			Help:        "Distinct trains found on the line",
			ConstLabels: labels,
		}),
		trainRefs: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "linetable_train_refs",
			Help:        "Train references read from timetables, duplicates included",
			ConstLabels: labels,
		}),
		stops: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "linetable_stops",
			Help:        "Stops extracted over all trains",
			ConstLabels: labels,
		}),
		crawlSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "linetable_crawl_duration_seconds",
			Help:        "Wall time of the last crawl",
			ConstLabels: labels,
		}),
		lastSuccessTS: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "linetable_last_success_timestamp_seconds",
			Help:        "Unix time the last crawl finished successfully",
			ConstLabels: labels,
		}),
	}

	c.registry.MustRegister(
		c.cacheHits, c.downloads, c.downloadedBytes, c.fetchErrors,
		c.timetables, c.trains, c.trainRefs, c.stops, c.crawlSeconds, c.lastSuccessTS,
	)

	return c
}

// CacheHit records a page served from the cache.
func (c *Collector) CacheHit() {
	c.cacheHits.Inc()
}

// Download records a page fetched from the network.
func (c *Collector) Download(size int) {
	c.downloads.Inc()
	c.downloadedBytes.Add(float64(size))
}

// FetchError records a failed network fetch.
func (c *Collector) FetchError() {
	c.fetchErrors.Inc()
}

// RecordCrawl sets the result gauges from a finished crawl.
func (c *Collector) RecordCrawl(crawl *model.LineCrawl) {
	c.timetables.Set(float64(len(crawl.Timetables)))
	c.trains.Set(float64(len(crawl.Records)))
	c.trainRefs.Set(float64(crawl.TrainRefsSeen))
	c.stops.Set(float64(crawl.StopCount()))
	c.crawlSeconds.Set(crawl.Duration().Seconds())
	if !crawl.FinishedAt.IsZero() {
		c.lastSuccessTS.Set(float64(crawl.FinishedAt.Unix()))
	}
}

// Gatherer exposes the registry, mainly for tests.
func (c *Collector) Gatherer() prometheus.Gatherer {
	return c.registry
}

// WriteTextfile writes all series to path in the Prometheus text format.
// The file is written atomically.
func (c *Collector) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, c.registry)
}
