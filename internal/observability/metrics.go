package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "argo_etl"

// Metrics holds the Prometheus counters, histograms, and gauges for ingestion
// and publishing.
type Metrics struct {
	FilesDiscovered prometheus.Counter
	FilesIngested   prometheus.Counter
	FilesFailed     prometheus.Counter
	RowsRead        prometheus.Counter
	RowsDropped     prometheus.Counter
	GroupsSkipped   prometheus.Counter
	ProfilesBuilt   prometheus.Counter
	Measurements    prometheus.Counter
	FloatsIndexed   prometheus.Gauge
	IngestRunning   prometheus.Gauge
	IngestDuration  prometheus.Histogram
	IndexBuiltAt    prometheus.Gauge

	// Publishing metrics.
	ProfilesPublished prometheus.Counter
	PublishErrors     prometheus.Counter
	PublishBatchSize  prometheus.Histogram
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsWithRegistry creates Metrics registered with reg. One-shot
// tools pass a private registry so they never touch the default one.
func NewMetricsWithRegistry(reg prometheus.Registerer) *Metrics {
	m := newMetrics()
	reg.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		FilesDiscovered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_discovered_total",
			Help:      "Source files found by discovery.",
		}),
		FilesIngested: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_ingested_total",
			Help:      "Source files parsed and applied to the index.",
		}),
		FilesFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_failed_total",
			Help:      "Source files skipped because they were unreadable or malformed.",
		}),
		RowsRead: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_read_total",
			Help:      "Data rows read from source files.",
		}),
		RowsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_dropped_total",
			Help:      "Rows in built profiles without valid pressure and temperature.",
		}),
		GroupsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "groups_skipped_total",
			Help:      "Profile groups skipped for lack of a valid position.",
		}),
		ProfilesBuilt: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "profiles_built_total",
			Help:      "Profiles added to an index.",
		}),
		Measurements: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "measurements_built_total",
			Help:      "Measurements added to an index.",
		}),
		FloatsIndexed: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "floats_indexed",
			Help:      "Floats in the most recently built index.",
		}),
		IngestRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ingest_running",
			Help:      "1 while an ingestion run is in progress.",
		}),
		IngestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ingest_duration_seconds",
			Help:      "Duration of a complete ingestion run.",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
		IndexBuiltAt: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "index_built_timestamp_seconds",
			Help:      "Unix time the serving index was built.",
		}),
		ProfilesPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "profiles_published_total",
			Help:      "Profiles written to the sink topic.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_errors_total",
			Help:      "Failed profile batch writes.",
		}),
		PublishBatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "publish_batch_size",
			Help:      "Number of profiles per Kafka write.",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.FilesDiscovered,
		m.FilesIngested,
		m.FilesFailed,
		m.RowsRead,
		m.RowsDropped,
		m.GroupsSkipped,
		m.ProfilesBuilt,
		m.Measurements,
		m.FloatsIndexed,
		m.IngestRunning,
		m.IngestDuration,
		m.IndexBuiltAt,
		m.ProfilesPublished,
		m.PublishErrors,
		m.PublishBatchSize,
	}
}
