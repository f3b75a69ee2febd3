package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector provides application metrics collection.
// A nil *Collector is valid and records nothing.
type Collector struct {
	// API Metrics
	APIRequestsTotal   *prometheus.CounterVec
	APIRequestDuration *prometheus.HistogramVec
	APIErrorsTotal     *prometheus.CounterVec

	// Editing Metrics
	ValidationFailuresTotal *prometheus.CounterVec
	SavesTotal              *prometheus.CounterVec
	ConversionsTotal        *prometheus.CounterVec

	// Cache Metrics
	CacheEventsTotal   *prometheus.CounterVec
	CacheWarningsTotal *prometheus.CounterVec
	CacheEntries       *prometheus.GaugeVec

	// Import Metrics
	ImportRecordsTotal *prometheus.CounterVec
	ImportDuration     prometheus.Histogram

	// Database Metrics
	DBQueryDuration  *prometheus.HistogramVec
	DBConnectionPool *prometheus.GaugeVec
	DBErrorsTotal    *prometheus.CounterVec

	// System Metrics
	ProcessingTimeMS  *prometheus.HistogramVec
	ActiveConnections prometheus.Gauge
}

// NewCollector creates a new metrics collector registered on reg.
// Separate registries keep collectors from clashing in tests.
func NewCollector(namespace string, reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		APIRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "api_requests_total",
				Help:      "Total number of API requests by endpoint, method, and status",
			},
			[]string{"endpoint", "method", "status"},
		),

		APIRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "api_request_duration_seconds",
				Help:      "API request duration in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.02, 0.05, 0.1, 0.2, 0.5, 1.0, 2.0, 5.0},
			},
			[]string{"endpoint"},
		),

		APIErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "api_errors_total",
				Help:      "Total number of API errors by type",
			},
			[]string{"error_type", "endpoint"},
		),

		ValidationFailuresTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "validation_failures_total",
				Help:      "Rejected field inputs by entity and failure kind",
			},
			[]string{"entity", "kind"},
		),

		SavesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "saves_total",
				Help:      "Save attempts by entity and outcome",
			},
			[]string{"entity", "outcome"},
		),

		ConversionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "unit_conversions_total",
				Help:      "Unit conversions served by quantity family",
			},
			[]string{"family"},
		),

		CacheEventsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_events_total",
				Help:      "Entry cache notifications by cache and event",
			},
			[]string{"cache", "event"},
		),

		CacheWarningsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_consistency_warnings_total",
				Help:      "Duplicate inserts and deletes of missing entries",
			},
			[]string{"cache", "warning"},
		),

		CacheEntries: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "cache_entries",
				Help:      "Number of entries held per cache",
			},
			[]string{"cache"},
		),

		ImportRecordsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "import_records_total",
				Help:      "Records read by the importer by outcome",
			},
			[]string{"outcome"},
		),

		ImportDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "import_duration_seconds",
				Help:      "Duration of import runs in seconds",
				Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120},
			},
		),

		DBQueryDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "db_query_duration_seconds",
				Help:      "Database query duration in seconds by query type",
				Buckets:   []float64{0.001, 0.002, 0.005, 0.01, 0.02, 0.05, 0.1, 0.2, 0.5},
			},
			[]string{"query_type"},
		),

		DBConnectionPool: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "db_connection_pool",
				Help:      "Database connection pool statistics",
			},
			[]string{"state"}, // "in_use", "idle", "total"
		),

		DBErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "db_errors_total",
				Help:      "Total number of database errors by type",
			},
			[]string{"error_type"},
		),

		ProcessingTimeMS: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "processing_time_milliseconds",
				Help:      "Processing time in milliseconds by operation",
				Buckets:   []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000, 2000, 5000},
			},
			[]string{"operation"},
		),

		ActiveConnections: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "active_connections",
				Help:      "Number of connected event stream clients",
			},
		),
	}
}

// Timer provides timing functionality for operations
type Timer struct {
	start    time.Time
	observer prometheus.Observer
}

// NewTimer creates a new timer
func (c *Collector) NewTimer(histogram prometheus.Observer) *Timer {
	return &Timer{
		start:    time.Now(),
		observer: histogram,
	}
}

// ObserveDuration records the elapsed time since timer creation
func (t *Timer) ObserveDuration() time.Duration {
	duration := time.Since(t.start)
	if t.observer != nil {
		t.observer.Observe(duration.Seconds())
	}
	return duration
}

// QueryTimer starts a timer for one database query type
func (c *Collector) QueryTimer(queryType string) *Timer {
	if c == nil {
		return &Timer{start: time.Now()}
	}
	return c.NewTimer(c.DBQueryDuration.WithLabelValues(queryType))
}

// RequestTimer starts a timer for one API endpoint
func (c *Collector) RequestTimer(endpoint string) *Timer {
	if c == nil {
		return &Timer{start: time.Now()}
	}
	return c.NewTimer(c.APIRequestDuration.WithLabelValues(endpoint))
}

// RecordAPIRequest increments API request counter
func (c *Collector) RecordAPIRequest(endpoint, method, status string) {
	if c == nil {
		return
	}
	c.APIRequestsTotal.WithLabelValues(endpoint, method, status).Inc()
}

// RecordAPIError increments API error counter
func (c *Collector) RecordAPIError(errorType, endpoint string) {
	if c == nil {
		return
	}
	c.APIErrorsTotal.WithLabelValues(errorType, endpoint).Inc()
}

// RecordValidationFailure counts one rejected field input
func (c *Collector) RecordValidationFailure(entity, kind string) {
	if c == nil {
		return
	}
	c.ValidationFailuresTotal.WithLabelValues(entity, kind).Inc()
}

// RecordSave counts one save attempt; outcome is "saved", "invalid" or "error"
func (c *Collector) RecordSave(entity, outcome string) {
	if c == nil {
		return
	}
	c.SavesTotal.WithLabelValues(entity, outcome).Inc()
}

// RecordConversion counts one unit conversion
func (c *Collector) RecordConversion(family string) {
	if c == nil {
		return
	}
	c.ConversionsTotal.WithLabelValues(family).Inc()
}

// RecordCacheEvent counts one cache notification and updates the cache size
func (c *Collector) RecordCacheEvent(cache, event string, size int) {
	if c == nil {
		return
	}
	c.CacheEventsTotal.WithLabelValues(cache, event).Inc()
	c.CacheEntries.WithLabelValues(cache).Set(float64(size))
}

// RecordCacheWarning counts one cache consistency warning
func (c *Collector) RecordCacheWarning(cache, warning string) {
	if c == nil {
		return
	}
	c.CacheWarningsTotal.WithLabelValues(cache, warning).Inc()
}

// SetCacheSize updates the entry gauge after silent bulk changes
func (c *Collector) SetCacheSize(cache string, size int) {
	if c == nil {
		return
	}
	c.CacheEntries.WithLabelValues(cache).Set(float64(size))
}

// RecordImport counts imported records by outcome
func (c *Collector) RecordImport(outcome string, n int) {
	if c == nil {
		return
	}
	c.ImportRecordsTotal.WithLabelValues(outcome).Add(float64(n))
}

// ObserveImport records the duration of one import run
func (c *Collector) ObserveImport(d time.Duration) {
	if c == nil {
		return
	}
	c.ImportDuration.Observe(d.Seconds())
}

// RecordDBError increments database error counter
func (c *Collector) RecordDBError(errorType string) {
	if c == nil {
		return
	}
	c.DBErrorsTotal.WithLabelValues(errorType).Inc()
}

// UpdateDBConnectionPool updates database connection pool metrics
func (c *Collector) UpdateDBConnectionPool(inUse, idle, total int) {
	if c == nil {
		return
	}
	c.DBConnectionPool.WithLabelValues("in_use").Set(float64(inUse))
	c.DBConnectionPool.WithLabelValues("idle").Set(float64(idle))
	c.DBConnectionPool.WithLabelValues("total").Set(float64(total))
}

// ObserveProcessing records an operation duration in milliseconds
func (c *Collector) ObserveProcessing(operation string, d time.Duration) {
	if c == nil {
		return
	}
	c.ProcessingTimeMS.WithLabelValues(operation).Observe(float64(d.Microseconds()) / 1000)
}

// ConnectionOpened and ConnectionClosed track event stream clients
func (c *Collector) ConnectionOpened() {
	if c == nil {
		return
	}
	c.ActiveConnections.Inc()
}

func (c *Collector) ConnectionClosed() {
	if c == nil {
		return
	}
	c.ActiveConnections.Dec()
}
