// Package metrics provides Prometheus metrics for the stride results service.
package metrics

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector exported by the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Aggregation Metrics - the ranking engine and its inputs
	aggregationDuration *prometheus.HistogramVec
	aggregationRows     *prometheus.CounterVec
	droppedResults      *prometheus.CounterVec
	placeholderMeets    prometheus.Counter
	unparseableTimes    prometheus.Counter

	// Roster Metrics
	rosterSize *prometheus.GaugeVec

	// Store Metrics
	storeQueryDuration *prometheus.HistogramVec
	storeErrors        *prometheus.CounterVec

	// Auth Metrics
	loginAttempts *prometheus.CounterVec

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error Metrics
	errorRateByComponent *prometheus.CounterVec
	errorRateByType      *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec
	errorLatency         *prometheus.HistogramVec

	// System Performance Metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// global pairs the process-wide manager with the custom registry it writes
// to, which keeps default Go metrics off /metrics.
type global struct {
	manager  *Manager
	registry *prometheus.Registry
}

var current atomic.Pointer[global] //nolint:gochecknoglobals // singleton metrics manager

func init() { //nolint:gochecknoinits // global metrics setup
	Init()
}

// Init rebuilds the process-wide collectors on a fresh registry. Call it
// before serving; values recorded through the previous manager are dropped.
func Init(opts ...Option) *Manager {
	registry := prometheus.NewRegistry()
	m := NewManager(append(opts[:len(opts):len(opts)], WithPrometheusRegistry(registry))...)
	current.Store(&global{manager: m, registry: registry})
	return m
}

func globalManager() *Manager {
	return current.Load().manager
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "stride",
		subsystem:        "results",
		histogramBuckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000},
		constLabels:      map[string]string{},
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) histogramVec(name, help string, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
		Buckets:     m.histogramBuckets,
	}, labels)
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	})
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	})
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	m.aggregationDuration = m.histogramVec("aggregation_duration_milliseconds",
		"Time spent fetching and aggregating a view in milliseconds", "view")
	m.aggregationRows = m.counterVec("aggregation_rows_total",
		"Rows emitted by the ranking engine", "view", "category")
	m.droppedResults = m.counterVec("dropped_results_total",
		"Results excluded from aggregation", "view", "reason")
	m.placeholderMeets = m.counter("placeholder_meets_total",
		"Leaderboard rows shown with a placeholder meet name")
	m.unparseableTimes = m.counter("unparseable_times_total",
		"Results whose time could not be parsed")

	m.rosterSize = promauto.With(m.registry).NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "roster_size",
		Help:        "Records per collection at the last aggregation",
		ConstLabels: m.constLabels,
	}, []string{"collection"})

	m.storeQueryDuration = m.histogramVec("store_query_duration_milliseconds",
		"Store operation latency in milliseconds", "operation")
	m.storeErrors = m.counterVec("store_errors_total",
		"Store operations that returned an error", "operation")

	m.loginAttempts = m.counterVec("login_attempts_total",
		"Admin login attempts by outcome", "outcome")

	m.httpRequests = m.counterVec("http_requests_total",
		"Total number of HTTP requests by endpoint and method", "endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds",
		"HTTP request duration in milliseconds", "endpoint", "method", "status_code")

	m.errorRateByComponent = m.counterVec("errors_by_component_total",
		"Errors by component and type", "component", "error_type")
	m.errorRateByType = m.counterVec("errors_by_type_total",
		"Errors by type and severity", "error_type", "severity")
	m.errorRateByEndpoint = m.counterVec("errors_by_endpoint_total",
		"Errors by HTTP endpoint", "endpoint", "method", "error_type")
	m.errorLatency = m.histogramVec("error_latency_milliseconds",
		"Latency of failed operations in milliseconds", "component", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "System memory usage in bytes")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
	m.systemGCPauseTime = promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "system_gc_pause_time_milliseconds",
		Help:        "GC pause time in milliseconds",
		ConstLabels: m.constLabels,
		Buckets:     []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
	})
}

// Aggregation Metrics Functions.

// RecordAggregationDuration records the fetch+aggregate latency for a view.
func RecordAggregationDuration(view string, latencyMs float64) {
	globalManager().aggregationDuration.WithLabelValues(view).Observe(latencyMs)
}

// RecordAggregationRows adds emitted rows for a view and category.
func RecordAggregationRows(view, category string, rows int) {
	globalManager().aggregationRows.WithLabelValues(view, category).Add(float64(rows))
}

// RecordDroppedResults adds results excluded from a view for reason.
func RecordDroppedResults(view, reason string, count int) {
	if count <= 0 {
		return
	}
	globalManager().droppedResults.WithLabelValues(view, reason).Add(float64(count))
}

// RecordPlaceholderMeets adds rows rendered with a placeholder meet name.
func RecordPlaceholderMeets(count int) {
	if count <= 0 {
		return
	}
	globalManager().placeholderMeets.Add(float64(count))
}

// RecordUnparseableTimes adds results whose time could not be parsed.
func RecordUnparseableTimes(count int) {
	if count <= 0 {
		return
	}
	globalManager().unparseableTimes.Add(float64(count))
}

// UpdateRosterSize sets the record count for a collection.
func UpdateRosterSize(collection string, count int) {
	globalManager().rosterSize.WithLabelValues(collection).Set(float64(count))
}

// Store Metrics Functions.

// RecordStoreQuery records a store operation's latency and failure.
func RecordStoreQuery(operation string, latencyMs float64, err error) {
	globalManager().storeQueryDuration.WithLabelValues(operation).Observe(latencyMs)
	if err != nil {
		globalManager().storeErrors.WithLabelValues(operation).Inc()
	}
}

// RecordLoginAttempt counts a login attempt by outcome ("success", "denied").
func RecordLoginAttempt(outcome string) {
	globalManager().loginAttempts.WithLabelValues(outcome).Inc()
}

// HTTP Metrics Functions.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager().httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager().httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// Error Metrics Functions.

// RecordErrorByComponent records an error by component.
func RecordErrorByComponent(component, errorType string) {
	globalManager().errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByType records an error by type and severity.
func RecordErrorByType(errorType, severity string) {
	globalManager().errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error by HTTP endpoint.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager().errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorLatency records the latency of a failed operation.
func RecordErrorLatency(component, errorType string, latencyMs float64) {
	globalManager().errorLatency.WithLabelValues(component, errorType).Observe(latencyMs)
}

// System Metrics Functions.

// UpdateSystemMemoryUsage sets the system memory usage.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager().systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine count.
func UpdateSystemGoroutineCount(count int) {
	globalManager().systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager().systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom registry served on /metrics.
func GetRegistry() *prometheus.Registry {
	return current.Load().registry
}
