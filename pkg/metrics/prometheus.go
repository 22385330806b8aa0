// Package metrics provides Prometheus metrics for the birth profile service.
package metrics

import (
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          atomic.Bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Core diagnosis metrics
	diagnosesTotal    prometheus.Counter
	diagnosisFailures *prometheus.CounterVec
	diagnosisLatency  prometheus.Histogram
	chartBuildLatency prometheus.Histogram
	houseMisses       *prometheus.CounterVec
	dominantElements  *prometheus.CounterVec

	// Batch queue and worker metrics
	queueDepth      prometheus.Gauge
	queueRejections *prometheus.CounterVec
	workersBusy     prometheus.Gauge
	batchSize       prometheus.Histogram

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error Metrics
	errorRateByComponent *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec

	// System Performance Metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "birthprofile",
		subsystem:        "diagnosis",
		histogramBuckets: prometheus.DefBuckets,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		metricPrefix:     "",
		registry:         prometheus.DefaultRegisterer,
	}

	m.enabled.Store(true)

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) name(n string) string {
	if m.metricPrefix == "" {
		return n
	}
	return m.metricPrefix + "_" + n
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // one block per metric
	auto := promauto.With(m.registry)
	constLabels := prometheus.Labels(m.customLabels)

	m.diagnosesTotal = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("diagnoses_total"),
		Help:        "Total number of birth profiles computed",
		ConstLabels: constLabels,
	})

	m.diagnosisFailures = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("failures_total"),
			Help:        "Total number of failed diagnoses by failure kind",
			ConstLabels: constLabels,
		},
		[]string{"kind"},
	)

	m.diagnosisLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("latency_milliseconds"),
		Help:        "End-to-end diagnosis latency in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: constLabels,
	})

	m.chartBuildLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("chart_build_latency_milliseconds"),
		Help:        "Ephemeris chart construction latency in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: constLabels,
	})

	m.houseMisses = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("house_misses_total"),
			Help:        "Bodies whose house could not be determined",
			ConstLabels: constLabels,
		},
		[]string{"body"},
	)

	m.dominantElements = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("dominant_element_total"),
			Help:        "Dominant element of computed profiles",
			ConstLabels: constLabels,
		},
		[]string{"element"},
	)

	// Batch queue and worker metrics
	m.queueDepth = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("queue_depth"),
		Help:        "Diagnosis jobs waiting for a worker",
		ConstLabels: constLabels,
	})

	m.queueRejections = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("queue_rejections_total"),
			Help:        "Diagnosis jobs refused by the queue by reason",
			ConstLabels: constLabels,
		},
		[]string{"reason"},
	)

	m.workersBusy = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("workers_busy"),
		Help:        "Workers currently computing a profile",
		ConstLabels: constLabels,
	})

	m.batchSize = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("batch_size"),
		Help:        "Number of inputs per batch request",
		Buckets:     []float64{1, 2, 5, 10, 25, 50, 100, 250},
		ConstLabels: constLabels,
	})

	// HTTP Performance Metrics
	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("http_requests_total"),
			Help:        "Total number of HTTP requests by endpoint and method",
			ConstLabels: constLabels,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("http_request_duration_milliseconds"),
			Help:        "HTTP request duration in milliseconds",
			Buckets:     m.histogramBuckets,
			ConstLabels: constLabels,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	// Error Metrics
	m.errorRateByComponent = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("errors_by_component_total"),
			Help:        "Total number of errors by component",
			ConstLabels: constLabels,
		},
		[]string{"component", "error_type"},
	)

	m.errorRateByEndpoint = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("errors_by_endpoint_total"),
			Help:        "Total number of errors by endpoint",
			ConstLabels: constLabels,
		},
		[]string{"endpoint", "method", "error_type"},
	)

	// System Performance Metrics
	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("system_memory_usage_bytes"),
		Help:        "System memory usage in bytes",
		ConstLabels: constLabels,
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("system_goroutine_count"),
		Help:        "Number of goroutines",
		ConstLabels: constLabels,
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("system_gc_pause_time_milliseconds"),
		Help:        "GC pause time in milliseconds",
		Buckets:     []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
		ConstLabels: constLabels,
	})
}

// RefreshInterval is how often system gauges should be sampled.
func (m *Manager) RefreshInterval() time.Duration { return m.refreshInterval }

// Enabled reports whether the manager records anything.
func (m *Manager) Enabled() bool { return m.enabled.Load() }

// SetEnabled turns recording through the package-level helpers on or off.
// Metrics keep their last values while disabled.
func SetEnabled(enabled bool) { globalManager.enabled.Store(enabled) }

// RecordDiagnosis increments the computed profiles counter.
func RecordDiagnosis() {
	if !globalManager.Enabled() {
		return
	}
	globalManager.diagnosesTotal.Inc()
}

// RecordDiagnosisFailure counts a failed diagnosis by kind
// (e.g. "invalid_input", "chart").
func RecordDiagnosisFailure(kind string) {
	if !globalManager.Enabled() {
		return
	}
	globalManager.diagnosisFailures.WithLabelValues(kind).Inc()
}

// RecordDiagnosisLatency records end-to-end diagnosis latency in milliseconds.
func RecordDiagnosisLatency(latencyMs float64) {
	if !globalManager.Enabled() {
		return
	}
	globalManager.diagnosisLatency.Observe(latencyMs)
}

// RecordChartBuildLatency records chart construction latency in milliseconds.
func RecordChartBuildLatency(latencyMs float64) {
	if !globalManager.Enabled() {
		return
	}
	globalManager.chartBuildLatency.Observe(latencyMs)
}

// RecordHouseMiss counts a body whose house lookup failed.
func RecordHouseMiss(body string) {
	if !globalManager.Enabled() {
		return
	}
	globalManager.houseMisses.WithLabelValues(body).Inc()
}

// RecordDominantElement counts the dominant element of a computed profile.
func RecordDominantElement(element string) {
	if !globalManager.Enabled() {
		return
	}
	globalManager.dominantElements.WithLabelValues(element).Inc()
}

// UpdateQueueDepth sets the number of queued diagnosis jobs.
func UpdateQueueDepth(depth int) {
	if !globalManager.Enabled() {
		return
	}
	globalManager.queueDepth.Set(float64(depth))
}

// RecordQueueRejection counts a job the queue refused ("full", "closed").
func RecordQueueRejection(reason string) {
	if !globalManager.Enabled() {
		return
	}
	globalManager.queueRejections.WithLabelValues(reason).Inc()
}

// AddWorkersBusy adjusts the busy worker gauge by delta.
func AddWorkersBusy(delta int) {
	if !globalManager.Enabled() {
		return
	}
	globalManager.workersBusy.Add(float64(delta))
}

// RecordBatchSize records the number of inputs in a batch request.
func RecordBatchSize(n int) {
	if !globalManager.Enabled() {
		return
	}
	globalManager.batchSize.Observe(float64(n))
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	if !globalManager.Enabled() {
		return
	}
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	if !globalManager.Enabled() {
		return
	}
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	if !globalManager.Enabled() {
		return
	}
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	if !globalManager.Enabled() {
		return
	}
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	if !globalManager.Enabled() {
		return
	}
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	if !globalManager.Enabled() {
		return
	}
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	if !globalManager.Enabled() {
		return
	}
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
