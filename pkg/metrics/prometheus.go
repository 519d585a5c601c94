// Package metrics provides Prometheus metrics for the labviz service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector used by labviz.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Pipeline metrics
	recordsLoaded    *prometheus.CounterVec
	recordsDropped   *prometheus.CounterVec
	recordsDuplicate *prometheus.CounterVec
	pipelineDuration *prometheus.HistogramVec
	datasetsLoaded   prometheus.Gauge
	datasetErrors    *prometheus.CounterVec

	// Render metrics
	renders              *prometheus.CounterVec
	renderDuration       *prometheus.HistogramVec
	relaxationIterations prometheus.Counter

	// Queue metrics
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueUtilization   prometheus.Gauge
	queueEnqueued      prometheus.Counter
	queueDequeued      prometheus.Counter
	queueEnqueueErrors *prometheus.CounterVec

	// Worker metrics
	workerCount             prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Session metrics
	sessionsActive  prometheus.Gauge
	sessionEvents   *prometheus.CounterVec
	eventsThrottled prometheus.Counter

	errorsByComponent *prometheus.CounterVec

	// System metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry *prometheus.Registry //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	Init()
}

// Init rebuilds the global collectors with opts on a fresh registry. Call it
// at startup before any handler captures GetRegistry or a recorder runs.
func Init(opts ...Option) {
	registry := prometheus.NewRegistry()
	globalManager = NewManager(append(opts[:len(opts):len(opts)], WithPrometheusRegistry(registry))...)
	customRegistry = registry
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "labviz",
		subsystem:        "",
		histogramBuckets: []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
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

func (m *Manager) histogramVec(name, help string, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) histogram(name, help string) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	})
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	m.recordsLoaded = m.counterVec("records_loaded_total", "Raw records read from lab sources", "lab")
	m.recordsDropped = m.counterVec("records_dropped_total", "Records dropped during normalization", "lab", "reason")
	m.recordsDuplicate = m.counterVec("records_duplicate_total", "Records discarded as duplicate keys", "lab")
	m.pipelineDuration = m.histogramVec("pipeline_stage_duration_milliseconds", "Pipeline stage duration in milliseconds", "stage")
	m.datasetsLoaded = m.gauge("datasets_loaded", "Number of datasets held in memory")
	m.datasetErrors = m.counterVec("dataset_load_errors_total", "Dataset loads that failed or were partial", "lab")

	m.renders = m.counterVec("renders_total", "Rendered charts by kind", "kind")
	m.renderDuration = m.histogramVec("render_duration_milliseconds", "Render duration in milliseconds", "kind")
	m.relaxationIterations = m.counter("relaxation_iterations_total", "Force relaxation ticks executed")

	m.queueSize = m.gauge("render_queue_size", "Current size of the render queue")
	m.queueCapacity = m.gauge("render_queue_capacity", "Render queue capacity")
	m.queueUtilization = m.gauge("render_queue_utilization_ratio", "Render queue utilization ratio")
	m.queueEnqueued = m.counter("render_queue_enqueued_total", "Render jobs enqueued")
	m.queueDequeued = m.counter("render_queue_dequeued_total", "Render jobs dequeued")
	m.queueEnqueueErrors = m.counterVec("render_queue_enqueue_errors_total", "Render jobs rejected by the queue", "reason")

	m.workerCount = m.gauge("worker_count", "Number of render workers")
	m.workerProcessingLatency = m.histogram("worker_processing_latency_milliseconds", "Render job processing latency in milliseconds")
	m.workerErrors = m.counter("worker_errors_total", "Render jobs that failed")

	m.httpRequests = m.counterVec("http_requests_total", "HTTP requests by endpoint, method and status", "endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds", "HTTP request duration in milliseconds", "endpoint", "method", "status_code")

	m.sessionsActive = m.gauge("sessions_active", "Open interactive sessions")
	m.sessionEvents = m.counterVec("session_events_total", "Interactive events received by type", "type")
	m.eventsThrottled = m.counter("session_events_throttled_total", "Resize events dropped by the rate limiter")

	m.errorsByComponent = m.counterVec("errors_total", "Errors by component and type", "component", "type")

	m.systemMemoryUsage = m.gauge("system_memory_bytes", "Allocated heap bytes")
	m.systemGoroutineCount = m.gauge("system_goroutines", "Number of goroutines")
	m.systemGCPauseTime = m.histogram("system_gc_pause_milliseconds", "Average GC pause in milliseconds")
}

// RecordRecordsLoaded adds n raw records read for lab.
func RecordRecordsLoaded(lab string, n int) {
	globalManager.recordsLoaded.WithLabelValues(lab).Add(float64(n))
}

// RecordRecordDropped counts one dropped record.
func RecordRecordDropped(lab, reason string) {
	globalManager.recordsDropped.WithLabelValues(lab, reason).Inc()
}

// RecordRecordDuplicates adds n discarded duplicates for lab.
func RecordRecordDuplicates(lab string, n int) {
	globalManager.recordsDuplicate.WithLabelValues(lab).Add(float64(n))
}

// RecordPipelineStage records a pipeline stage duration in milliseconds.
func RecordPipelineStage(stage string, ms float64) {
	globalManager.pipelineDuration.WithLabelValues(stage).Observe(ms)
}

// UpdateDatasetsLoaded sets the number of datasets in memory.
func UpdateDatasetsLoaded(n int) {
	globalManager.datasetsLoaded.Set(float64(n))
}

// RecordDatasetError counts a failed or partial dataset load.
func RecordDatasetError(lab string) {
	globalManager.datasetErrors.WithLabelValues(lab).Inc()
}

// RecordRender counts a render and its duration.
func RecordRender(kind string, ms float64) {
	globalManager.renders.WithLabelValues(kind).Inc()
	globalManager.renderDuration.WithLabelValues(kind).Observe(ms)
}

// RecordRelaxationIterations adds n force simulation ticks.
func RecordRelaxationIterations(n int) {
	globalManager.relaxationIterations.Add(float64(n))
}

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
}

// RecordQueueEnqueue counts an enqueued job.
func RecordQueueEnqueue() {
	globalManager.queueEnqueued.Inc()
}

// RecordQueueDequeue counts a dequeued job.
func RecordQueueDequeue() {
	globalManager.queueDequeued.Inc()
}

// RecordQueueEnqueueError counts a rejected job.
func RecordQueueEnqueueError(reason string) {
	globalManager.queueEnqueueErrors.WithLabelValues(reason).Inc()
}

// UpdateWorkerCount sets the number of workers.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// RecordWorkerProcessingLatency records job latency in milliseconds.
func RecordWorkerProcessingLatency(ms float64) {
	globalManager.workerProcessingLatency.Observe(ms)
}

// RecordWorkerError counts a failed job.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// RecordHTTPRequest counts an HTTP request and its duration.
func RecordHTTPRequest(endpoint, method, statusCode string, ms float64) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(ms)
}

// UpdateSessionsActive adjusts the open session gauge by delta.
func UpdateSessionsActive(delta int) {
	globalManager.sessionsActive.Add(float64(delta))
}

// RecordSessionEvent counts an interactive event by type.
func RecordSessionEvent(eventType string) {
	globalManager.sessionEvents.WithLabelValues(eventType).Inc()
}

// RecordEventThrottled counts a rate-limited resize event.
func RecordEventThrottled() {
	globalManager.eventsThrottled.Inc()
}

// RecordErrorByComponent counts an error for component.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// UpdateSystemMemoryUsage sets allocated heap bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine count.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
