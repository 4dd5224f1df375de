// Package metrics provides Prometheus metrics for the storefront service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager manages all Prometheus metrics for the storefront service.
type Manager struct {
	namespace        string
	subsystem        string
	engineBuckets   []float64
	httpBuckets     []float64
	queueBuckets    []float64
	enabled         bool
	refreshInterval time.Duration
	constLabels     map[string]string
	registry        prometheus.Registerer

	// Engine metrics
	engineMessages          *prometheus.CounterVec
	engineResponses         *prometheus.CounterVec
	engineUnknownMessages   prometheus.Counter
	engineFailures          *prometheus.CounterVec
	engineProcessingLatency *prometheus.HistogramVec
	engineInstances         prometheus.Gauge

	// Dispatcher metrics
	dispatcherSends      *prometheus.CounterVec
	dispatcherDeliveries prometheus.Counter
	dispatcherLifecycle  *prometheus.CounterVec
	dispatcherPanics     prometheus.Counter

	// Queue metrics
	queueEnqueued      prometheus.Counter
	queueDequeued      prometheus.Counter
	queueEnqueueErrors *prometheus.CounterVec
	queueDepth         prometheus.Histogram

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorRateByEndpoint *prometheus.CounterVec

	// Admin and catalog metrics
	authLogins     *prometheus.CounterVec
	authSessions   prometheus.Gauge
	catalogRecords prometheus.Gauge

	// System metrics
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
		namespace:       "storefront",
		subsystem:       "offload",
		engineBuckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 25, 50, 100},
		httpBuckets:     []float64{0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 1000, 5000},
		queueBuckets:    prometheus.ExponentialBuckets(1, 2, 12),
		enabled:         true,
		refreshInterval: defaultRefreshInterval,
		constLabels:     make(map[string]string),
		registry:        prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()
	return m
}

// Enabled reports whether recording is turned on.
func (m *Manager) Enabled() bool { return m.enabled }

// RefreshInterval is how often gauge updaters should poll.
func (m *Manager) RefreshInterval() time.Duration { return m.refreshInterval }

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     buckets,
		ConstLabels: m.constLabels,
	}
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every metric
	auto := promauto.With(m.registry)

	m.engineMessages = auto.NewCounterVec(
		m.counterOpts("engine_messages_total", "Messages accepted by compute engines by type"),
		[]string{"type"},
	)
	m.engineResponses = auto.NewCounterVec(
		m.counterOpts("engine_responses_total", "Responses emitted by compute engines by type"),
		[]string{"type"},
	)
	m.engineUnknownMessages = auto.NewCounter(
		m.counterOpts("engine_unknown_messages_total", "Messages ignored because their type is unknown"),
	)
	m.engineFailures = auto.NewCounterVec(
		m.counterOpts("engine_failures_total", "Messages that failed inside an engine"),
		[]string{"type", "reason"},
	)
	m.engineProcessingLatency = auto.NewHistogramVec(
		m.histogramOpts("engine_processing_latency_milliseconds", "Time an engine spent on one message", m.engineBuckets),
		[]string{"type"},
	)
	m.engineInstances = auto.NewGauge(
		m.gaugeOpts("engine_instances", "Compute engine instances currently running"),
	)

	m.dispatcherSends = auto.NewCounterVec(
		m.counterOpts("dispatcher_sends_total", "Dispatcher send attempts by outcome"),
		[]string{"outcome"},
	)
	m.dispatcherDeliveries = auto.NewCounter(
		m.counterOpts("dispatcher_deliveries_total", "Responses delivered to dispatcher listeners"),
	)
	m.dispatcherPanics = auto.NewCounter(
		m.counterOpts("dispatcher_listener_panics_total", "Listener calls that panicked during delivery"),
	)
	m.dispatcherLifecycle = auto.NewCounterVec(
		m.counterOpts("dispatcher_lifecycle_total", "Dispatcher engine lifecycle events"),
		[]string{"event"},
	)

	m.queueEnqueued = auto.NewCounter(
		m.counterOpts("queue_enqueued_total", "Messages enqueued for engines"),
	)
	m.queueDequeued = auto.NewCounter(
		m.counterOpts("queue_dequeued_total", "Messages dequeued by engines"),
	)
	m.queueEnqueueErrors = auto.NewCounterVec(
		m.counterOpts("queue_enqueue_errors_total", "Rejected enqueue attempts by reason"),
		[]string{"reason"},
	)
	m.queueDepth = auto.NewHistogram(
		m.histogramOpts("queue_depth", "Engine queue depth observed after enqueue", m.queueBuckets),
	)

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "HTTP requests by endpoint, method and status"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds", m.httpBuckets),
		[]string{"endpoint", "method", "status_code"},
	)
	m.errorRateByEndpoint = auto.NewCounterVec(
		m.counterOpts("errors_by_endpoint_total", "HTTP errors by endpoint, method and type"),
		[]string{"endpoint", "method", "error_type"},
	)

	m.authLogins = auto.NewCounterVec(
		m.counterOpts("admin_logins_total", "Admin login attempts by outcome"),
		[]string{"outcome"},
	)
	m.authSessions = auto.NewGauge(
		m.gaugeOpts("admin_sessions", "Live admin sessions"),
	)
	m.catalogRecords = auto.NewGauge(
		m.gaugeOpts("catalog_products", "Products currently held by the catalog"),
	)

	m.systemMemoryUsage = auto.NewGauge(
		m.gaugeOpts("system_memory_usage_bytes", "System memory usage in bytes"),
	)
	m.systemGoroutineCount = auto.NewGauge(
		m.gaugeOpts("system_goroutine_count", "Number of goroutines"),
	)
	m.systemGCPauseTime = auto.NewHistogram(
		m.histogramOpts("system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
			[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000}),
	)
}

// Engine Metrics Functions.

// RecordEngineMessage counts a message accepted by an engine.
func RecordEngineMessage(msgType string) {
	if globalManager.enabled {
		globalManager.engineMessages.WithLabelValues(msgType).Inc()
	}
}

// RecordEngineResponse counts a response emitted by an engine.
func RecordEngineResponse(msgType string) {
	if globalManager.enabled {
		globalManager.engineResponses.WithLabelValues(msgType).Inc()
	}
}

// RecordEngineUnknownMessage counts a message dropped for an unknown type.
func RecordEngineUnknownMessage() {
	if globalManager.enabled {
		globalManager.engineUnknownMessages.Inc()
	}
}

// RecordEngineFailure counts a message that failed inside an engine.
func RecordEngineFailure(msgType, reason string) {
	if globalManager.enabled {
		globalManager.engineFailures.WithLabelValues(msgType, reason).Inc()
	}
}

// RecordEngineProcessingLatency records how long one message took.
func RecordEngineProcessingLatency(msgType string, latencyMs float64) {
	if globalManager.enabled {
		globalManager.engineProcessingLatency.WithLabelValues(msgType).Observe(latencyMs)
	}
}

// AddEngineInstances moves the running-engine gauge by delta.
func AddEngineInstances(delta int) {
	if globalManager.enabled {
		globalManager.engineInstances.Add(float64(delta))
	}
}

// Dispatcher Metrics Functions.

// RecordDispatcherSend counts a send attempt by outcome.
func RecordDispatcherSend(outcome string) {
	if globalManager.enabled {
		globalManager.dispatcherSends.WithLabelValues(outcome).Inc()
	}
}

// RecordDispatcherDelivery counts a response handed to listeners.
func RecordDispatcherDelivery() {
	if globalManager.enabled {
		globalManager.dispatcherDeliveries.Inc()
	}
}

// RecordDispatcherLifecycle counts start/stop/swap events.
func RecordDispatcherLifecycle(event string) {
	if globalManager.enabled {
		globalManager.dispatcherLifecycle.WithLabelValues(event).Inc()
	}
}

// RecordDispatcherListenerPanic counts a listener that panicked.
func RecordDispatcherListenerPanic() {
	if globalManager.enabled {
		globalManager.dispatcherPanics.Inc()
	}
}

// Queue Metrics Functions.

// RecordQueueEnqueue counts an accepted enqueue and its resulting depth.
func RecordQueueEnqueue(depth int) {
	if globalManager.enabled {
		globalManager.queueEnqueued.Inc()
		globalManager.queueDepth.Observe(float64(depth))
	}
}

// RecordQueueDequeue counts a dequeue.
func RecordQueueDequeue() {
	if globalManager.enabled {
		globalManager.queueDequeued.Inc()
	}
}

// RecordQueueEnqueueError counts a rejected enqueue.
func RecordQueueEnqueueError(reason string) {
	if globalManager.enabled {
		globalManager.queueEnqueueErrors.WithLabelValues(reason).Inc()
	}
}

// HTTP Metrics Functions.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	if globalManager.enabled {
		globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	}
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	if globalManager.enabled {
		globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
	}
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	if globalManager.enabled {
		globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
	}
}

// Admin and Catalog Metrics Functions.

// RecordAdminLogin counts a login attempt by outcome.
func RecordAdminLogin(outcome string) {
	if globalManager.enabled {
		globalManager.authLogins.WithLabelValues(outcome).Inc()
	}
}

// UpdateAdminSessions sets the live session gauge.
func UpdateAdminSessions(count int) {
	if globalManager.enabled {
		globalManager.authSessions.Set(float64(count))
	}
}

// UpdateCatalogProducts sets the catalog size gauge.
func UpdateCatalogProducts(count int) {
	if globalManager.enabled {
		globalManager.catalogRecords.Set(float64(count))
	}
}

// System Performance Metrics Functions.

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// SetEnabled toggles recording on the global manager.
func SetEnabled(enabled bool) {
	globalManager.enabled = enabled
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// RefreshInterval is how often gauge updaters of the global manager poll.
func RefreshInterval() time.Duration {
	return globalManager.refreshInterval
}
