// Package metrics provides Prometheus metrics for the agrikit activities service.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector the service exports.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Activities
	quizAnswers           *prometheus.CounterVec
	quizScores            prometheus.Histogram
	matchDrops            *prometheus.CounterVec
	matchCompletions      *prometheus.CounterVec
	breakEvenComputations *prometheus.CounterVec
	canvasSaves           *prometheus.CounterVec
	canvasCompletions     prometheus.Counter
	badgeUnlocks          prometheus.Counter

	// Sessions
	activeSessions   *prometheus.GaugeVec
	sessionEvictions *prometheus.CounterVec

	// Journal pipeline
	journalEvents      prometheus.Counter
	journalDuplicates  prometheus.Counter
	journalDropped     prometheus.Counter
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueUtilization   prometheus.Gauge
	queueEnqueued      prometheus.Counter
	queueDequeued      prometheus.Counter
	queueEnqueueErrors prometheus.Counter
	workerActiveCount  prometheus.Gauge
	workerLatency      prometheus.Histogram
	workerErrors       prometheus.Counter

	// Store
	storeLatency *prometheus.HistogramVec
	storeErrors  *prometheus.CounterVec

	errorsByComponent *prometheus.CounterVec
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "agrikit",
		subsystem:        "activities",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)
	latencyBuckets := []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000}

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests",
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration in seconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.quizAnswers = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "quiz_answers_total",
		Help:      "Quiz answers by outcome",
	}, []string{"outcome"})

	m.quizScores = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "quiz_final_score",
		Help:      "Final scores of completed quiz runs",
		Buckets:   prometheus.LinearBuckets(0, 1, 11),
	})

	m.matchDrops = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "match_drops_total",
		Help:      "Evaluated matching-game drops by domain and outcome",
	}, []string{"domain", "outcome"})

	m.matchCompletions = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "match_completions_total",
		Help:      "Completed matching boards by domain",
	}, []string{"domain"})

	m.breakEvenComputations = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "break_even_computations_total",
		Help:      "Break-even attempts by domain and outcome",
	}, []string{"domain", "outcome"})

	m.canvasSaves = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "canvas_box_saves_total",
		Help:      "Saved canvas boxes by box id",
	}, []string{"box"})

	m.canvasCompletions = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "canvas_completions_total",
		Help:      "Finished canvases",
	})

	m.badgeUnlocks = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "badge_unlocks_total",
		Help:      "Badges unlocked for the first time",
	})

	m.activeSessions = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "active_sessions",
		Help:      "Live activity sessions by activity",
	}, []string{"activity"})

	m.sessionEvictions = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "session_evictions_total",
		Help:      "Sessions closed after their TTL expired",
	}, []string{"activity"})

	m.journalEvents = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "journal_events_total",
		Help:      "Activity events written to the journal",
	})

	m.journalDuplicates = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "journal_duplicates_total",
		Help:      "Activity events dropped as duplicates",
	})

	m.journalDropped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "journal_dropped_total",
		Help:      "Activity events dropped because the queue was full or closed",
	})

	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_size",
		Help:      "Current number of events in the journal queue",
	})

	m.queueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_capacity",
		Help:      "Maximum capacity of the journal queue",
	})

	m.queueUtilization = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_utilization_ratio",
		Help:      "Journal queue utilization (0-1)",
	})

	m.queueEnqueued = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_enqueued_total",
		Help:      "Events enqueued",
	})

	m.queueDequeued = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_dequeued_total",
		Help:      "Events dequeued",
	})

	m.queueEnqueueErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_enqueue_errors_total",
		Help:      "Failed enqueue attempts",
	})

	m.workerActiveCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_active_count",
		Help:      "Running journal workers",
	})

	m.workerLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_processing_latency_milliseconds",
		Help:      "Time to write one event to the journal",
		Buckets:   latencyBuckets,
	})

	m.workerErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_errors_total",
		Help:      "Journal writes that failed",
	})

	m.storeLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_operation_latency_milliseconds",
		Help:      "Store operation latency by operation",
		Buckets:   latencyBuckets,
	}, []string{"op"})

	m.storeErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_errors_total",
		Help:      "Store failures by operation",
	}, []string{"op"})

	m.errorsByComponent = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "errors_by_component_total",
		Help:      "Errors by component and type",
	}, []string{"component", "error_type"})
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in seconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordQuizAnswer counts one answer.
func RecordQuizAnswer(correct bool) {
	globalManager.quizAnswers.WithLabelValues(outcome(correct)).Inc()
}

// RecordQuizFinish observes a final score.
func RecordQuizFinish(score int) {
	globalManager.quizScores.Observe(float64(score))
}

// RecordMatchDrop counts one evaluated drop.
func RecordMatchDrop(domain string, correct bool) {
	globalManager.matchDrops.WithLabelValues(domain, outcome(correct)).Inc()
}

// RecordMatchComplete counts a finished board.
func RecordMatchComplete(domain string) {
	globalManager.matchCompletions.WithLabelValues(domain).Inc()
}

// RecordBreakEven counts a break-even attempt.
func RecordBreakEven(domain string, ok bool) {
	globalManager.breakEvenComputations.WithLabelValues(domain, strconv.FormatBool(ok)).Inc()
}

// RecordCanvasSave counts a saved box.
func RecordCanvasSave(box string) {
	globalManager.canvasSaves.WithLabelValues(box).Inc()
}

// RecordCanvasCompletion counts a finished canvas and, when newBadge is set,
// a first-time badge unlock.
func RecordCanvasCompletion(newBadge bool) {
	globalManager.canvasCompletions.Inc()
	if newBadge {
		globalManager.badgeUnlocks.Inc()
	}
}

// UpdateActiveSessions sets the live session count for activity.
func UpdateActiveSessions(activity string, count int) {
	globalManager.activeSessions.WithLabelValues(activity).Set(float64(count))
}

// RecordSessionEviction counts a TTL eviction.
func RecordSessionEviction(activity string) {
	globalManager.sessionEvictions.WithLabelValues(activity).Inc()
}

// RecordJournalEvent counts an event written to the journal.
func RecordJournalEvent() {
	globalManager.journalEvents.Inc()
}

// RecordJournalDuplicate counts an event skipped as a duplicate.
func RecordJournalDuplicate() {
	globalManager.journalDuplicates.Inc()
}

// RecordJournalDropped counts an event lost to backpressure.
func RecordJournalDropped() {
	globalManager.journalDropped.Inc()
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

// RecordQueueEnqueue counts an enqueue.
func RecordQueueEnqueue() {
	globalManager.queueEnqueued.Inc()
}

// RecordQueueDequeue counts a dequeue.
func RecordQueueDequeue() {
	globalManager.queueDequeued.Inc()
}

// RecordQueueEnqueueError counts a failed enqueue.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// UpdateWorkerActiveCount sets the number of running workers.
func UpdateWorkerActiveCount(count int) {
	globalManager.workerActiveCount.Set(float64(count))
}

// RecordWorkerProcessingLatency observes one journal write in milliseconds.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerLatency.Observe(latencyMs)
}

// RecordWorkerError counts a failed journal write.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// RecordStoreLatency observes a store operation in milliseconds.
func RecordStoreLatency(op string, latencyMs float64) {
	globalManager.storeLatency.WithLabelValues(op).Observe(latencyMs)
}

// RecordStoreError counts a failed store operation.
func RecordStoreError(op string) {
	globalManager.storeErrors.WithLabelValues(op).Inc()
}

// RecordErrorByComponent counts an error.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// GetRegistry returns the registry the global manager exports to.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

func outcome(correct bool) string {
	if correct {
		return "correct"
	}
	return "wrong"
}
