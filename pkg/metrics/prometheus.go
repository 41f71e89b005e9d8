// Package metrics provides Prometheus metrics for the concentration game service.
package metrics

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager manages all Prometheus metrics for the game service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	refreshInterval  time.Duration
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Game lifecycle
	gamesStarted   prometheus.Counter
	gamesCompleted *prometheus.CounterVec
	gamesEvicted   prometheus.Counter
	activeGames    prometheus.Gauge
	gameDuration   prometheus.Histogram

	// Play
	reveals          *prometheus.CounterVec
	duplicateReveals prometheus.Counter
	matches          prometheus.Counter
	mismatches       prometheus.Counter

	// Notification pipeline
	notificationsEnqueued  prometheus.Counter
	notificationsDropped   prometheus.Counter
	notificationsDelivered prometheus.Counter
	queueSize              *prometheus.GaugeVec
	queueCapacity          prometheus.Gauge
	dispatchLatency        prometheus.Histogram
	dispatcherCount        prometheus.Gauge
	subscribers            prometheus.Gauge

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorsByComponent *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram

	sampleMu  sync.Mutex
	lastNumGC uint32
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "concentration",
		subsystem:        "game",
		histogramBuckets: prometheus.DefBuckets,
		refreshInterval:  defaultRefreshInterval,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()
	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels, Buckets: buckets,
	})
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	m.gamesStarted = m.counter("games_started_total", "Total number of deals, restarts included")
	m.gamesCompleted = m.counterVec("games_completed_total", "Total number of finished games by result", "result")
	m.gamesEvicted = m.counter("games_evicted_total", "Total number of games removed for inactivity")
	m.activeGames = m.gauge("active_games", "Number of games currently held in memory")
	m.gameDuration = m.histogram("duration_seconds", "Time from deal to the last match",
		[]float64{5, 15, 30, 60, 120, 300, 600, 1200})

	m.reveals = m.counterVec("reveals_total", "Reveal requests by outcome", "outcome")
	m.duplicateReveals = m.counter("reveals_duplicate_total", "Reveal requests dropped as retries of an earlier request")
	m.matches = m.counter("matches_total", "Total number of matched pairs")
	m.mismatches = m.counter("mismatches_total", "Total number of mismatched pairs turned back over")

	m.notificationsEnqueued = m.counter("notifications_enqueued_total", "Notifications accepted by the dispatch queue")
	m.notificationsDropped = m.counter("notifications_dropped_total", "Notifications dropped because a queue was full")
	m.notificationsDelivered = m.counter("notifications_delivered_total", "Notifications handed to subscribers")
	m.queueSize = promauto.With(m.registry).NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: "queue_size",
		Help: "Notifications waiting per dispatcher shard", ConstLabels: m.constLabels,
	}, []string{"shard"})
	m.queueCapacity = m.gauge("queue_capacity", "Capacity of each dispatcher queue")
	m.dispatchLatency = m.histogram("dispatch_latency_milliseconds",
		"Time from emission to delivery of a notification", m.histogramBuckets)
	m.dispatcherCount = m.gauge("dispatchers", "Number of running notification dispatchers")
	m.subscribers = m.gauge("subscribers", "Number of connected event stream subscribers")

	m.httpRequests = m.counterVec("http_requests_total", "Total number of HTTP requests", "endpoint", "method", "status_code")
	m.httpRequestDuration = promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: "http_request_duration_seconds",
		Help: "HTTP request duration in seconds", ConstLabels: m.constLabels, Buckets: m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.errorsByComponent = m.counterVec("errors_by_component_total", "Total number of errors by component", "component", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "Heap memory in use in bytes")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
	m.systemGCPauseTime = m.histogram("system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000})
}

// RecordGameStarted counts a deal.
func (m *Manager) RecordGameStarted() { m.gamesStarted.Inc() }

// RecordGameCompleted counts a finished game and observes its play time.
func (m *Manager) RecordGameCompleted(result string, d time.Duration) {
	m.gamesCompleted.WithLabelValues(result).Inc()
	m.gameDuration.Observe(d.Seconds())
}

// RecordGameEvicted counts an idle game removed by the sweeper.
func (m *Manager) RecordGameEvicted() { m.gamesEvicted.Inc() }

// UpdateActiveGames sets the number of games held in memory.
func (m *Manager) UpdateActiveGames(n int) { m.activeGames.Set(float64(n)) }

// RecordReveal counts a reveal by outcome: "accepted" or the ignore reason.
func (m *Manager) RecordReveal(outcome string) { m.reveals.WithLabelValues(outcome).Inc() }

// RecordDuplicateReveal counts a retried reveal request.
func (m *Manager) RecordDuplicateReveal() { m.duplicateReveals.Inc() }

// RecordMatch counts a matched pair.
func (m *Manager) RecordMatch() { m.matches.Inc() }

// RecordMismatch counts a pair turned back over.
func (m *Manager) RecordMismatch() { m.mismatches.Inc() }

// RecordNotificationEnqueued counts a notification accepted by a queue.
func (m *Manager) RecordNotificationEnqueued() { m.notificationsEnqueued.Inc() }

// RecordNotificationDropped counts a notification lost to a full queue.
func (m *Manager) RecordNotificationDropped() { m.notificationsDropped.Inc() }

// RecordNotificationDelivered counts a notification handed to subscribers and
// observes how long it waited.
func (m *Manager) RecordNotificationDelivered(latency time.Duration) {
	m.notificationsDelivered.Inc()
	m.dispatchLatency.Observe(float64(latency.Microseconds()) / 1000)
}

// UpdateQueueSize sets the backlog of one dispatcher shard.
func (m *Manager) UpdateQueueSize(shard string, size int) {
	m.queueSize.WithLabelValues(shard).Set(float64(size))
}

// UpdateQueueCapacity sets the capacity of each dispatcher queue.
func (m *Manager) UpdateQueueCapacity(capacity int) { m.queueCapacity.Set(float64(capacity)) }

// UpdateDispatcherCount sets the number of running dispatchers.
func (m *Manager) UpdateDispatcherCount(n int) { m.dispatcherCount.Set(float64(n)) }

// AddSubscribers moves the subscriber gauge by delta.
func (m *Manager) AddSubscribers(delta int) { m.subscribers.Add(float64(delta)) }

// RecordHTTPRequest records one served request and its duration.
func (m *Manager) RecordHTTPRequest(endpoint, method, statusCode string, d time.Duration) {
	m.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	m.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(d.Seconds())
}

// RecordErrorByComponent records an error with component and type labels.
func (m *Manager) RecordErrorByComponent(component, errorType string) {
	m.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// SampleSystem reads runtime statistics into the system gauges.
// Concurrent samplers observe each GC pause once.
func (m *Manager) SampleSystem() {
	m.sampleMu.Lock()
	defer m.sampleMu.Unlock()

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	m.systemMemoryUsage.Set(float64(ms.HeapAlloc))
	m.systemGoroutineCount.Set(float64(runtime.NumGoroutine()))

	// PauseNs is a ring of the most recent 256 pauses.
	from := m.lastNumGC
	if ms.NumGC-from > uint32(len(ms.PauseNs)) {
		from = ms.NumGC - uint32(len(ms.PauseNs))
	}
	for i := from; i < ms.NumGC; i++ {
		pause := ms.PauseNs[i%uint32(len(ms.PauseNs))]
		m.systemGCPauseTime.Observe(float64(pause) / float64(time.Millisecond))
	}
	m.lastNumGC = ms.NumGC
}

// RunSystemSampler samples runtime statistics every refresh interval until ctx is done.
func (m *Manager) RunSystemSampler(ctx context.Context) {
	ticker := time.NewTicker(m.refreshInterval)
	defer ticker.Stop()
	m.SampleSystem()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.SampleSystem()
		}
	}
}

// Default returns the process-wide manager registered on the custom registry.
func Default() *Manager { return globalManager }

// Package-level helpers record on the default manager.

// RecordGameStarted counts a deal.
func RecordGameStarted() { globalManager.RecordGameStarted() }

// RecordGameCompleted counts a finished game and observes its play time.
func RecordGameCompleted(result string, d time.Duration) { globalManager.RecordGameCompleted(result, d) }

// RecordGameEvicted counts an idle game removed by the sweeper.
func RecordGameEvicted() { globalManager.RecordGameEvicted() }

// UpdateActiveGames sets the number of games held in memory.
func UpdateActiveGames(n int) { globalManager.UpdateActiveGames(n) }

// RecordReveal counts a reveal by outcome.
func RecordReveal(outcome string) { globalManager.RecordReveal(outcome) }

// RecordDuplicateReveal counts a retried reveal request.
func RecordDuplicateReveal() { globalManager.RecordDuplicateReveal() }

// RecordMatch counts a matched pair.
func RecordMatch() { globalManager.RecordMatch() }

// RecordMismatch counts a pair turned back over.
func RecordMismatch() { globalManager.RecordMismatch() }

// RecordNotificationEnqueued counts a notification accepted by a queue.
func RecordNotificationEnqueued() { globalManager.RecordNotificationEnqueued() }

// RecordNotificationDropped counts a notification lost to a full queue.
func RecordNotificationDropped() { globalManager.RecordNotificationDropped() }

// RecordNotificationDelivered counts a delivered notification.
func RecordNotificationDelivered(latency time.Duration) {
	globalManager.RecordNotificationDelivered(latency)
}

// UpdateQueueSize sets the backlog of one dispatcher shard.
func UpdateQueueSize(shard string, size int) { globalManager.UpdateQueueSize(shard, size) }

// UpdateQueueCapacity sets the capacity of each dispatcher queue.
func UpdateQueueCapacity(capacity int) { globalManager.UpdateQueueCapacity(capacity) }

// UpdateDispatcherCount sets the number of running dispatchers.
func UpdateDispatcherCount(n int) { globalManager.UpdateDispatcherCount(n) }

// AddSubscribers moves the subscriber gauge by delta.
func AddSubscribers(delta int) { globalManager.AddSubscribers(delta) }

// RecordHTTPRequest records one served request and its duration.
func RecordHTTPRequest(endpoint, method, statusCode string, d time.Duration) {
	globalManager.RecordHTTPRequest(endpoint, method, statusCode, d)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.RecordErrorByComponent(component, errorType)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
