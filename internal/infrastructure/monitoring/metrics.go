package monitoring

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// recentDurationWindow bounds the sample window kept for quantile
// estimation on the JSON metrics surface.
const recentDurationWindow = 512

// Metrics holds all Prometheus metrics. Each Metrics owns its own
// registry so tests can create collectors freely.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RequestSize     *prometheus.HistogramVec
	ResponseSize    *prometheus.HistogramVec

	// Compile metrics
	CompilesTotal   *prometheus.CounterVec
	CompileDuration *prometheus.HistogramVec

	// Session metrics
	SessionsActive prometheus.Gauge
	SessionsOpened prometheus.Counter

	// WebSocket metrics
	WSConnections prometheus.Gauge
	WSMessages    *prometheus.CounterVec

	// System metrics
	Uptime    prometheus.Gauge
	startTime time.Time

	// Snapshot for the JSON API
	snapshot MetricsSnapshot

	mu sync.RWMutex
}

// MetricsSnapshot holds current values for the JSON metrics surface.
type MetricsSnapshot struct {
	TotalRequests     int64
	TotalCompiles     int64
	FailedCompiles    int64
	ActiveSessions    int64
	ActiveConnections int64
	RecentDurations   []float64 // seconds, bounded ring
}

// NewMetrics creates a new metrics collector.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry:  registry,
		startTime: time.Now(),

		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "playground_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "playground_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		RequestSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "playground_http_request_size_bytes",
				Help:    "HTTP request size in bytes",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000},
			},
			[]string{"method", "path"},
		),
		ResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "playground_http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000},
			},
			[]string{"method", "path"},
		),

		CompilesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "playground_compiles_total",
				Help: "Total number of demo compile attempts",
			},
			[]string{"demo", "status"},
		),
		CompileDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "playground_compile_duration_seconds",
				Help:    "Compile pipeline duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"demo"},
		),

		SessionsActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "playground_sessions_active",
				Help: "Number of active demo sessions",
			},
		),
		SessionsOpened: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "playground_sessions_opened_total",
				Help: "Total number of demo sessions opened",
			},
		),

		WSConnections: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "playground_ws_connections",
				Help: "Number of active WebSocket connections",
			},
		),
		WSMessages: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "playground_ws_messages_total",
				Help: "Total number of WebSocket messages",
			},
			[]string{"type", "direction"},
		),

		Uptime: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "playground_uptime_seconds",
				Help: "Service uptime in seconds",
			},
		),
	}
}

// Handler exposes the registry in Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordHTTPRequest records one served request.
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration, reqSize, respSize int64) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	m.RequestSize.WithLabelValues(method, path).Observe(float64(reqSize))
	m.ResponseSize.WithLabelValues(method, path).Observe(float64(respSize))

	m.mu.Lock()
	m.snapshot.TotalRequests++
	m.mu.Unlock()
}

// RecordCompile records one compile attempt.
func (m *Metrics) RecordCompile(demo, status string, duration time.Duration) {
	m.CompilesTotal.WithLabelValues(demo, status).Inc()
	m.CompileDuration.WithLabelValues(demo).Observe(duration.Seconds())

	m.mu.Lock()
	m.snapshot.TotalCompiles++
	if status != "success" {
		m.snapshot.FailedCompiles++
	}
	m.snapshot.RecentDurations = append(m.snapshot.RecentDurations, duration.Seconds())
	if len(m.snapshot.RecentDurations) > recentDurationWindow {
		m.snapshot.RecentDurations = m.snapshot.RecentDurations[1:]
	}
	m.mu.Unlock()
}

// RecordSessionOpened tracks a new demo session.
func (m *Metrics) RecordSessionOpened() {
	m.SessionsOpened.Inc()
	m.SessionsActive.Inc()

	m.mu.Lock()
	m.snapshot.ActiveSessions++
	m.mu.Unlock()
}

// RecordSessionClosed tracks a closed demo session.
func (m *Metrics) RecordSessionClosed() {
	m.SessionsActive.Dec()

	m.mu.Lock()
	m.snapshot.ActiveSessions--
	m.mu.Unlock()
}

// RecordWSConnection tracks a WebSocket connect (+1) or disconnect (-1).
func (m *Metrics) RecordWSConnection(delta int) {
	m.WSConnections.Add(float64(delta))

	m.mu.Lock()
	m.snapshot.ActiveConnections += int64(delta)
	m.mu.Unlock()
}

// RecordWSMessage tracks one WebSocket message.
func (m *Metrics) RecordWSMessage(msgType, direction string) {
	m.WSMessages.WithLabelValues(msgType, direction).Inc()
}

// WatchPoolAvailable registers a gauge that reads the sandbox pool's
// idle count at scrape time, so the value is current without anyone
// pushing updates on the compile path.
func (m *Metrics) WatchPoolAvailable(available func() int) {
	promauto.With(m.registry).NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "playground_sandbox_pool_available",
			Help: "Sandbox runtimes currently available in the pool",
		},
		func() float64 { return float64(available()) },
	)
}

// GetSnapshot returns current values for the JSON metrics surface.
func (m *Metrics) GetSnapshot() MetricsSnapshot {
	m.Uptime.Set(time.Since(m.startTime).Seconds())

	m.mu.RLock()
	defer m.mu.RUnlock()

	snap := m.snapshot
	snap.RecentDurations = append([]float64(nil), m.snapshot.RecentDurations...)
	return snap
}

// UptimeSeconds returns seconds since the collector was created.
func (m *Metrics) UptimeSeconds() float64 {
	return time.Since(m.startTime).Seconds()
}
