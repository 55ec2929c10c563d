package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/formlab/playground/internal/engine"
	"github.com/formlab/playground/internal/infrastructure/monitoring"
)

// MetricsReporter serves the JSON metrics surface the docs site's
// status widget polls. The Prometheus surface is served separately.
type MetricsReporter struct {
	metrics *monitoring.Metrics
	engine  *engine.Engine
}

// NewMetricsReporter creates a metrics reporter
func NewMetricsReporter(metrics *monitoring.Metrics, eng *engine.Engine) *MetricsReporter {
	return &MetricsReporter{
		metrics: metrics,
		engine:  eng,
	}
}

// MetricsReport is a point-in-time view of service metrics
type MetricsReport struct {
	Timestamp time.Time                `json:"timestamp"`
	Compiles  monitoring.DurationStats `json:"compiles"`
	Sandbox   map[string]interface{}   `json:"sandbox"`
	Summary   MetricsSummary           `json:"summary"`
}

// MetricsSummary provides high-level metrics
type MetricsSummary struct {
	TotalRequests  int64   `json:"total_requests"`
	TotalCompiles  int64   `json:"total_compiles"`
	FailedCompiles int64   `json:"failed_compiles"`
	ActiveSessions int64   `json:"active_sessions"`
	UptimeSeconds  float64 `json:"uptime_seconds"`
}

// GetMetricsJSON returns the JSON metrics report
func (mr *MetricsReporter) GetMetricsJSON(c *gin.Context) {
	snapshot := mr.metrics.GetSnapshot()

	report := MetricsReport{
		Timestamp: time.Now(),
		Compiles:  mr.metrics.CompileDurationStats(),
		Sandbox:   mr.engine.PoolStats(),
		Summary: MetricsSummary{
			TotalRequests:  snapshot.TotalRequests,
			TotalCompiles:  snapshot.TotalCompiles,
			FailedCompiles: snapshot.FailedCompiles,
			ActiveSessions: snapshot.ActiveSessions,
			UptimeSeconds:  mr.metrics.UptimeSeconds(),
		},
	}

	c.JSON(http.StatusOK, report)
}
