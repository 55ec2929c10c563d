package monitoring

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotTracksCompiles(t *testing.T) {
	m := NewMetrics()

	m.RecordCompile("customer-form", "success", 10*time.Millisecond)
	m.RecordCompile("customer-form", "error", 20*time.Millisecond)

	snap := m.GetSnapshot()
	assert.Equal(t, int64(2), snap.TotalCompiles)
	assert.Equal(t, int64(1), snap.FailedCompiles)
	assert.Len(t, snap.RecentDurations, 2)
}

func TestSnapshotIsACopy(t *testing.T) {
	m := NewMetrics()
	m.RecordCompile("d", "success", time.Millisecond)

	snap := m.GetSnapshot()
	snap.RecentDurations[0] = 999

	assert.NotEqual(t, 999.0, m.GetSnapshot().RecentDurations[0])
}

func TestDurationWindowBounded(t *testing.T) {
	m := NewMetrics()
	for i := 0; i < recentDurationWindow+50; i++ {
		m.RecordCompile("d", "success", time.Millisecond)
	}

	snap := m.GetSnapshot()
	assert.Len(t, snap.RecentDurations, recentDurationWindow)
}

func TestSessionGauges(t *testing.T) {
	m := NewMetrics()

	m.RecordSessionOpened()
	m.RecordSessionOpened()
	m.RecordSessionClosed()

	assert.Equal(t, int64(1), m.GetSnapshot().ActiveSessions)
}

func TestCompileDurationStats(t *testing.T) {
	m := NewMetrics()
	for i := 1; i <= 100; i++ {
		m.RecordCompile("d", "success", time.Duration(i)*time.Millisecond)
	}

	stats := m.CompileDurationStats()
	assert.Equal(t, 100, stats.Count)
	assert.InDelta(t, 0.0505, stats.Mean, 0.001)
	assert.InDelta(t, 0.050, stats.P50, 0.002)
	assert.InDelta(t, 0.090, stats.P90, 0.002)
	assert.InDelta(t, 0.099, stats.P99, 0.002)
}

func TestCompileDurationStatsEmpty(t *testing.T) {
	m := NewMetrics()
	assert.Equal(t, DurationStats{}, m.CompileDurationStats())
}

func TestPrometheusHandlerExposesMetrics(t *testing.T) {
	m := NewMetrics()
	m.RecordCompile("customer-form", "success", time.Millisecond)

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "playground_compiles_total")
}

func TestPoolGaugeReadsAtScrapeTime(t *testing.T) {
	m := NewMetrics()

	available := 3
	m.WatchPoolAvailable(func() int { return available })

	scrape := func() string {
		w := httptest.NewRecorder()
		m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		require.Equal(t, http.StatusOK, w.Code)
		return w.Body.String()
	}

	assert.Contains(t, scrape(), "playground_sandbox_pool_available 3")

	available = 1
	assert.Contains(t, scrape(), "playground_sandbox_pool_available 1")
}

func TestGinMiddlewareRecordsRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewMetrics()

	router := gin.New()
	router.Use(Middleware(m))
	router.GET("/demos", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/demos", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(1), m.GetSnapshot().TotalRequests)
}
