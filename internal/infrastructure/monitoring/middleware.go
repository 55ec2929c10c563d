package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// Middleware creates a Gin middleware for metrics collection
func Middleware(metrics *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		method := c.Request.Method

		reqSize := c.Request.ContentLength
		if reqSize < 0 {
			reqSize = 0
		}

		c.Next()

		duration := time.Since(start)
		status := strconv.Itoa(c.Writer.Status())
		respSize := int64(c.Writer.Size())

		metrics.RecordHTTPRequest(method, path, status, duration, reqSize, respSize)
	}
}

// Timer measures operation duration
type Timer struct {
	start   time.Time
	metrics *Metrics
	demo    string
}

// NewCompileTimer starts timing one compile attempt.
func NewCompileTimer(metrics *Metrics, demo string) *Timer {
	return &Timer{
		start:   time.Now(),
		metrics: metrics,
		demo:    demo,
	}
}

// Stop stops the timer and records the attempt.
func (t *Timer) Stop(status string) {
	t.metrics.RecordCompile(t.demo, status, time.Since(t.start))
}
