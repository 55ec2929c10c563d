package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/formlab/playground/internal/shared/id"
)

// RequestIDHeader carries the correlation id in both directions.
const RequestIDHeader = "X-Request-ID"

// RequestID tags every request with a sortable correlation id. An id
// supplied by the caller is kept so the docs frontend can correlate
// its own traces with server logs. Downstream code reads the id back
// with id.RequestIDFromContext when emitting log fields.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader(RequestIDHeader)
		if reqID == "" {
			reqID = string(id.NewRequestID())
		}

		c.Request = c.Request.WithContext(id.WithRequestID(c.Request.Context(), id.RequestID(reqID)))
		c.Header(RequestIDHeader, reqID)

		c.Next()
	}
}
