package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/aselo_helpline/backend/internal/metrics"
)

// Metrics counts requests per route pattern. Unmatched paths share one label.
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.IncHTTPRequest(c.Request.Method, route, strconv.Itoa(c.Writer.Status()))
	}
}
