package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/gradebridge-backend/internal/observability"
)

// unmatchedRoute labels requests no route claimed so arbitrary paths cannot grow label cardinality.
const unmatchedRoute = "unmatched"

// Paths scraped by infrastructure are not counted as API traffic.
var unmeteredPaths = map[string]bool{
	"/metrics":     true,
	"/healthcheck": true,
	"/readyz":      true,
}

// Metrics records API request counts, latency and in-flight gauges keyed by route template.
// A nil m returns a passthrough handler.
func Metrics(m *observability.Metrics) gin.HandlerFunc {
	if m == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		if unmeteredPaths[c.Request.URL.Path] {
			c.Next()
			return
		}
		start := time.Now()
		m.ApiInflightInc()
		defer m.ApiInflightDec()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		method := c.Request.Method
		if method == "" {
			method = http.MethodGet
		}
		m.ObserveAPI(method, route, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}
