// Package observability exposes Prometheus metrics for the HTTP layer and
// the SSE broker.
package observability

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dreistrom",
		Name:      "http_requests_total",
		Help:      "Requests handled, by method, route and status.",
	}, []string{"method", "route", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "dreistrom",
		Name:      "http_request_duration_seconds",
		Help:      "Request latency, by method and route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	sseStreams = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "dreistrom",
		Name:      "sse_open_streams",
		Help:      "Currently open event streams.",
	})
)

// Metrics returns a Gin middleware recording request counts and latency.
// The route template is used instead of the raw path so IDs do not blow up
// the label cardinality.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		requestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		requestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// StreamOpened records a new SSE connection.
func StreamOpened() { sseStreams.Inc() }

// StreamClosed records a finished SSE connection.
func StreamClosed() { sseStreams.Dec() }

// Handler serves the metrics endpoint.
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
