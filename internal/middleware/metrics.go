package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "palengke_http_requests_total",
		Help: "HTTP requests served, by method, route and status.",
	}, []string{"method", "route", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "palengke_http_request_duration_seconds",
		Help:    "HTTP request latency, by method and route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
)

// Metrics records per-route request counts and latencies. Routes are
// labelled by the registered pattern, not the raw path, to keep the
// cardinality bounded.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		timer := prometheus.NewTimer(httpRequestDuration.WithLabelValues(c.Request.Method, route))
		c.Next()
		timer.ObserveDuration()

		httpRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
	}
}
