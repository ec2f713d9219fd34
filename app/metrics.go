package app

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "lab_http_requests_total",
		Help: "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})

	httpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "lab_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	// TransitionsTotal counts borrowing lifecycle actions by action and outcome.
	TransitionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "lab_borrowing_transitions_total",
		Help: "Borrowing status transitions by action and result.",
	}, []string{"action", "result"})
)

func RegisterMetrics(r *gin.Engine) {
	prometheus.MustRegister(httpRequests, httpDuration, TransitionsTotal)

	r.Use(func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}
