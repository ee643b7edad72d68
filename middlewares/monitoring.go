package middlewares

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "optimarket_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "optimarket_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	redemptionOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "optimarket_redemption_operations_total",
			Help: "Total number of loyalty redemption operations",
		},
		[]string{"operation", "status"},
	)

	orderOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "optimarket_order_operations_total",
			Help: "Total number of order operations",
		},
		[]string{"operation", "status"},
	)

	campaignMessages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "optimarket_campaign_messages_total",
			Help: "Total number of campaign messages enqueued",
		},
		[]string{"channel"},
	)
)

// PrometheusMiddleware collects request count and latency metrics.
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		httpRequestsTotal.WithLabelValues(
			c.Request.Method,
			path,
			status,
		).Inc()

		httpRequestDuration.WithLabelValues(
			c.Request.Method,
			path,
			status,
		).Observe(duration)
	}
}

// RecordRedemptionOperation records a redemption operation outcome.
func RecordRedemptionOperation(operation string, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	redemptionOperations.WithLabelValues(operation, status).Inc()
}

// RecordOrderOperation records an order operation outcome.
func RecordOrderOperation(operation string, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	orderOperations.WithLabelValues(operation, status).Inc()
}

// RecordCampaignMessage counts one enqueued campaign delivery.
func RecordCampaignMessage(channel string) {
	campaignMessages.WithLabelValues(channel).Inc()
}
