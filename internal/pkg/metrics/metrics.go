package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hongnam",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "hongnam",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "path"})

	httpResponseSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "hongnam",
		Subsystem: "http",
		Name:      "response_size_bytes",
		Help:      "HTTP response size in bytes",
		Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
	}, []string{"method", "path"})

	// Restroom metrics
	CheckIns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hongnam",
		Subsystem: "restroom",
		Name:      "checkins_total",
		Help:      "Total check-ins by reported status and cleanliness",
	}, []string{"status", "cleanliness"})

	RestroomsAdded = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "hongnam",
		Subsystem: "restroom",
		Name:      "added_total",
		Help:      "Total restrooms added by users",
	})

	ProblemReports = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "hongnam",
		Subsystem: "restroom",
		Name:      "problem_reports_total",
		Help:      "Total restrooms flagged for review by users",
	})

	SubmissionsRejected = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "hongnam",
		Subsystem: "restroom",
		Name:      "submissions_rejected_total",
		Help:      "Total add submissions rejected by validation",
	})

	EmergencyLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hongnam",
		Subsystem: "session",
		Name:      "emergency_lookups_total",
		Help:      "Total emergency lookups by outcome",
	}, []string{"result"})

	PermissionDenials = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hongnam",
		Subsystem: "session",
		Name:      "permission_denials_total",
		Help:      "Total device capability permission denials",
	}, []string{"capability"})

	EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hongnam",
		Subsystem: "events",
		Name:      "published_total",
		Help:      "Total events published to the message bus",
	}, []string{"subject", "result"})

	ActiveWebSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "hongnam",
		Subsystem: "ws",
		Name:      "active_connections",
		Help:      "Current number of active WebSocket connections",
	})

	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hongnam",
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Total cache hits",
	}, []string{"operation"})

	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hongnam",
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Total cache misses",
	}, []string{"operation"})
)

// Middleware records request metrics. Paths are labelled with the route
// pattern so /v1/restrooms/:id stays a single series.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Response().StatusCode())
		path := c.Route().Path
		if path == "" {
			path = c.Path()
		}
		method := c.Method()

		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(duration)
		httpResponseSize.WithLabelValues(method, path).Observe(float64(len(c.Response().Body())))

		return err
	}
}

// Handler returns a Fiber handler serving Prometheus /metrics endpoint.
func Handler() fiber.Handler {
	handler := promhttp.Handler()
	return func(c *fiber.Ctx) error {
		fasthttpadaptor.NewFastHTTPHandler(handler)(c.Context())
		return nil
	}
}
