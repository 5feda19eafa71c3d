package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Result labels.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

var (
	// Registry holds the foxtip collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "foxtip",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "foxtip",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "foxtip",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "route"},
	)

	tipGenerations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "foxtip",
			Subsystem: "tips",
			Name:      "generations_total",
			Help:      "Total number of tip generation runs.",
		},
		[]string{"result"},
	)

	tipGenerationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "foxtip",
			Subsystem: "tips",
			Name:      "generation_duration_seconds",
			Help:      "Duration of tip generation runs.",
			Buckets:   prometheus.ExponentialBuckets(0.25, 2, 10), // 250ms to ~2m
		},
	)

	tipsPublished = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "foxtip",
			Subsystem: "tips",
			Name:      "published_total",
			Help:      "Total number of published tips.",
		},
	)

	chatCompletions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "foxtip",
			Subsystem: "chat",
			Name:      "completions_total",
			Help:      "Total number of admin chat completions.",
		},
		[]string{"result"},
	)

	logins = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "foxtip",
			Subsystem: "auth",
			Name:      "logins_total",
			Help:      "Total number of login attempts.",
		},
		[]string{"result"},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		tipGenerations,
		tipGenerationDuration,
		tipsPublished,
		chatCompletions,
		logins,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// Middleware records request count and latency per matched route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}

		start := time.Now()
		httpInFlight.Inc()
		defer httpInFlight.Dec()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// RecordTipGeneration records the outcome of one generation run.
func RecordTipGeneration(success bool, duration time.Duration) {
	tipGenerations.WithLabelValues(result(success)).Inc()
	tipGenerationDuration.Observe(duration.Seconds())
}

// RecordTipPublished counts a publication.
func RecordTipPublished() {
	tipsPublished.Inc()
}

// RecordChatCompletion records the outcome of an admin chat message.
func RecordChatCompletion(success bool) {
	chatCompletions.WithLabelValues(result(success)).Inc()
}

// RecordLogin records the outcome of a login attempt.
func RecordLogin(success bool) {
	logins.WithLabelValues(result(success)).Inc()
}

func result(success bool) string {
	if success {
		return ResultSuccess
	}
	return ResultFailure
}
