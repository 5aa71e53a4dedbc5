package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the console's Prometheus collectors.
	Registry = prometheus.NewRegistry()

	backendCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "funding_console",
			Subsystem: "backend",
			Name:      "requests_total",
			Help:      "Requests issued to the funding backend.",
		},
		[]string{"method", "route", "status"},
	)

	backendLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "funding_console",
			Subsystem: "backend",
			Name:      "request_duration_seconds",
			Help:      "Duration of requests issued to the funding backend.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~10s
		},
		[]string{"method", "route"},
	)

	sessionTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "funding_console",
			Subsystem: "session",
			Name:      "transitions_total",
			Help:      "Session login/logout transitions.",
		},
		[]string{"to"},
	)

	uploadedGuidelines = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "funding_console",
			Subsystem: "programs",
			Name:      "guidelines_uploaded_total",
			Help:      "Guideline files sent to the backend.",
		},
	)
)

func init() {
	Registry.MustRegister(backendCalls, backendLatency, sessionTransitions, uploadedGuidelines)
}

// RecordBackendCall records one backend round trip. status is 0 for
// transport failures.
func RecordBackendCall(method, route string, status int, d time.Duration) {
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	backendCalls.WithLabelValues(method, route, label).Inc()
	backendLatency.WithLabelValues(method, route).Observe(d.Seconds())
}

// RecordSessionTransition counts a session becoming authenticated or not.
func RecordSessionTransition(authenticated bool) {
	to := "anonymous"
	if authenticated {
		to = "authenticated"
	}
	sessionTransitions.WithLabelValues(to).Inc()
}

// RecordGuidelineUpload counts files sent in a guideline upload.
func RecordGuidelineUpload(files int) {
	uploadedGuidelines.Add(float64(files))
}

// Handler exposes the registry.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
