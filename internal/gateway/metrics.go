package gateway

import (
	"regexp"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var numericSegment = regexp.MustCompile(`/\d+(/|$)`)

// Metrics counts and times gateway calls.
type Metrics struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

// NewMetrics registers the gateway collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jtrack_gateway_requests_total",
				Help: "Backend calls by method, path, and status code (0 = no response)",
			},
			[]string{"method", "path", "code"},
		),
		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "jtrack_gateway_request_duration_seconds",
				Help:    "Backend call latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.requests, m.latency)
	}
	return m
}

func (m *Metrics) observe(method, path string, status int, elapsed time.Duration) {
	route := routeLabel(path)
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.latency.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// routeLabel collapses numeric path segments so ids do not become labels.
func routeLabel(path string) string {
	return numericSegment.ReplaceAllString(path, "/:id$1")
}
