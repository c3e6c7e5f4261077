package stats

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// RequestMetrics counts API requests by method, transport and status.
// It implements api.RequestObserver.
type RequestMetrics struct {
	requests  *prometheus.CounterVec
	durations *prometheus.HistogramVec
}

func NewRequestMetrics(reg prometheus.Registerer) *RequestMetrics {
	factory := promauto.With(reg)
	return &RequestMetrics{
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "osmapi",
			Name:      "requests_total",
			Help:      "OSM API requests, labeled by method, transport and status code (0 without response)",
		}, []string{"method", "transport", "status"}),
		durations: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "osmapi",
			Name:      "request_duration_seconds",
			Help:      "Duration of OSM API requests",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "transport"}),
	}
}

func (m *RequestMetrics) ObserveRequest(method, transport string, status int, d time.Duration) {
	m.requests.WithLabelValues(method, transport, strconv.Itoa(status)).Inc()
	m.durations.WithLabelValues(method, transport).Observe(d.Seconds())
}
