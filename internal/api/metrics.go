package api

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics tracks client-side request counts and latencies
type Metrics struct {
	requests      *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	forcedLogouts prometheus.Counter
}

// NewMetrics creates client metrics and registers them on reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "risus_client_requests_total",
			Help: "Tracks the number of backend requests by method and status code.",
		}, []string{"method", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "risus_client_request_duration_seconds",
			Help:    "Tracks the latencies for backend requests.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
		forcedLogouts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "risus_client_forced_logouts_total",
			Help: "Tracks sessions cleared because the backend answered 401.",
		}),
	}
	reg.MustRegister(m.requests, m.duration, m.forcedLogouts)
	return m
}

func (m *Metrics) observe(method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	code := "error"
	if status > 0 {
		code = strconv.Itoa(status)
	}
	m.requests.WithLabelValues(method, code).Inc()
	m.duration.WithLabelValues(method).Observe(elapsed.Seconds())
}

func (m *Metrics) forcedLogout() {
	if m == nil {
		return
	}
	m.forcedLogouts.Inc()
}
