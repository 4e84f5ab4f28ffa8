package metric

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "cricket"

// Registry holds all client metrics. A nil *Registry is valid and
// records nothing.
type Registry struct {
	reg *prometheus.Registry

	// Request metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Session metrics
	SessionTransitions *prometheus.CounterVec
	StoreErrors        *prometheus.CounterVec
}

// NewRegistry creates a new metrics registry with client metrics and
// the Go runtime collector registered.
func NewRegistry() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "client",
			Name:      "requests_total",
			Help:      "Backend requests by endpoint and status code. Code is \"error\" when no response arrived.",
		}, []string{"endpoint", "code"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "client",
			Name:      "request_duration_seconds",
			Help:      "Backend request latency by endpoint.",
			Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}, []string{"endpoint"}),
		SessionTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "transitions_total",
			Help:      "Session transitions by event and outcome.",
		}, []string{"event", "outcome"}),
		StoreErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "store_errors_total",
			Help:      "Session store failures by operation.",
		}, []string{"op"}),
	}

	r.reg.MustRegister(
		r.RequestsTotal,
		r.RequestDuration,
		r.SessionTransitions,
		r.StoreErrors,
		collectors.NewGoCollector(),
	)
	return r
}

// ObserveRequest records one backend call. status 0 means no response.
func (r *Registry) ObserveRequest(endpoint string, status int, d time.Duration) {
	if r == nil {
		return
	}
	code := "error"
	if status > 0 {
		code = strconv.Itoa(status)
	}
	r.RequestsTotal.WithLabelValues(endpoint, code).Inc()
	r.RequestDuration.WithLabelValues(endpoint).Observe(d.Seconds())
}

// ObserveSession records a session transition.
func (r *Registry) ObserveSession(event string, err error) {
	if r == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	r.SessionTransitions.WithLabelValues(event, outcome).Inc()
}

// ObserveStoreError records a session store failure.
func (r *Registry) ObserveStoreError(op string) {
	if r == nil {
		return
	}
	r.StoreErrors.WithLabelValues(op).Inc()
}

// Register adds an extra collector.
func (r *Registry) Register(c prometheus.Collector) error {
	if r == nil {
		return nil
	}
	return r.reg.Register(c)
}

// Gatherer exposes the underlying registry.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}

// WriteTextfile writes all metrics to path in the text exposition
// format, atomically.
func (r *Registry) WriteTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, r.reg)
}
