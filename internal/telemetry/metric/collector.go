package metric

import "github.com/prometheus/client_golang/prometheus"

// SessionCollector reports the current session state as a gauge:
// 0 initializing, 1 unauthenticated, 2 authenticated.
type SessionCollector struct {
	desc  *prometheus.Desc
	state func() int
}

// NewSessionCollector creates a collector reading state on every scrape.
func NewSessionCollector(state func() int) *SessionCollector {
	return &SessionCollector{
		desc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "session", "state"),
			"Current session state (0 initializing, 1 unauthenticated, 2 authenticated).",
			nil, nil,
		),
		state: state,
	}
}

// Describe implements prometheus.Collector.
func (c *SessionCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.desc
}

// Collect implements prometheus.Collector.
func (c *SessionCollector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.desc, prometheus.GaugeValue, float64(c.state()))
}
