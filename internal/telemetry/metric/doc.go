// Package metric provides Prometheus metrics for the cricket client.
//
// This package implements metrics collection and exposition:
//
//   - prometheus.go: registry, request and session metrics
//   - collector.go: session state collector
//
// Metrics include:
//
//   - Backend request counts and latency histograms per endpoint
//   - Session transitions (restore, sign in, sign out)
//   - Session store failures
//
// A CLI process is short lived, so metrics are exported to a
// node_exporter textfile on exit instead of being scraped.
package metric
