// Package tracer provides OpenTelemetry tracing for the cricket client.
//
// Every backend call runs inside a client span named after its endpoint.
// When tracing is disabled the global no-op provider is used, so spans
// cost nothing. When enabled, finished spans are written as JSON through
// the stdout exporter.
package tracer
