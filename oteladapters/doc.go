// Package oteladapters implements the account observability interfaces on OpenTelemetry.
//
// MetricsCollector maps durations to histograms, counters to counters and values to gauges.
// TracingCollector wraps a trace.Tracer. SlogBridgeLogger and OTelLogger implement ContextualLogger,
// the former through the otelslog bridge so that log records carry the active trace and span IDs.
//
// Every adapter is safe for concurrent use; the simulator calls them from all of its workers.
package oteladapters
