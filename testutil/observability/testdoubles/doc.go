// Package testdoubles provides test doubles (spies) for the account observability interfaces.
//
// This package contains spy implementations used by the account engines and the simulator:
//   - MetricsCollectorSpy: captures metrics recording calls for verification
//   - TracingCollectorSpy: captures tracing spans and their final status
//   - ContextualLoggerSpy: captures structured logging with context
//
// These test doubles enable testing of observability instrumentation
// without requiring actual telemetry backends.
package testdoubles
