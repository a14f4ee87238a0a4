package oteladapters

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/AntonStoeckl/concurrent-banking-go/account"
)

// TracingCollector implements account.TracingCollector on an OpenTelemetry tracer.
type TracingCollector struct {
	tracer trace.Tracer
}

// NewTracingCollector creates a collector that starts spans on tracer.
func NewTracingCollector(tracer trace.Tracer) *TracingCollector {
	return &TracingCollector{tracer: tracer}
}

// StartSpan starts a span carrying attrs and returns the context holding it.
func (t *TracingCollector) StartSpan(ctx context.Context, name string, attrs map[string]string) (context.Context, account.SpanContext) {
	spanCtx, span := t.tracer.Start(ctx, name, trace.WithAttributes(toAttributes(attrs)...))

	return spanCtx, &SpanContext{span: span}
}

// FinishSpan adds attrs, sets the status and ends the span. Spans from other collectors are ignored.
func (t *TracingCollector) FinishSpan(spanCtx account.SpanContext, status string, attrs map[string]string) {
	otelSpanCtx, ok := spanCtx.(*SpanContext)
	if !ok {
		return
	}

	otelSpanCtx.span.SetAttributes(toAttributes(attrs)...)
	otelSpanCtx.SetStatus(status)
	otelSpanCtx.span.End()
}

var _ account.TracingCollector = (*TracingCollector)(nil)

// SpanContext implements account.SpanContext by wrapping an OpenTelemetry span.
type SpanContext struct {
	span trace.Span
}

// SetStatus maps status to an OpenTelemetry status code.
// It understands account.StatusSuccess, account.StatusError and the labels of account.ErrorType.
// Other values are recorded as a "status" attribute.
func (s *SpanContext) SetStatus(status string) {
	switch status {
	case account.StatusSuccess:
		s.span.SetStatus(codes.Ok, "")
	case account.StatusError:
		s.span.SetStatus(codes.Error, "operation failed")
	case "timeout":
		s.span.SetStatus(codes.Error, "account call timed out")
	case "context_canceled", "context_deadline_exceeded":
		s.span.SetStatus(codes.Error, "operation canceled")
	case "stopped":
		s.span.SetStatus(codes.Error, "account stopped")
	case "compensation_failed":
		s.span.SetStatus(codes.Error, "transfer compensation failed")
	default:
		s.span.SetAttributes(attribute.String("status", status))
	}
}

// AddAttribute sets a string attribute on the span.
func (s *SpanContext) AddAttribute(key, value string) {
	s.span.SetAttributes(attribute.String(key, value))
}

var _ account.SpanContext = (*SpanContext)(nil)
