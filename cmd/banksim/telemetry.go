package main

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/propagation"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/AntonStoeckl/concurrent-banking-go/account"
	"github.com/AntonStoeckl/concurrent-banking-go/oteladapters"
)

const (
	serviceName    = "banksim"
	serviceVersion = "dev"
)

// telemetry holds the collectors handed to the runner and the function flushing them.
type telemetry struct {
	Logger   account.ContextualLogger
	Metrics  account.MetricsCollector
	Tracing  account.TracingCollector
	Shutdown func(context.Context) error
}

// setupTelemetry logs to stderr when no endpoint is configured. With an endpoint, traces,
// metrics and logs are exported over OTLP gRPC and logs carry trace correlation.
func setupTelemetry(ctx context.Context, endpoint string, level slog.Level) (telemetry, error) {
	if endpoint == "" {
		handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})

		return telemetry{
			Logger:   oteladapters.NewSlogBridgeLoggerWithHandler(handler),
			Shutdown: func(context.Context) error { return nil },
		}, nil
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(serviceName),
			semconv.ServiceVersionKey.String(serviceVersion),
		),
	)
	if err != nil {
		return telemetry{}, err
	}

	traceExporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return telemetry{}, err
	}

	metricExporter, err := otlpmetricgrpc.New(ctx,
		otlpmetricgrpc.WithEndpoint(endpoint),
		otlpmetricgrpc.WithInsecure(),
	)
	if err != nil {
		return telemetry{}, errors.Join(err, traceExporter.Shutdown(ctx))
	}

	logExporter, err := otlploggrpc.New(ctx,
		otlploggrpc.WithEndpoint(endpoint),
		otlploggrpc.WithInsecure(),
	)
	if err != nil {
		return telemetry{}, errors.Join(err, traceExporter.Shutdown(ctx), metricExporter.Shutdown(ctx))
	}

	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExporter),
		sdktrace.WithResource(res),
	)
	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter)),
		sdkmetric.WithResource(res),
	)
	loggerProvider := sdklog.NewLoggerProvider(
		sdklog.WithProcessor(sdklog.NewBatchProcessor(logExporter)),
		sdklog.WithResource(res),
	)

	otel.SetTracerProvider(tracerProvider)
	otel.SetMeterProvider(meterProvider)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	global.SetLoggerProvider(loggerProvider)

	return telemetry{
		Logger:  oteladapters.NewSlogBridgeLogger(serviceName),
		Metrics: oteladapters.NewMetricsCollector(otel.Meter(serviceName)),
		Tracing: oteladapters.NewTracingCollector(otel.Tracer(serviceName)),
		Shutdown: func(ctx context.Context) error {
			return errors.Join(
				tracerProvider.Shutdown(ctx),
				meterProvider.Shutdown(ctx),
				loggerProvider.Shutdown(ctx),
			)
		},
	}, nil
}
