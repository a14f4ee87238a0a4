package oteladapters_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/log/embedded"
	"go.opentelemetry.io/otel/log/noop"
	"go.opentelemetry.io/otel/sdk/trace"

	"github.com/AntonStoeckl/concurrent-banking-go/money"
	"github.com/AntonStoeckl/concurrent-banking-go/oteladapters"
)

type recordingLogger struct {
	embedded.Logger

	mu      sync.Mutex
	records []log.Record
}

func (l *recordingLogger) Emit(_ context.Context, record log.Record) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.records = append(l.records, record.Clone())
}

func (l *recordingLogger) Enabled(context.Context, log.EnabledParameters) bool {
	return true
}

func attributesOf(record log.Record) map[string]log.Value {
	attrs := make(map[string]log.Value)
	record.WalkAttributes(func(kv log.KeyValue) bool {
		attrs[kv.Key] = kv.Value
		return true
	})

	return attrs
}

func Test_SlogBridgeLogger_AllLevels(t *testing.T) {
	// setup
	var buf bytes.Buffer
	handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	logger := oteladapters.NewSlogBridgeLoggerWithHandler(handler)
	ctx := context.Background()

	// act
	logger.DebugContext(ctx, "actor call completed", "operation", "deposit")
	logger.InfoContext(ctx, "simulation run completed", "succeeded", 42)
	logger.WarnContext(ctx, "many actor accounts requested", "accounts", 20000)
	logger.ErrorContext(ctx, "transfer compensation failed", "ratio", 0.5, "conserved", false)

	// assert
	output := buf.String()
	assert.Contains(t, output, `"level":"DEBUG"`)
	assert.Contains(t, output, `"level":"INFO"`)
	assert.Contains(t, output, `"level":"WARN"`)
	assert.Contains(t, output, `"level":"ERROR"`)
	assert.Contains(t, output, `"operation":"deposit"`)
	assert.Contains(t, output, `"succeeded":42`)
	assert.Contains(t, output, `"ratio":0.5`)
	assert.Contains(t, output, `"conserved":false`)
}

func Test_SlogBridgeLogger_OnGlobalProvider(t *testing.T) {
	// setup
	tracerProvider := trace.NewTracerProvider()
	defer func() { _ = tracerProvider.Shutdown(context.Background()) }()

	ctx, span := tracerProvider.Tracer("test").Start(context.Background(), "simulator.run")
	defer span.End()

	logger := oteladapters.NewSlogBridgeLogger("banksim")

	// act & assert
	assert.NotPanics(t, func() {
		logger.DebugContext(ctx, "debug message", "key", "value")
		logger.InfoContext(ctx, "info message", "key", "value")
		logger.WarnContext(ctx, "warn message", "key", "value")
		logger.ErrorContext(ctx, "error message", "key", "value")
	})
}

func Test_OTelLogger_EmitsTypedAttributes(t *testing.T) {
	// setup
	recorder := &recordingLogger{}
	logger := oteladapters.NewOTelLogger(recorder)

	// act
	logger.WarnContext(context.Background(), "transfer compensation failed",
		"from", "ACC-0001",
		"attempts", 3,
		"drift", money.MustParse("-5.00"),
		"latency", 1500*time.Millisecond,
		"conserved", false,
		"error", errors.New("account stopped"),
	)

	// assert
	require.Len(t, recorder.records, 1)
	record := recorder.records[0]
	assert.Equal(t, log.SeverityWarn, record.Severity())
	assert.Equal(t, "transfer compensation failed", record.Body().AsString())

	attrs := attributesOf(record)
	assert.Equal(t, "ACC-0001", attrs["from"].AsString())
	assert.Equal(t, int64(3), attrs["attempts"].AsInt64())
	assert.Equal(t, "-5.00", attrs["drift"].AsString())
	assert.InDelta(t, 1.5, attrs["latency"].AsFloat64(), 0.0001)
	assert.False(t, attrs["conserved"].AsBool())
	assert.Equal(t, "account stopped", attrs["error"].AsString())
}

func Test_OTelLogger_SeverityPerLevel(t *testing.T) {
	recorder := &recordingLogger{}
	logger := oteladapters.NewOTelLogger(recorder)
	ctx := context.Background()

	logger.DebugContext(ctx, "debug")
	logger.InfoContext(ctx, "info")
	logger.WarnContext(ctx, "warn")
	logger.ErrorContext(ctx, "error")

	require.Len(t, recorder.records, 4)
	assert.Equal(t, log.SeverityDebug, recorder.records[0].Severity())
	assert.Equal(t, log.SeverityInfo, recorder.records[1].Severity())
	assert.Equal(t, log.SeverityWarn, recorder.records[2].Severity())
	assert.Equal(t, log.SeverityError, recorder.records[3].Severity())
}

func Test_OTelLogger_DropsMalformedArguments(t *testing.T) {
	recorder := &recordingLogger{}
	logger := oteladapters.NewOTelLogger(recorder)

	logger.InfoContext(context.Background(), "message", "key1", "value1", 42, "ignored", "dangling")

	require.Len(t, recorder.records, 1)
	attrs := attributesOf(recorder.records[0])
	assert.Len(t, attrs, 1)
	assert.Equal(t, "value1", attrs["key1"].AsString())
}

func Test_OTelLogger_OnNoopProvider(t *testing.T) {
	logger := oteladapters.NewOTelLogger(noop.NewLoggerProvider().Logger("test"))

	assert.NotPanics(t, func() {
		logger.InfoContext(context.Background(), "simple message")
	})
}
