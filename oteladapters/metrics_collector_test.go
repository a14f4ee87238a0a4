package oteladapters_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/AntonStoeckl/concurrent-banking-go/oteladapters"
)

func newMeter() (metric.Meter, *sdkmetric.ManualReader) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	return provider.Meter("test"), reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()

	var resourceMetrics metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &resourceMetrics))

	return resourceMetrics
}

func Test_MetricsCollector_RecordDuration(t *testing.T) {
	// setup
	meter, reader := newMeter()
	collector := oteladapters.NewMetricsCollector(meter)

	// act
	collector.RecordDuration("actor_call_duration_seconds", 150*time.Millisecond, map[string]string{
		"operation": "deposit",
		"status":    "success",
	})

	// assert
	histogram := findHistogramMetric(t, collect(t, reader), "actor_call_duration_seconds")
	require.Len(t, histogram.DataPoints, 1)

	dataPoint := histogram.DataPoints[0]
	assert.Equal(t, uint64(1), dataPoint.Count)
	assert.InDelta(t, 0.15, dataPoint.Sum, 0.001)

	expectedAttrs := attribute.NewSet(
		attribute.String("operation", "deposit"),
		attribute.String("status", "success"),
	)
	assert.True(t, dataPoint.Attributes.Equals(&expectedAttrs))
}

func Test_MetricsCollector_IncrementCounter(t *testing.T) {
	// setup
	meter, reader := newMeter()
	collector := oteladapters.NewMetricsCollector(meter)
	labels := map[string]string{"model": "locking", "operation": "transfer", "status": "error"}

	// act
	for range 3 {
		collector.IncrementCounter("account_operations_total", labels)
	}

	// assert
	counter := findCounterMetric(t, collect(t, reader), "account_operations_total")
	require.Len(t, counter.DataPoints, 1)
	assert.Equal(t, int64(3), counter.DataPoints[0].Value)
}

func Test_MetricsCollector_RecordValue_KeepsLastValue(t *testing.T) {
	// setup
	meter, reader := newMeter()
	collector := oteladapters.NewMetricsCollector(meter)
	labels := map[string]string{"account": "ACC-0001"}

	// act
	collector.RecordValue("actor_mailbox_depth", 12, labels)
	collector.RecordValue("actor_mailbox_depth", 3, labels)

	// assert
	gauge := findGaugeMetric(t, collect(t, reader), "actor_mailbox_depth")
	require.Len(t, gauge.DataPoints, 1)
	assert.Equal(t, 3.0, gauge.DataPoints[0].Value)
}

func Test_MetricsCollector_ContextualMethods(t *testing.T) {
	// setup
	ctx := context.Background()
	meter, reader := newMeter()
	collector := oteladapters.NewMetricsCollector(meter)

	// act
	collector.RecordDurationContext(ctx, "simulator_operation_duration_seconds", 2*time.Millisecond, nil)
	collector.IncrementCounterContext(ctx, "simulator_balance_retries_total", nil)
	collector.RecordValueContext(ctx, "actor_mailbox_depth", 1, nil)

	// assert
	resourceMetrics := collect(t, reader)
	assert.Len(t, findHistogramMetric(t, resourceMetrics, "simulator_operation_duration_seconds").DataPoints, 1)
	assert.Len(t, findCounterMetric(t, resourceMetrics, "simulator_balance_retries_total").DataPoints, 1)
	assert.Len(t, findGaugeMetric(t, resourceMetrics, "actor_mailbox_depth").DataPoints, 1)
}

func Test_MetricsCollector_IsSafeForConcurrentUse(t *testing.T) {
	// setup
	meter, reader := newMeter()
	collector := oteladapters.NewMetricsCollector(meter)
	wg := sync.WaitGroup{}

	// act
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				collector.IncrementCounter("account_operations_total", map[string]string{"model": "actor"})
				collector.RecordDuration("actor_call_duration_seconds", time.Microsecond, nil)
			}
		}()
	}
	wg.Wait()

	// assert
	counter := findCounterMetric(t, collect(t, reader), "account_operations_total")
	require.Len(t, counter.DataPoints, 1)
	assert.Equal(t, int64(1600), counter.DataPoints[0].Value)
}

func Test_MetricsCollector_InstrumentCreationErrors(t *testing.T) {
	// setup
	meter, _ := newMeter()
	collector := oteladapters.NewMetricsCollector(&errorInjectingMeter{Meter: meter})

	// act & assert
	assert.NotPanics(t, func() {
		collector.RecordDuration("error_histogram", 100*time.Millisecond, nil)
		collector.IncrementCounter("error_counter", nil)
		collector.RecordValue("error_gauge", 42.0, nil)
	})
}

// errorInjectingMeter fails instrument creation for names starting with "error_".
type errorInjectingMeter struct {
	metric.Meter
}

func (m *errorInjectingMeter) Float64Histogram(name string, options ...metric.Float64HistogramOption) (metric.Float64Histogram, error) {
	if name == "error_histogram" {
		return nil, errors.New("histogram creation failed")
	}

	return m.Meter.Float64Histogram(name, options...)
}

func (m *errorInjectingMeter) Int64Counter(name string, options ...metric.Int64CounterOption) (metric.Int64Counter, error) {
	if name == "error_counter" {
		return nil, errors.New("counter creation failed")
	}

	return m.Meter.Int64Counter(name, options...)
}

func (m *errorInjectingMeter) Float64Gauge(name string, options ...metric.Float64GaugeOption) (metric.Float64Gauge, error) {
	if name == "error_gauge" {
		return nil, errors.New("gauge creation failed")
	}

	return m.Meter.Float64Gauge(name, options...)
}

func findMetric(t *testing.T, resourceMetrics metricdata.ResourceMetrics, name string) metricdata.Aggregation {
	t.Helper()

	for _, scopeMetrics := range resourceMetrics.ScopeMetrics {
		for _, m := range scopeMetrics.Metrics {
			if m.Name == name {
				return m.Data
			}
		}
	}

	t.Fatalf("metric %s not found", name)

	return nil
}

func findHistogramMetric(t *testing.T, resourceMetrics metricdata.ResourceMetrics, name string) metricdata.Histogram[float64] {
	t.Helper()

	histogram, ok := findMetric(t, resourceMetrics, name).(metricdata.Histogram[float64])
	require.True(t, ok, "metric %s is not a float64 histogram", name)

	return histogram
}

func findCounterMetric(t *testing.T, resourceMetrics metricdata.ResourceMetrics, name string) metricdata.Sum[int64] {
	t.Helper()

	counter, ok := findMetric(t, resourceMetrics, name).(metricdata.Sum[int64])
	require.True(t, ok, "metric %s is not an int64 sum", name)

	return counter
}

func findGaugeMetric(t *testing.T, resourceMetrics metricdata.ResourceMetrics, name string) metricdata.Gauge[float64] {
	t.Helper()

	gauge, ok := findMetric(t, resourceMetrics, name).(metricdata.Gauge[float64])
	require.True(t, ok, "metric %s is not a float64 gauge", name)

	return gauge
}
