package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestInit_Disabled(t *testing.T) {
	tel, err := Init(context.Background(), nil)
	require.NoError(t, err)
	assert.NotNil(t, tel.Tracer())
	assert.NotNil(t, tel.Meter())
	assert.NoError(t, tel.Shutdown(context.Background()))

	tel, err = Init(context.Background(), &Config{ServiceName: "hostel-test"})
	require.NoError(t, err)
	assert.Nil(t, tel.tracerProvider)
	assert.Nil(t, tel.meterProvider)
}

func TestCounter_RecordsThroughGlobalProvider(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	prev := otel.GetMeterProvider()
	otel.SetMeterProvider(mp)
	t.Cleanup(func() { otel.SetMeterProvider(prev) })

	_, err := Init(context.Background(), &Config{ServiceName: "hostel-test"})
	require.NoError(t, err)

	counter, err := NewCounter(MetricOpts{Name: "test_denials_total", Description: "test", Unit: "1"})
	require.NoError(t, err)

	ctx := context.Background()
	counter.Inc(ctx, HostelIDAttr("h1"), UserRoleAttr("STAFF"))
	counter.Add(ctx, 2, HostelIDAttr("h1"), UserRoleAttr("STAFF"))

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	require.NotEmpty(t, rm.ScopeMetrics)

	var found bool
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "test_denials_total" {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			require.Len(t, sum.DataPoints, 1)
			assert.Equal(t, int64(3), sum.DataPoints[0].Value)
			found = true
		}
	}
	assert.True(t, found, "counter not exported")
}

func TestHistogram_Record(t *testing.T) {
	_, err := Init(context.Background(), nil)
	require.NoError(t, err)

	h, err := NewHistogram(MetricOpts{Name: "test_duration_seconds", Unit: "s"}, 0.01, 0.1, 1)
	require.NoError(t, err)
	h.Record(context.Background(), 0.05, OperationAttr("stats"))
}

func TestSpanHelpers(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	_, err := Init(context.Background(), &Config{ServiceName: "hostel-test"})
	require.NoError(t, err)

	assert.Empty(t, GetTraceID(context.Background()))

	ctx, span := StartSpan(context.Background(), "stats.compute")
	assert.NotEmpty(t, GetTraceID(ctx))
	SetSpanAttributes(ctx, HostelIDAttr("h1"))
	SetSpanError(ctx, errors.New("boom"))
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "stats.compute", spans[0].Name())
	assert.Len(t, spans[0].Events(), 1)
}
