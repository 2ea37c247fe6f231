package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ventdepot/backend/internal/infrastructure/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
)

func TestConfigFrom(t *testing.T) {
	cfg := ConfigFrom(config.TelemetryConfig{
		Enabled:           true,
		CollectorEndpoint: "otel:4317",
		SamplingRatio:     0.25,
		ServiceName:       "ventdepot-warehouse",
		Insecure:          true,
		DBTraceEnabled:    true,
	})

	assert.Equal(t, Config{
		Enabled:           true,
		CollectorEndpoint: "otel:4317",
		SamplingRatio:     0.25,
		ServiceName:       "ventdepot-warehouse",
		Insecure:          true,
	}, cfg)
}

func TestNewSampler(t *testing.T) {
	tests := []struct {
		ratio    float64
		contains string
	}{
		{1, "AlwaysOnSampler"},
		{1.5, "AlwaysOnSampler"},
		{0, "AlwaysOffSampler"},
		{-1, "AlwaysOffSampler"},
		{0.5, "TraceIDRatioBased{0.5}"},
	}
	for _, tt := range tests {
		desc := newSampler(tt.ratio).Description()
		assert.Contains(t, desc, "ParentBased")
		assert.Contains(t, desc, tt.contains)
	}
}

func TestNewTracerProvider_Disabled(t *testing.T) {
	tp, err := NewTracerProvider(context.Background(), Config{Enabled: false}, zap.NewNop())
	require.NoError(t, err)

	assert.False(t, tp.IsEnabled())
	assert.NotNil(t, tp.Tracer("test"))
	assert.NoError(t, tp.ForceFlush(context.Background()))
	assert.NoError(t, tp.Shutdown(context.Background()))
}

func newRecordingTracer(t *testing.T) (*TracerProvider, *tracetest.InMemoryExporter) {
	t.Helper()
	previous := otel.GetTracerProvider()
	exporter := tracetest.NewInMemoryExporter()
	tp, err := newTracerProviderWithExporter(Config{
		Enabled:       true,
		SamplingRatio: 1,
		ServiceName:   "ventdepot-test",
	}, exporter, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		otel.SetTracerProvider(previous)
	})
	return tp, exporter
}

func TestStartServiceSpan_Exported(t *testing.T) {
	tp, exporter := newRecordingTracer(t)
	ctx := context.Background()

	spanCtx, span := StartServiceSpan(ctx, "allocation", "allocate_purchase_order",
		SpanAttrPurchaseOrderID, int64(12),
		SpanAttrMode, "automatic",
		42, "skipped key",
	)
	assert.NotEmpty(t, GetTraceID(spanCtx))
	SetAttributes(span, SpanAttrUnits, 150, SpanAttrPlacements, 2)
	AddEvent(span, "bins_locked", "count", 3)
	span.End()

	require.NoError(t, tp.ForceFlush(ctx))

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	got := spans[0]
	assert.Equal(t, "allocation.allocate_purchase_order", got.Name)

	attrs := map[string]any{}
	for _, kv := range got.Attributes {
		attrs[string(kv.Key)] = kv.Value.AsInterface()
	}
	assert.Equal(t, int64(12), attrs[SpanAttrPurchaseOrderID])
	assert.Equal(t, "automatic", attrs[SpanAttrMode])
	assert.Equal(t, int64(150), attrs[SpanAttrUnits])
	assert.Equal(t, int64(2), attrs[SpanAttrPlacements])
	assert.Len(t, attrs, 4)

	require.Len(t, got.Events, 1)
	assert.Equal(t, "bins_locked", got.Events[0].Name)
	assert.Equal(t, "ventdepot-test", resourceServiceName(got.Resource.Attributes()))
}

func TestRecordError(t *testing.T) {
	tp, exporter := newRecordingTracer(t)
	ctx := context.Background()

	_, span := StartServiceSpan(ctx, "allocation", "fail")
	RecordError(span, assert.AnError)
	RecordError(span, nil)
	RecordError(nil, assert.AnError)
	span.End()

	require.NoError(t, tp.ForceFlush(ctx))

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
	assert.Equal(t, assert.AnError.Error(), spans[0].Status.Description)
	require.Len(t, spans[0].Events, 1)
	assert.Equal(t, "exception", spans[0].Events[0].Name)
}

func TestGetTraceID_NoSpan(t *testing.T) {
	assert.Empty(t, GetTraceID(context.Background()))
}
