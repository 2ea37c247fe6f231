package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ventdepot/backend/internal/domain/warehouse"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
)

func newManualMeter(t *testing.T) (*MeterProvider, *sdkmetric.ManualReader) {
	t.Helper()
	previous := otel.GetMeterProvider()
	reader := sdkmetric.NewManualReader()
	mp, err := newMeterProviderWithReader(Config{ServiceName: "ventdepot-test"}, reader, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = mp.Shutdown(context.Background())
		otel.SetMeterProvider(previous)
	})
	return mp, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := map[string]metricdata.Metrics{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func sumByMode(t *testing.T, m metricdata.Metrics) map[string]int64 {
	t.Helper()
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "%s is not an int64 sum", m.Name)

	out := map[string]int64{}
	for _, dp := range sum.DataPoints {
		mode, _ := dp.Attributes.Value(AttrAllocationMode)
		out[mode.AsString()] += dp.Value
	}
	return out
}

func TestNewMeterProvider_Disabled(t *testing.T) {
	mp, err := NewMeterProvider(context.Background(), Config{Enabled: false}, zap.NewNop())
	require.NoError(t, err)

	assert.False(t, mp.IsEnabled())
	assert.NotNil(t, mp.Meter("test"))
	assert.NoError(t, mp.Shutdown(context.Background()))
}

func TestCounterAndHistogram(t *testing.T) {
	mp, reader := newManualMeter(t)
	assert.True(t, mp.IsEnabled())
	meter := mp.Meter("test")
	ctx := context.Background()

	c, err := NewCounter(meter, "test.count", "a counter", "{op}")
	require.NoError(t, err)
	c.Inc(ctx)
	c.Add(ctx, 4)

	h, err := NewHistogram(meter, HistogramOpts{
		Name:       "test.duration",
		Unit:       "s",
		Boundaries: []float64{0.1, 1},
	})
	require.NoError(t, err)
	h.RecordDuration(ctx, 500*time.Millisecond)
	h.Record(ctx, 2)

	metrics := collect(t, reader)

	sum := metrics["test.count"].Data.(metricdata.Sum[int64])
	require.Len(t, sum.DataPoints, 1)
	assert.Equal(t, int64(5), sum.DataPoints[0].Value)

	hist := metrics["test.duration"].Data.(metricdata.Histogram[float64])
	require.Len(t, hist.DataPoints, 1)
	dp := hist.DataPoints[0]
	assert.Equal(t, uint64(2), dp.Count)
	assert.Equal(t, []float64{0.1, 1}, dp.Bounds)
	assert.Equal(t, []uint64{0, 1, 1}, dp.BucketCounts)
}

func TestNewAllocationMetrics_NilMeter(t *testing.T) {
	m, err := NewAllocationMetrics(nil)
	require.Error(t, err)
	assert.Nil(t, m)
}

func TestAllocationMetrics_Noop(t *testing.T) {
	m, err := NewAllocationMetrics(noop.NewMeterProvider().Meter("test"))
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		m.RecordAllocation(context.Background(), warehouse.AllocationModeAutomatic, 10, 1, time.Millisecond)
		m.RecordShortfall(context.Background(), warehouse.AllocationModeManual, 5)
	})
}

func TestAllocationMetrics_Record(t *testing.T) {
	mp, reader := newManualMeter(t)
	m, err := NewAllocationMetrics(mp.Meter(MeterName))
	require.NoError(t, err)
	ctx := context.Background()

	m.RecordAllocation(ctx, warehouse.AllocationModeAutomatic, 150, 2, 20*time.Millisecond)
	m.RecordAllocation(ctx, warehouse.AllocationModeManual, 30, 1, 5*time.Millisecond)
	m.RecordShortfall(ctx, warehouse.AllocationModeAutomatic, 50)

	metrics := collect(t, reader)

	assert.Equal(t, map[string]int64{"automatic": 1, "manual": 1}, sumByMode(t, metrics["warehouse.allocations"]))
	assert.Equal(t, map[string]int64{"automatic": 150, "manual": 30}, sumByMode(t, metrics["warehouse.units_allocated"]))
	assert.Equal(t, map[string]int64{"automatic": 1}, sumByMode(t, metrics["warehouse.allocation_shortfalls"]))
	assert.Equal(t, map[string]int64{"automatic": 50}, sumByMode(t, metrics["warehouse.shortfall_units"]))

	hist, ok := metrics["warehouse.allocation_duration"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	var count uint64
	for _, dp := range hist.DataPoints {
		count += dp.Count
	}
	assert.Equal(t, uint64(2), count)

	placements := metrics["warehouse.placements_per_allocation"].Data.(metricdata.Histogram[float64])
	byMode := map[string]float64{}
	for _, dp := range placements.DataPoints {
		mode, _ := dp.Attributes.Value(attribute.Key("allocation.mode"))
		byMode[mode.AsString()] = dp.Sum
	}
	assert.Equal(t, map[string]float64{"automatic": 2, "manual": 1}, byMode)
}
