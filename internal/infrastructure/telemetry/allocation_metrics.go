package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/ventdepot/backend/internal/domain/warehouse"
	"go.opentelemetry.io/otel/metric"
)

// MeterName is the instrumentation scope for allocator metrics
const MeterName = "ventdepot/warehouse"

// AllocationMetrics records allocation outcomes as OpenTelemetry instruments.
type AllocationMetrics struct {
	allocations      *Counter
	unitsAllocated   *Counter
	shortfalls       *Counter
	shortfallUnits   *Counter
	duration         *Histogram
	placementsPerRun *Histogram
}

// NewAllocationMetrics creates the allocator instruments on meter
func NewAllocationMetrics(meter metric.Meter) (*AllocationMetrics, error) {
	if meter == nil {
		return nil, errors.New("NewAllocationMetrics: meter cannot be nil")
	}

	m := &AllocationMetrics{}
	var err error

	if m.allocations, err = NewCounter(meter, "warehouse.allocations",
		"Committed allocation runs", "{run}"); err != nil {
		return nil, err
	}
	if m.unitsAllocated, err = NewCounter(meter, "warehouse.units_allocated",
		"Units placed into bins", "{unit}"); err != nil {
		return nil, err
	}
	if m.shortfalls, err = NewCounter(meter, "warehouse.allocation_shortfalls",
		"Allocation runs rolled back for lack of capacity", "{run}"); err != nil {
		return nil, err
	}
	if m.shortfallUnits, err = NewCounter(meter, "warehouse.shortfall_units",
		"Units that could not be placed", "{unit}"); err != nil {
		return nil, err
	}
	if m.duration, err = NewHistogram(meter, HistogramOpts{
		Name:        "warehouse.allocation_duration",
		Description: "Duration of committed allocation transactions",
		Unit:        "s",
		Boundaries:  DurationBuckets,
	}); err != nil {
		return nil, err
	}
	if m.placementsPerRun, err = NewHistogram(meter, HistogramOpts{
		Name:        "warehouse.placements_per_allocation",
		Description: "Allocation rows written per run",
		Unit:        "{placement}",
		Boundaries:  UnitBuckets,
	}); err != nil {
		return nil, err
	}
	return m, nil
}

// RecordAllocation records a committed run
func (m *AllocationMetrics) RecordAllocation(ctx context.Context, mode warehouse.AllocationMode, units, placements int, elapsed time.Duration) {
	attr := AttrAllocationMode.String(string(mode))
	m.allocations.Inc(ctx, attr)
	m.unitsAllocated.Add(ctx, int64(units), attr)
	m.duration.RecordDuration(ctx, elapsed, attr)
	m.placementsPerRun.Record(ctx, float64(placements), attr)
}

// RecordShortfall records a run rolled back with remaining units unplaced
func (m *AllocationMetrics) RecordShortfall(ctx context.Context, mode warehouse.AllocationMode, remaining int) {
	attr := AttrAllocationMode.String(string(mode))
	m.shortfalls.Inc(ctx, attr)
	m.shortfallUnits.Add(ctx, int64(remaining), attr)
}
