package warehouse_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appwarehouse "github.com/ventdepot/backend/internal/application/warehouse"
	"github.com/ventdepot/backend/internal/domain/shared"
	"github.com/ventdepot/backend/internal/domain/warehouse"
)

func TestProvisionLayout(t *testing.T) {
	f := newFixture(t, warehouse.DemandModeOutstanding)
	svc := appwarehouse.NewLayoutService(f.locations, f.bins, 250, nil)
	ctx := context.Background()

	result, err := svc.ProvisionLayout(ctx, appwarehouse.LayoutRequest{
		RackCodes:    []string{"B", "A"},
		Levels:       2,
		BinsPerShelf: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, &appwarehouse.LayoutResult{Racks: 2, Shelves: 4, Bins: 12}, result)

	bins, err := f.bins.FindCandidates(ctx)
	require.NoError(t, err)
	require.Len(t, bins, 12)
	assert.Equal(t, "A-1-01", bins[0].Code)
	assert.Equal(t, "A-1-02", bins[1].Code)
	assert.Equal(t, "B-2-03", bins[11].Code)
	for _, b := range bins {
		assert.Equal(t, 250, b.Capacity)
		assert.Equal(t, warehouse.BinStatusEmpty, b.Status)
	}
}

func TestProvisionLayout_ExplicitCapacity(t *testing.T) {
	f := newFixture(t, warehouse.DemandModeOutstanding)
	svc := appwarehouse.NewLayoutService(f.locations, f.bins, 0, nil)

	_, err := svc.ProvisionLayout(context.Background(), appwarehouse.LayoutRequest{
		RackCodes: []string{"C"}, Levels: 1, BinsPerShelf: 1, Capacity: 40,
	})
	require.NoError(t, err)

	bins, err := f.bins.FindCandidates(context.Background())
	require.NoError(t, err)
	require.Len(t, bins, 1)
	assert.Equal(t, 40, bins[0].Capacity)
}

func TestProvisionLayout_Rejections(t *testing.T) {
	f := newFixture(t, warehouse.DemandModeOutstanding)
	svc := appwarehouse.NewLayoutService(f.locations, f.bins, 100, nil)
	ctx := context.Background()

	_, err := svc.ProvisionLayout(ctx, appwarehouse.LayoutRequest{RackCodes: []string{"A"}, Levels: 1, BinsPerShelf: 1})
	require.NoError(t, err)

	tests := []struct {
		name string
		req  appwarehouse.LayoutRequest
		want error
	}{
		{"no racks", appwarehouse.LayoutRequest{Levels: 1, BinsPerShelf: 1}, shared.ErrInvalidInput},
		{"zero levels", appwarehouse.LayoutRequest{RackCodes: []string{"Z"}, BinsPerShelf: 1}, shared.ErrInvalidInput},
		{"negative capacity", appwarehouse.LayoutRequest{RackCodes: []string{"Z"}, Levels: 1, BinsPerShelf: 1, Capacity: -1}, shared.ErrInvalidInput},
		{"duplicate code", appwarehouse.LayoutRequest{RackCodes: []string{"Z", "Z"}, Levels: 1, BinsPerShelf: 1}, shared.ErrInvalidInput},
		{"existing rack", appwarehouse.LayoutRequest{RackCodes: []string{"Z", "A"}, Levels: 1, BinsPerShelf: 1}, shared.ErrInvalidState},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ProvisionLayout(ctx, tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	// nothing from the rejected requests was written
	_, err = f.locations.FindRackByCode(ctx, "Z")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
