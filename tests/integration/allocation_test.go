package integration

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appwarehouse "github.com/ventdepot/backend/internal/application/warehouse"
	"github.com/ventdepot/backend/internal/domain/shared"
	"github.com/ventdepot/backend/internal/domain/warehouse"
	"github.com/ventdepot/backend/internal/infrastructure/persistence"
	"go.uber.org/zap"
)

type allocationEnv struct {
	db     *TestDB
	svc    *appwarehouse.AllocationService
	bins   *persistence.GormBinRepository
	orders *persistence.GormPurchaseOrderRepository
}

func newAllocationEnv(t *testing.T, racks []string, levels, binsPerShelf, capacity int) *allocationEnv {
	t.Helper()
	tdb := NewTestDB(t)

	env := &allocationEnv{
		db:     tdb,
		bins:   persistence.NewGormBinRepository(tdb.DB),
		orders: persistence.NewGormPurchaseOrderRepository(tdb.DB),
	}
	env.svc = appwarehouse.NewAllocationService(
		persistence.NewGormTransactionScope(tdb.DB),
		env.bins,
		env.orders,
		persistence.NewGormAllocationRepository(tdb.DB),
		appwarehouse.ServiceConfig{DemandMode: warehouse.DemandModeOutstanding},
		zap.NewNop(),
	)

	layout := appwarehouse.NewLayoutService(persistence.NewGormLocationRepository(tdb.DB), env.bins, capacity, nil)
	_, err := layout.ProvisionLayout(context.Background(), appwarehouse.LayoutRequest{
		RackCodes: racks, Levels: levels, BinsPerShelf: binsPerShelf,
	})
	require.NoError(t, err)
	return env
}

func (e *allocationEnv) addPO(t *testing.T, number string, quantities ...int) *warehouse.PurchaseOrder {
	t.Helper()
	po, err := warehouse.NewPurchaseOrder(number, 1, 1)
	require.NoError(t, err)
	for i, q := range quantities {
		item, err := warehouse.NewPurchaseOrderItem(fmt.Sprintf("Vent %d", i+1), "", q, decimal.NewFromInt(2))
		require.NoError(t, err)
		require.NoError(t, po.AddItem(item))
	}
	require.NoError(t, e.orders.Save(context.Background(), po))
	return po
}

func (e *allocationEnv) totals(t *testing.T) (used, allocated int) {
	t.Helper()
	require.NoError(t, e.db.DB.Raw("SELECT COALESCE(SUM(used), 0) FROM bins").Scan(&used).Error)
	require.NoError(t, e.db.DB.Raw("SELECT COALESCE(SUM(quantity), 0) FROM allocations").Scan(&allocated).Error)
	return used, allocated
}

func TestAllocation_FillOrderAcrossRacks(t *testing.T) {
	env := newAllocationEnv(t, []string{"B", "A"}, 2, 2, 50)
	po := env.addPO(t, "PO-FILL", 120, 30)
	rc := appwarehouse.RequestContext{ActorID: "user-1", RequestID: "req-fill"}

	result, err := env.svc.UpdatePurchaseOrderStatus(context.Background(), rc, po.ID, "received")
	require.NoError(t, err)
	assert.Equal(t, warehouse.PurchaseOrderStatusReceived, result.Status)
	assert.Equal(t, 150, result.Allocation.UnitsAllocated)

	bins, err := env.bins.FindCandidates(context.Background())
	require.NoError(t, err)
	// A-1-01, A-1-02 and A-2-01 are full; rack A still leads the fill order
	require.Len(t, bins, 5)
	assert.Equal(t, "A-2-02", bins[0].Code)
	assert.Equal(t, "B", bins[1].RackCode)

	view, err := env.svc.GetPurchaseOrderAllocation(context.Background(), po.ID)
	require.NoError(t, err)
	require.Len(t, view.Items, 2)
	assert.True(t, view.Items[0].FullyAllocated)
	assert.True(t, view.Items[1].FullyAllocated)
}

func TestAllocation_ShortfallRollsBack(t *testing.T) {
	env := newAllocationEnv(t, []string{"A"}, 1, 2, 50)
	po := env.addPO(t, "PO-BIG", 60, 60)
	rc := appwarehouse.RequestContext{ActorID: "user-1", RequestID: "req-big"}

	_, err := env.svc.UpdatePurchaseOrderStatus(context.Background(), rc, po.ID, "received")
	var shortfall *warehouse.AllocationShortfallError
	require.ErrorAs(t, err, &shortfall)
	assert.Equal(t, 20, shortfall.Remaining)

	used, allocated := env.totals(t)
	assert.Zero(t, used)
	assert.Zero(t, allocated)

	reloaded, err := env.orders.FindByID(context.Background(), po.ID)
	require.NoError(t, err)
	assert.Equal(t, warehouse.PurchaseOrderStatusPending, reloaded.Status)
	for _, item := range reloaded.Items {
		assert.Zero(t, item.QuantityReceived)
	}
}

func TestAllocation_ConcurrentReceiptsNeverOverfill(t *testing.T) {
	env := newAllocationEnv(t, []string{"A"}, 1, 3, 100)
	const orders = 5

	pos := make([]*warehouse.PurchaseOrder, orders)
	for i := range pos {
		pos[i] = env.addPO(t, fmt.Sprintf("PO-C%d", i), 100)
	}

	var (
		wg         sync.WaitGroup
		mu         sync.Mutex
		succeeded  int
		shortfalls int
		others     []error
	)
	for i, po := range pos {
		wg.Add(1)
		go func(i int, poID int64) {
			defer wg.Done()
			rc := appwarehouse.RequestContext{ActorID: "user-1", RequestID: fmt.Sprintf("req-%d", i)}
			_, err := env.svc.UpdatePurchaseOrderStatus(context.Background(), rc, poID, "received")

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, warehouse.ErrAllocationShortfall):
				shortfalls++
			default:
				others = append(others, err)
			}
		}(i, po.ID)
	}
	wg.Wait()

	require.Empty(t, others)
	assert.Equal(t, 3, succeeded)
	assert.Equal(t, 2, shortfalls)

	used, allocated := env.totals(t)
	assert.Equal(t, 300, used)
	assert.Equal(t, 300, allocated)

	var overfilled int64
	require.NoError(t, env.db.DB.Raw("SELECT COUNT(*) FROM bins WHERE used > capacity OR (used = capacity AND status <> 'full')").Scan(&overfilled).Error)
	assert.Zero(t, overfilled)
}

func TestAllocation_ConcurrentReceiptOfSameOrder(t *testing.T) {
	env := newAllocationEnv(t, []string{"A"}, 1, 4, 100)
	po := env.addPO(t, "PO-SAME", 150)

	var wg sync.WaitGroup
	errs := make([]error, 4)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rc := appwarehouse.RequestContext{ActorID: "user-1", RequestID: fmt.Sprintf("req-same-%d", i)}
			_, errs[i] = env.svc.UpdatePurchaseOrderStatus(context.Background(), rc, po.ID, "received")
		}(i)
	}
	wg.Wait()

	var ok int
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, shared.ErrInvalidState)
		assert.Contains(t, err.Error(), "already received")
	}
	assert.Equal(t, 1, ok)

	used, allocated := env.totals(t)
	assert.Equal(t, 150, used)
	assert.Equal(t, 150, allocated)
}

func TestAllocation_ConcurrentAutomaticAndManualShareBins(t *testing.T) {
	// Rack B is provisioned first, so its bin has the lower id but comes second in fill order
	env := newAllocationEnv(t, []string{"B", "A"}, 1, 1, 100)
	bins, err := env.bins.FindCandidates(context.Background())
	require.NoError(t, err)
	require.Len(t, bins, 2)
	binA, binB := bins[0], bins[1]
	require.Equal(t, "A", binA.RackCode)
	require.Greater(t, binA.ID, binB.ID)

	const rounds = 8
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		others []error
	)
	record := func(err error) {
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			others = append(others, err)
		}
	}

	for i := 0; i < rounds; i++ {
		auto := env.addPO(t, fmt.Sprintf("PO-AUTO-%d", i), 5)
		manual := env.addPO(t, fmt.Sprintf("PO-MAN-%d", i), 10)
		itemID := manual.Items[0].ID

		wg.Add(2)
		go func(i int, poID int64) {
			defer wg.Done()
			rc := appwarehouse.RequestContext{ActorID: "user-1", RequestID: fmt.Sprintf("req-auto-%d", i)}
			_, err := env.svc.UpdatePurchaseOrderStatus(context.Background(), rc, poID, "received")
			record(err)
		}(i, auto.ID)
		go func(i int, poID, itemID int64) {
			defer wg.Done()
			rc := appwarehouse.RequestContext{ActorID: "user-2", RequestID: fmt.Sprintf("req-man-%d", i)}
			_, err := env.svc.AllocateItemsToBins(context.Background(), rc, poID, []appwarehouse.ManualAllocation{
				{ItemID: itemID, BinID: binB.ID, Quantity: 5},
				{ItemID: itemID, BinID: binA.ID, Quantity: 5},
			})
			record(err)
		}(i, manual.ID, itemID)
	}
	wg.Wait()

	require.Empty(t, others)
	used, allocated := env.totals(t)
	// Every unit fits in rack A's bin, so no call may fail
	assert.Equal(t, rounds*15, used)
	assert.Equal(t, rounds*15, allocated)
}
