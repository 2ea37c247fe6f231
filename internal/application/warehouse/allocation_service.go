package warehouse

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/ventdepot/backend/internal/domain/warehouse"
	"github.com/ventdepot/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// MetricsRecorder receives allocation outcomes. Implemented by the telemetry package.
type MetricsRecorder interface {
	RecordAllocation(ctx context.Context, mode warehouse.AllocationMode, units, placements int, elapsed time.Duration)
	RecordShortfall(ctx context.Context, mode warehouse.AllocationMode, remaining int)
}

// ServiceConfig holds allocator settings
type ServiceConfig struct {
	DemandMode warehouse.DemandMode
}

// AllocationService places purchase order units into warehouse bins
type AllocationService struct {
	txScope     TransactionScope
	bins        warehouse.BinRepository
	orders      warehouse.PurchaseOrderRepository
	allocations warehouse.AllocationRepository
	demandMode  warehouse.DemandMode
	logger      *zap.Logger
	metrics     MetricsRecorder
	now         func() time.Time
}

// NewAllocationService creates a new AllocationService.
// The repositories serve reads; writes always go through txScope.
func NewAllocationService(
	txScope TransactionScope,
	bins warehouse.BinRepository,
	orders warehouse.PurchaseOrderRepository,
	allocations warehouse.AllocationRepository,
	cfg ServiceConfig,
	logger *zap.Logger,
) *AllocationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	mode := cfg.DemandMode
	if !mode.IsValid() {
		mode = warehouse.DemandModeOutstanding
	}
	return &AllocationService{
		txScope:     txScope,
		bins:        bins,
		orders:      orders,
		allocations: allocations,
		demandMode:  mode,
		logger:      logger,
		now:         time.Now,
	}
}

// SetMetricsRecorder sets the recorder for allocation metrics
func (s *AllocationService) SetMetricsRecorder(m MetricsRecorder) {
	s.metrics = m
}

// SetClock overrides the time source
func (s *AllocationService) SetClock(now func() time.Time) {
	s.now = now
}

// DemandMode returns the configured demand mode
func (s *AllocationService) DemandMode() warehouse.DemandMode {
	return s.demandMode
}

// AllocatePurchaseOrder runs automatic allocation for every outstanding unit of an order.
// Bins are consumed in fill order. Either every unit is placed and the order becomes
// received, or nothing is written.
func (s *AllocationService) AllocatePurchaseOrder(ctx context.Context, rc RequestContext, poID int64) (*AllocationResult, error) {
	if err := rc.Validate(); err != nil {
		return nil, err
	}
	if poID <= 0 {
		return nil, warehouse.NewValidationError("po_id must be a positive integer")
	}

	ctx, span := telemetry.StartServiceSpan(ctx, "allocation", "allocate_purchase_order",
		telemetry.SpanAttrPurchaseOrderID, poID,
		telemetry.SpanAttrMode, string(warehouse.AllocationModeAutomatic),
		telemetry.SpanAttrDemandMode, string(s.demandMode),
		telemetry.SpanAttrActor, rc.ActorID,
	)
	defer span.End()

	log := s.requestLogger(rc, poID, warehouse.AllocationModeAutomatic)
	start := s.now()

	result := &AllocationResult{
		PurchaseOrderID: poID,
		Mode:            warehouse.AllocationModeAutomatic,
		Lines:           make([]AllocationLine, 0),
	}

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		po, err := repos.PurchaseOrders().FindByIDForUpdate(ctx, poID)
		if err != nil {
			return err
		}
		if !po.Status.CanReceive() {
			return warehouse.NewInvalidStateError(fmt.Sprintf("Purchase order %d is already %s", po.ID, po.Status))
		}
		if len(po.Items) == 0 {
			return warehouse.NewValidationError(fmt.Sprintf("Purchase order %d has no items", po.ID))
		}

		demands, err := warehouse.BuildDemands(po, s.demandMode)
		if err != nil {
			return err
		}

		bins, err := repos.Bins().FindCandidatesForUpdate(ctx)
		if err != nil {
			return err
		}
		slots := make([]warehouse.BinSlot, len(bins))
		for i := range bins {
			slots[i] = bins[i].Slot()
		}

		plan, err := warehouse.PlanFill(demands, slots)
		if err != nil {
			return err
		}

		now := s.now()
		for _, pl := range plan.Placements {
			item := po.FindItem(pl.ItemID)
			line, err := s.place(ctx, repos, rc, po, item, pl.BinID, pl.Quantity, warehouse.AllocationModeAutomatic, now)
			if err != nil {
				return err
			}
			line.BinStatus = pl.BinStatus
			result.Lines = append(result.Lines, line)
			result.UnitsAllocated += pl.Quantity
		}

		byID := make(map[int64]*warehouse.Bin, len(bins))
		for i := range bins {
			byID[bins[i].ID] = &bins[i]
		}
		for _, slot := range plan.TouchedBins(slots) {
			bin := byID[slot.BinID]
			bin.ApplySlot(slot)
			if err := repos.Bins().UpdateUsage(ctx, bin); err != nil {
				return err
			}
		}

		for _, d := range demands {
			item := po.FindItem(d.ItemID)
			if err := item.Receive(plan.PlacedFor(d.ItemID)); err != nil {
				return err
			}
			if err := repos.PurchaseOrders().UpdateItem(ctx, item); err != nil {
				return err
			}
		}

		if err := po.MarkReceived(now); err != nil {
			return err
		}
		if err := repos.PurchaseOrders().UpdateHeader(ctx, po); err != nil {
			return err
		}
		result.OrderStatus = po.Status
		return nil
	})
	if err != nil {
		s.reportFailure(ctx, span, log, warehouse.AllocationModeAutomatic, err)
		return nil, err
	}

	elapsed := s.now().Sub(start)
	telemetry.SetAttributes(span,
		telemetry.SpanAttrUnits, result.UnitsAllocated,
		telemetry.SpanAttrPlacements, len(result.Lines),
		telemetry.SpanAttrOrderStatus, string(result.OrderStatus),
	)
	log.Info("Automatic allocation committed",
		zap.Int("units", result.UnitsAllocated),
		zap.Int("placements", len(result.Lines)),
		zap.Duration("elapsed", elapsed),
	)
	if s.metrics != nil {
		s.metrics.RecordAllocation(ctx, warehouse.AllocationModeAutomatic, result.UnitsAllocated, len(result.Lines), elapsed)
	}
	return result, nil
}

// AllocateItemsToBins places caller-chosen quantities of items into specific bins.
// The order becomes received once every item has received its ordered quantity.
func (s *AllocationService) AllocateItemsToBins(ctx context.Context, rc RequestContext, poID int64, requests []ManualAllocation) (*AllocationResult, error) {
	if err := rc.Validate(); err != nil {
		return nil, err
	}
	if err := validateManualRequest(poID, requests); err != nil {
		return nil, err
	}

	ctx, span := telemetry.StartServiceSpan(ctx, "allocation", "allocate_items_to_bins",
		telemetry.SpanAttrPurchaseOrderID, poID,
		telemetry.SpanAttrMode, string(warehouse.AllocationModeManual),
		telemetry.SpanAttrActor, rc.ActorID,
	)
	defer span.End()

	log := s.requestLogger(rc, poID, warehouse.AllocationModeManual)
	start := s.now()

	result := &AllocationResult{
		PurchaseOrderID: poID,
		Mode:            warehouse.AllocationModeManual,
		Lines:           make([]AllocationLine, 0, len(requests)),
	}

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		po, err := repos.PurchaseOrders().FindByIDForUpdate(ctx, poID)
		if err != nil {
			return err
		}
		if !po.Status.CanReceive() {
			return warehouse.NewInvalidStateError(fmt.Sprintf("Purchase order %d is already %s", po.ID, po.Status))
		}

		bins, err := lockBins(ctx, repos.Bins(), requests)
		if err != nil {
			return err
		}

		now := s.now()
		touchedItems := make([]int64, 0, len(requests))
		for _, req := range requests {
			item := po.FindItem(req.ItemID)
			if item == nil {
				return warehouse.NewNotFoundError("purchase order item", req.ItemID)
			}
			bin := bins[req.BinID]

			if err := item.Receive(req.Quantity); err != nil {
				return err
			}
			if err := bin.Place(req.Quantity); err != nil {
				return err
			}

			line, err := s.place(ctx, repos, rc, po, item, bin.ID, req.Quantity, warehouse.AllocationModeManual, now)
			if err != nil {
				return err
			}
			line.BinStatus = bin.Status
			result.Lines = append(result.Lines, line)
			result.UnitsAllocated += req.Quantity

			if !slices.Contains(touchedItems, item.ID) {
				touchedItems = append(touchedItems, item.ID)
			}
		}

		for _, binID := range sortedBinIDs(requests) {
			if err := repos.Bins().UpdateUsage(ctx, bins[binID]); err != nil {
				return err
			}
		}
		for _, itemID := range touchedItems {
			if err := repos.PurchaseOrders().UpdateItem(ctx, po.FindItem(itemID)); err != nil {
				return err
			}
		}

		if po.AllItemsReceived() {
			if err := po.MarkReceived(now); err != nil {
				return err
			}
			if err := repos.PurchaseOrders().UpdateHeader(ctx, po); err != nil {
				return err
			}
		}
		result.OrderStatus = po.Status
		return nil
	})
	if err != nil {
		s.reportFailure(ctx, span, log, warehouse.AllocationModeManual, err)
		return nil, err
	}

	elapsed := s.now().Sub(start)
	telemetry.SetAttributes(span,
		telemetry.SpanAttrUnits, result.UnitsAllocated,
		telemetry.SpanAttrPlacements, len(result.Lines),
		telemetry.SpanAttrOrderStatus, string(result.OrderStatus),
	)
	log.Info("Manual allocation committed",
		zap.Int("units", result.UnitsAllocated),
		zap.Int("placements", len(result.Lines)),
		zap.String("po_status", string(result.OrderStatus)),
	)
	if s.metrics != nil {
		s.metrics.RecordAllocation(ctx, warehouse.AllocationModeManual, result.UnitsAllocated, len(result.Lines), elapsed)
	}
	return result, nil
}

// UpdatePurchaseOrderStatus applies a status change requested by the caller.
// Moving to received runs automatic allocation; cancelled is only allowed from pending.
func (s *AllocationService) UpdatePurchaseOrderStatus(ctx context.Context, rc RequestContext, poID int64, status string) (*StatusUpdateResult, error) {
	if err := rc.Validate(); err != nil {
		return nil, err
	}
	if poID <= 0 {
		return nil, warehouse.NewValidationError("po_id must be a positive integer")
	}
	target := warehouse.PurchaseOrderStatus(status)
	if !target.IsValid() {
		return nil, warehouse.NewValidationError(fmt.Sprintf("Unknown purchase order status %q", status))
	}

	switch target {
	case warehouse.PurchaseOrderStatusReceived:
		allocation, err := s.AllocatePurchaseOrder(ctx, rc, poID)
		if err != nil {
			return nil, err
		}
		return &StatusUpdateResult{
			PurchaseOrderID: poID,
			Status:          allocation.OrderStatus,
			Message:         fmt.Sprintf("Purchase order received and %d units allocated to bins", allocation.UnitsAllocated),
			Allocation:      allocation,
		}, nil

	case warehouse.PurchaseOrderStatusCancelled:
		err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
			po, err := repos.PurchaseOrders().FindByIDForUpdate(ctx, poID)
			if err != nil {
				return err
			}
			if err := po.Cancel(); err != nil {
				return err
			}
			return repos.PurchaseOrders().UpdateHeader(ctx, po)
		})
		if err != nil {
			return nil, err
		}
		s.requestLogger(rc, poID, "").Info("Purchase order cancelled")
		return &StatusUpdateResult{
			PurchaseOrderID: poID,
			Status:          target,
			Message:         "Purchase order cancelled",
		}, nil

	default:
		po, err := s.orders.FindByID(ctx, poID)
		if err != nil {
			return nil, err
		}
		if po.Status != warehouse.PurchaseOrderStatusPending {
			return nil, warehouse.NewInvalidStateError(fmt.Sprintf("Cannot move purchase order from %s back to pending", po.Status))
		}
		return &StatusUpdateResult{
			PurchaseOrderID: poID,
			Status:          po.Status,
			Message:         "Purchase order is already pending",
		}, nil
	}
}

// ListCandidateBins returns the bins automatic allocation would use, in fill order
func (s *AllocationService) ListCandidateBins(ctx context.Context) ([]CandidateBinDTO, error) {
	bins, err := s.bins.FindCandidates(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]CandidateBinDTO, len(bins))
	for i := range bins {
		out[i] = ToCandidateBinDTO(&bins[i])
	}
	return out, nil
}

// GetPurchaseOrderAllocation returns an order with its items and their placements
func (s *AllocationService) GetPurchaseOrderAllocation(ctx context.Context, poID int64) (*PurchaseOrderAllocationView, error) {
	if poID <= 0 {
		return nil, warehouse.NewValidationError("po_id must be a positive integer")
	}
	po, err := s.orders.FindByID(ctx, poID)
	if err != nil {
		return nil, err
	}
	allocations, err := s.allocations.FindByPurchaseOrder(ctx, poID)
	if err != nil {
		return nil, err
	}
	return ToPurchaseOrderAllocationView(po, allocations), nil
}

// place writes the inventory record and allocation row for one placement
func (s *AllocationService) place(
	ctx context.Context,
	repos TransactionalRepositories,
	rc RequestContext,
	po *warehouse.PurchaseOrder,
	item *warehouse.PurchaseOrderItem,
	binID int64,
	quantity int,
	mode warehouse.AllocationMode,
	now time.Time,
) (AllocationLine, error) {
	record := warehouse.NewInventoryRecord(binID, item, quantity, now)
	if err := repos.InventoryRecords().Create(ctx, record); err != nil {
		return AllocationLine{}, err
	}

	allocation := warehouse.NewAllocation(po.ID, item.ID, binID, quantity, rc.ActorID, rc.RequestID, mode, now)
	if err := repos.Allocations().Create(ctx, allocation); err != nil {
		return AllocationLine{}, err
	}

	return AllocationLine{
		AllocationID: allocation.ID,
		ItemID:       item.ID,
		BinID:        binID,
		Quantity:     quantity,
	}, nil
}

func (s *AllocationService) requestLogger(rc RequestContext, poID int64, mode warehouse.AllocationMode) *zap.Logger {
	fields := []zap.Field{
		zap.Int64("po_id", poID),
		zap.String("actor_id", rc.ActorID),
	}
	if rc.RequestID != "" {
		fields = append(fields, zap.String("request_id", rc.RequestID))
	}
	if mode != "" {
		fields = append(fields, zap.String("mode", string(mode)))
	}
	return s.logger.With(fields...)
}

func (s *AllocationService) reportFailure(ctx context.Context, span trace.Span, log *zap.Logger, mode warehouse.AllocationMode, err error) {
	telemetry.RecordError(span, err)

	var shortfall *warehouse.AllocationShortfallError
	if errors.As(err, &shortfall) {
		telemetry.SetAttributes(span, telemetry.SpanAttrRemaining, shortfall.Remaining)
		log.Warn("Allocation rolled back: bin capacity shortfall",
			zap.Int("remaining", shortfall.Remaining),
			zap.String("reason", shortfall.Reason),
		)
		if s.metrics != nil {
			s.metrics.RecordShortfall(ctx, mode, shortfall.Remaining)
		}
		return
	}
	var persistErr *warehouse.PersistenceError
	if errors.As(err, &persistErr) {
		log.Error("Allocation rolled back: store failure", zap.Error(err))
		return
	}
	log.Info("Allocation rejected", zap.Error(err))
}

// validateManualRequest checks the request shape before any transaction is opened
func validateManualRequest(poID int64, requests []ManualAllocation) error {
	if poID <= 0 {
		return warehouse.NewValidationError("po_id must be a positive integer")
	}
	if len(requests) == 0 {
		return warehouse.NewValidationError("allocations cannot be empty")
	}
	for i, req := range requests {
		if req.ItemID <= 0 {
			return warehouse.NewValidationError(fmt.Sprintf("allocations[%d].item_id must be a positive integer", i))
		}
		if req.BinID <= 0 {
			return warehouse.NewValidationError(fmt.Sprintf("allocations[%d].bin_id must be a positive integer", i))
		}
		if req.Quantity <= 0 {
			return warehouse.NewValidationError(fmt.Sprintf("allocations[%d].quantity must be positive", i))
		}
	}
	return nil
}

// lockBins locks every referenced bin in fill order
func lockBins(ctx context.Context, repo warehouse.BinRepository, requests []ManualAllocation) (map[int64]*warehouse.Bin, error) {
	locked, err := repo.FindByIDsForUpdate(ctx, sortedBinIDs(requests))
	if err != nil {
		return nil, err
	}
	bins := make(map[int64]*warehouse.Bin, len(locked))
	for i := range locked {
		bins[locked[i].ID] = &locked[i]
	}
	return bins, nil
}

func sortedBinIDs(requests []ManualAllocation) []int64 {
	ids := make([]int64, 0, len(requests))
	for _, req := range requests {
		if !slices.Contains(ids, req.BinID) {
			ids = append(ids, req.BinID)
		}
	}
	slices.Sort(ids)
	return ids
}
