package warehouse

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/ventdepot/backend/internal/domain/warehouse"
)

// ManualAllocation is one caller-chosen (item, bin, quantity) assignment
type ManualAllocation struct {
	ItemID   int64
	BinID    int64
	Quantity int
}

// AllocationLine describes one placement made by an allocation call
type AllocationLine struct {
	AllocationID int64               `json:"allocation_id"`
	ItemID       int64               `json:"item_id"`
	BinID        int64               `json:"bin_id"`
	Quantity     int                 `json:"quantity"`
	BinStatus    warehouse.BinStatus `json:"bin_status"`
}

// AllocationResult summarizes a committed allocation call
type AllocationResult struct {
	PurchaseOrderID int64                         `json:"po_id"`
	Mode            warehouse.AllocationMode      `json:"mode"`
	OrderStatus     warehouse.PurchaseOrderStatus `json:"po_status"`
	UnitsAllocated  int                           `json:"units_allocated"`
	Lines           []AllocationLine              `json:"lines"`
}

// StatusUpdateResult is returned by UpdatePurchaseOrderStatus
type StatusUpdateResult struct {
	PurchaseOrderID int64                         `json:"po_id"`
	Status          warehouse.PurchaseOrderStatus `json:"status"`
	Message         string                        `json:"message"`
	Allocation      *AllocationResult             `json:"allocation,omitempty"`
}

// CandidateBinDTO is a bin available for automatic allocation, listed in fill order
type CandidateBinDTO struct {
	ID         int64               `json:"id"`
	Code       string              `json:"code"`
	RackCode   string              `json:"rack_code"`
	ShelfLevel int                 `json:"shelf_level"`
	Position   int                 `json:"position"`
	Capacity   int                 `json:"capacity"`
	Used       int                 `json:"used"`
	Free       int                 `json:"free"`
	Status     warehouse.BinStatus `json:"status"`
}

// ToCandidateBinDTO converts a domain bin to its DTO
func ToCandidateBinDTO(b *warehouse.Bin) CandidateBinDTO {
	return CandidateBinDTO{
		ID:         b.ID,
		Code:       b.Code,
		RackCode:   b.RackCode,
		ShelfLevel: b.ShelfLevel,
		Position:   b.Position,
		Capacity:   b.Capacity,
		Used:       b.Used,
		Free:       b.Free(),
		Status:     b.Status,
	}
}

// PurchaseOrderDTO is the purchase order header
type PurchaseOrderDTO struct {
	ID                   int64                         `json:"id"`
	OrderNumber          string                        `json:"order_number"`
	SupplierID           int64                         `json:"supplier_id"`
	LocationID           int64                         `json:"location_id"`
	Status               warehouse.PurchaseOrderStatus `json:"status"`
	ExpectedDeliveryDate *time.Time                    `json:"expected_delivery_date,omitempty"`
	ActualDeliveryDate   *time.Time                    `json:"actual_delivery_date,omitempty"`
	Notes                string                        `json:"notes,omitempty"`
}

// ItemAllocationDTO is a purchase order line with its placements
type ItemAllocationDTO struct {
	ID               int64                `json:"id"`
	ProductName      string               `json:"product_name"`
	SupplierSKU      string               `json:"supplier_sku,omitempty"`
	QuantityOrdered  int                  `json:"quantity_ordered"`
	QuantityReceived int                  `json:"quantity_received"`
	FullyAllocated   bool                 `json:"fully_allocated"`
	Status           warehouse.ItemStatus `json:"status"`
	UnitCost         decimal.Decimal      `json:"unit_cost"`
	ReceivedValue    decimal.Decimal      `json:"received_value"`
	Allocations      []ItemPlacementDTO   `json:"allocations"`
}

// ItemPlacementDTO is one allocation row of an item
type ItemPlacementDTO struct {
	BinID       int64                    `json:"bin_id"`
	Quantity    int                      `json:"quantity"`
	AllocatedBy string                   `json:"allocated_by"`
	AllocatedAt time.Time                `json:"allocated_at"`
	Mode        warehouse.AllocationMode `json:"mode"`
}

// PurchaseOrderAllocationView is the purchase order with its items and placements
type PurchaseOrderAllocationView struct {
	PO    PurchaseOrderDTO    `json:"po"`
	Items []ItemAllocationDTO `json:"items"`
}

// ToPurchaseOrderAllocationView builds the view from an order and its allocation rows
func ToPurchaseOrderAllocationView(po *warehouse.PurchaseOrder, allocations []warehouse.Allocation) *PurchaseOrderAllocationView {
	byItem := make(map[int64][]ItemPlacementDTO, len(po.Items))
	for _, a := range allocations {
		byItem[a.PurchaseOrderItemID] = append(byItem[a.PurchaseOrderItemID], ItemPlacementDTO{
			BinID:       a.BinID,
			Quantity:    a.QuantityAllocated,
			AllocatedBy: a.AllocatedBy,
			AllocatedAt: a.AllocatedAt,
			Mode:        a.Mode,
		})
	}

	view := &PurchaseOrderAllocationView{
		PO: PurchaseOrderDTO{
			ID:                   po.ID,
			OrderNumber:          po.OrderNumber,
			SupplierID:           po.SupplierID,
			LocationID:           po.LocationID,
			Status:               po.Status,
			ExpectedDeliveryDate: po.ExpectedDeliveryDate,
			ActualDeliveryDate:   po.ActualDeliveryDate,
			Notes:                po.Notes,
		},
		Items: make([]ItemAllocationDTO, len(po.Items)),
	}
	for i := range po.Items {
		item := &po.Items[i]
		placements := byItem[item.ID]
		if placements == nil {
			placements = []ItemPlacementDTO{}
		}
		view.Items[i] = ItemAllocationDTO{
			ID:               item.ID,
			ProductName:      item.ProductName,
			SupplierSKU:      item.SupplierSKU,
			QuantityOrdered:  item.QuantityOrdered,
			QuantityReceived: item.QuantityReceived,
			FullyAllocated:   item.FullyAllocated,
			Status:           item.Status,
			UnitCost:         item.UnitCost,
			ReceivedValue:    item.ReceivedValue(),
			Allocations:      placements,
		}
	}
	return view
}
