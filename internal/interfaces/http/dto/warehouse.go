package dto

import (
	appwarehouse "github.com/ventdepot/backend/internal/application/warehouse"
)

// UpdatePOStatusRequest is the body of POST /update_po_status
type UpdatePOStatusRequest struct {
	POID   int64  `json:"po_id" binding:"required,gt=0"`
	Status string `json:"status" binding:"required,oneof=pending received cancelled"`
}

// AllocateItemsRequest is the body of POST /allocate_items_to_bins
type AllocateItemsRequest struct {
	POID        int64                `json:"po_id" binding:"required,gt=0"`
	Allocations []ItemAllocationLine `json:"allocations" binding:"required,min=1,dive"`
}

// ItemAllocationLine places quantity units of one item into one bin
type ItemAllocationLine struct {
	ItemID   int64 `json:"item_id" binding:"required,gt=0"`
	BinID    int64 `json:"bin_id" binding:"required,gt=0"`
	Quantity int   `json:"quantity" binding:"required,gt=0"`
}

// GetPOAllocationQuery is the query of GET /get_po_allocation
type GetPOAllocationQuery struct {
	POID int64 `form:"po_id" binding:"required,gt=0"`
}

// ToManualAllocations converts the request lines to service input
func (r AllocateItemsRequest) ToManualAllocations() []appwarehouse.ManualAllocation {
	out := make([]appwarehouse.ManualAllocation, len(r.Allocations))
	for i, line := range r.Allocations {
		out[i] = appwarehouse.ManualAllocation{
			ItemID:   line.ItemID,
			BinID:    line.BinID,
			Quantity: line.Quantity,
		}
	}
	return out
}
