package warehouse

import (
	"time"

	"github.com/ventdepot/backend/internal/domain/shared"
)

// AllocationMode identifies how bins were chosen for a placement
type AllocationMode string

const (
	AllocationModeAutomatic AllocationMode = "automatic"
	AllocationModeManual    AllocationMode = "manual"
)

// Allocation is the append-only audit row for units of an item placed into a bin
type Allocation struct {
	shared.BaseEntity
	PurchaseOrderID     int64
	PurchaseOrderItemID int64
	BinID               int64
	QuantityAllocated   int
	AllocatedBy         string
	AllocatedAt         time.Time
	RequestID           string
	Mode                AllocationMode
}

// NewAllocation creates an allocation audit row
func NewAllocation(poID, itemID, binID int64, quantity int, actor, requestID string, mode AllocationMode, at time.Time) *Allocation {
	return &Allocation{
		BaseEntity:          shared.NewBaseEntity(),
		PurchaseOrderID:     poID,
		PurchaseOrderItemID: itemID,
		BinID:               binID,
		QuantityAllocated:   quantity,
		AllocatedBy:         actor,
		AllocatedAt:         at,
		RequestID:           requestID,
		Mode:                mode,
	}
}
