package warehouse

import "context"

// BinRepository defines persistence for bins.
// The ForUpdate variants take row locks that are held until the surrounding transaction ends.
type BinRepository interface {
	FindByID(ctx context.Context, id int64) (*Bin, error)
	// FindByIDsForUpdate locks the given bins in the same order as FindCandidatesForUpdate
	FindByIDsForUpdate(ctx context.Context, ids []int64) ([]Bin, error)
	// FindCandidates returns empty and partial bins ordered by rack code, shelf level, bin position
	FindCandidates(ctx context.Context) ([]Bin, error)
	FindCandidatesForUpdate(ctx context.Context) ([]Bin, error)
	Save(ctx context.Context, bin *Bin) error
	// UpdateUsage persists a bin's used quantity and status
	UpdateUsage(ctx context.Context, bin *Bin) error
}

// LocationRepository persists the rack and shelf hierarchy
type LocationRepository interface {
	SaveRack(ctx context.Context, rack *Rack) error
	SaveShelf(ctx context.Context, shelf *Shelf) error
	FindRackByCode(ctx context.Context, code string) (*Rack, error)
}

// PurchaseOrderRepository defines persistence for purchase orders and their items
type PurchaseOrderRepository interface {
	// FindByID loads an order with its items ordered by item ID
	FindByID(ctx context.Context, id int64) (*PurchaseOrder, error)
	// FindByIDForUpdate locks the order row and then its item rows
	FindByIDForUpdate(ctx context.Context, id int64) (*PurchaseOrder, error)
	// Save inserts a new order together with its items
	Save(ctx context.Context, po *PurchaseOrder) error
	// UpdateHeader persists status and delivery dates
	UpdateHeader(ctx context.Context, po *PurchaseOrder) error
	// UpdateItem persists received quantity, allocation flag and status
	UpdateItem(ctx context.Context, item *PurchaseOrderItem) error
}

// InventoryRecordRepository persists inventory records
type InventoryRecordRepository interface {
	Create(ctx context.Context, record *InventoryRecord) error
	FindByBin(ctx context.Context, binID int64) ([]InventoryRecord, error)
}

// AllocationRepository persists the allocation audit trail
type AllocationRepository interface {
	Create(ctx context.Context, allocation *Allocation) error
	FindByPurchaseOrder(ctx context.Context, poID int64) ([]Allocation, error)
	// SumByItem returns allocated units per item for an order
	SumByItem(ctx context.Context, poID int64) (map[int64]int, error)
}
