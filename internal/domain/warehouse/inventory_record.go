package warehouse

import (
	"time"

	"github.com/ventdepot/backend/internal/domain/shared"
)

// InventoryRecord is a batch of units sitting in a bin.
// One record is written per placement and records are never merged.
type InventoryRecord struct {
	shared.BaseEntity
	BinID               int64
	PurchaseOrderItemID int64
	ItemName            string
	SKU                 string
	Quantity            int
	ArrivalDate         time.Time
}

// NewInventoryRecord creates a record for units of item placed into binID
func NewInventoryRecord(binID int64, item *PurchaseOrderItem, quantity int, arrival time.Time) *InventoryRecord {
	return &InventoryRecord{
		BaseEntity:          shared.NewBaseEntity(),
		BinID:               binID,
		PurchaseOrderItemID: item.ID,
		ItemName:            item.ProductName,
		SKU:                 item.SupplierSKU,
		Quantity:            quantity,
		ArrivalDate:         Today(arrival),
	}
}
