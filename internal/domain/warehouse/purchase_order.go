package warehouse

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/ventdepot/backend/internal/domain/shared"
)

// PurchaseOrderStatus represents the status of a purchase order
type PurchaseOrderStatus string

const (
	PurchaseOrderStatusPending   PurchaseOrderStatus = "pending"
	PurchaseOrderStatusReceived  PurchaseOrderStatus = "received"
	PurchaseOrderStatusCancelled PurchaseOrderStatus = "cancelled"
)

// IsValid checks if the status is a valid PurchaseOrderStatus
func (s PurchaseOrderStatus) IsValid() bool {
	switch s {
	case PurchaseOrderStatusPending, PurchaseOrderStatusReceived, PurchaseOrderStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of PurchaseOrderStatus
func (s PurchaseOrderStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s PurchaseOrderStatus) CanTransitionTo(target PurchaseOrderStatus) bool {
	switch s {
	case PurchaseOrderStatusPending:
		return target == PurchaseOrderStatusReceived || target == PurchaseOrderStatusCancelled
	case PurchaseOrderStatusReceived, PurchaseOrderStatusCancelled:
		return false // Terminal states
	}
	return false
}

// CanReceive returns true if stock may still be placed against the order
func (s PurchaseOrderStatus) CanReceive() bool {
	return s == PurchaseOrderStatusPending
}

// ItemStatus represents the receiving progress of a purchase order line
type ItemStatus string

const (
	ItemStatusPending         ItemStatus = "pending"
	ItemStatusPartialReceived ItemStatus = "partial_received"
	ItemStatusReceived        ItemStatus = "received"
)

// IsValid checks if the status is a valid ItemStatus
func (s ItemStatus) IsValid() bool {
	switch s {
	case ItemStatusPending, ItemStatusPartialReceived, ItemStatusReceived:
		return true
	}
	return false
}

// rank orders item statuses; transitions never move to a lower rank
func (s ItemStatus) rank() int {
	switch s {
	case ItemStatusPartialReceived:
		return 1
	case ItemStatusReceived:
		return 2
	}
	return 0
}

// PurchaseOrderItem represents a line item in a purchase order
type PurchaseOrderItem struct {
	shared.BaseEntity
	PurchaseOrderID  int64
	ProductName      string
	SupplierSKU      string
	QuantityOrdered  int
	QuantityReceived int
	FullyAllocated   bool
	Status           ItemStatus
	UnitCost         decimal.Decimal
}

// NewPurchaseOrderItem creates a new pending line item
func NewPurchaseOrderItem(productName, supplierSKU string, quantity int, unitCost decimal.Decimal) (*PurchaseOrderItem, error) {
	productName = strings.TrimSpace(productName)
	if productName == "" {
		return nil, NewValidationError("Product name cannot be empty")
	}
	if quantity <= 0 {
		return nil, NewValidationError("Ordered quantity must be positive")
	}
	if unitCost.IsNegative() {
		return nil, NewValidationError("Unit cost cannot be negative")
	}
	return &PurchaseOrderItem{
		BaseEntity:      shared.NewBaseEntity(),
		ProductName:     productName,
		SupplierSKU:     strings.TrimSpace(supplierSKU),
		QuantityOrdered: quantity,
		Status:          ItemStatusPending,
		UnitCost:        unitCost,
	}, nil
}

// RemainingQuantity returns the quantity still to be received
func (i *PurchaseOrderItem) RemainingQuantity() int {
	remaining := i.QuantityOrdered - i.QuantityReceived
	if remaining < 0 {
		return 0
	}
	return remaining
}

// IsFullyReceived returns true if all ordered quantity has been received
func (i *PurchaseOrderItem) IsFullyReceived() bool {
	return i.QuantityReceived >= i.QuantityOrdered
}

// Receive adds quantity to the received total and advances the item status.
// The received total never exceeds the ordered quantity.
func (i *PurchaseOrderItem) Receive(quantity int) error {
	if quantity <= 0 {
		return NewValidationError("Received quantity must be positive")
	}
	if i.QuantityReceived+quantity > i.QuantityOrdered {
		return NewValidationError(fmt.Sprintf(
			"Item %d: receiving %d would exceed ordered quantity %d (already received %d)",
			i.ID, quantity, i.QuantityOrdered, i.QuantityReceived))
	}

	i.QuantityReceived += quantity
	next := ItemStatusPartialReceived
	if i.QuantityReceived == i.QuantityOrdered {
		next = ItemStatusReceived
		i.FullyAllocated = true
	}
	if next.rank() > i.Status.rank() {
		i.Status = next
	}
	i.Touch()
	return nil
}

// ReceivedValue returns unit cost times received quantity
func (i *PurchaseOrderItem) ReceivedValue() decimal.Decimal {
	return i.UnitCost.Mul(decimal.NewFromInt(int64(i.QuantityReceived)))
}

// PurchaseOrder is the aggregate root for an inbound supplier order
type PurchaseOrder struct {
	shared.BaseEntity
	OrderNumber          string
	SupplierID           int64
	LocationID           int64
	Status               PurchaseOrderStatus
	ExpectedDeliveryDate *time.Time
	ActualDeliveryDate   *time.Time
	Notes                string
	Items                []PurchaseOrderItem
}

// NewPurchaseOrder creates a new pending purchase order
func NewPurchaseOrder(orderNumber string, supplierID, locationID int64) (*PurchaseOrder, error) {
	orderNumber = strings.TrimSpace(orderNumber)
	if orderNumber == "" {
		return nil, NewValidationError("Order number cannot be empty")
	}
	if supplierID <= 0 {
		return nil, NewValidationError("Supplier ID is required")
	}
	return &PurchaseOrder{
		BaseEntity:  shared.NewBaseEntity(),
		OrderNumber: orderNumber,
		SupplierID:  supplierID,
		LocationID:  locationID,
		Status:      PurchaseOrderStatusPending,
		Items:       make([]PurchaseOrderItem, 0),
	}, nil
}

// AddItem appends a line item to a pending order
func (po *PurchaseOrder) AddItem(item *PurchaseOrderItem) error {
	if po.Status != PurchaseOrderStatusPending {
		return NewInvalidStateError("Items can only be added to a pending purchase order")
	}
	item.PurchaseOrderID = po.ID
	po.Items = append(po.Items, *item)
	po.Touch()
	return nil
}

// FindItem returns the line item with the given ID, or nil
func (po *PurchaseOrder) FindItem(itemID int64) *PurchaseOrderItem {
	for idx := range po.Items {
		if po.Items[idx].ID == itemID {
			return &po.Items[idx]
		}
	}
	return nil
}

// AllItemsReceived returns true if every line has received its ordered quantity
func (po *PurchaseOrder) AllItemsReceived() bool {
	if len(po.Items) == 0 {
		return false
	}
	for idx := range po.Items {
		if !po.Items[idx].IsFullyReceived() {
			return false
		}
	}
	return true
}

// MarkReceived transitions the order to received, stamping the delivery date
func (po *PurchaseOrder) MarkReceived(deliveredOn time.Time) error {
	if !po.Status.CanTransitionTo(PurchaseOrderStatusReceived) {
		return NewInvalidStateError(fmt.Sprintf("Cannot receive purchase order in %s status", po.Status))
	}
	day := Today(deliveredOn)
	po.Status = PurchaseOrderStatusReceived
	po.ActualDeliveryDate = &day
	po.Touch()
	return nil
}

// Cancel transitions a pending order to cancelled
func (po *PurchaseOrder) Cancel() error {
	if !po.Status.CanTransitionTo(PurchaseOrderStatusCancelled) {
		return NewInvalidStateError(fmt.Sprintf("Cannot cancel purchase order in %s status", po.Status))
	}
	po.Status = PurchaseOrderStatusCancelled
	po.Touch()
	return nil
}

// Today truncates t to its UTC calendar date
func Today(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
