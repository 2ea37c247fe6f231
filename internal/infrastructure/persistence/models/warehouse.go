package models

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/ventdepot/backend/internal/domain/warehouse"
)

// RackModel is the persistence model for the Rack entity.
type RackModel struct {
	BaseModel
	Code string `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name string `gorm:"type:varchar(100)"`
}

// TableName returns the table name for GORM
func (RackModel) TableName() string {
	return "racks"
}

// ToDomain converts the persistence model to a domain Rack entity.
func (m *RackModel) ToDomain() *warehouse.Rack {
	return &warehouse.Rack{
		BaseEntity: m.BaseModel.ToDomain(),
		Code:       m.Code,
		Name:       m.Name,
	}
}

// RackModelFromDomain creates a new persistence model from a domain Rack entity.
func RackModelFromDomain(r *warehouse.Rack) *RackModel {
	m := &RackModel{Code: r.Code, Name: r.Name}
	m.FromDomainBaseEntity(r.BaseEntity)
	return m
}

// ShelfModel is the persistence model for the Shelf entity.
type ShelfModel struct {
	BaseModel
	RackID int64  `gorm:"not null;index"`
	Level  int    `gorm:"not null"`
	Name   string `gorm:"type:varchar(100)"`
}

// TableName returns the table name for GORM
func (ShelfModel) TableName() string {
	return "shelves"
}

// ToDomain converts the persistence model to a domain Shelf entity.
func (m *ShelfModel) ToDomain() *warehouse.Shelf {
	return &warehouse.Shelf{
		BaseEntity: m.BaseModel.ToDomain(),
		RackID:     m.RackID,
		Level:      m.Level,
		Name:       m.Name,
	}
}

// ShelfModelFromDomain creates a new persistence model from a domain Shelf entity.
func ShelfModelFromDomain(s *warehouse.Shelf) *ShelfModel {
	m := &ShelfModel{RackID: s.RackID, Level: s.Level, Name: s.Name}
	m.FromDomainBaseEntity(s.BaseEntity)
	return m
}

// BinModel is the persistence model for the Bin entity.
type BinModel struct {
	BaseModel
	ShelfID  int64  `gorm:"not null;index"`
	Code     string `gorm:"type:varchar(50);not null;uniqueIndex"`
	Position int    `gorm:"not null"`
	Capacity int    `gorm:"not null;default:100"`
	Used     int    `gorm:"not null;default:0"`
	Status   string `gorm:"type:varchar(20);not null;default:'empty';index"`
}

// TableName returns the table name for GORM
func (BinModel) TableName() string {
	return "bins"
}

// ToDomain converts the persistence model to a domain Bin entity.
func (m *BinModel) ToDomain() *warehouse.Bin {
	return &warehouse.Bin{
		BaseEntity: m.BaseModel.ToDomain(),
		ShelfID:    m.ShelfID,
		Code:       m.Code,
		Position:   m.Position,
		Capacity:   m.Capacity,
		Used:       m.Used,
		Status:     warehouse.BinStatus(m.Status),
	}
}

// FromDomain populates the persistence model from a domain Bin entity.
func (m *BinModel) FromDomain(b *warehouse.Bin) {
	m.FromDomainBaseEntity(b.BaseEntity)
	m.ShelfID = b.ShelfID
	m.Code = b.Code
	m.Position = b.Position
	m.Capacity = b.Capacity
	m.Used = b.Used
	m.Status = string(b.Status)
}

// BinModelFromDomain creates a new persistence model from a domain Bin entity.
func BinModelFromDomain(b *warehouse.Bin) *BinModel {
	m := &BinModel{}
	m.FromDomain(b)
	return m
}

// LocatedBinModel is a bin row joined with its shelf level and rack code
type LocatedBinModel struct {
	BinModel
	RackCode   string `gorm:"column:rack_code"`
	ShelfLevel int    `gorm:"column:shelf_level"`
}

// ToDomain converts the joined row to a domain Bin with location keys populated.
func (m *LocatedBinModel) ToDomain() *warehouse.Bin {
	b := m.BinModel.ToDomain()
	b.RackCode = m.RackCode
	b.ShelfLevel = m.ShelfLevel
	return b
}

// PurchaseOrderModel is the persistence model for the PurchaseOrder aggregate root.
type PurchaseOrderModel struct {
	BaseModel
	OrderNumber          string     `gorm:"type:varchar(50);not null;uniqueIndex"`
	SupplierID           int64      `gorm:"not null;index"`
	LocationID           int64      `gorm:"not null;default:0"`
	Status               string     `gorm:"type:varchar(20);not null;default:'pending';index"`
	ExpectedDeliveryDate *time.Time `gorm:"type:date"`
	ActualDeliveryDate   *time.Time `gorm:"type:date"`
	Notes                string     `gorm:"type:text"`
	// Associations
	Items []PurchaseOrderItemModel `gorm:"foreignKey:PurchaseOrderID;references:ID"`
}

// TableName returns the table name for GORM
func (PurchaseOrderModel) TableName() string {
	return "purchase_orders"
}

// ToDomain converts the persistence model to a domain PurchaseOrder aggregate.
func (m *PurchaseOrderModel) ToDomain() *warehouse.PurchaseOrder {
	po := &warehouse.PurchaseOrder{
		BaseEntity:           m.BaseModel.ToDomain(),
		OrderNumber:          m.OrderNumber,
		SupplierID:           m.SupplierID,
		LocationID:           m.LocationID,
		Status:               warehouse.PurchaseOrderStatus(m.Status),
		ExpectedDeliveryDate: m.ExpectedDeliveryDate,
		ActualDeliveryDate:   m.ActualDeliveryDate,
		Notes:                m.Notes,
		Items:                make([]warehouse.PurchaseOrderItem, len(m.Items)),
	}
	for i := range m.Items {
		po.Items[i] = *m.Items[i].ToDomain()
	}
	return po
}

// FromDomain populates the persistence model from a domain PurchaseOrder aggregate.
func (m *PurchaseOrderModel) FromDomain(po *warehouse.PurchaseOrder) {
	m.FromDomainBaseEntity(po.BaseEntity)
	m.OrderNumber = po.OrderNumber
	m.SupplierID = po.SupplierID
	m.LocationID = po.LocationID
	m.Status = string(po.Status)
	m.ExpectedDeliveryDate = po.ExpectedDeliveryDate
	m.ActualDeliveryDate = po.ActualDeliveryDate
	m.Notes = po.Notes
	m.Items = make([]PurchaseOrderItemModel, len(po.Items))
	for i := range po.Items {
		m.Items[i] = *PurchaseOrderItemModelFromDomain(&po.Items[i])
	}
}

// PurchaseOrderModelFromDomain creates a new persistence model from a domain PurchaseOrder.
func PurchaseOrderModelFromDomain(po *warehouse.PurchaseOrder) *PurchaseOrderModel {
	m := &PurchaseOrderModel{}
	m.FromDomain(po)
	return m
}

// PurchaseOrderItemModel is the persistence model for the PurchaseOrderItem entity.
type PurchaseOrderItemModel struct {
	BaseModel
	PurchaseOrderID  int64           `gorm:"not null;index"`
	ProductName      string          `gorm:"type:varchar(200);not null"`
	SupplierSKU      string          `gorm:"column:supplier_sku;type:varchar(100)"`
	QuantityOrdered  int             `gorm:"not null"`
	QuantityReceived int             `gorm:"not null;default:0"`
	FullyAllocated   bool            `gorm:"not null;default:false"`
	Status           string          `gorm:"type:varchar(20);not null;default:'pending'"`
	UnitCost         decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (PurchaseOrderItemModel) TableName() string {
	return "purchase_order_items"
}

// ToDomain converts the persistence model to a domain PurchaseOrderItem entity.
func (m *PurchaseOrderItemModel) ToDomain() *warehouse.PurchaseOrderItem {
	return &warehouse.PurchaseOrderItem{
		BaseEntity:       m.BaseModel.ToDomain(),
		PurchaseOrderID:  m.PurchaseOrderID,
		ProductName:      m.ProductName,
		SupplierSKU:      m.SupplierSKU,
		QuantityOrdered:  m.QuantityOrdered,
		QuantityReceived: m.QuantityReceived,
		FullyAllocated:   m.FullyAllocated,
		Status:           warehouse.ItemStatus(m.Status),
		UnitCost:         m.UnitCost,
	}
}

// PurchaseOrderItemModelFromDomain creates a new persistence model from a domain item.
func PurchaseOrderItemModelFromDomain(i *warehouse.PurchaseOrderItem) *PurchaseOrderItemModel {
	m := &PurchaseOrderItemModel{
		PurchaseOrderID:  i.PurchaseOrderID,
		ProductName:      i.ProductName,
		SupplierSKU:      i.SupplierSKU,
		QuantityOrdered:  i.QuantityOrdered,
		QuantityReceived: i.QuantityReceived,
		FullyAllocated:   i.FullyAllocated,
		Status:           string(i.Status),
		UnitCost:         i.UnitCost,
	}
	m.FromDomainBaseEntity(i.BaseEntity)
	return m
}

// InventoryRecordModel is the persistence model for the InventoryRecord entity.
type InventoryRecordModel struct {
	BaseModel
	BinID               int64     `gorm:"not null;index"`
	PurchaseOrderItemID int64     `gorm:"index"`
	ItemName            string    `gorm:"type:varchar(200);not null"`
	SKU                 string    `gorm:"column:sku;type:varchar(100)"`
	Quantity            int       `gorm:"not null"`
	ArrivalDate         time.Time `gorm:"type:date;not null"`
}

// TableName returns the table name for GORM
func (InventoryRecordModel) TableName() string {
	return "inventory_records"
}

// ToDomain converts the persistence model to a domain InventoryRecord entity.
func (m *InventoryRecordModel) ToDomain() *warehouse.InventoryRecord {
	return &warehouse.InventoryRecord{
		BaseEntity:          m.BaseModel.ToDomain(),
		BinID:               m.BinID,
		PurchaseOrderItemID: m.PurchaseOrderItemID,
		ItemName:            m.ItemName,
		SKU:                 m.SKU,
		Quantity:            m.Quantity,
		ArrivalDate:         m.ArrivalDate,
	}
}

// InventoryRecordModelFromDomain creates a new persistence model from a domain record.
func InventoryRecordModelFromDomain(r *warehouse.InventoryRecord) *InventoryRecordModel {
	m := &InventoryRecordModel{
		BinID:               r.BinID,
		PurchaseOrderItemID: r.PurchaseOrderItemID,
		ItemName:            r.ItemName,
		SKU:                 r.SKU,
		Quantity:            r.Quantity,
		ArrivalDate:         r.ArrivalDate,
	}
	m.FromDomainBaseEntity(r.BaseEntity)
	return m
}

// AllocationModel is the persistence model for the Allocation audit row.
type AllocationModel struct {
	BaseModel
	PurchaseOrderID     int64     `gorm:"not null;index"`
	PurchaseOrderItemID int64     `gorm:"not null;index"`
	BinID               int64     `gorm:"not null;index"`
	QuantityAllocated   int       `gorm:"not null"`
	AllocatedBy         string    `gorm:"type:varchar(100);not null"`
	AllocatedAt         time.Time `gorm:"not null"`
	RequestID           string    `gorm:"type:varchar(64)"`
	Mode                string    `gorm:"type:varchar(20);not null"`
}

// TableName returns the table name for GORM
func (AllocationModel) TableName() string {
	return "allocations"
}

// ToDomain converts the persistence model to a domain Allocation.
func (m *AllocationModel) ToDomain() *warehouse.Allocation {
	return &warehouse.Allocation{
		BaseEntity:          m.BaseModel.ToDomain(),
		PurchaseOrderID:     m.PurchaseOrderID,
		PurchaseOrderItemID: m.PurchaseOrderItemID,
		BinID:               m.BinID,
		QuantityAllocated:   m.QuantityAllocated,
		AllocatedBy:         m.AllocatedBy,
		AllocatedAt:         m.AllocatedAt,
		RequestID:           m.RequestID,
		Mode:                warehouse.AllocationMode(m.Mode),
	}
}

// AllocationModelFromDomain creates a new persistence model from a domain Allocation.
func AllocationModelFromDomain(a *warehouse.Allocation) *AllocationModel {
	m := &AllocationModel{
		PurchaseOrderID:     a.PurchaseOrderID,
		PurchaseOrderItemID: a.PurchaseOrderItemID,
		BinID:               a.BinID,
		QuantityAllocated:   a.QuantityAllocated,
		AllocatedBy:         a.AllocatedBy,
		AllocatedAt:         a.AllocatedAt,
		RequestID:           a.RequestID,
		Mode:                string(a.Mode),
	}
	m.FromDomainBaseEntity(a.BaseEntity)
	return m
}

// WarehouseModels lists every model in dependency order, for AutoMigrate in tests
func WarehouseModels() []any {
	return []any{
		&RackModel{},
		&ShelfModel{},
		&BinModel{},
		&PurchaseOrderModel{},
		&PurchaseOrderItemModel{},
		&InventoryRecordModel{},
		&AllocationModel{},
	}
}
