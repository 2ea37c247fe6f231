package persistence

import (
	"context"

	"github.com/ventdepot/backend/internal/domain/warehouse"
	"github.com/ventdepot/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormPurchaseOrderRepository implements warehouse.PurchaseOrderRepository using GORM
type GormPurchaseOrderRepository struct {
	db *gorm.DB
}

// NewGormPurchaseOrderRepository creates a new GormPurchaseOrderRepository
func NewGormPurchaseOrderRepository(db *gorm.DB) *GormPurchaseOrderRepository {
	return &GormPurchaseOrderRepository{db: db}
}

// FindByID finds a purchase order with its items
func (r *GormPurchaseOrderRepository) FindByID(ctx context.Context, id int64) (*warehouse.PurchaseOrder, error) {
	var model models.PurchaseOrderModel
	if err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).
		First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError("find purchase order", "purchase order", id, err)
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate locks the purchase order row, then its item rows in ID order
func (r *GormPurchaseOrderRepository) FindByIDForUpdate(ctx context.Context, id int64) (*warehouse.PurchaseOrder, error) {
	db := r.db.WithContext(ctx)

	var model models.PurchaseOrderModel
	if err := db.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError("lock purchase order", "purchase order", id, err)
	}

	var items []models.PurchaseOrderItemModel
	if err := db.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("purchase_order_id = ?", id).
		Order("id ASC").
		Find(&items).Error; err != nil {
		return nil, warehouse.NewPersistenceError("lock purchase order items", err)
	}
	model.Items = items

	return model.ToDomain(), nil
}

// Save inserts a new purchase order together with its items
func (r *GormPurchaseOrderRepository) Save(ctx context.Context, po *warehouse.PurchaseOrder) error {
	model := models.PurchaseOrderModelFromDomain(po)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return warehouse.NewPersistenceError("create purchase order", err)
	}

	po.ID = model.ID
	for i := range po.Items {
		po.Items[i].ID = model.Items[i].ID
		po.Items[i].PurchaseOrderID = model.ID
	}
	return nil
}

// UpdateHeader persists the status and delivery dates of a purchase order
func (r *GormPurchaseOrderRepository) UpdateHeader(ctx context.Context, po *warehouse.PurchaseOrder) error {
	result := r.db.WithContext(ctx).
		Model(&models.PurchaseOrderModel{}).
		Where("id = ?", po.ID).
		Updates(map[string]any{
			"status":               string(po.Status),
			"actual_delivery_date": po.ActualDeliveryDate,
			"updated_at":           po.UpdatedAt,
		})
	return requireOneRow(result, "update purchase order")
}

// UpdateItem persists the receiving progress of a line item.
// The update only matches while the received total stays within the ordered quantity.
func (r *GormPurchaseOrderRepository) UpdateItem(ctx context.Context, item *warehouse.PurchaseOrderItem) error {
	result := r.db.WithContext(ctx).
		Model(&models.PurchaseOrderItemModel{}).
		Where("id = ? AND quantity_ordered >= ?", item.ID, item.QuantityReceived).
		Updates(map[string]any{
			"quantity_received": item.QuantityReceived,
			"fully_allocated":   item.FullyAllocated,
			"status":            string(item.Status),
			"updated_at":        item.UpdatedAt,
		})
	return requireOneRow(result, "update purchase order item")
}

// Ensure GormPurchaseOrderRepository implements PurchaseOrderRepository
var _ warehouse.PurchaseOrderRepository = (*GormPurchaseOrderRepository)(nil)
