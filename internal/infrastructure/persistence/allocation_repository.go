package persistence

import (
	"context"

	"github.com/ventdepot/backend/internal/domain/warehouse"
	"github.com/ventdepot/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormAllocationRepository implements warehouse.AllocationRepository using GORM
type GormAllocationRepository struct {
	db *gorm.DB
}

// NewGormAllocationRepository creates a new GormAllocationRepository
func NewGormAllocationRepository(db *gorm.DB) *GormAllocationRepository {
	return &GormAllocationRepository{db: db}
}

// Create appends an allocation row
func (r *GormAllocationRepository) Create(ctx context.Context, allocation *warehouse.Allocation) error {
	model := models.AllocationModelFromDomain(allocation)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return warehouse.NewPersistenceError("create allocation", err)
	}
	allocation.ID = model.ID
	return nil
}

// FindByPurchaseOrder lists the allocations of an order in insertion order
func (r *GormAllocationRepository) FindByPurchaseOrder(ctx context.Context, poID int64) ([]warehouse.Allocation, error) {
	var rows []models.AllocationModel
	if err := r.db.WithContext(ctx).
		Where("purchase_order_id = ?", poID).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, warehouse.NewPersistenceError("list allocations", err)
	}
	allocations := make([]warehouse.Allocation, len(rows))
	for i := range rows {
		allocations[i] = *rows[i].ToDomain()
	}
	return allocations, nil
}

// SumByItem returns the allocated units per item of an order
func (r *GormAllocationRepository) SumByItem(ctx context.Context, poID int64) (map[int64]int, error) {
	type result struct {
		PurchaseOrderItemID int64 `gorm:"column:purchase_order_item_id"`
		Total               int   `gorm:"column:total"`
	}

	var results []result
	if err := r.db.WithContext(ctx).
		Model(&models.AllocationModel{}).
		Select("purchase_order_item_id, COALESCE(SUM(quantity_allocated), 0) AS total").
		Where("purchase_order_id = ?", poID).
		Group("purchase_order_item_id").
		Scan(&results).Error; err != nil {
		return nil, warehouse.NewPersistenceError("sum allocations", err)
	}

	sums := make(map[int64]int, len(results))
	for _, res := range results {
		sums[res.PurchaseOrderItemID] = res.Total
	}
	return sums, nil
}

// Ensure GormAllocationRepository implements AllocationRepository
var _ warehouse.AllocationRepository = (*GormAllocationRepository)(nil)
