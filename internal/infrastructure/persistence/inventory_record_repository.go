package persistence

import (
	"context"

	"github.com/ventdepot/backend/internal/domain/warehouse"
	"github.com/ventdepot/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormInventoryRecordRepository implements warehouse.InventoryRecordRepository using GORM
type GormInventoryRecordRepository struct {
	db *gorm.DB
}

// NewGormInventoryRecordRepository creates a new GormInventoryRecordRepository
func NewGormInventoryRecordRepository(db *gorm.DB) *GormInventoryRecordRepository {
	return &GormInventoryRecordRepository{db: db}
}

// Create inserts a new inventory record
func (r *GormInventoryRecordRepository) Create(ctx context.Context, record *warehouse.InventoryRecord) error {
	model := models.InventoryRecordModelFromDomain(record)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return warehouse.NewPersistenceError("create inventory record", err)
	}
	record.ID = model.ID
	return nil
}

// FindByBin lists the records held in a bin, oldest first
func (r *GormInventoryRecordRepository) FindByBin(ctx context.Context, binID int64) ([]warehouse.InventoryRecord, error) {
	var rows []models.InventoryRecordModel
	if err := r.db.WithContext(ctx).
		Where("bin_id = ?", binID).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, warehouse.NewPersistenceError("list inventory records", err)
	}
	records := make([]warehouse.InventoryRecord, len(rows))
	for i := range rows {
		records[i] = *rows[i].ToDomain()
	}
	return records, nil
}

// Ensure GormInventoryRecordRepository implements InventoryRecordRepository
var _ warehouse.InventoryRecordRepository = (*GormInventoryRecordRepository)(nil)
