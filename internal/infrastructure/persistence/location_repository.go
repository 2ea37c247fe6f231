package persistence

import (
	"context"
	"errors"

	"github.com/ventdepot/backend/internal/domain/shared"
	"github.com/ventdepot/backend/internal/domain/warehouse"
	"github.com/ventdepot/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormLocationRepository implements warehouse.LocationRepository using GORM
type GormLocationRepository struct {
	db *gorm.DB
}

// NewGormLocationRepository creates a new GormLocationRepository
func NewGormLocationRepository(db *gorm.DB) *GormLocationRepository {
	return &GormLocationRepository{db: db}
}

// SaveRack creates or updates a rack
func (r *GormLocationRepository) SaveRack(ctx context.Context, rack *warehouse.Rack) error {
	model := models.RackModelFromDomain(rack)
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		return warehouse.NewPersistenceError("save rack", err)
	}
	rack.ID = model.ID
	return nil
}

// SaveShelf creates or updates a shelf
func (r *GormLocationRepository) SaveShelf(ctx context.Context, shelf *warehouse.Shelf) error {
	model := models.ShelfModelFromDomain(shelf)
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		return warehouse.NewPersistenceError("save shelf", err)
	}
	shelf.ID = model.ID
	return nil
}

// FindRackByCode finds a rack by its unique code
func (r *GormLocationRepository) FindRackByCode(ctx context.Context, code string) (*warehouse.Rack, error) {
	var model models.RackModel
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, warehouse.NewPersistenceError("find rack", err)
	}
	return model.ToDomain(), nil
}

// Ensure GormLocationRepository implements LocationRepository
var _ warehouse.LocationRepository = (*GormLocationRepository)(nil)
