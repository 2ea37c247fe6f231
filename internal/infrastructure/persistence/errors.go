package persistence

import (
	"errors"

	"github.com/ventdepot/backend/internal/domain/shared"
	"github.com/ventdepot/backend/internal/domain/warehouse"
	"gorm.io/gorm"
)

// translateError maps a GORM error to the domain error kinds.
// Record-not-found becomes a NotFound naming the entity, anything else a PersistenceError.
func translateError(op, entity string, id int64, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return warehouse.NewNotFoundError(entity, id)
	}
	return warehouse.NewPersistenceError(op, err)
}

// requireOneRow turns a guarded update that matched no row into a concurrency conflict
func requireOneRow(result *gorm.DB, op string) error {
	if result.Error != nil {
		return warehouse.NewPersistenceError(op, result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}
