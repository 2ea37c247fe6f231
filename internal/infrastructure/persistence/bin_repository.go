package persistence

import (
	"context"

	"github.com/ventdepot/backend/internal/domain/warehouse"
	"github.com/ventdepot/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormBinRepository implements warehouse.BinRepository using GORM
type GormBinRepository struct {
	db *gorm.DB
}

// NewGormBinRepository creates a new GormBinRepository
func NewGormBinRepository(db *gorm.DB) *GormBinRepository {
	return &GormBinRepository{db: db}
}

// FindByID finds a bin by its ID
func (r *GormBinRepository) FindByID(ctx context.Context, id int64) (*warehouse.Bin, error) {
	var model models.BinModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError("find bin", "bin", id, err)
	}
	return model.ToDomain(), nil
}

// FindByIDsForUpdate locks the given distinct bins and returns them in fill order.
// Rows are locked in the same order FindCandidatesForUpdate uses. A missing ID is not found.
func (r *GormBinRepository) FindByIDsForUpdate(ctx context.Context, ids []int64) ([]warehouse.Bin, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := r.fillOrderQuery(ctx).
		Where("bins.id IN ?", ids).
		Clauses(lockBinRows())
	bins, err := r.findLocated(query, "lock bins")
	if err != nil {
		return nil, err
	}
	if len(bins) < len(ids) {
		found := make(map[int64]bool, len(bins))
		for _, bin := range bins {
			found[bin.ID] = true
		}
		for _, id := range ids {
			if !found[id] {
				return nil, warehouse.NewNotFoundError("bin", id)
			}
		}
	}
	return bins, nil
}

// FindCandidates returns bins that can accept stock in fill order
func (r *GormBinRepository) FindCandidates(ctx context.Context) ([]warehouse.Bin, error) {
	return r.findLocated(r.candidateQuery(ctx), "list candidate bins")
}

// FindCandidatesForUpdate returns the candidate bins in fill order with their rows locked.
// Only the bins rows are locked; racks and shelves stay shared.
func (r *GormBinRepository) FindCandidatesForUpdate(ctx context.Context) ([]warehouse.Bin, error) {
	return r.findLocated(r.candidateQuery(ctx).Clauses(lockBinRows()), "lock candidate bins")
}

func (r *GormBinRepository) candidateQuery(ctx context.Context) *gorm.DB {
	return r.fillOrderQuery(ctx).Where("bins.status IN ?", candidateStatuses())
}

// fillOrderQuery selects bins with their location ordered by rack code, shelf level, position and id
func (r *GormBinRepository) fillOrderQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("bins").
		Select("bins.*, racks.code AS rack_code, shelves.level AS shelf_level").
		Joins("JOIN shelves ON shelves.id = bins.shelf_id").
		Joins("JOIN racks ON racks.id = shelves.rack_id").
		Order("racks.code ASC").
		Order("shelves.level ASC").
		Order("bins.position ASC").
		Order("bins.id ASC")
}

func lockBinRows() clause.Locking {
	return clause.Locking{Strength: "UPDATE", Table: clause.Table{Name: "bins"}}
}

func (r *GormBinRepository) findLocated(query *gorm.DB, op string) ([]warehouse.Bin, error) {
	var rows []models.LocatedBinModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, warehouse.NewPersistenceError(op, err)
	}
	bins := make([]warehouse.Bin, len(rows))
	for i := range rows {
		bins[i] = *rows[i].ToDomain()
	}
	return bins, nil
}

// Save creates or updates a bin
func (r *GormBinRepository) Save(ctx context.Context, bin *warehouse.Bin) error {
	model := models.BinModelFromDomain(bin)
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		return warehouse.NewPersistenceError("save bin", err)
	}
	bin.ID = model.ID
	return nil
}

// UpdateUsage persists the committed quantity and status of a bin.
// The update only matches while the new usage still fits the stored capacity.
func (r *GormBinRepository) UpdateUsage(ctx context.Context, bin *warehouse.Bin) error {
	result := r.db.WithContext(ctx).
		Model(&models.BinModel{}).
		Where("id = ? AND capacity >= ?", bin.ID, bin.Used).
		Updates(map[string]any{
			"used":       bin.Used,
			"status":     string(bin.Status),
			"updated_at": bin.UpdatedAt,
		})
	return requireOneRow(result, "update bin usage")
}

func candidateStatuses() []string {
	statuses := warehouse.CandidateBinStatuses()
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

// Ensure GormBinRepository implements BinRepository
var _ warehouse.BinRepository = (*GormBinRepository)(nil)
