package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ventdepot/backend/internal/domain/shared"
	"github.com/ventdepot/backend/internal/domain/warehouse"
)

var locatedBinColumns = []string{
	"id", "created_at", "updated_at", "shelf_id", "code", "position",
	"capacity", "used", "status", "rack_code", "shelf_level",
}

const locatedBinSelect = `SELECT bins\.\*, racks\.code AS rack_code, shelves\.level AS shelf_level FROM "bins" ` +
	`JOIN shelves ON shelves\.id = bins\.shelf_id JOIN racks ON racks\.id = shelves\.rack_id `

const fillOrderLocked = `ORDER BY racks\.code ASC,shelves\.level ASC,bins\.position ASC,bins\.id ASC FOR UPDATE OF "bins"`

const lockedCandidatesQuery = locatedBinSelect + `WHERE bins\.status IN \(\$1,\$2\) ` + fillOrderLocked

const lockedBinsByIDQuery = locatedBinSelect + `WHERE bins\.id IN \(\$1,\$2\) ` + fillOrderLocked

func TestGormBinRepository_FindCandidatesForUpdate(t *testing.T) {
	db, mock, mockDB := newMockGormDB(t)
	defer mockDB.Close()
	repo := NewGormBinRepository(db)
	now := time.Now()

	mock.ExpectQuery(lockedCandidatesQuery).
		WithArgs("empty", "partial").
		WillReturnRows(sqlmock.NewRows(locatedBinColumns).
			AddRow(3, now, now, 1, "A-1-1", 1, 100, 0, "empty", "A", 1).
			AddRow(1, now, now, 1, "A-1-2", 2, 100, 40, "partial", "A", 1))

	bins, err := repo.FindCandidatesForUpdate(context.Background())
	require.NoError(t, err)
	require.Len(t, bins, 2)

	assert.Equal(t, int64(3), bins[0].ID)
	assert.Equal(t, "A", bins[0].RackCode)
	assert.Equal(t, 1, bins[0].ShelfLevel)
	assert.Equal(t, warehouse.BinStatusPartial, bins[1].Status)
	assert.Equal(t, 60, bins[1].Free())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormBinRepository_FindCandidates_DoesNotLock(t *testing.T) {
	db, mock, mockDB := newMockGormDB(t)
	defer mockDB.Close()
	repo := NewGormBinRepository(db)

	mock.ExpectQuery(`ORDER BY racks\.code ASC,shelves\.level ASC,bins\.position ASC,bins\.id ASC$`).
		WillReturnRows(sqlmock.NewRows(locatedBinColumns))

	bins, err := repo.FindCandidates(context.Background())
	require.NoError(t, err)
	assert.Empty(t, bins)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormBinRepository_FindByIDsForUpdate(t *testing.T) {
	t.Run("locks in fill order", func(t *testing.T) {
		db, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormBinRepository(db)
		now := time.Now()

		mock.ExpectQuery(lockedBinsByIDQuery).
			WithArgs(int64(1), int64(2)).
			WillReturnRows(sqlmock.NewRows(locatedBinColumns).
				AddRow(2, now, now, 4, "A-1-01", 1, 50, 50, "full", "A", 1).
				AddRow(1, now, now, 9, "B-1-01", 1, 100, 10, "partial", "B", 1))

		bins, err := repo.FindByIDsForUpdate(context.Background(), []int64{1, 2})
		require.NoError(t, err)
		require.Len(t, bins, 2)

		assert.Equal(t, int64(2), bins[0].ID)
		assert.True(t, bins[0].IsFull())
		assert.Equal(t, "B", bins[1].RackCode)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing bin is not found", func(t *testing.T) {
		db, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormBinRepository(db)
		now := time.Now()

		mock.ExpectQuery(`FROM "bins"`).
			WillReturnRows(sqlmock.NewRows(locatedBinColumns).
				AddRow(3, now, now, 1, "A-1-01", 1, 100, 0, "empty", "A", 1))

		_, err := repo.FindByIDsForUpdate(context.Background(), []int64{3, 404})
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.Contains(t, err.Error(), "bin 404 not found")
	})

	t.Run("driver failure is a persistence error", func(t *testing.T) {
		db, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormBinRepository(db)

		mock.ExpectQuery(`FROM "bins"`).WillReturnError(assert.AnError)

		_, err := repo.FindByIDsForUpdate(context.Background(), []int64{1})
		var persistErr *warehouse.PersistenceError
		assert.ErrorAs(t, err, &persistErr)
		assert.ErrorIs(t, err, assert.AnError)
	})

	t.Run("no ids runs no query", func(t *testing.T) {
		db, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormBinRepository(db)

		bins, err := repo.FindByIDsForUpdate(context.Background(), nil)
		assert.NoError(t, err)
		assert.Empty(t, bins)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormBinRepository_UpdateUsage(t *testing.T) {
	bin := &warehouse.Bin{
		BaseEntity: shared.BaseEntity{ID: 7, UpdatedAt: time.Now()},
		Capacity:   100,
		Used:       100,
		Status:     warehouse.BinStatusFull,
	}

	t.Run("guards on capacity", func(t *testing.T) {
		db, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormBinRepository(db)

		mock.ExpectExec(`UPDATE "bins" SET .* WHERE id = \$\d+ AND capacity >= \$\d+`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.UpdateUsage(context.Background(), bin))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no matching row is a conflict", func(t *testing.T) {
		db, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormBinRepository(db)

		mock.ExpectExec(`UPDATE "bins" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.UpdateUsage(context.Background(), bin)
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	})
}
