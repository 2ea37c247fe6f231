package persistence

import (
	"context"

	appwarehouse "github.com/ventdepot/backend/internal/application/warehouse"
	"github.com/ventdepot/backend/internal/domain/warehouse"
	"gorm.io/gorm"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
// It provides atomic execution of multiple repository operations.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// If the function succeeds, the transaction is committed.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appwarehouse.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// gormTransactionalRepositories provides access to all repositories within a transaction.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// Bins returns the bin repository scoped to the current transaction.
func (r *gormTransactionalRepositories) Bins() warehouse.BinRepository {
	return NewGormBinRepository(r.tx)
}

// PurchaseOrders returns the purchase order repository scoped to the current transaction.
func (r *gormTransactionalRepositories) PurchaseOrders() warehouse.PurchaseOrderRepository {
	return NewGormPurchaseOrderRepository(r.tx)
}

// InventoryRecords returns the inventory record repository scoped to the current transaction.
func (r *gormTransactionalRepositories) InventoryRecords() warehouse.InventoryRecordRepository {
	return NewGormInventoryRecordRepository(r.tx)
}

// Allocations returns the allocation repository scoped to the current transaction.
func (r *gormTransactionalRepositories) Allocations() warehouse.AllocationRepository {
	return NewGormAllocationRepository(r.tx)
}

// Ensure GormTransactionScope implements TransactionScope
var _ appwarehouse.TransactionScope = (*GormTransactionScope)(nil)

// Ensure gormTransactionalRepositories implements TransactionalRepositories
var _ appwarehouse.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
