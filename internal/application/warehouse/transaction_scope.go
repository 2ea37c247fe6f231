package warehouse

import (
	"context"

	"github.com/ventdepot/backend/internal/domain/warehouse"
)

// TransactionScope provides transactional access to warehouse repositories.
// When a function is executed within a transaction scope, all repository operations
// will be part of the same database transaction and will be committed or rolled back atomically.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the allocator's repositories within a transaction.
// All repositories returned share the same underlying database transaction.
//
// Lock order inside a transaction is always purchase order, then its items, then bins.
type TransactionalRepositories interface {
	Bins() warehouse.BinRepository
	PurchaseOrders() warehouse.PurchaseOrderRepository
	InventoryRecords() warehouse.InventoryRecordRepository
	Allocations() warehouse.AllocationRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use transactions.
// This is useful for testing with in-memory fakes.
type NoOpTransactionScope struct {
	bins        warehouse.BinRepository
	orders      warehouse.PurchaseOrderRepository
	records     warehouse.InventoryRecordRepository
	allocations warehouse.AllocationRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	bins warehouse.BinRepository,
	orders warehouse.PurchaseOrderRepository,
	records warehouse.InventoryRecordRepository,
	allocations warehouse.AllocationRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		bins:        bins,
		orders:      orders,
		records:     records,
		allocations: allocations,
	}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// Bins returns the bin repository.
func (s *NoOpTransactionScope) Bins() warehouse.BinRepository { return s.bins }

// PurchaseOrders returns the purchase order repository.
func (s *NoOpTransactionScope) PurchaseOrders() warehouse.PurchaseOrderRepository { return s.orders }

// InventoryRecords returns the inventory record repository.
func (s *NoOpTransactionScope) InventoryRecords() warehouse.InventoryRecordRepository {
	return s.records
}

// Allocations returns the allocation repository.
func (s *NoOpTransactionScope) Allocations() warehouse.AllocationRepository { return s.allocations }

// Ensure NoOpTransactionScope implements both interfaces
var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
