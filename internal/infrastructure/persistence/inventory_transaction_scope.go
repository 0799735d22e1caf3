package persistence

import (
	"context"

	appinv "github.com/inventra/backend/internal/application/inventory"
	"github.com/inventra/backend/internal/domain/inventory"
	"gorm.io/gorm"
)

// GormInventoryTransactionScope implements the ledger TransactionScope using
// GORM transactions. A position save and its movement append commit or roll
// back as one unit.
type GormInventoryTransactionScope struct {
	db *gorm.DB
}

// NewGormInventoryTransactionScope creates a new GormInventoryTransactionScope
func NewGormInventoryTransactionScope(db *gorm.DB) *GormInventoryTransactionScope {
	return &GormInventoryTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
func (s *GormInventoryTransactionScope) Execute(ctx context.Context, fn func(repos appinv.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormInventoryRepositories{tx: tx})
	})
}

type gormInventoryRepositories struct {
	tx *gorm.DB
}

// PositionRepo returns the stock position repository scoped to the current transaction
func (r *gormInventoryRepositories) PositionRepo() inventory.StockPositionRepository {
	return NewGormStockPositionRepository(r.tx)
}

// MovementRepo returns the stock movement repository scoped to the current transaction
func (r *gormInventoryRepositories) MovementRepo() inventory.StockMovementRepository {
	return NewGormStockMovementRepository(r.tx)
}

var _ appinv.TransactionScope = (*GormInventoryTransactionScope)(nil)
var _ appinv.TransactionalRepositories = (*gormInventoryRepositories)(nil)
