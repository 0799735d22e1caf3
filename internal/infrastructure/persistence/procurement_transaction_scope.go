package persistence

import (
	"context"

	appproc "github.com/inventra/backend/internal/application/procurement"
	"github.com/inventra/backend/internal/domain/inventory"
	"github.com/inventra/backend/internal/domain/procurement"
	"gorm.io/gorm"
)

// GormProcurementTransactionScope implements the procurement TransactionScope
// using GORM transactions. Receipt completion writes the receipt, the order
// and the stock ledger in one transaction, so the scope spans the document
// repositories and the ledger repositories.
type GormProcurementTransactionScope struct {
	db *gorm.DB
}

// NewGormProcurementTransactionScope creates a new GormProcurementTransactionScope
func NewGormProcurementTransactionScope(db *gorm.DB) *GormProcurementTransactionScope {
	return &GormProcurementTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
func (s *GormProcurementTransactionScope) Execute(ctx context.Context, fn func(repos appproc.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormProcurementRepositories{tx: tx})
	})
}

type gormProcurementRepositories struct {
	tx *gorm.DB
}

// OrderRepo returns the purchase order repository scoped to the current transaction
func (r *gormProcurementRepositories) OrderRepo() procurement.PurchaseOrderRepository {
	return NewGormPurchaseOrderRepository(r.tx)
}

// ReceiptRepo returns the goods receipt repository scoped to the current transaction
func (r *gormProcurementRepositories) ReceiptRepo() procurement.GoodsReceiptRepository {
	return NewGormGoodsReceiptRepository(r.tx)
}

// InvoiceRepo returns the purchase invoice repository scoped to the current transaction
func (r *gormProcurementRepositories) InvoiceRepo() procurement.PurchaseInvoiceRepository {
	return NewGormPurchaseInvoiceRepository(r.tx)
}

// PaymentRepo returns the supplier payment repository scoped to the current transaction
func (r *gormProcurementRepositories) PaymentRepo() procurement.SupplierPaymentRepository {
	return NewGormSupplierPaymentRepository(r.tx)
}

// PositionRepo returns the stock position repository scoped to the current transaction
func (r *gormProcurementRepositories) PositionRepo() inventory.StockPositionRepository {
	return NewGormStockPositionRepository(r.tx)
}

// MovementRepo returns the stock movement repository scoped to the current transaction
func (r *gormProcurementRepositories) MovementRepo() inventory.StockMovementRepository {
	return NewGormStockMovementRepository(r.tx)
}

var _ appproc.TransactionScope = (*GormProcurementTransactionScope)(nil)
var _ appproc.TransactionalRepositories = (*gormProcurementRepositories)(nil)
