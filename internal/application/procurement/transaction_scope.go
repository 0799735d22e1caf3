package procurement

import (
	"context"

	"github.com/inventra/backend/internal/domain/inventory"
	"github.com/inventra/backend/internal/domain/procurement"
)

// TransactionScope provides transactional access to the procurement and
// ledger repositories. Goods receipt completion and payment transitions
// touch documents and stock in the same unit of work, so the scope spans
// both bounded contexts.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to all repositories a
// procurement workflow may touch within one transaction.
type TransactionalRepositories interface {
	// OrderRepo returns the purchase order repository scoped to the current transaction
	OrderRepo() procurement.PurchaseOrderRepository
	// ReceiptRepo returns the goods receipt repository scoped to the current transaction
	ReceiptRepo() procurement.GoodsReceiptRepository
	// InvoiceRepo returns the purchase invoice repository scoped to the current transaction
	InvoiceRepo() procurement.PurchaseInvoiceRepository
	// PaymentRepo returns the supplier payment repository scoped to the current transaction
	PaymentRepo() procurement.SupplierPaymentRepository
	// PositionRepo returns the stock position repository scoped to the current transaction
	PositionRepo() inventory.StockPositionRepository
	// MovementRepo returns the stock movement repository scoped to the current transaction
	MovementRepo() inventory.StockMovementRepository
}

// NoOpTransactionScope is a transaction scope without real transactions,
// for testing with in-memory repositories.
type NoOpTransactionScope struct {
	orderRepo    procurement.PurchaseOrderRepository
	receiptRepo  procurement.GoodsReceiptRepository
	invoiceRepo  procurement.PurchaseInvoiceRepository
	paymentRepo  procurement.SupplierPaymentRepository
	positionRepo inventory.StockPositionRepository
	movementRepo inventory.StockMovementRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	orderRepo procurement.PurchaseOrderRepository,
	receiptRepo procurement.GoodsReceiptRepository,
	invoiceRepo procurement.PurchaseInvoiceRepository,
	paymentRepo procurement.SupplierPaymentRepository,
	positionRepo inventory.StockPositionRepository,
	movementRepo inventory.StockMovementRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		orderRepo:    orderRepo,
		receiptRepo:  receiptRepo,
		invoiceRepo:  invoiceRepo,
		paymentRepo:  paymentRepo,
		positionRepo: positionRepo,
		movementRepo: movementRepo,
	}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// OrderRepo returns the purchase order repository.
func (s *NoOpTransactionScope) OrderRepo() procurement.PurchaseOrderRepository {
	return s.orderRepo
}

// ReceiptRepo returns the goods receipt repository.
func (s *NoOpTransactionScope) ReceiptRepo() procurement.GoodsReceiptRepository {
	return s.receiptRepo
}

// InvoiceRepo returns the purchase invoice repository.
func (s *NoOpTransactionScope) InvoiceRepo() procurement.PurchaseInvoiceRepository {
	return s.invoiceRepo
}

// PaymentRepo returns the supplier payment repository.
func (s *NoOpTransactionScope) PaymentRepo() procurement.SupplierPaymentRepository {
	return s.paymentRepo
}

// PositionRepo returns the stock position repository.
func (s *NoOpTransactionScope) PositionRepo() inventory.StockPositionRepository {
	return s.positionRepo
}

// MovementRepo returns the stock movement repository.
func (s *NoOpTransactionScope) MovementRepo() inventory.StockMovementRepository {
	return s.movementRepo
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
