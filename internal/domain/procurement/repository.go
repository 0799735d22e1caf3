package procurement

import (
	"context"

	"github.com/google/uuid"
	"github.com/inventra/backend/internal/domain/shared"
)

// PurchaseOrderRepository defines the interface for purchase order persistence
type PurchaseOrderRepository interface {
	// FindByID finds an order with its lines
	FindByID(ctx context.Context, id uuid.UUID) (*PurchaseOrder, error)

	// FindByNumber finds an order by its order number
	FindByNumber(ctx context.Context, orderNumber string) (*PurchaseOrder, error)

	// FindBySupplier finds orders for a supplier
	FindBySupplier(ctx context.Context, supplierID uuid.UUID, filter shared.Filter) ([]PurchaseOrder, error)

	// FindByStatus finds orders in a status
	FindByStatus(ctx context.Context, status PurchaseOrderStatus, filter shared.Filter) ([]PurchaseOrder, error)

	// List lists orders
	List(ctx context.Context, filter shared.Filter) ([]PurchaseOrder, error)

	// Save creates or updates an order and its lines
	Save(ctx context.Context, order *PurchaseOrder) error

	// SaveWithVersion saves an order only if its stored version matches
	SaveWithVersion(ctx context.Context, order *PurchaseOrder) error

	// GenerateNumber generates the next order number
	GenerateNumber(ctx context.Context) (string, error)

	// Count counts orders
	Count(ctx context.Context) (int64, error)
}

// GoodsReceiptRepository defines the interface for goods receipt persistence
type GoodsReceiptRepository interface {
	// FindByID finds a receipt with its lines
	FindByID(ctx context.Context, id uuid.UUID) (*GoodsReceiptNote, error)

	// FindByOrder finds all receipts against a purchase order
	FindByOrder(ctx context.Context, purchaseOrderID uuid.UUID) ([]GoodsReceiptNote, error)

	// List lists receipts
	List(ctx context.Context, filter shared.Filter) ([]GoodsReceiptNote, error)

	// Save creates or updates a receipt and its lines
	Save(ctx context.Context, grn *GoodsReceiptNote) error

	// SaveWithVersion saves a receipt only if its stored version matches
	SaveWithVersion(ctx context.Context, grn *GoodsReceiptNote) error

	// GenerateNumber generates the next receipt number
	GenerateNumber(ctx context.Context) (string, error)
}

// PurchaseInvoiceRepository defines the interface for invoice persistence
type PurchaseInvoiceRepository interface {
	// FindByID finds an invoice with its lines
	FindByID(ctx context.Context, id uuid.UUID) (*PurchaseInvoice, error)

	// FindByReceipt finds the non-cancelled invoice for a goods receipt,
	// shared.ErrNotFound when none exists
	FindByReceipt(ctx context.Context, goodsReceiptID uuid.UUID) (*PurchaseInvoice, error)

	// FindBySupplier finds invoices for a supplier
	FindBySupplier(ctx context.Context, supplierID uuid.UUID, filter shared.Filter) ([]PurchaseInvoice, error)

	// FindOutstanding finds non-cancelled invoices with a positive balance
	FindOutstanding(ctx context.Context, filter shared.Filter) ([]PurchaseInvoice, error)

	// List lists invoices
	List(ctx context.Context, filter shared.Filter) ([]PurchaseInvoice, error)

	// Save creates or updates an invoice and its lines
	Save(ctx context.Context, invoice *PurchaseInvoice) error

	// SaveWithVersion saves an invoice only if its stored version matches
	SaveWithVersion(ctx context.Context, invoice *PurchaseInvoice) error

	// GenerateNumber generates the next invoice number
	GenerateNumber(ctx context.Context) (string, error)
}

// SupplierPaymentRepository defines the interface for payment persistence
type SupplierPaymentRepository interface {
	// FindByID finds a payment
	FindByID(ctx context.Context, id uuid.UUID) (*SupplierPayment, error)

	// FindByInvoice finds all payments against an invoice
	FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]SupplierPayment, error)

	// List lists payments
	List(ctx context.Context, filter shared.Filter) ([]SupplierPayment, error)

	// Save creates or updates a payment
	Save(ctx context.Context, payment *SupplierPayment) error

	// SaveWithVersion saves a payment only if its stored version matches
	SaveWithVersion(ctx context.Context, payment *SupplierPayment) error

	// GenerateNumber generates the next payment number
	GenerateNumber(ctx context.Context) (string, error)
}
