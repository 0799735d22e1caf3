package procurement

import (
	"time"

	"github.com/google/uuid"
	"github.com/inventra/backend/internal/domain/pricing"
	"github.com/inventra/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// InvoiceStatus represents the derived status of a purchase invoice
type InvoiceStatus string

const (
	InvoiceStatusPending   InvoiceStatus = "PENDING"
	InvoiceStatusPartial   InvoiceStatus = "PARTIAL"
	InvoiceStatusPaid      InvoiceStatus = "PAID"
	InvoiceStatusOverdue   InvoiceStatus = "OVERDUE"
	InvoiceStatusCancelled InvoiceStatus = "CANCELLED"
)

// IsValid checks if the status is a valid InvoiceStatus
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusPending, InvoiceStatusPartial, InvoiceStatusPaid,
		InvoiceStatusOverdue, InvoiceStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of InvoiceStatus
func (s InvoiceStatus) String() string {
	return string(s)
}

// DeriveInvoiceStatus computes the invoice status from its amounts and due
// date. Status is never settable; every mutation recomputes it through this
// function so the stored value can never drift from the facts.
func DeriveInvoiceStatus(cancelled bool, paidAmount, totalAmount decimal.Decimal, dueDate *time.Time, now time.Time) InvoiceStatus {
	if cancelled {
		return InvoiceStatusCancelled
	}
	if paidAmount.GreaterThanOrEqual(totalAmount) {
		return InvoiceStatusPaid
	}
	pastDue := dueDate != nil && dueDate.Before(now)
	if paidAmount.GreaterThan(decimal.Zero) {
		if pastDue {
			return InvoiceStatusOverdue
		}
		return InvoiceStatusPartial
	}
	if pastDue {
		return InvoiceStatusOverdue
	}
	return InvoiceStatusPending
}

// PurchaseInvoiceLine is one billed line on a purchase invoice.
type PurchaseInvoiceLine struct {
	shared.BaseEntity
	PurchaseInvoiceID uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID         uuid.UUID       `gorm:"type:uuid;not null"`
	VariantID         uuid.UUID       `gorm:"type:uuid;not null"`
	Quantity          decimal.Decimal `gorm:"type:decimal(18,3);not null"`
	UnitPrice         decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	TaxPercentage     decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	DiscountAmount    decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	TaxAmount         decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	LineTotal         decimal.Decimal `gorm:"type:decimal(18,2);not null"`
}

// TableName returns the table name for GORM
func (PurchaseInvoiceLine) TableName() string {
	return "purchase_invoice_lines"
}

// PurchaseInvoice is the billing document for received goods. It may point
// at the goods receipt it bills (quick-create) or stand ad hoc against a
// purchase order. The uniqueness rule - at most one non-cancelled invoice
// per receipt - is enforced by the application service at creation.
type PurchaseInvoice struct {
	shared.BaseAggregateRoot
	InvoiceNumber   string                `gorm:"type:varchar(50);not null;uniqueIndex"`
	PurchaseOrderID uuid.UUID             `gorm:"type:uuid;not null;index"`
	GoodsReceiptID  *uuid.UUID            `gorm:"type:uuid;index"`
	SupplierID      uuid.UUID             `gorm:"type:uuid;not null;index"`
	Status          InvoiceStatus         `gorm:"type:varchar(30);not null;index"`
	Lines           []PurchaseInvoiceLine `gorm:"foreignKey:PurchaseInvoiceID"`
	Subtotal        decimal.Decimal       `gorm:"type:decimal(18,2);not null"`
	TaxAmount       decimal.Decimal       `gorm:"type:decimal(18,2);not null"`
	DiscountAmount  decimal.Decimal       `gorm:"type:decimal(18,2);not null"`
	TotalAmount     decimal.Decimal       `gorm:"type:decimal(18,2);not null"`
	PaidAmount      decimal.Decimal       `gorm:"type:decimal(18,2);not null;default:0"`
	DueDate         *time.Time            `gorm:"type:date"`
	Cancelled       bool                  `gorm:"not null;default:false"`
	Notes           string                `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (PurchaseInvoice) TableName() string {
	return "purchase_invoices"
}

// InvoiceLineValues carries caller-supplied values for one invoice line.
type InvoiceLineValues struct {
	ProductID      uuid.UUID
	VariantID      uuid.UUID
	Quantity       decimal.Decimal
	UnitPrice      decimal.Decimal
	TaxPercentage  decimal.Decimal
	DiscountAmount decimal.Decimal
}

// NewPurchaseInvoice creates an invoice from explicit line values; amounts
// run through the pricing engine and the status is derived immediately.
// goodsReceiptID is nil for ad hoc invoices against a purchase order.
func NewPurchaseInvoice(invoiceNumber string, purchaseOrderID uuid.UUID, goodsReceiptID *uuid.UUID, supplierID uuid.UUID, lines []InvoiceLineValues, dueDate *time.Time) (*PurchaseInvoice, error) {
	if invoiceNumber == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Invoice number cannot be empty")
	}
	if purchaseOrderID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Purchase order ID cannot be empty")
	}
	if supplierID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Supplier ID cannot be empty")
	}
	if len(lines) == 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Invoice must have at least one line")
	}

	inv := &PurchaseInvoice{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		InvoiceNumber:     invoiceNumber,
		PurchaseOrderID:   purchaseOrderID,
		GoodsReceiptID:    goodsReceiptID,
		SupplierID:        supplierID,
		Lines:             make([]PurchaseInvoiceLine, 0, len(lines)),
		PaidAmount:        decimal.Zero,
		DueDate:           dueDate,
	}

	inputs := make([]pricing.LineInput, 0, len(lines))
	for _, v := range lines {
		if v.ProductID == uuid.Nil {
			return nil, shared.NewDomainError("INVALID_INPUT", "Product ID cannot be empty")
		}
		if v.Quantity.LessThanOrEqual(decimal.Zero) {
			return nil, shared.NewDomainError("INVALID_INPUT", "Quantity must be positive")
		}

		in := pricing.LineInput{
			Quantity:       v.Quantity,
			UnitPrice:      v.UnitPrice,
			TaxPercentage:  v.TaxPercentage,
			DiscountAmount: v.DiscountAmount,
		}
		amounts, err := pricing.ComputeLine(in)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, in)

		inv.Lines = append(inv.Lines, PurchaseInvoiceLine{
			BaseEntity:        shared.NewBaseEntity(),
			PurchaseInvoiceID: inv.ID,
			ProductID:         v.ProductID,
			VariantID:         v.VariantID,
			Quantity:          v.Quantity,
			UnitPrice:         v.UnitPrice,
			TaxPercentage:     v.TaxPercentage,
			DiscountAmount:    v.DiscountAmount,
			TaxAmount:         amounts.TaxAmount,
			LineTotal:         amounts.LineTotal,
		})
	}

	totals, err := pricing.ComputeDocumentTotals(inputs)
	if err != nil {
		return nil, err
	}
	inv.Subtotal = totals.Subtotal
	inv.TaxAmount = totals.TaxAmount
	inv.DiscountAmount = totals.DiscountAmount
	inv.TotalAmount = totals.TotalAmount
	inv.Status = DeriveInvoiceStatus(false, decimal.Zero, inv.TotalAmount, dueDate, time.Now())

	return inv, nil
}

// NewInvoiceFromReceipt builds the line values for a quick-created invoice
// from a completed receipt's accepted lines.
func NewInvoiceFromReceipt(invoiceNumber string, grn *GoodsReceiptNote, supplierID uuid.UUID, dueDate *time.Time) (*PurchaseInvoice, error) {
	if grn == nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Goods receipt is required")
	}
	if !grn.IsCompleted() {
		return nil, shared.NewDomainError("INVALID_STATE", "Invoice can only be created from a completed receipt")
	}

	accepted := grn.AcceptedLines()
	if len(accepted) == 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Receipt has no accepted quantities to invoice")
	}

	lines := make([]InvoiceLineValues, 0, len(accepted))
	for _, gl := range accepted {
		lines = append(lines, InvoiceLineValues{
			ProductID:     gl.ProductID,
			VariantID:     gl.VariantID,
			Quantity:      gl.QuantityAccepted,
			UnitPrice:     gl.UnitPrice,
			TaxPercentage: gl.TaxPercentage,
		})
	}

	grnID := grn.ID
	return NewPurchaseInvoice(invoiceNumber, grn.PurchaseOrderID, &grnID, supplierID, lines, dueDate)
}

// Balance returns the amount still owed
func (inv *PurchaseInvoice) Balance() decimal.Decimal {
	return inv.TotalAmount.Sub(inv.PaidAmount)
}

// ApplyPayment adds a completed payment's amount to the paid total. The
// paid amount can never exceed the invoice total; violations fail with
// OVERPAYMENT and leave the invoice untouched.
func (inv *PurchaseInvoice) ApplyPayment(amount decimal.Decimal) error {
	if inv.Cancelled {
		return shared.NewDomainError("INVALID_STATE", "Cannot apply a payment to a cancelled invoice")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_INPUT", "Payment amount must be positive")
	}
	if inv.PaidAmount.Add(amount).GreaterThan(inv.TotalAmount) {
		return shared.ErrOverpayment
	}

	inv.PaidAmount = inv.PaidAmount.Add(amount)
	inv.refreshStatus()
	return nil
}

// ReversePayment removes a previously applied amount, used when a payment
// transitions away from completed
func (inv *PurchaseInvoice) ReversePayment(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_INPUT", "Reversal amount must be positive")
	}
	if amount.GreaterThan(inv.PaidAmount) {
		return shared.NewDomainError("INVALID_INPUT", "Reversal amount exceeds the paid amount")
	}

	inv.PaidAmount = inv.PaidAmount.Sub(amount)
	inv.refreshStatus()
	return nil
}

// Cancel cancels an invoice that has no payments applied
func (inv *PurchaseInvoice) Cancel() error {
	if inv.Cancelled {
		return shared.NewDomainError("INVALID_STATE", "Invoice is already cancelled")
	}
	if inv.PaidAmount.GreaterThan(decimal.Zero) {
		return shared.NewDomainError("INVALID_STATE", "Invoice with applied payments cannot be cancelled")
	}

	inv.Cancelled = true
	inv.refreshStatus()
	return nil
}

// RefreshStatus recomputes the derived status against the current time.
// List queries call this so a pending invoice whose due date has passed
// reads as overdue without a write.
func (inv *PurchaseInvoice) RefreshStatus(now time.Time) {
	inv.Status = DeriveInvoiceStatus(inv.Cancelled, inv.PaidAmount, inv.TotalAmount, inv.DueDate, now)
}

func (inv *PurchaseInvoice) refreshStatus() {
	from := inv.Status
	inv.RefreshStatus(time.Now())
	inv.UpdatedAt = time.Now()
	inv.IncrementVersion()

	if from != inv.Status {
		inv.AddDomainEvent(NewDocumentStatusChangedEvent(DocumentTypePurchaseInvoice, inv.ID, from.String(), inv.Status.String()))
	}
}
