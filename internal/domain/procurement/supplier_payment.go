package procurement

import (
	"time"

	"github.com/google/uuid"
	"github.com/inventra/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PaymentMethod represents how a supplier payment is made
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "CASH"
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentMethodCheque       PaymentMethod = "CHEQUE"
	PaymentMethodCard         PaymentMethod = "CARD"
	PaymentMethodOther        PaymentMethod = "OTHER"
)

// IsValid checks if the method is a valid PaymentMethod
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodBankTransfer, PaymentMethodCheque,
		PaymentMethodCard, PaymentMethodOther:
		return true
	}
	return false
}

// String returns the string representation of PaymentMethod
func (m PaymentMethod) String() string {
	return string(m)
}

// PaymentStatus represents the status of a supplier payment
type PaymentStatus string

const (
	PaymentStatusPending    PaymentStatus = "PENDING"
	PaymentStatusProcessing PaymentStatus = "PROCESSING"
	PaymentStatusCompleted  PaymentStatus = "COMPLETED"
	PaymentStatusFailed     PaymentStatus = "FAILED"
	PaymentStatusCancelled  PaymentStatus = "CANCELLED"
)

// IsValid checks if the status is a valid PaymentStatus
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusProcessing, PaymentStatusCompleted,
		PaymentStatusFailed, PaymentStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of PaymentStatus
func (s PaymentStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status.
// Completed may still move to failed or cancelled; the caller must reverse
// the payment's contribution to the invoice in the same transaction.
func (s PaymentStatus) CanTransitionTo(target PaymentStatus) bool {
	switch s {
	case PaymentStatusPending:
		return target == PaymentStatusProcessing || target == PaymentStatusCompleted ||
			target == PaymentStatusFailed || target == PaymentStatusCancelled
	case PaymentStatusProcessing:
		return target == PaymentStatusCompleted || target == PaymentStatusFailed ||
			target == PaymentStatusCancelled
	case PaymentStatusCompleted:
		return target == PaymentStatusFailed || target == PaymentStatusCancelled
	case PaymentStatusFailed, PaymentStatusCancelled:
		return false // Terminal states
	}
	return false
}

// PaymentReference holds the method-dependent reference fields.
type PaymentReference struct {
	BankName       string `gorm:"type:varchar(100)"`
	ChequeNumber   string `gorm:"type:varchar(50)"`
	TransactionRef string `gorm:"type:varchar(100)"`
}

// SupplierPayment is a payment against a purchase invoice. Only completed
// payments count toward the invoice's paid amount; the application service
// keeps payment status and invoice amounts in step within one transaction.
type SupplierPayment struct {
	shared.BaseAggregateRoot
	PaymentNumber     string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	PurchaseInvoiceID uuid.UUID       `gorm:"type:uuid;not null;index"`
	SupplierID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount            decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Method            PaymentMethod   `gorm:"type:varchar(30);not null"`
	Status            PaymentStatus   `gorm:"type:varchar(30);not null;index"`
	Reference         PaymentReference `gorm:"embedded"`
	PaymentDate       time.Time       `gorm:"type:date;not null"`
	Notes             string          `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (SupplierPayment) TableName() string {
	return "supplier_payments"
}

// NewSupplierPayment creates a pending payment against an invoice
func NewSupplierPayment(paymentNumber string, invoiceID, supplierID uuid.UUID, amount decimal.Decimal, method PaymentMethod, ref PaymentReference, paymentDate time.Time) (*SupplierPayment, error) {
	if paymentNumber == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Payment number cannot be empty")
	}
	if invoiceID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Invoice ID cannot be empty")
	}
	if supplierID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Supplier ID cannot be empty")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_INPUT", "Payment amount must be positive")
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Invalid payment method")
	}
	if err := validateReference(method, ref); err != nil {
		return nil, err
	}

	return &SupplierPayment{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		PaymentNumber:     paymentNumber,
		PurchaseInvoiceID: invoiceID,
		SupplierID:        supplierID,
		Amount:            amount,
		Method:            method,
		Status:            PaymentStatusPending,
		Reference:         ref,
		PaymentDate:       paymentDate,
	}, nil
}

func validateReference(method PaymentMethod, ref PaymentReference) error {
	switch method {
	case PaymentMethodBankTransfer:
		if ref.BankName == "" || ref.TransactionRef == "" {
			return shared.NewDomainError("INVALID_INPUT", "Bank transfer requires bank name and transaction reference")
		}
	case PaymentMethodCheque:
		if ref.ChequeNumber == "" {
			return shared.NewDomainError("INVALID_INPUT", "Cheque payment requires a cheque number")
		}
	case PaymentMethodCard:
		if ref.TransactionRef == "" {
			return shared.NewDomainError("INVALID_INPUT", "Card payment requires a transaction reference")
		}
	}
	return nil
}

// StartProcessing moves the payment to processing
func (p *SupplierPayment) StartProcessing() error {
	return p.transitionTo(PaymentStatusProcessing)
}

// Complete marks the payment completed; the caller applies the amount to
// the invoice in the same transaction
func (p *SupplierPayment) Complete() error {
	return p.transitionTo(PaymentStatusCompleted)
}

// Fail marks the payment failed
func (p *SupplierPayment) Fail() error {
	return p.transitionTo(PaymentStatusFailed)
}

// Cancel cancels the payment
func (p *SupplierPayment) Cancel() error {
	return p.transitionTo(PaymentStatusCancelled)
}

// IsCompleted returns true if the payment counts toward the invoice
func (p *SupplierPayment) IsCompleted() bool {
	return p.Status == PaymentStatusCompleted
}

func (p *SupplierPayment) transitionTo(target PaymentStatus) error {
	if !p.Status.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_STATE", "Payment cannot transition from "+p.Status.String()+" to "+target.String())
	}

	from := p.Status
	p.Status = target
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewDocumentStatusChangedEvent(DocumentTypeSupplierPayment, p.ID, from.String(), p.Status.String()))
	return nil
}
