package procurement

import (
	"time"

	"github.com/google/uuid"
	"github.com/inventra/backend/internal/domain/pricing"
	"github.com/inventra/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PurchaseOrderStatus represents the status of a purchase order
type PurchaseOrderStatus string

const (
	PurchaseOrderStatusDraft             PurchaseOrderStatus = "DRAFT"
	PurchaseOrderStatusSubmitted         PurchaseOrderStatus = "SUBMITTED"
	PurchaseOrderStatusPartiallyReceived PurchaseOrderStatus = "PARTIALLY_RECEIVED"
	PurchaseOrderStatusCompleted         PurchaseOrderStatus = "COMPLETED"
	PurchaseOrderStatusCancelled         PurchaseOrderStatus = "CANCELLED"
)

// IsValid checks if the status is a valid PurchaseOrderStatus
func (s PurchaseOrderStatus) IsValid() bool {
	switch s {
	case PurchaseOrderStatusDraft, PurchaseOrderStatusSubmitted, PurchaseOrderStatusPartiallyReceived,
		PurchaseOrderStatusCompleted, PurchaseOrderStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of PurchaseOrderStatus
func (s PurchaseOrderStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status.
// Transitions are forward only; a cancelled order cannot be resurrected and
// cancellation is unreachable once receipt has begun.
func (s PurchaseOrderStatus) CanTransitionTo(target PurchaseOrderStatus) bool {
	switch s {
	case PurchaseOrderStatusDraft:
		return target == PurchaseOrderStatusSubmitted || target == PurchaseOrderStatusCancelled
	case PurchaseOrderStatusSubmitted:
		return target == PurchaseOrderStatusPartiallyReceived || target == PurchaseOrderStatusCompleted ||
			target == PurchaseOrderStatusCancelled
	case PurchaseOrderStatusPartiallyReceived:
		return target == PurchaseOrderStatusPartiallyReceived || target == PurchaseOrderStatusCompleted
	case PurchaseOrderStatusCompleted, PurchaseOrderStatusCancelled:
		return false // Terminal states
	}
	return false
}

// CanReceive returns true if receiving goods is allowed in this status
func (s PurchaseOrderStatus) CanReceive() bool {
	return s == PurchaseOrderStatusSubmitted || s == PurchaseOrderStatusPartiallyReceived
}

// PurchaseOrderLine represents a line item in a purchase order.
// TaxAmount and LineTotal are always computed through the pricing engine,
// never written directly.
type PurchaseOrderLine struct {
	shared.BaseEntity
	PurchaseOrderID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID        uuid.UUID       `gorm:"type:uuid;not null"`
	VariantID        uuid.UUID       `gorm:"type:uuid;not null"` // uuid.Nil for variant-less products
	Quantity         decimal.Decimal `gorm:"type:decimal(18,3);not null"`
	UnitPrice        decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	TaxPercentage    decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	DiscountAmount   decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	TaxAmount        decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	LineTotal        decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	ReceivedQuantity decimal.Decimal `gorm:"type:decimal(18,3);not null;default:0"`
}

// TableName returns the table name for GORM
func (PurchaseOrderLine) TableName() string {
	return "purchase_order_lines"
}

// LineValues carries caller-supplied values for a purchase order line.
type LineValues struct {
	ProductID      uuid.UUID
	VariantID      uuid.UUID
	Quantity       decimal.Decimal
	UnitPrice      decimal.Decimal
	TaxPercentage  decimal.Decimal
	DiscountAmount decimal.Decimal
}

func newPurchaseOrderLine(orderID uuid.UUID, v LineValues) (*PurchaseOrderLine, error) {
	if v.ProductID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Product ID cannot be empty")
	}
	if v.Quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_INPUT", "Quantity must be positive")
	}

	amounts, err := pricing.ComputeLine(pricing.LineInput{
		Quantity:       v.Quantity,
		UnitPrice:      v.UnitPrice,
		TaxPercentage:  v.TaxPercentage,
		DiscountAmount: v.DiscountAmount,
	})
	if err != nil {
		return nil, err
	}

	return &PurchaseOrderLine{
		BaseEntity:       shared.NewBaseEntity(),
		PurchaseOrderID:  orderID,
		ProductID:        v.ProductID,
		VariantID:        v.VariantID,
		Quantity:         v.Quantity,
		UnitPrice:        v.UnitPrice,
		TaxPercentage:    v.TaxPercentage,
		DiscountAmount:   v.DiscountAmount,
		TaxAmount:        amounts.TaxAmount,
		LineTotal:        amounts.LineTotal,
		ReceivedQuantity: decimal.Zero,
	}, nil
}

// RemainingQuantity returns the ordered quantity not yet received
func (l *PurchaseOrderLine) RemainingQuantity() decimal.Decimal {
	remaining := l.Quantity.Sub(l.ReceivedQuantity)
	if remaining.IsNegative() {
		return decimal.Zero
	}
	return remaining
}

// IsFullyReceived returns true if the full ordered quantity has been received
func (l *PurchaseOrderLine) IsFullyReceived() bool {
	return l.ReceivedQuantity.GreaterThanOrEqual(l.Quantity)
}

// addReceivedQuantity records a received quantity against the line
func (l *PurchaseOrderLine) addReceivedQuantity(quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_INPUT", "Received quantity must be positive")
	}
	l.ReceivedQuantity = l.ReceivedQuantity.Add(quantity)
	l.UpdatedAt = time.Now()
	return nil
}

// PurchaseOrder is the aggregate root for the ordering side of procurement.
// Line mutations are allowed only in draft; from submission on, the order
// only changes through goods receipt completion.
type PurchaseOrder struct {
	shared.BaseAggregateRoot
	OrderNumber    string              `gorm:"type:varchar(50);not null;uniqueIndex"`
	SupplierID     uuid.UUID           `gorm:"type:uuid;not null;index"`
	WarehouseID    uuid.UUID           `gorm:"type:uuid;not null;index"`
	Status         PurchaseOrderStatus `gorm:"type:varchar(30);not null;index"`
	Lines          []PurchaseOrderLine `gorm:"foreignKey:PurchaseOrderID"`
	Subtotal       decimal.Decimal     `gorm:"type:decimal(18,2);not null;default:0"`
	TaxAmount      decimal.Decimal     `gorm:"type:decimal(18,2);not null;default:0"`
	DiscountAmount decimal.Decimal     `gorm:"type:decimal(18,2);not null;default:0"`
	TotalAmount    decimal.Decimal     `gorm:"type:decimal(18,2);not null;default:0"`
	ExpectedDate   *time.Time          `gorm:"type:date"`
	SubmittedAt    *time.Time
	Notes          string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (PurchaseOrder) TableName() string {
	return "purchase_orders"
}

// NewPurchaseOrder creates a purchase order in draft status
func NewPurchaseOrder(orderNumber string, supplierID, warehouseID uuid.UUID) (*PurchaseOrder, error) {
	if orderNumber == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Order number cannot be empty")
	}
	if supplierID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Supplier ID cannot be empty")
	}
	if warehouseID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Warehouse ID cannot be empty")
	}

	return &PurchaseOrder{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderNumber:       orderNumber,
		SupplierID:        supplierID,
		WarehouseID:       warehouseID,
		Status:            PurchaseOrderStatusDraft,
		Lines:             make([]PurchaseOrderLine, 0),
		Subtotal:          decimal.Zero,
		TaxAmount:         decimal.Zero,
		DiscountAmount:    decimal.Zero,
		TotalAmount:       decimal.Zero,
	}, nil
}

// AddLine adds a line to a draft order and recomputes totals
func (o *PurchaseOrder) AddLine(v LineValues) (*PurchaseOrderLine, error) {
	if o.Status != PurchaseOrderStatusDraft {
		return nil, shared.NewDomainError("INVALID_STATE", "Lines can only be added to a draft order")
	}

	line, err := newPurchaseOrderLine(o.ID, v)
	if err != nil {
		return nil, err
	}

	o.Lines = append(o.Lines, *line)
	o.recalculateTotals()
	o.UpdatedAt = time.Now()
	o.IncrementVersion()

	return line, nil
}

// UpdateLine replaces the values of an existing line on a draft order
func (o *PurchaseOrder) UpdateLine(lineID uuid.UUID, v LineValues) error {
	if o.Status != PurchaseOrderStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Lines can only be updated on a draft order")
	}

	for i := range o.Lines {
		if o.Lines[i].ID != lineID {
			continue
		}

		updated, err := newPurchaseOrderLine(o.ID, v)
		if err != nil {
			return err
		}
		updated.ID = o.Lines[i].ID
		updated.CreatedAt = o.Lines[i].CreatedAt
		updated.UpdatedAt = time.Now()
		o.Lines[i] = *updated

		o.recalculateTotals()
		o.UpdatedAt = time.Now()
		o.IncrementVersion()
		return nil
	}
	return shared.ErrNotFound
}

// RemoveLine removes a line from a draft order
func (o *PurchaseOrder) RemoveLine(lineID uuid.UUID) error {
	if o.Status != PurchaseOrderStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Lines can only be removed from a draft order")
	}

	for i := range o.Lines {
		if o.Lines[i].ID == lineID {
			o.Lines = append(o.Lines[:i], o.Lines[i+1:]...)
			o.recalculateTotals()
			o.UpdatedAt = time.Now()
			o.IncrementVersion()
			return nil
		}
	}
	return shared.ErrNotFound
}

// Submit moves the order from draft to submitted
func (o *PurchaseOrder) Submit() error {
	if !o.Status.CanTransitionTo(PurchaseOrderStatusSubmitted) {
		return shared.NewDomainError("INVALID_STATE", "Order cannot be submitted from status "+o.Status.String())
	}
	if len(o.Lines) == 0 {
		return shared.NewDomainError("INVALID_INPUT", "Order must have at least one line")
	}

	from := o.Status
	o.Status = PurchaseOrderStatusSubmitted
	now := time.Now()
	o.SubmittedAt = &now
	o.UpdatedAt = now
	o.IncrementVersion()

	o.AddDomainEvent(NewDocumentStatusChangedEvent(DocumentTypePurchaseOrder, o.ID, from.String(), o.Status.String()))
	return nil
}

// Cancel cancels an order before any goods have been received
func (o *PurchaseOrder) Cancel() error {
	if !o.Status.CanTransitionTo(PurchaseOrderStatusCancelled) {
		return shared.NewDomainError("INVALID_STATE", "Order cannot be cancelled from status "+o.Status.String())
	}

	from := o.Status
	o.Status = PurchaseOrderStatusCancelled
	o.UpdatedAt = time.Now()
	o.IncrementVersion()

	o.AddDomainEvent(NewDocumentStatusChangedEvent(DocumentTypePurchaseOrder, o.ID, from.String(), o.Status.String()))
	return nil
}

// ReceiptLine pairs a purchase order line with a quantity accepted on a
// goods receipt.
type ReceiptLine struct {
	PurchaseOrderLineID uuid.UUID
	QuantityAccepted    decimal.Decimal
}

// ApplyReceipt records accepted receipt quantities against the order's lines
// and recomputes the order status: completed when every ordered quantity is
// fully received, partially received otherwise. Driven by goods receipt
// completion, never by direct user action.
func (o *PurchaseOrder) ApplyReceipt(lines []ReceiptLine) error {
	if !o.Status.CanReceive() {
		return shared.NewDomainError("INVALID_STATE", "Order cannot receive goods in status "+o.Status.String())
	}
	if len(lines) == 0 {
		return shared.NewDomainError("INVALID_INPUT", "Receipt must have at least one line")
	}

	for _, rl := range lines {
		line := o.findLine(rl.PurchaseOrderLineID)
		if line == nil {
			return shared.NewDomainError("NOT_FOUND", "Order line not found: "+rl.PurchaseOrderLineID.String())
		}
		if err := line.addReceivedQuantity(rl.QuantityAccepted); err != nil {
			return err
		}
	}

	from := o.Status
	if o.IsFullyReceived() {
		o.Status = PurchaseOrderStatusCompleted
	} else {
		o.Status = PurchaseOrderStatusPartiallyReceived
	}
	o.UpdatedAt = time.Now()
	o.IncrementVersion()

	if from != o.Status {
		o.AddDomainEvent(NewDocumentStatusChangedEvent(DocumentTypePurchaseOrder, o.ID, from.String(), o.Status.String()))
	}
	return nil
}

// IsFullyReceived returns true when every line's ordered quantity has been received
func (o *PurchaseOrder) IsFullyReceived() bool {
	for i := range o.Lines {
		if !o.Lines[i].IsFullyReceived() {
			return false
		}
	}
	return len(o.Lines) > 0
}

func (o *PurchaseOrder) findLine(lineID uuid.UUID) *PurchaseOrderLine {
	for i := range o.Lines {
		if o.Lines[i].ID == lineID {
			return &o.Lines[i]
		}
	}
	return nil
}

// GetLine returns the line with the given ID, or nil
func (o *PurchaseOrder) GetLine(lineID uuid.UUID) *PurchaseOrderLine {
	return o.findLine(lineID)
}

func (o *PurchaseOrder) recalculateTotals() {
	inputs := make([]pricing.LineInput, 0, len(o.Lines))
	for i := range o.Lines {
		inputs = append(inputs, pricing.LineInput{
			Quantity:       o.Lines[i].Quantity,
			UnitPrice:      o.Lines[i].UnitPrice,
			TaxPercentage:  o.Lines[i].TaxPercentage,
			DiscountAmount: o.Lines[i].DiscountAmount,
		})
	}
	// Lines were validated when created, so the totals cannot fail.
	totals, _ := pricing.ComputeDocumentTotals(inputs)
	o.Subtotal = totals.Subtotal
	o.TaxAmount = totals.TaxAmount
	o.DiscountAmount = totals.DiscountAmount
	o.TotalAmount = totals.TotalAmount
}
