package procurement

import (
	"time"

	"github.com/google/uuid"
	"github.com/inventra/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// GoodsReceiptStatus represents the status of a goods receipt note
type GoodsReceiptStatus string

const (
	GoodsReceiptStatusDraft     GoodsReceiptStatus = "DRAFT"
	GoodsReceiptStatusCompleted GoodsReceiptStatus = "COMPLETED"
	GoodsReceiptStatusCancelled GoodsReceiptStatus = "CANCELLED"
)

// IsValid checks if the status is a valid GoodsReceiptStatus
func (s GoodsReceiptStatus) IsValid() bool {
	switch s {
	case GoodsReceiptStatusDraft, GoodsReceiptStatusCompleted, GoodsReceiptStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of GoodsReceiptStatus
func (s GoodsReceiptStatus) String() string {
	return string(s)
}

// GoodsReceiptLine records received and accepted quantities for one
// purchase order line. Product and price values are copied from the order
// line at creation so the receipt stays meaningful if the order changes.
type GoodsReceiptLine struct {
	shared.BaseEntity
	GoodsReceiptID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	PurchaseOrderLineID uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID           uuid.UUID       `gorm:"type:uuid;not null"`
	VariantID           uuid.UUID       `gorm:"type:uuid;not null"`
	QuantityReceived    decimal.Decimal `gorm:"type:decimal(18,3);not null"`
	QuantityAccepted    decimal.Decimal `gorm:"type:decimal(18,3);not null"`
	UnitPrice           decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	TaxPercentage       decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
}

// TableName returns the table name for GORM
func (GoodsReceiptLine) TableName() string {
	return "goods_receipt_lines"
}

// GoodsReceiptNote records the physical arrival of goods against a purchase
// order. Completing the note is the single event that posts stock
// movements; a note completes at most once.
type GoodsReceiptNote struct {
	shared.BaseAggregateRoot
	ReceiptNumber   string             `gorm:"type:varchar(50);not null;uniqueIndex"`
	PurchaseOrderID uuid.UUID          `gorm:"type:uuid;not null;index"`
	WarehouseID     uuid.UUID          `gorm:"type:uuid;not null;index"`
	Status          GoodsReceiptStatus `gorm:"type:varchar(30);not null;index"`
	Lines           []GoodsReceiptLine `gorm:"foreignKey:GoodsReceiptID"`
	ReceiptDate     time.Time          `gorm:"type:date;not null"`
	CompletedAt     *time.Time
	Notes           string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (GoodsReceiptNote) TableName() string {
	return "goods_receipt_notes"
}

// ReceivedValues carries caller-supplied quantities for one receipt line.
type ReceivedValues struct {
	PurchaseOrderLineID uuid.UUID
	QuantityReceived    decimal.Decimal
	QuantityAccepted    decimal.Decimal
}

// NewGoodsReceiptNote creates a draft receipt against a purchase order.
// Each received line must reference an order line; accepted quantity must
// not exceed received quantity nor the quantity still outstanding on the
// order line.
func NewGoodsReceiptNote(receiptNumber string, order *PurchaseOrder, receiptDate time.Time, received []ReceivedValues) (*GoodsReceiptNote, error) {
	if receiptNumber == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Receipt number cannot be empty")
	}
	if order == nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Purchase order is required")
	}
	if !order.Status.CanReceive() {
		return nil, shared.NewDomainError("INVALID_STATE", "Order cannot receive goods in status "+order.Status.String())
	}
	if len(received) == 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Receipt must have at least one line")
	}

	grn := &GoodsReceiptNote{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ReceiptNumber:     receiptNumber,
		PurchaseOrderID:   order.ID,
		WarehouseID:       order.WarehouseID,
		Status:            GoodsReceiptStatusDraft,
		Lines:             make([]GoodsReceiptLine, 0, len(received)),
		ReceiptDate:       receiptDate,
	}

	for _, rv := range received {
		orderLine := order.GetLine(rv.PurchaseOrderLineID)
		if orderLine == nil {
			return nil, shared.NewDomainError("NOT_FOUND", "Order line not found: "+rv.PurchaseOrderLineID.String())
		}
		if rv.QuantityReceived.LessThanOrEqual(decimal.Zero) {
			return nil, shared.NewDomainError("INVALID_INPUT", "Received quantity must be positive")
		}
		if rv.QuantityAccepted.IsNegative() || rv.QuantityAccepted.GreaterThan(rv.QuantityReceived) {
			return nil, shared.NewDomainError("INVALID_INPUT", "Accepted quantity must be between 0 and the received quantity")
		}
		if rv.QuantityAccepted.GreaterThan(orderLine.RemainingQuantity()) {
			return nil, shared.NewDomainError("INVALID_INPUT", "Accepted quantity exceeds the outstanding order quantity")
		}

		grn.Lines = append(grn.Lines, GoodsReceiptLine{
			BaseEntity:          shared.NewBaseEntity(),
			GoodsReceiptID:      grn.ID,
			PurchaseOrderLineID: orderLine.ID,
			ProductID:           orderLine.ProductID,
			VariantID:           orderLine.VariantID,
			QuantityReceived:    rv.QuantityReceived,
			QuantityAccepted:    rv.QuantityAccepted,
			UnitPrice:           orderLine.UnitPrice,
			TaxPercentage:       orderLine.TaxPercentage,
		})
	}

	return grn, nil
}

// Complete flips the receipt to its terminal completed status. Completing
// an already-completed receipt fails with ALREADY_COMPLETED so movements
// are never posted twice; the caller posts the movements and updates the
// order in the same transaction.
func (g *GoodsReceiptNote) Complete() error {
	if g.Status == GoodsReceiptStatusCompleted {
		return shared.ErrAlreadyCompleted
	}
	if g.Status != GoodsReceiptStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Receipt cannot be completed from status "+g.Status.String())
	}

	from := g.Status
	g.Status = GoodsReceiptStatusCompleted
	now := time.Now()
	g.CompletedAt = &now
	g.UpdatedAt = now
	g.IncrementVersion()

	g.AddDomainEvent(NewDocumentStatusChangedEvent(DocumentTypeGoodsReceipt, g.ID, from.String(), g.Status.String()))
	g.AddDomainEvent(NewGoodsReceiptCompletedEvent(g))
	return nil
}

// Cancel discards a draft receipt; completed receipts cannot be cancelled
func (g *GoodsReceiptNote) Cancel() error {
	if g.Status != GoodsReceiptStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Only a draft receipt can be cancelled")
	}

	from := g.Status
	g.Status = GoodsReceiptStatusCancelled
	g.UpdatedAt = time.Now()
	g.IncrementVersion()

	g.AddDomainEvent(NewDocumentStatusChangedEvent(DocumentTypeGoodsReceipt, g.ID, from.String(), g.Status.String()))
	return nil
}

// IsCompleted returns true if the receipt has been completed
func (g *GoodsReceiptNote) IsCompleted() bool {
	return g.Status == GoodsReceiptStatusCompleted
}

// AcceptedLines returns the lines with a positive accepted quantity; only
// these post stock movements and appear on a quick-created invoice.
func (g *GoodsReceiptNote) AcceptedLines() []GoodsReceiptLine {
	accepted := make([]GoodsReceiptLine, 0, len(g.Lines))
	for i := range g.Lines {
		if g.Lines[i].QuantityAccepted.GreaterThan(decimal.Zero) {
			accepted = append(accepted, g.Lines[i])
		}
	}
	return accepted
}

// ReceiptLines converts the note's lines into receipt lines for
// PurchaseOrder.ApplyReceipt, skipping fully rejected lines.
func (g *GoodsReceiptNote) ReceiptLines() []ReceiptLine {
	lines := make([]ReceiptLine, 0, len(g.Lines))
	for i := range g.Lines {
		if g.Lines[i].QuantityAccepted.GreaterThan(decimal.Zero) {
			lines = append(lines, ReceiptLine{
				PurchaseOrderLineID: g.Lines[i].PurchaseOrderLineID,
				QuantityAccepted:    g.Lines[i].QuantityAccepted,
			})
		}
	}
	return lines
}
