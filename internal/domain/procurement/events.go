package procurement

import (
	"github.com/google/uuid"
	"github.com/inventra/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Event types for the procurement context
const (
	EventTypeDocumentStatusChanged = "procurement.document_status_changed"
	EventTypeGoodsReceiptCompleted = "procurement.goods_receipt_completed"
)

// Document types carried by status transition events
const (
	DocumentTypePurchaseOrder   = "PURCHASE_ORDER"
	DocumentTypeGoodsReceipt    = "GOODS_RECEIPT"
	DocumentTypePurchaseInvoice = "PURCHASE_INVOICE"
	DocumentTypeSupplierPayment = "SUPPLIER_PAYMENT"
)

// DocumentStatusChangedEvent is emitted on every document status transition
type DocumentStatusChangedEvent struct {
	shared.BaseDomainEvent
	Document uuid.UUID `json:"document_id"`
	DocType  string    `json:"document_type"`
	From     string    `json:"from_status"`
	To       string    `json:"to_status"`
}

// NewDocumentStatusChangedEvent creates a new DocumentStatusChangedEvent
func NewDocumentStatusChangedEvent(docType string, docID uuid.UUID, from, to string) *DocumentStatusChangedEvent {
	return &DocumentStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDocumentStatusChanged, docType, docID),
		Document:        docID,
		DocType:         docType,
		From:            from,
		To:              to,
	}
}

// DocumentType returns the document type for StatusTransitionEvent
func (e *DocumentStatusChangedEvent) DocumentType() string { return e.DocType }

// FromStatus returns the previous status for StatusTransitionEvent
func (e *DocumentStatusChangedEvent) FromStatus() string { return e.From }

// ToStatus returns the new status for StatusTransitionEvent
func (e *DocumentStatusChangedEvent) ToStatus() string { return e.To }

// ReceiptPostingLine describes one accepted line in a completion event
type ReceiptPostingLine struct {
	ProductID        uuid.UUID       `json:"product_id"`
	VariantID        uuid.UUID       `json:"variant_id"`
	QuantityAccepted decimal.Decimal `json:"quantity_accepted"`
}

// GoodsReceiptCompletedEvent is emitted when a receipt completes, alongside
// the stock movements it posts
type GoodsReceiptCompletedEvent struct {
	shared.BaseDomainEvent
	PurchaseOrderID uuid.UUID            `json:"purchase_order_id"`
	WarehouseID     uuid.UUID            `json:"warehouse_id"`
	Lines           []ReceiptPostingLine `json:"lines"`
}

// NewGoodsReceiptCompletedEvent creates a new GoodsReceiptCompletedEvent
func NewGoodsReceiptCompletedEvent(g *GoodsReceiptNote) *GoodsReceiptCompletedEvent {
	accepted := g.AcceptedLines()
	lines := make([]ReceiptPostingLine, 0, len(accepted))
	for _, l := range accepted {
		lines = append(lines, ReceiptPostingLine{
			ProductID:        l.ProductID,
			VariantID:        l.VariantID,
			QuantityAccepted: l.QuantityAccepted,
		})
	}
	return &GoodsReceiptCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeGoodsReceiptCompleted, DocumentTypeGoodsReceipt, g.ID),
		PurchaseOrderID: g.PurchaseOrderID,
		WarehouseID:     g.WarehouseID,
		Lines:           lines,
	}
}
