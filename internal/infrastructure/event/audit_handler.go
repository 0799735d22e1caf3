package event

import (
	"context"

	"github.com/inventra/backend/internal/domain/inventory"
	"github.com/inventra/backend/internal/domain/procurement"
	"github.com/inventra/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// AuditLogHandler writes an audit log line for every document status
// transition and every stock ledger event. It is the lightweight audit
// trail alongside the movement table itself.
type AuditLogHandler struct {
	logger *zap.Logger
}

// NewAuditLogHandler creates a new audit log handler
func NewAuditLogHandler(logger *zap.Logger) *AuditLogHandler {
	return &AuditLogHandler{logger: logger.Named("audit")}
}

// EventTypes returns the event types this handler is interested in
func (h *AuditLogHandler) EventTypes() []string {
	return []string{
		procurement.EventTypeDocumentStatusChanged,
		procurement.EventTypeGoodsReceiptCompleted,
		inventory.EventTypeStockMovementPosted,
		inventory.EventTypeStockReserved,
		inventory.EventTypeStockReleased,
	}
}

// Handle logs the event
func (h *AuditLogHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case shared.StatusTransitionEvent:
		h.logger.Info("document status changed",
			zap.String("document_type", e.DocumentType()),
			zap.String("document_id", e.AggregateID().String()),
			zap.String("from", e.FromStatus()),
			zap.String("to", e.ToStatus()),
		)
	case *inventory.StockMovementPostedEvent:
		h.logger.Info("stock movement posted",
			zap.String("position_id", e.AggregateID().String()),
			zap.String("warehouse_id", e.PositionKey.WarehouseID.String()),
			zap.String("product_id", e.PositionKey.ProductID.String()),
			zap.String("reason", e.Reason.String()),
			zap.String("delta", e.Delta.String()),
			zap.String("balance_after", e.BalanceAfter.String()),
		)
	case *inventory.StockReservedEvent:
		h.logger.Info("stock reserved",
			zap.String("position_id", e.AggregateID().String()),
			zap.String("quantity", e.Quantity.String()),
			zap.String("available", e.Available.String()),
		)
	case *inventory.StockReleasedEvent:
		h.logger.Info("stock released",
			zap.String("position_id", e.AggregateID().String()),
			zap.String("quantity", e.Quantity.String()),
			zap.String("available", e.Available.String()),
		)
	case *procurement.GoodsReceiptCompletedEvent:
		h.logger.Info("goods receipt completed",
			zap.String("goods_receipt_id", e.AggregateID().String()),
			zap.String("purchase_order_id", e.PurchaseOrderID.String()),
			zap.Int("lines", len(e.Lines)),
		)
	default:
		h.logger.Debug("event observed",
			zap.String("event_type", event.EventType()),
			zap.String("aggregate_id", event.AggregateID().String()),
		)
	}
	return nil
}

var _ shared.EventHandler = (*AuditLogHandler)(nil)
