package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/inventra/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// MovementReason classifies why a stock movement happened
type MovementReason string

const (
	MovementReasonInitialSetup     MovementReason = "INITIAL_SETUP"
	MovementReasonManualAdjustment MovementReason = "MANUAL_ADJUSTMENT"
	MovementReasonGoodsReceipt     MovementReason = "GOODS_RECEIPT"
	MovementReasonSaleReservation  MovementReason = "SALE_RESERVATION"
	MovementReasonSaleRelease      MovementReason = "SALE_RELEASE"
	MovementReasonTransferIn       MovementReason = "TRANSFER_IN"
	MovementReasonTransferOut      MovementReason = "TRANSFER_OUT"
)

// String returns the string representation of MovementReason
func (r MovementReason) String() string {
	return string(r)
}

// IsValid returns true if the reason is valid
func (r MovementReason) IsValid() bool {
	switch r {
	case MovementReasonInitialSetup,
		MovementReasonManualAdjustment,
		MovementReasonGoodsReceipt,
		MovementReasonSaleReservation,
		MovementReasonSaleRelease,
		MovementReasonTransferIn,
		MovementReasonTransferOut:
		return true
	}
	return false
}

// ReferenceType is the kind of document a movement points back to
type ReferenceType string

const (
	ReferenceTypePurchaseOrder ReferenceType = "PURCHASE_ORDER"
	ReferenceTypeGoodsReceipt  ReferenceType = "GOODS_RECEIPT"
	ReferenceTypeSalesOrder    ReferenceType = "SALES_ORDER"
	ReferenceTypeTransfer      ReferenceType = "TRANSFER"
)

// DocumentRef is an optional pointer from a movement to the document that
// caused it.
type DocumentRef struct {
	Type ReferenceType
	ID   uuid.UUID
}

// StockMovement is an immutable audit record of one ledger operation.
// Delta is the signed change to the physical quantity; reservation and
// release movements carry a zero delta because they only move stock between
// the available and reserved buckets. Quantity always holds the magnitude of
// the operation. The sum of all deltas for a position equals its current
// physical quantity.
// Once written, movements are never updated or deleted - corrections are
// made with new movements.
type StockMovement struct {
	shared.BaseEntity
	StockPositionID uuid.UUID       `gorm:"type:uuid;not null;index:idx_stock_movement_position"`
	WarehouseID     uuid.UUID       `gorm:"type:uuid;not null;index:idx_stock_movement_warehouse"`
	ProductID       uuid.UUID       `gorm:"type:uuid;not null;index:idx_stock_movement_product"`
	VariantID       uuid.UUID       `gorm:"type:uuid;not null"`
	Delta           decimal.Decimal `gorm:"type:decimal(18,3);not null"`
	Quantity        decimal.Decimal `gorm:"type:decimal(18,3);not null"`
	Reason          MovementReason  `gorm:"type:varchar(30);not null;index:idx_stock_movement_reason"`
	BalanceBefore   decimal.Decimal `gorm:"type:decimal(18,3);not null"`
	BalanceAfter    decimal.Decimal `gorm:"type:decimal(18,3);not null"`
	ReferenceType   *ReferenceType  `gorm:"type:varchar(30);index:idx_stock_movement_reference"`
	ReferenceID     *uuid.UUID      `gorm:"type:uuid;index:idx_stock_movement_reference"`
	Actor           string          `gorm:"type:varchar(100)"`
	OccurredAt      time.Time       `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (StockMovement) TableName() string {
	return "stock_movements"
}

func newStockMovement(p *StockPosition, delta, quantity decimal.Decimal, reason MovementReason, ref *DocumentRef, actor string, before, after decimal.Decimal) *StockMovement {
	m := &StockMovement{
		BaseEntity:      shared.NewBaseEntity(),
		StockPositionID: p.ID,
		WarehouseID:     p.WarehouseID,
		ProductID:       p.ProductID,
		VariantID:       p.VariantID,
		Delta:           delta,
		Quantity:        quantity,
		Reason:          reason,
		BalanceBefore:   before,
		BalanceAfter:    after,
		Actor:           actor,
		OccurredAt:      time.Now(),
	}
	if ref != nil {
		refType := ref.Type
		refID := ref.ID
		m.ReferenceType = &refType
		m.ReferenceID = &refID
	}
	return m
}

// ValidateReason checks a caller-supplied reason for adjustment operations.
// Only reasons describing direct physical changes are accepted here; the
// reservation and transfer reasons are reserved for their dedicated
// operations.
func ValidateReason(reason MovementReason) error {
	if !reason.IsValid() {
		return shared.NewDomainError("INVALID_INPUT", "Invalid movement reason")
	}
	switch reason {
	case MovementReasonSaleReservation, MovementReasonSaleRelease,
		MovementReasonTransferIn, MovementReasonTransferOut:
		return shared.NewDomainError("INVALID_INPUT", "Reason is reserved for ledger-internal operations")
	}
	return nil
}
