package inventory

import (
	"github.com/inventra/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Event types for the inventory context
const (
	EventTypeStockMovementPosted = "inventory.stock_movement_posted"
	EventTypeStockReserved       = "inventory.stock_reserved"
	EventTypeStockReleased       = "inventory.stock_released"
)

// AggregateTypeStockPosition is the aggregate type for stock position events
const AggregateTypeStockPosition = "StockPosition"

// StockMovementPostedEvent is emitted for every movement written to the ledger
type StockMovementPostedEvent struct {
	shared.BaseDomainEvent
	PositionKey   PositionKey     `json:"position_key"`
	Delta         decimal.Decimal `json:"delta"`
	Reason        MovementReason  `json:"reason"`
	ReferenceType *ReferenceType  `json:"reference_type,omitempty"`
	ReferenceID   string          `json:"reference_id,omitempty"`
	BalanceAfter  decimal.Decimal `json:"balance_after"`
}

// NewStockMovementPostedEvent creates a new StockMovementPostedEvent
func NewStockMovementPostedEvent(p *StockPosition, m *StockMovement) *StockMovementPostedEvent {
	e := &StockMovementPostedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockMovementPosted, AggregateTypeStockPosition, p.ID),
		PositionKey:     p.Key(),
		Delta:           m.Delta,
		Reason:          m.Reason,
		ReferenceType:   m.ReferenceType,
		BalanceAfter:    m.BalanceAfter,
	}
	if m.ReferenceID != nil {
		e.ReferenceID = m.ReferenceID.String()
	}
	return e
}

// StockReservedEvent is emitted when available stock is put on hold
type StockReservedEvent struct {
	shared.BaseDomainEvent
	PositionKey PositionKey     `json:"position_key"`
	Quantity    decimal.Decimal `json:"quantity"`
	Available   decimal.Decimal `json:"available"`
}

// NewStockReservedEvent creates a new StockReservedEvent
func NewStockReservedEvent(p *StockPosition, quantity decimal.Decimal) *StockReservedEvent {
	return &StockReservedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockReserved, AggregateTypeStockPosition, p.ID),
		PositionKey:     p.Key(),
		Quantity:        quantity,
		Available:       p.AvailableQuantity(),
	}
}

// StockReleasedEvent is emitted when a hold is returned to availability
type StockReleasedEvent struct {
	shared.BaseDomainEvent
	PositionKey PositionKey     `json:"position_key"`
	Quantity    decimal.Decimal `json:"quantity"`
	Available   decimal.Decimal `json:"available"`
}

// NewStockReleasedEvent creates a new StockReleasedEvent
func NewStockReleasedEvent(p *StockPosition, quantity decimal.Decimal) *StockReleasedEvent {
	return &StockReleasedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockReleased, AggregateTypeStockPosition, p.ID),
		PositionKey:     p.Key(),
		Quantity:        quantity,
		Available:       p.AvailableQuantity(),
	}
}
