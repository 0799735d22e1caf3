package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/inventra/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// StockPosition represents the stock of one product variant in one warehouse.
// It is the aggregate root for all stock mutations; no other component may
// write its quantities directly.
// The composite identifier is WarehouseID + ProductID + VariantID, where a
// nil VariantID denotes a product without variants.
// Positions are never deleted, only zeroed.
type StockPosition struct {
	shared.BaseAggregateRoot
	WarehouseID      uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_stock_position_key,priority:1"`
	ProductID        uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_stock_position_key,priority:2"`
	VariantID        uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_stock_position_key,priority:3"` // uuid.Nil for variant-less products
	PhysicalQuantity decimal.Decimal `gorm:"type:decimal(18,3);not null;default:0"`
	ReservedQuantity decimal.Decimal `gorm:"type:decimal(18,3);not null;default:0"`
	Location         string          `gorm:"type:varchar(100)"`
}

// TableName returns the table name for GORM
func (StockPosition) TableName() string {
	return "stock_positions"
}

// NewStockPosition creates an empty stock position for a warehouse-product-variant key
func NewStockPosition(warehouseID, productID, variantID uuid.UUID) (*StockPosition, error) {
	if warehouseID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Warehouse ID cannot be empty")
	}
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Product ID cannot be empty")
	}

	return &StockPosition{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		WarehouseID:       warehouseID,
		ProductID:         productID,
		VariantID:         variantID,
		PhysicalQuantity:  decimal.Zero,
		ReservedQuantity:  decimal.Zero,
	}, nil
}

// Key returns the position key for serialization and event payloads
func (p *StockPosition) Key() PositionKey {
	return PositionKey{
		WarehouseID: p.WarehouseID,
		ProductID:   p.ProductID,
		VariantID:   p.VariantID,
	}
}

// AvailableQuantity returns physical minus reserved
func (p *StockPosition) AvailableQuantity() decimal.Decimal {
	return p.PhysicalQuantity.Sub(p.ReservedQuantity)
}

// ApplyDelta applies a signed physical quantity change. The resulting
// physical quantity must stay non-negative and must not drop below the
// reserved quantity, otherwise the mutation is rejected with NEGATIVE_STOCK
// and the position is left untouched.
func (p *StockPosition) ApplyDelta(delta decimal.Decimal, reason MovementReason, ref *DocumentRef, actor string) (*StockMovement, error) {
	if delta.IsZero() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Delta cannot be zero")
	}

	before := p.PhysicalQuantity
	after := before.Add(delta)
	if after.IsNegative() {
		return nil, shared.ErrNegativeStock
	}
	if after.LessThan(p.ReservedQuantity) {
		return nil, shared.ErrNegativeStock
	}

	p.PhysicalQuantity = after
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	movement := newStockMovement(p, delta, delta.Abs(), reason, ref, actor, before, after)
	p.AddDomainEvent(NewStockMovementPostedEvent(p, movement))

	return movement, nil
}

// AdjustTo sets the physical quantity to an absolute value, recording the
// difference as a movement. Fails with NEGATIVE_STOCK when the new quantity
// would drop below the reserved quantity.
func (p *StockPosition) AdjustTo(newPhysical decimal.Decimal, reason MovementReason, actor string) (*StockMovement, error) {
	if newPhysical.IsNegative() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Physical quantity cannot be negative")
	}
	if newPhysical.LessThan(p.ReservedQuantity) {
		return nil, shared.ErrNegativeStock
	}

	delta := newPhysical.Sub(p.PhysicalQuantity)
	if delta.IsZero() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Adjustment does not change the quantity")
	}

	before := p.PhysicalQuantity
	p.PhysicalQuantity = newPhysical
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	movement := newStockMovement(p, delta, delta.Abs(), reason, nil, actor, before, newPhysical)
	p.AddDomainEvent(NewStockMovementPostedEvent(p, movement))

	return movement, nil
}

// Reserve places a hold on available stock. The physical quantity is
// unchanged; the hold is reflected in the reserved quantity. Fails with
// INSUFFICIENT_STOCK when the requested quantity exceeds availability.
func (p *StockPosition) Reserve(quantity decimal.Decimal, ref *DocumentRef, actor string) (*StockMovement, error) {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_INPUT", "Reserve quantity must be positive")
	}
	if quantity.GreaterThan(p.AvailableQuantity()) {
		return nil, shared.ErrInsufficientStock
	}

	p.ReservedQuantity = p.ReservedQuantity.Add(quantity)
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	movement := newStockMovement(p, decimal.Zero, quantity, MovementReasonSaleReservation, ref, actor, p.PhysicalQuantity, p.PhysicalQuantity)
	p.AddDomainEvent(NewStockReservedEvent(p, quantity))

	return movement, nil
}

// Release returns a previously reserved quantity to availability
func (p *StockPosition) Release(quantity decimal.Decimal, ref *DocumentRef, actor string) (*StockMovement, error) {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_INPUT", "Release quantity must be positive")
	}
	if quantity.GreaterThan(p.ReservedQuantity) {
		return nil, shared.NewDomainError("INVALID_INPUT", "Release quantity exceeds reserved quantity")
	}

	p.ReservedQuantity = p.ReservedQuantity.Sub(quantity)
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	movement := newStockMovement(p, decimal.Zero, quantity, MovementReasonSaleRelease, ref, actor, p.PhysicalQuantity, p.PhysicalQuantity)
	p.AddDomainEvent(NewStockReleasedEvent(p, quantity))

	return movement, nil
}

// SetLocation updates the free-text storage location
func (p *StockPosition) SetLocation(location string) {
	p.Location = location
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// IsZeroed returns true if the position holds no physical stock
func (p *StockPosition) IsZeroed() bool {
	return p.PhysicalQuantity.IsZero()
}

// CanFulfill returns true if the available quantity covers the requested quantity
func (p *StockPosition) CanFulfill(quantity decimal.Decimal) bool {
	return p.AvailableQuantity().GreaterThanOrEqual(quantity)
}

// PositionKey identifies a stock position across the system
type PositionKey struct {
	WarehouseID uuid.UUID `json:"warehouse_id"`
	ProductID   uuid.UUID `json:"product_id"`
	VariantID   uuid.UUID `json:"variant_id"`
}

// String renders the key as warehouse|product|variant, used for per-key
// serialization of mutating operations.
func (k PositionKey) String() string {
	return k.WarehouseID.String() + "|" + k.ProductID.String() + "|" + k.VariantID.String()
}
