package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/inventra/backend/internal/domain/inventory"
	"github.com/shopspring/decimal"
)

// AdjustStockRequest sets a position's physical quantity to an absolute value
type AdjustStockRequest struct {
	WarehouseID uuid.UUID                `json:"warehouse_id" binding:"required"`
	ProductID   uuid.UUID                `json:"product_id" binding:"required"`
	VariantID   uuid.UUID                `json:"variant_id"`
	NewQuantity decimal.Decimal          `json:"new_quantity"`
	Reason      inventory.MovementReason `json:"reason" binding:"required"`
	Actor       string                   `json:"actor"`
}

// PostMovementRequest applies a signed delta to a position
type PostMovementRequest struct {
	WarehouseID uuid.UUID                `json:"warehouse_id" binding:"required"`
	ProductID   uuid.UUID                `json:"product_id" binding:"required"`
	VariantID   uuid.UUID                `json:"variant_id"`
	Delta       decimal.Decimal          `json:"delta"`
	Reason      inventory.MovementReason `json:"reason" binding:"required"`
	Actor       string                   `json:"actor"`
}

// ReservationRequest reserves or releases stock for a sales document
type ReservationRequest struct {
	WarehouseID uuid.UUID       `json:"warehouse_id" binding:"required"`
	ProductID   uuid.UUID       `json:"product_id" binding:"required"`
	VariantID   uuid.UUID       `json:"variant_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	ReferenceID *uuid.UUID      `json:"reference_id"`
	Actor       string          `json:"actor"`
}

// TransferRequest moves stock between two warehouses atomically
type TransferRequest struct {
	FromWarehouseID uuid.UUID       `json:"from_warehouse_id" binding:"required"`
	ToWarehouseID   uuid.UUID       `json:"to_warehouse_id" binding:"required"`
	ProductID       uuid.UUID       `json:"product_id" binding:"required"`
	VariantID       uuid.UUID       `json:"variant_id"`
	Quantity        decimal.Decimal `json:"quantity"`
	Actor           string          `json:"actor"`
}

// StockPositionResponse is the API representation of a stock position
type StockPositionResponse struct {
	ID                uuid.UUID       `json:"id"`
	WarehouseID       uuid.UUID       `json:"warehouse_id"`
	ProductID         uuid.UUID       `json:"product_id"`
	VariantID         uuid.UUID       `json:"variant_id"`
	PhysicalQuantity  decimal.Decimal `json:"physical_quantity"`
	ReservedQuantity  decimal.Decimal `json:"reserved_quantity"`
	AvailableQuantity decimal.Decimal `json:"available_quantity"`
	Location          string          `json:"location,omitempty"`
	Version           int             `json:"version"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// NewStockPositionResponse converts a domain position to a response DTO
func NewStockPositionResponse(p *inventory.StockPosition) *StockPositionResponse {
	return &StockPositionResponse{
		ID:                p.ID,
		WarehouseID:       p.WarehouseID,
		ProductID:         p.ProductID,
		VariantID:         p.VariantID,
		PhysicalQuantity:  p.PhysicalQuantity,
		ReservedQuantity:  p.ReservedQuantity,
		AvailableQuantity: p.AvailableQuantity(),
		Location:          p.Location,
		Version:           p.Version,
		UpdatedAt:         p.UpdatedAt,
	}
}

// StockMovementResponse is the API representation of a movement record
type StockMovementResponse struct {
	ID            uuid.UUID                `json:"id"`
	WarehouseID   uuid.UUID                `json:"warehouse_id"`
	ProductID     uuid.UUID                `json:"product_id"`
	VariantID     uuid.UUID                `json:"variant_id"`
	Delta         decimal.Decimal          `json:"delta"`
	Quantity      decimal.Decimal          `json:"quantity"`
	Reason        inventory.MovementReason `json:"reason"`
	BalanceBefore decimal.Decimal          `json:"balance_before"`
	BalanceAfter  decimal.Decimal          `json:"balance_after"`
	ReferenceType *inventory.ReferenceType `json:"reference_type,omitempty"`
	ReferenceID   *uuid.UUID               `json:"reference_id,omitempty"`
	Actor         string                   `json:"actor,omitempty"`
	OccurredAt    time.Time                `json:"occurred_at"`
}

// NewStockMovementResponse converts a domain movement to a response DTO
func NewStockMovementResponse(m *inventory.StockMovement) *StockMovementResponse {
	return &StockMovementResponse{
		ID:            m.ID,
		WarehouseID:   m.WarehouseID,
		ProductID:     m.ProductID,
		VariantID:     m.VariantID,
		Delta:         m.Delta,
		Quantity:      m.Quantity,
		Reason:        m.Reason,
		BalanceBefore: m.BalanceBefore,
		BalanceAfter:  m.BalanceAfter,
		ReferenceType: m.ReferenceType,
		ReferenceID:   m.ReferenceID,
		Actor:         m.Actor,
		OccurredAt:    m.OccurredAt,
	}
}

// WarehouseStockResponse is one warehouse's slice of a product's stock
type WarehouseStockResponse struct {
	WarehouseID       uuid.UUID       `json:"warehouse_id"`
	PhysicalQuantity  decimal.Decimal `json:"physical_quantity"`
	ReservedQuantity  decimal.Decimal `json:"reserved_quantity"`
	AvailableQuantity decimal.Decimal `json:"available_quantity"`
}

// ProductStockResponse aggregates a product's stock across warehouses
type ProductStockResponse struct {
	ProductID      uuid.UUID                `json:"product_id"`
	VariantID      *uuid.UUID               `json:"variant_id,omitempty"`
	TotalPhysical  decimal.Decimal          `json:"total_physical"`
	TotalReserved  decimal.Decimal          `json:"total_reserved"`
	TotalAvailable decimal.Decimal          `json:"total_available"`
	Warehouses     []WarehouseStockResponse `json:"warehouses"`
}
