package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/inventra/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// StockPositionRepository defines the interface for stock position persistence
type StockPositionRepository interface {
	// FindByID finds a position by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*StockPosition, error)

	// FindByKey finds a position by its warehouse-product-variant key
	FindByKey(ctx context.Context, key PositionKey) (*StockPosition, error)

	// FindByWarehouse finds all positions in a warehouse
	FindByWarehouse(ctx context.Context, warehouseID uuid.UUID, filter shared.Filter) ([]StockPosition, error)

	// FindByProduct finds all positions for a product across warehouses.
	// A nil variantID matches every variant of the product.
	FindByProduct(ctx context.Context, productID uuid.UUID, variantID *uuid.UUID) ([]StockPosition, error)

	// GetOrCreate returns the position for a key, creating an empty one on
	// first movement into that warehouse for the product/variant
	GetOrCreate(ctx context.Context, key PositionKey) (*StockPosition, error)

	// Save creates or updates a position
	Save(ctx context.Context, position *StockPosition) error

	// SaveWithVersion saves a position only if its stored version matches
	// the version the aggregate was loaded with (optimistic locking)
	SaveWithVersion(ctx context.Context, position *StockPosition) error

	// CountByWarehouse counts positions in a warehouse
	CountByWarehouse(ctx context.Context, warehouseID uuid.UUID) (int64, error)
}

// StockMovementRepository defines the interface for the append-only movement log
type StockMovementRepository interface {
	// Create appends a movement (no update or delete exists)
	Create(ctx context.Context, movement *StockMovement) error

	// CreateBatch appends multiple movements
	CreateBatch(ctx context.Context, movements []*StockMovement) error

	// FindByPosition finds movements for a stock position
	FindByPosition(ctx context.Context, stockPositionID uuid.UUID, filter shared.Filter) ([]StockMovement, error)

	// FindByReference finds movements caused by a document
	FindByReference(ctx context.Context, refType ReferenceType, refID uuid.UUID) ([]StockMovement, error)

	// SumDeltaByPosition sums all deltas for a position (reconciliation)
	SumDeltaByPosition(ctx context.Context, stockPositionID uuid.UUID) (decimal.Decimal, error)

	// CountByPosition counts movements for a position
	CountByPosition(ctx context.Context, stockPositionID uuid.UUID) (int64, error)
}
