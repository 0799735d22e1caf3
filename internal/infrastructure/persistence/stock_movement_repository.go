package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/inventra/backend/internal/domain/inventory"
	"github.com/inventra/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormStockMovementRepository implements the append-only movement log using
// GORM. Movements are only ever created; no update or delete path exists.
type GormStockMovementRepository struct {
	db *gorm.DB
}

// NewGormStockMovementRepository creates a new GormStockMovementRepository
func NewGormStockMovementRepository(db *gorm.DB) *GormStockMovementRepository {
	return &GormStockMovementRepository{db: db}
}

// Create appends a movement to the log
func (r *GormStockMovementRepository) Create(ctx context.Context, movement *inventory.StockMovement) error {
	return r.db.WithContext(ctx).Create(movement).Error
}

// CreateBatch appends multiple movements to the log
func (r *GormStockMovementRepository) CreateBatch(ctx context.Context, movements []*inventory.StockMovement) error {
	if len(movements) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&movements).Error
}

// FindByPosition finds movements for a stock position, newest first by default
func (r *GormStockMovementRepository) FindByPosition(ctx context.Context, stockPositionID uuid.UUID, filter shared.Filter) ([]inventory.StockMovement, error) {
	var movements []inventory.StockMovement
	query := r.db.WithContext(ctx).Model(&inventory.StockMovement{}).
		Where("stock_position_id = ?", stockPositionID)
	query = r.applyFilter(query, filter)

	if err := query.Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

// FindByReference finds movements caused by a document
func (r *GormStockMovementRepository) FindByReference(ctx context.Context, refType inventory.ReferenceType, refID uuid.UUID) ([]inventory.StockMovement, error) {
	var movements []inventory.StockMovement
	err := r.db.WithContext(ctx).
		Where("reference_type = ? AND reference_id = ?", refType, refID).
		Order("occurred_at ASC").
		Find(&movements).Error
	if err != nil {
		return nil, err
	}
	return movements, nil
}

// SumDeltaByPosition sums all deltas for a position. The result must equal
// the position's current physical quantity; reconciliation checks rely on it.
func (r *GormStockMovementRepository) SumDeltaByPosition(ctx context.Context, stockPositionID uuid.UUID) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.db.WithContext(ctx).Model(&inventory.StockMovement{}).
		Where("stock_position_id = ?", stockPositionID).
		Select("COALESCE(SUM(delta), 0)").
		Scan(&sum).Error
	if err != nil {
		return decimal.Zero, err
	}
	return sum, nil
}

// CountByPosition counts movements for a position
func (r *GormStockMovementRepository) CountByPosition(ctx context.Context, stockPositionID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&inventory.StockMovement{}).
		Where("stock_position_id = ?", stockPositionID).
		Count(&count).Error
	return count, err
}

func (r *GormStockMovementRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	sortField := ValidateSortField(filter.OrderBy, StockMovementSortFields, "occurred_at")
	sortOrder := ValidateSortOrder(filter.OrderDir)
	return query.Order(sortField + " " + sortOrder)
}

var _ inventory.StockMovementRepository = (*GormStockMovementRepository)(nil)
