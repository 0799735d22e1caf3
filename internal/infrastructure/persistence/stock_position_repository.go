package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/inventra/backend/internal/domain/inventory"
	"github.com/inventra/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormStockPositionRepository implements StockPositionRepository using GORM
type GormStockPositionRepository struct {
	db *gorm.DB
}

// NewGormStockPositionRepository creates a new GormStockPositionRepository
func NewGormStockPositionRepository(db *gorm.DB) *GormStockPositionRepository {
	return &GormStockPositionRepository{db: db}
}

// FindByID finds a stock position by its ID
func (r *GormStockPositionRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.StockPosition, error) {
	var position inventory.StockPosition
	if err := r.db.WithContext(ctx).First(&position, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &position, nil
}

// FindByKey finds a stock position by its warehouse-product-variant key
func (r *GormStockPositionRepository) FindByKey(ctx context.Context, key inventory.PositionKey) (*inventory.StockPosition, error) {
	var position inventory.StockPosition
	err := r.db.WithContext(ctx).
		Where("warehouse_id = ? AND product_id = ? AND variant_id = ?",
			key.WarehouseID, key.ProductID, key.VariantID).
		First(&position).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &position, nil
}

// FindByWarehouse finds all positions in a warehouse
func (r *GormStockPositionRepository) FindByWarehouse(ctx context.Context, warehouseID uuid.UUID, filter shared.Filter) ([]inventory.StockPosition, error) {
	var positions []inventory.StockPosition
	query := r.db.WithContext(ctx).Model(&inventory.StockPosition{}).
		Where("warehouse_id = ?", warehouseID)
	query = r.applyFilter(query, filter)

	if err := query.Find(&positions).Error; err != nil {
		return nil, err
	}
	return positions, nil
}

// FindByProduct finds all positions for a product across warehouses.
// A nil variantID matches every variant of the product.
func (r *GormStockPositionRepository) FindByProduct(ctx context.Context, productID uuid.UUID, variantID *uuid.UUID) ([]inventory.StockPosition, error) {
	var positions []inventory.StockPosition
	query := r.db.WithContext(ctx).Model(&inventory.StockPosition{}).
		Where("product_id = ?", productID)
	if variantID != nil {
		query = query.Where("variant_id = ?", *variantID)
	}

	if err := query.Order("created_at DESC").Find(&positions).Error; err != nil {
		return nil, err
	}
	return positions, nil
}

// GetOrCreate returns the position for a key, creating an empty one when no
// stock has ever moved into that warehouse for the product/variant.
func (r *GormStockPositionRepository) GetOrCreate(ctx context.Context, key inventory.PositionKey) (*inventory.StockPosition, error) {
	position, err := r.FindByKey(ctx, key)
	if err == nil {
		return position, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	position, err = inventory.NewStockPosition(key.WarehouseID, key.ProductID, key.VariantID)
	if err != nil {
		return nil, err
	}

	if err := r.db.WithContext(ctx).Create(position).Error; err != nil {
		// Lost the race against a concurrent creator; the position exists now.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return r.FindByKey(ctx, key)
		}
		return nil, err
	}
	return position, nil
}

// Save creates or updates a stock position
func (r *GormStockPositionRepository) Save(ctx context.Context, position *inventory.StockPosition) error {
	return r.db.WithContext(ctx).Save(position).Error
}

// SaveWithVersion saves a position only if its stored version matches the
// version the aggregate was loaded with. Domain mutations increment the
// in-memory version, so the stored row must still hold version-1.
func (r *GormStockPositionRepository) SaveWithVersion(ctx context.Context, position *inventory.StockPosition) error {
	result := r.db.WithContext(ctx).Model(&inventory.StockPosition{}).
		Where("id = ? AND version = ?", position.ID, position.Version-1).
		Updates(map[string]interface{}{
			"physical_quantity": position.PhysicalQuantity,
			"reserved_quantity": position.ReservedQuantity,
			"location":          position.Location,
			"version":           position.Version,
			"updated_at":        position.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// CountByWarehouse counts positions in a warehouse
func (r *GormStockPositionRepository) CountByWarehouse(ctx context.Context, warehouseID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&inventory.StockPosition{}).
		Where("warehouse_id = ?", warehouseID).
		Count(&count).Error
	return count, err
}

func (r *GormStockPositionRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	sortField := ValidateSortField(filter.OrderBy, StockPositionSortFields, "created_at")
	sortOrder := ValidateSortOrder(filter.OrderDir)
	return query.Order(sortField + " " + sortOrder)
}

var _ inventory.StockPositionRepository = (*GormStockPositionRepository)(nil)
