package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/inventra/backend/internal/domain/procurement"
	"github.com/inventra/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormPurchaseOrderRepository implements PurchaseOrderRepository using GORM
type GormPurchaseOrderRepository struct {
	db *gorm.DB
}

// NewGormPurchaseOrderRepository creates a new GormPurchaseOrderRepository
func NewGormPurchaseOrderRepository(db *gorm.DB) *GormPurchaseOrderRepository {
	return &GormPurchaseOrderRepository{db: db}
}

// FindByID finds a purchase order with its lines
func (r *GormPurchaseOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*procurement.PurchaseOrder, error) {
	var order procurement.PurchaseOrder
	err := r.db.WithContext(ctx).
		Preload("Lines").
		First(&order, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindByNumber finds a purchase order by its order number
func (r *GormPurchaseOrderRepository) FindByNumber(ctx context.Context, orderNumber string) (*procurement.PurchaseOrder, error) {
	var order procurement.PurchaseOrder
	err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("order_number = ?", orderNumber).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindBySupplier finds purchase orders for a supplier
func (r *GormPurchaseOrderRepository) FindBySupplier(ctx context.Context, supplierID uuid.UUID, filter shared.Filter) ([]procurement.PurchaseOrder, error) {
	var orders []procurement.PurchaseOrder
	query := r.db.WithContext(ctx).Model(&procurement.PurchaseOrder{}).
		Where("supplier_id = ?", supplierID)
	query = r.applyFilter(query, filter)

	if err := query.Preload("Lines").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// FindByStatus finds purchase orders in a status
func (r *GormPurchaseOrderRepository) FindByStatus(ctx context.Context, status procurement.PurchaseOrderStatus, filter shared.Filter) ([]procurement.PurchaseOrder, error) {
	var orders []procurement.PurchaseOrder
	query := r.db.WithContext(ctx).Model(&procurement.PurchaseOrder{}).
		Where("status = ?", status)
	query = r.applyFilter(query, filter)

	if err := query.Preload("Lines").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// List lists purchase orders
func (r *GormPurchaseOrderRepository) List(ctx context.Context, filter shared.Filter) ([]procurement.PurchaseOrder, error) {
	var orders []procurement.PurchaseOrder
	query := r.applyFilter(r.db.WithContext(ctx).Model(&procurement.PurchaseOrder{}), filter)

	if err := query.Preload("Lines").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// Save creates or updates a purchase order and its lines
func (r *GormPurchaseOrderRepository) Save(ctx context.Context, order *procurement.PurchaseOrder) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Lines").Save(order).Error; err != nil {
			return err
		}
		return r.replaceLines(tx, order)
	})
}

// SaveWithVersion saves an order only if its stored version matches the
// version the aggregate was loaded with. Domain mutations increment the
// in-memory version, so the stored row must still hold version-1.
func (r *GormPurchaseOrderRepository) SaveWithVersion(ctx context.Context, order *procurement.PurchaseOrder) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&procurement.PurchaseOrder{}).
			Where("id = ? AND version = ?", order.ID, order.Version-1).
			Updates(map[string]interface{}{
				"supplier_id":     order.SupplierID,
				"warehouse_id":    order.WarehouseID,
				"status":          order.Status,
				"subtotal":        order.Subtotal,
				"tax_amount":      order.TaxAmount,
				"discount_amount": order.DiscountAmount,
				"total_amount":    order.TotalAmount,
				"expected_date":   order.ExpectedDate,
				"submitted_at":    order.SubmittedAt,
				"notes":           order.Notes,
				"version":         order.Version,
				"updated_at":      order.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}
		return r.replaceLines(tx, order)
	})
}

// replaceLines synchronizes the stored lines with the aggregate's lines:
// removed lines are deleted, remaining ones are upserted.
func (r *GormPurchaseOrderRepository) replaceLines(tx *gorm.DB, order *procurement.PurchaseOrder) error {
	currentLineIDs := make([]uuid.UUID, len(order.Lines))
	for i := range order.Lines {
		currentLineIDs[i] = order.Lines[i].ID
	}

	if len(currentLineIDs) > 0 {
		if err := tx.Where("purchase_order_id = ? AND id NOT IN ?", order.ID, currentLineIDs).
			Delete(&procurement.PurchaseOrderLine{}).Error; err != nil {
			return err
		}
	} else {
		if err := tx.Where("purchase_order_id = ?", order.ID).
			Delete(&procurement.PurchaseOrderLine{}).Error; err != nil {
			return err
		}
	}

	for i := range order.Lines {
		order.Lines[i].PurchaseOrderID = order.ID
		if err := tx.Save(&order.Lines[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

// GenerateNumber generates the next order number in the PO-YYYY-NNNNN format
func (r *GormPurchaseOrderRepository) GenerateNumber(ctx context.Context) (string, error) {
	return nextDocumentNumber(ctx, r.db, &procurement.PurchaseOrder{}, "order_number", "PO")
}

// Count counts purchase orders
func (r *GormPurchaseOrderRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&procurement.PurchaseOrder{}).Count(&count).Error
	return count, err
}

func (r *GormPurchaseOrderRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	sortField := ValidateSortField(filter.OrderBy, PurchaseOrderSortFields, "created_at")
	sortOrder := ValidateSortOrder(filter.OrderDir)
	return query.Order(sortField + " " + sortOrder)
}

var _ procurement.PurchaseOrderRepository = (*GormPurchaseOrderRepository)(nil)
