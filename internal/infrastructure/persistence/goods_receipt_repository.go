package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/inventra/backend/internal/domain/procurement"
	"github.com/inventra/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormGoodsReceiptRepository implements GoodsReceiptRepository using GORM
type GormGoodsReceiptRepository struct {
	db *gorm.DB
}

// NewGormGoodsReceiptRepository creates a new GormGoodsReceiptRepository
func NewGormGoodsReceiptRepository(db *gorm.DB) *GormGoodsReceiptRepository {
	return &GormGoodsReceiptRepository{db: db}
}

// FindByID finds a goods receipt note with its lines
func (r *GormGoodsReceiptRepository) FindByID(ctx context.Context, id uuid.UUID) (*procurement.GoodsReceiptNote, error) {
	var grn procurement.GoodsReceiptNote
	err := r.db.WithContext(ctx).
		Preload("Lines").
		First(&grn, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &grn, nil
}

// FindByOrder finds all receipts against a purchase order
func (r *GormGoodsReceiptRepository) FindByOrder(ctx context.Context, purchaseOrderID uuid.UUID) ([]procurement.GoodsReceiptNote, error) {
	var receipts []procurement.GoodsReceiptNote
	err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("purchase_order_id = ?", purchaseOrderID).
		Order("created_at DESC").
		Find(&receipts).Error
	if err != nil {
		return nil, err
	}
	return receipts, nil
}

// List lists goods receipt notes
func (r *GormGoodsReceiptRepository) List(ctx context.Context, filter shared.Filter) ([]procurement.GoodsReceiptNote, error) {
	var receipts []procurement.GoodsReceiptNote
	query := r.applyFilter(r.db.WithContext(ctx).Model(&procurement.GoodsReceiptNote{}), filter)

	if err := query.Preload("Lines").Find(&receipts).Error; err != nil {
		return nil, err
	}
	return receipts, nil
}

// Save creates or updates a receipt and its lines
func (r *GormGoodsReceiptRepository) Save(ctx context.Context, grn *procurement.GoodsReceiptNote) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Lines").Save(grn).Error; err != nil {
			return err
		}
		return r.replaceLines(tx, grn)
	})
}

// SaveWithVersion saves a receipt only if its stored version matches the
// version the aggregate was loaded with. Completion flows through here so
// two concurrent completions cannot both post movements.
func (r *GormGoodsReceiptRepository) SaveWithVersion(ctx context.Context, grn *procurement.GoodsReceiptNote) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&procurement.GoodsReceiptNote{}).
			Where("id = ? AND version = ?", grn.ID, grn.Version-1).
			Updates(map[string]interface{}{
				"status":       grn.Status,
				"receipt_date": grn.ReceiptDate,
				"completed_at": grn.CompletedAt,
				"notes":        grn.Notes,
				"version":      grn.Version,
				"updated_at":   grn.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}
		return r.replaceLines(tx, grn)
	})
}

func (r *GormGoodsReceiptRepository) replaceLines(tx *gorm.DB, grn *procurement.GoodsReceiptNote) error {
	currentLineIDs := make([]uuid.UUID, len(grn.Lines))
	for i := range grn.Lines {
		currentLineIDs[i] = grn.Lines[i].ID
	}

	if len(currentLineIDs) > 0 {
		if err := tx.Where("goods_receipt_id = ? AND id NOT IN ?", grn.ID, currentLineIDs).
			Delete(&procurement.GoodsReceiptLine{}).Error; err != nil {
			return err
		}
	} else {
		if err := tx.Where("goods_receipt_id = ?", grn.ID).
			Delete(&procurement.GoodsReceiptLine{}).Error; err != nil {
			return err
		}
	}

	for i := range grn.Lines {
		grn.Lines[i].GoodsReceiptID = grn.ID
		if err := tx.Save(&grn.Lines[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

// GenerateNumber generates the next receipt number in the GRN-YYYY-NNNNN format
func (r *GormGoodsReceiptRepository) GenerateNumber(ctx context.Context) (string, error) {
	return nextDocumentNumber(ctx, r.db, &procurement.GoodsReceiptNote{}, "receipt_number", "GRN")
}

func (r *GormGoodsReceiptRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	sortField := ValidateSortField(filter.OrderBy, GoodsReceiptSortFields, "created_at")
	sortOrder := ValidateSortOrder(filter.OrderDir)
	return query.Order(sortField + " " + sortOrder)
}

var _ procurement.GoodsReceiptRepository = (*GormGoodsReceiptRepository)(nil)
