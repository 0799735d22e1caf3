package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/inventra/backend/internal/domain/pricing"
	"github.com/inventra/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormPriceRepository implements PriceRepository using GORM. The price set
// is stored as individual price rows; SaveSet replaces the variant's rows
// atomically so the one-standard-price invariant holds in storage too.
type GormPriceRepository struct {
	db *gorm.DB
}

// NewGormPriceRepository creates a new GormPriceRepository
func NewGormPriceRepository(db *gorm.DB) *GormPriceRepository {
	return &GormPriceRepository{db: db}
}

// FindSetByVariant loads the full price set for a variant
func (r *GormPriceRepository) FindSetByVariant(ctx context.Context, variantID uuid.UUID) (*pricing.PriceSet, error) {
	var prices []pricing.Price
	err := r.db.WithContext(ctx).
		Where("variant_id = ?", variantID).
		Order("created_at ASC").
		Find(&prices).Error
	if err != nil {
		return nil, err
	}
	if len(prices) == 0 {
		return nil, shared.ErrNotFound
	}
	return &pricing.PriceSet{VariantID: variantID, Prices: prices}, nil
}

// SaveSet persists the full price set for a variant, replacing prior records
func (r *GormPriceRepository) SaveSet(ctx context.Context, set *pricing.PriceSet) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		currentIDs := make([]uuid.UUID, len(set.Prices))
		for i := range set.Prices {
			currentIDs[i] = set.Prices[i].ID
		}

		if len(currentIDs) > 0 {
			if err := tx.Where("variant_id = ? AND id NOT IN ?", set.VariantID, currentIDs).
				Delete(&pricing.Price{}).Error; err != nil {
				return err
			}
		} else {
			if err := tx.Where("variant_id = ?", set.VariantID).
				Delete(&pricing.Price{}).Error; err != nil {
				return err
			}
		}

		for i := range set.Prices {
			if err := tx.Save(&set.Prices[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteByVariant removes all price records for a variant
func (r *GormPriceRepository) DeleteByVariant(ctx context.Context, variantID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("variant_id = ?", variantID).
		Delete(&pricing.Price{}).Error
}

var _ pricing.PriceRepository = (*GormPriceRepository)(nil)
