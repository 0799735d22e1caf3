package pricing

import (
	"context"

	"github.com/google/uuid"
)

// PriceRepository defines the interface for price persistence
type PriceRepository interface {
	// FindSetByVariant loads the full price set for a variant
	FindSetByVariant(ctx context.Context, variantID uuid.UUID) (*PriceSet, error)

	// SaveSet persists the full price set for a variant, replacing prior records
	SaveSet(ctx context.Context, set *PriceSet) error

	// DeleteByVariant removes all price records for a variant
	DeleteByVariant(ctx context.Context, variantID uuid.UUID) error
}
