package pricing

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/inventra/backend/internal/domain/pricing"
	"github.com/inventra/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PriceService manages variant price sets and resolves effective prices.
// It also serves as the price resolver for purchase order lines created
// without an explicit unit price.
type PriceService struct {
	repo pricing.PriceRepository
}

// NewPriceService creates a new PriceService
func NewPriceService(repo pricing.PriceRepository) *PriceService {
	return &PriceService{repo: repo}
}

// CreateSet creates a price set for a variant, seeded with its standard price
func (s *PriceService) CreateSet(ctx context.Context, req CreatePriceSetRequest) (*PriceSetResponse, error) {
	_, err := s.repo.FindSetByVariant(ctx, req.VariantID)
	if err == nil {
		return nil, shared.ErrAlreadyExists
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	set, err := pricing.NewPriceSet(req.VariantID, req.StandardPrice)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SaveSet(ctx, set); err != nil {
		return nil, err
	}
	return NewPriceSetResponse(set), nil
}

// SetPrice adds or replaces one price record on a variant's set
func (s *PriceService) SetPrice(ctx context.Context, variantID uuid.UUID, req SetPriceRequest) (*PriceSetResponse, error) {
	set, err := s.repo.FindSetByVariant(ctx, variantID)
	if err != nil {
		return nil, err
	}
	if err := set.SetPrice(pricing.PriceType(req.Type), req.UnitPrice, req.ValidFrom, req.ValidUntil); err != nil {
		return nil, err
	}
	if err := s.repo.SaveSet(ctx, set); err != nil {
		return nil, err
	}
	return NewPriceSetResponse(set), nil
}

// RemovePrice removes the price record of the given type from a variant's set
func (s *PriceService) RemovePrice(ctx context.Context, variantID uuid.UUID, priceType string) (*PriceSetResponse, error) {
	set, err := s.repo.FindSetByVariant(ctx, variantID)
	if err != nil {
		return nil, err
	}
	if err := set.RemovePrice(pricing.PriceType(priceType)); err != nil {
		return nil, err
	}
	if err := s.repo.SaveSet(ctx, set); err != nil {
		return nil, err
	}
	return NewPriceSetResponse(set), nil
}

// GetSet returns all price records for a variant
func (s *PriceService) GetSet(ctx context.Context, variantID uuid.UUID) (*PriceSetResponse, error) {
	set, err := s.repo.FindSetByVariant(ctx, variantID)
	if err != nil {
		return nil, err
	}
	return NewPriceSetResponse(set), nil
}

// DeleteSet removes all price records for a variant
func (s *PriceService) DeleteSet(ctx context.Context, variantID uuid.UUID) error {
	if _, err := s.repo.FindSetByVariant(ctx, variantID); err != nil {
		return err
	}
	return s.repo.DeleteByVariant(ctx, variantID)
}

// ResolvePrice resolves the effective price for a variant and type at an
// instant, falling back to the standard price when the requested type is
// absent or out of its validity window
func (s *PriceService) ResolvePrice(ctx context.Context, variantID uuid.UUID, priceType string, at time.Time) (*ResolvedPriceResponse, error) {
	set, err := s.repo.FindSetByVariant(ctx, variantID)
	if err != nil {
		return nil, err
	}
	price, err := set.Resolve(pricing.PriceType(priceType), at)
	if err != nil {
		return nil, err
	}
	return &ResolvedPriceResponse{
		VariantID: variantID,
		Type:      priceType,
		UnitPrice: price,
		At:        at,
	}, nil
}

// ResolveUnitPrice resolves the current price for a variant. An empty price
// type resolves the standard price.
func (s *PriceService) ResolveUnitPrice(ctx context.Context, variantID uuid.UUID, priceType string) (decimal.Decimal, error) {
	if priceType == "" {
		priceType = pricing.PriceTypeStandard.String()
	}
	resolved, err := s.ResolvePrice(ctx, variantID, priceType, time.Now())
	if err != nil {
		return decimal.Zero, err
	}
	return resolved.UnitPrice, nil
}
