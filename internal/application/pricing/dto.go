package pricing

import (
	"time"

	"github.com/google/uuid"
	"github.com/inventra/backend/internal/domain/pricing"
	"github.com/shopspring/decimal"
)

// CreatePriceSetRequest seeds a variant's price set with its standard price
type CreatePriceSetRequest struct {
	VariantID     uuid.UUID       `json:"variant_id" binding:"required"`
	StandardPrice decimal.Decimal `json:"standard_price" binding:"dec2"`
}

// SetPriceRequest adds or replaces one price record on a variant's set
type SetPriceRequest struct {
	Type       string           `json:"type" binding:"required"`
	UnitPrice  decimal.Decimal  `json:"unit_price" binding:"dec2"`
	ValidFrom  *time.Time       `json:"valid_from"`
	ValidUntil *time.Time       `json:"valid_until"`
}

// PriceResponse is the API representation of one price record
type PriceResponse struct {
	ID         uuid.UUID       `json:"id"`
	VariantID  uuid.UUID       `json:"variant_id"`
	Type       string          `json:"type"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	ValidFrom  *time.Time      `json:"valid_from,omitempty"`
	ValidUntil *time.Time      `json:"valid_until,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// PriceSetResponse is the API representation of a variant's price set
type PriceSetResponse struct {
	VariantID uuid.UUID       `json:"variant_id"`
	Prices    []PriceResponse `json:"prices"`
}

// ResolvedPriceResponse is the result of a price resolution query
type ResolvedPriceResponse struct {
	VariantID uuid.UUID       `json:"variant_id"`
	Type      string          `json:"type"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	At        time.Time       `json:"at"`
}

// NewPriceSetResponse converts a domain price set to a response DTO
func NewPriceSetResponse(set *pricing.PriceSet) *PriceSetResponse {
	prices := make([]PriceResponse, 0, len(set.Prices))
	for i := range set.Prices {
		p := &set.Prices[i]
		prices = append(prices, PriceResponse{
			ID:         p.ID,
			VariantID:  p.VariantID,
			Type:       p.Type.String(),
			UnitPrice:  p.UnitPrice,
			ValidFrom:  p.ValidFrom,
			ValidUntil: p.ValidUntil,
			CreatedAt:  p.CreatedAt,
			UpdatedAt:  p.UpdatedAt,
		})
	}
	return &PriceSetResponse{
		VariantID: set.VariantID,
		Prices:    prices,
	}
}
