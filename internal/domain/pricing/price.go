package pricing

import (
	"time"

	"github.com/google/uuid"
	"github.com/inventra/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PriceType represents the kind of a price record
type PriceType string

const (
	PriceTypeStandard    PriceType = "STANDARD"
	PriceTypeSale        PriceType = "SALE"
	PriceTypeBulk        PriceType = "BULK"
	PriceTypeWholesale   PriceType = "WHOLESALE"
	PriceTypeRetail      PriceType = "RETAIL"
	PriceTypePromotional PriceType = "PROMOTIONAL"
)

// IsValid checks if the price type is valid
func (t PriceType) IsValid() bool {
	switch t {
	case PriceTypeStandard, PriceTypeSale, PriceTypeBulk,
		PriceTypeWholesale, PriceTypeRetail, PriceTypePromotional:
		return true
	}
	return false
}

// String returns the string representation of PriceType
func (t PriceType) String() string {
	return string(t)
}

// Price is one price record for a product variant. Several records of
// different types may be concurrently valid; the validity window is
// half-open [ValidFrom, ValidUntil), with nil meaning unbounded.
type Price struct {
	ID         uuid.UUID       `gorm:"type:uuid;primary_key"`
	VariantID  uuid.UUID       `gorm:"type:uuid;not null;index:idx_price_variant"`
	Type       PriceType       `gorm:"type:varchar(20);not null"`
	UnitPrice  decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	ValidFrom  *time.Time
	ValidUntil *time.Time
	CreatedAt  time.Time `gorm:"not null"`
	UpdatedAt  time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (Price) TableName() string {
	return "prices"
}

// NewPrice creates a new price record
func NewPrice(variantID uuid.UUID, priceType PriceType, unitPrice decimal.Decimal, validFrom, validUntil *time.Time) (*Price, error) {
	if variantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Variant ID cannot be empty")
	}
	if !priceType.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Invalid price type")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Unit price cannot be negative")
	}
	if validFrom != nil && validUntil != nil && !validUntil.After(*validFrom) {
		return nil, shared.NewDomainError("INVALID_INPUT", "Validity window must end after it starts")
	}

	now := time.Now()
	return &Price{
		ID:         uuid.New(),
		VariantID:  variantID,
		Type:       priceType,
		UnitPrice:  unitPrice.Round(2),
		ValidFrom:  validFrom,
		ValidUntil: validUntil,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// IsValidAt returns true if the price window contains the given instant
func (p *Price) IsValidAt(at time.Time) bool {
	if p.ValidFrom != nil && at.Before(*p.ValidFrom) {
		return false
	}
	if p.ValidUntil != nil && !at.Before(*p.ValidUntil) {
		return false
	}
	return true
}

// PriceSet is the collection of price records for one variant. It is the
// consistency boundary for the structural invariant that exactly one
// standard price exists per variant, enforced on every mutation.
type PriceSet struct {
	VariantID uuid.UUID
	Prices    []Price
}

// NewPriceSet creates a price set seeded with the mandatory standard price
func NewPriceSet(variantID uuid.UUID, standardPrice decimal.Decimal) (*PriceSet, error) {
	std, err := NewPrice(variantID, PriceTypeStandard, standardPrice, nil, nil)
	if err != nil {
		return nil, err
	}
	return &PriceSet{
		VariantID: variantID,
		Prices:    []Price{*std},
	}, nil
}

// SetPrice adds or replaces the price record of the given type.
// For the standard type the existing record is replaced in place so the set
// never holds zero or two standard prices.
func (ps *PriceSet) SetPrice(priceType PriceType, unitPrice decimal.Decimal, validFrom, validUntil *time.Time) error {
	price, err := NewPrice(ps.VariantID, priceType, unitPrice, validFrom, validUntil)
	if err != nil {
		return err
	}
	if priceType == PriceTypeStandard && (validFrom != nil || validUntil != nil) {
		return shared.NewDomainError("INVALID_INPUT", "Standard price cannot carry a validity window")
	}

	for idx := range ps.Prices {
		if ps.Prices[idx].Type == priceType {
			price.ID = ps.Prices[idx].ID
			price.CreatedAt = ps.Prices[idx].CreatedAt
			ps.Prices[idx] = *price
			return nil
		}
	}
	ps.Prices = append(ps.Prices, *price)
	return nil
}

// RemovePrice removes the price record of the given type.
// The standard price cannot be removed.
func (ps *PriceSet) RemovePrice(priceType PriceType) error {
	if priceType == PriceTypeStandard {
		return shared.NewDomainError("INVALID_STATE", "Standard price cannot be removed")
	}
	for idx := range ps.Prices {
		if ps.Prices[idx].Type == priceType {
			ps.Prices = append(ps.Prices[:idx], ps.Prices[idx+1:]...)
			return nil
		}
	}
	return shared.ErrNotFound
}

// Resolve picks the price for the requested type whose window contains the
// given instant, falling back to the standard price when the requested type
// is absent or out of window.
func (ps *PriceSet) Resolve(priceType PriceType, at time.Time) (decimal.Decimal, error) {
	if !priceType.IsValid() {
		return decimal.Zero, shared.NewDomainError("INVALID_INPUT", "Invalid price type")
	}

	for idx := range ps.Prices {
		if ps.Prices[idx].Type == priceType && ps.Prices[idx].IsValidAt(at) {
			return ps.Prices[idx].UnitPrice, nil
		}
	}

	for idx := range ps.Prices {
		if ps.Prices[idx].Type == PriceTypeStandard {
			return ps.Prices[idx].UnitPrice, nil
		}
	}

	// A set loaded from storage always carries its standard price; reaching
	// this point means the structural invariant was violated upstream.
	return decimal.Zero, shared.NewDomainError("INVALID_STATE", "Price set has no standard price")
}

// Standard returns the standard price record
func (ps *PriceSet) Standard() *Price {
	for idx := range ps.Prices {
		if ps.Prices[idx].Type == PriceTypeStandard {
			return &ps.Prices[idx]
		}
	}
	return nil
}
