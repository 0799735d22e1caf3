// Package pricing implements the line and document level price/tax math and
// the multi-price-type resolution model. All computation is pure and safe to
// call concurrently; nothing in this package touches storage.
package pricing

import (
	"github.com/inventra/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// LineInput carries the raw numeric inputs for one document line.
type LineInput struct {
	Quantity       decimal.Decimal
	UnitPrice      decimal.Decimal
	TaxPercentage  decimal.Decimal
	DiscountAmount decimal.Decimal
}

// LineAmounts is the computed result for one line.
type LineAmounts struct {
	TaxAmount decimal.Decimal
	LineTotal decimal.Decimal
}

// DocumentTotals is the computed result for a whole document.
type DocumentTotals struct {
	Subtotal       decimal.Decimal
	TaxAmount      decimal.Decimal
	DiscountAmount decimal.Decimal
	TotalAmount    decimal.Decimal
}

// ComputeLine computes tax amount and line total for a single line.
//
//	taxAmount = round2(quantity * unitPrice * taxPercentage / 100)
//	lineTotal = quantity*unitPrice + taxAmount - discountAmount
//
// Inputs are validated before any computation: negative quantity, price, tax
// or discount, tax above 100, or a discount exceeding the pre-tax line value
// all fail with INVALID_INPUT.
func ComputeLine(in LineInput) (LineAmounts, error) {
	if err := validateLine(in); err != nil {
		return LineAmounts{}, err
	}

	// Tax rounds once, from the exact product; rounding the gross first
	// drifts a cent when quantity * unitPrice needs more than 2dp.
	gross := in.Quantity.Mul(in.UnitPrice)
	tax := gross.Mul(in.TaxPercentage).Div(hundred).Round(2)
	total := gross.Round(2).Add(tax).Sub(in.DiscountAmount)

	return LineAmounts{
		TaxAmount: tax,
		LineTotal: total,
	}, nil
}

// ComputeDocumentTotals sums per-line results into document totals.
//
//	subtotal    = sum(quantity * unitPrice)
//	taxAmount   = sum(line tax)
//	discount    = sum(line discount)
//	totalAmount = subtotal + taxAmount - discount
//
// The result is order-independent: reordering lines yields identical totals.
func ComputeDocumentTotals(lines []LineInput) (DocumentTotals, error) {
	subtotal := decimal.Zero
	tax := decimal.Zero
	discount := decimal.Zero

	for _, line := range lines {
		amounts, err := ComputeLine(line)
		if err != nil {
			return DocumentTotals{}, err
		}
		subtotal = subtotal.Add(line.Quantity.Mul(line.UnitPrice).Round(2))
		tax = tax.Add(amounts.TaxAmount)
		discount = discount.Add(line.DiscountAmount)
	}

	return DocumentTotals{
		Subtotal:       subtotal,
		TaxAmount:      tax,
		DiscountAmount: discount,
		TotalAmount:    subtotal.Add(tax).Sub(discount),
	}, nil
}

func validateLine(in LineInput) error {
	if in.Quantity.IsNegative() {
		return shared.NewDomainError("INVALID_INPUT", "Quantity cannot be negative")
	}
	if in.UnitPrice.IsNegative() {
		return shared.NewDomainError("INVALID_INPUT", "Unit price cannot be negative")
	}
	if in.TaxPercentage.IsNegative() || in.TaxPercentage.GreaterThan(hundred) {
		return shared.NewDomainError("INVALID_INPUT", "Tax percentage must be between 0 and 100")
	}
	if in.DiscountAmount.IsNegative() {
		return shared.NewDomainError("INVALID_INPUT", "Discount cannot be negative")
	}
	if in.DiscountAmount.GreaterThan(in.Quantity.Mul(in.UnitPrice).Round(2)) {
		return shared.NewDomainError("INVALID_INPUT", "Discount cannot exceed the pre-tax line value")
	}
	return nil
}
