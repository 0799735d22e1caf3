package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestComputeLine(t *testing.T) {
	t.Run("computes tax and total", func(t *testing.T) {
		// 10 units at 5.00 with 5% tax: 50.00 + 2.50 = 52.50
		amounts, err := ComputeLine(LineInput{
			Quantity:      dec("10"),
			UnitPrice:     dec("5.00"),
			TaxPercentage: dec("5"),
		})

		require.NoError(t, err)
		assert.Equal(t, "2.50", amounts.TaxAmount.StringFixed(2))
		assert.Equal(t, "52.50", amounts.LineTotal.StringFixed(2))
	})

	t.Run("taxes the exact product, not the rounded gross", func(t *testing.T) {
		// 10.049 * 1.00 = 10.049; 10% tax = 1.0049 -> 1.00.
		// Rounding the gross first (10.05) would give 1.005 -> 1.01.
		amounts, err := ComputeLine(LineInput{
			Quantity:      dec("10.049"),
			UnitPrice:     dec("1.00"),
			TaxPercentage: dec("10"),
		})

		require.NoError(t, err)
		assert.Equal(t, "1.00", amounts.TaxAmount.StringFixed(2))
		assert.Equal(t, "11.05", amounts.LineTotal.StringFixed(2))
	})

	t.Run("applies discount after tax", func(t *testing.T) {
		amounts, err := ComputeLine(LineInput{
			Quantity:       dec("2"),
			UnitPrice:      dec("100.00"),
			TaxPercentage:  dec("10"),
			DiscountAmount: dec("20.00"),
		})

		require.NoError(t, err)
		assert.Equal(t, "20.00", amounts.TaxAmount.StringFixed(2))
		assert.Equal(t, "200.00", amounts.LineTotal.StringFixed(2))
	})

	t.Run("rounds tax half up", func(t *testing.T) {
		// 3 * 3.33 = 9.99, 5% = 0.4995 -> 0.50
		amounts, err := ComputeLine(LineInput{
			Quantity:      dec("3"),
			UnitPrice:     dec("3.33"),
			TaxPercentage: dec("5"),
		})

		require.NoError(t, err)
		assert.Equal(t, "0.50", amounts.TaxAmount.StringFixed(2))
	})

	t.Run("zero quantity yields zero amounts", func(t *testing.T) {
		amounts, err := ComputeLine(LineInput{
			Quantity:      decimal.Zero,
			UnitPrice:     dec("5.00"),
			TaxPercentage: dec("5"),
		})

		require.NoError(t, err)
		assert.True(t, amounts.TaxAmount.IsZero())
		assert.True(t, amounts.LineTotal.IsZero())
	})

	t.Run("rejects negative quantity", func(t *testing.T) {
		_, err := ComputeLine(LineInput{Quantity: dec("-1"), UnitPrice: dec("5.00")})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Quantity")
	})

	t.Run("rejects negative unit price", func(t *testing.T) {
		_, err := ComputeLine(LineInput{Quantity: dec("1"), UnitPrice: dec("-5.00")})
		require.Error(t, err)
	})

	t.Run("rejects tax above 100", func(t *testing.T) {
		_, err := ComputeLine(LineInput{Quantity: dec("1"), UnitPrice: dec("5.00"), TaxPercentage: dec("101")})
		require.Error(t, err)
	})

	t.Run("rejects discount exceeding pre-tax value", func(t *testing.T) {
		_, err := ComputeLine(LineInput{
			Quantity:       dec("1"),
			UnitPrice:      dec("5.00"),
			DiscountAmount: dec("5.01"),
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Discount")
	})
}

func TestComputeDocumentTotals(t *testing.T) {
	lines := []LineInput{
		{Quantity: dec("10"), UnitPrice: dec("5.00"), TaxPercentage: dec("5")},
		{Quantity: dec("2"), UnitPrice: dec("100.00"), TaxPercentage: dec("10"), DiscountAmount: dec("20.00")},
		{Quantity: dec("3"), UnitPrice: dec("3.33"), TaxPercentage: dec("5")},
	}

	t.Run("sums all lines", func(t *testing.T) {
		totals, err := ComputeDocumentTotals(lines)

		require.NoError(t, err)
		assert.Equal(t, "259.99", totals.Subtotal.StringFixed(2))
		assert.Equal(t, "23.00", totals.TaxAmount.StringFixed(2))
		assert.Equal(t, "20.00", totals.DiscountAmount.StringFixed(2))
		assert.Equal(t, "262.99", totals.TotalAmount.StringFixed(2))
	})

	t.Run("is order independent", func(t *testing.T) {
		reordered := []LineInput{lines[2], lines[0], lines[1]}

		a, err := ComputeDocumentTotals(lines)
		require.NoError(t, err)
		b, err := ComputeDocumentTotals(reordered)
		require.NoError(t, err)

		assert.Equal(t, a.Subtotal.String(), b.Subtotal.String())
		assert.Equal(t, a.TaxAmount.String(), b.TaxAmount.String())
		assert.Equal(t, a.DiscountAmount.String(), b.DiscountAmount.String())
		assert.Equal(t, a.TotalAmount.String(), b.TotalAmount.String())
	})

	t.Run("empty document yields zero totals", func(t *testing.T) {
		totals, err := ComputeDocumentTotals(nil)
		require.NoError(t, err)
		assert.True(t, totals.TotalAmount.IsZero())
	})

	t.Run("propagates line validation errors", func(t *testing.T) {
		_, err := ComputeDocumentTotals([]LineInput{{Quantity: dec("-1")}})
		require.Error(t, err)
	})
}
