package persistence

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/inventra/backend/internal/domain/procurement"
	"github.com/inventra/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildInvoice(t *testing.T, invoiceNumber string, goodsReceiptID *uuid.UUID) *procurement.PurchaseInvoice {
	t.Helper()
	invoice, err := procurement.NewPurchaseInvoice(invoiceNumber, uuid.New(), goodsReceiptID, uuid.New(),
		[]procurement.InvoiceLineValues{{
			ProductID: uuid.New(),
			Quantity:  decimal.NewFromInt(4),
			UnitPrice: decimal.NewFromFloat(10.50),
		}}, nil)
	require.NoError(t, err)
	return invoice
}

func TestGormPurchaseInvoiceRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("Save and FindByID round trip with lines", func(t *testing.T) {
		repo := NewGormPurchaseInvoiceRepository(newTestDB(t))
		invoice := buildInvoice(t, "INV-2026-00001", nil)

		require.NoError(t, repo.Save(ctx, invoice))

		loaded, err := repo.FindByID(ctx, invoice.ID)
		require.NoError(t, err)
		assert.Equal(t, procurement.InvoiceStatusPending, loaded.Status)
		require.Len(t, loaded.Lines, 1)
		assert.True(t, loaded.TotalAmount.Equal(decimal.NewFromFloat(42.00)))
	})

	t.Run("FindByReceipt skips cancelled invoices", func(t *testing.T) {
		repo := NewGormPurchaseInvoiceRepository(newTestDB(t))
		receiptID := uuid.New()

		cancelled := buildInvoice(t, "INV-2026-00002", &receiptID)
		require.NoError(t, cancelled.Cancel())
		require.NoError(t, repo.Save(ctx, cancelled))

		_, err := repo.FindByReceipt(ctx, receiptID)
		assert.ErrorIs(t, err, shared.ErrNotFound)

		active := buildInvoice(t, "INV-2026-00003", &receiptID)
		require.NoError(t, repo.Save(ctx, active))

		found, err := repo.FindByReceipt(ctx, receiptID)
		require.NoError(t, err)
		assert.Equal(t, active.ID, found.ID)
	})

	t.Run("FindOutstanding excludes paid and cancelled invoices", func(t *testing.T) {
		repo := NewGormPurchaseInvoiceRepository(newTestDB(t))

		open := buildInvoice(t, "INV-2026-00004", nil)
		require.NoError(t, repo.Save(ctx, open))

		paid := buildInvoice(t, "INV-2026-00005", nil)
		require.NoError(t, paid.ApplyPayment(paid.TotalAmount))
		require.NoError(t, repo.Save(ctx, paid))

		cancelled := buildInvoice(t, "INV-2026-00006", nil)
		require.NoError(t, cancelled.Cancel())
		require.NoError(t, repo.Save(ctx, cancelled))

		outstanding, err := repo.FindOutstanding(ctx, shared.Filter{})
		require.NoError(t, err)
		require.Len(t, outstanding, 1)
		assert.Equal(t, open.ID, outstanding[0].ID)
	})

	t.Run("SaveWithVersion persists a payment application and rejects a stale copy", func(t *testing.T) {
		repo := NewGormPurchaseInvoiceRepository(newTestDB(t))
		invoice := buildInvoice(t, "INV-2026-00007", nil)
		require.NoError(t, repo.Save(ctx, invoice))

		stale, err := repo.FindByID(ctx, invoice.ID)
		require.NoError(t, err)

		fresh, err := repo.FindByID(ctx, invoice.ID)
		require.NoError(t, err)
		require.NoError(t, fresh.ApplyPayment(decimal.NewFromInt(20)))
		require.NoError(t, repo.SaveWithVersion(ctx, fresh))

		loaded, err := repo.FindByID(ctx, invoice.ID)
		require.NoError(t, err)
		assert.Equal(t, procurement.InvoiceStatusPartial, loaded.Status)
		assert.True(t, loaded.PaidAmount.Equal(decimal.NewFromInt(20)))

		require.NoError(t, stale.ApplyPayment(decimal.NewFromInt(20)))
		err = repo.SaveWithVersion(ctx, stale)
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	})

	t.Run("GenerateNumber uses the INV prefix", func(t *testing.T) {
		repo := NewGormPurchaseInvoiceRepository(newTestDB(t))

		number, err := repo.GenerateNumber(ctx)
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("INV-%d-00001", time.Now().Year()), number)
	})
}
