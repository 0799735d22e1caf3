package procurement

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createSubmittedOrder(t *testing.T) (*PurchaseOrder, *PurchaseOrderLine) {
	t.Helper()
	o := createTestOrder(t)
	line := addTestLine(t, o, 10, 5, 5)
	require.NoError(t, o.Submit())
	return o, line
}

func TestNewGoodsReceiptNote(t *testing.T) {
	t.Run("creates draft receipt copying order line values", func(t *testing.T) {
		o, line := createSubmittedOrder(t)

		grn, err := NewGoodsReceiptNote("GRN-001", o, time.Now(), []ReceivedValues{{
			PurchaseOrderLineID: line.ID,
			QuantityReceived:    decimal.NewFromInt(8),
			QuantityAccepted:    decimal.NewFromInt(8),
		}})

		require.NoError(t, err)
		assert.Equal(t, GoodsReceiptStatusDraft, grn.Status)
		assert.Equal(t, o.WarehouseID, grn.WarehouseID)
		require.Len(t, grn.Lines, 1)
		assert.Equal(t, line.ProductID, grn.Lines[0].ProductID)
		assert.Equal(t, line.UnitPrice, grn.Lines[0].UnitPrice)
		assert.Equal(t, line.TaxPercentage, grn.Lines[0].TaxPercentage)
	})

	t.Run("rejects accepted above received", func(t *testing.T) {
		o, line := createSubmittedOrder(t)

		_, err := NewGoodsReceiptNote("GRN-001", o, time.Now(), []ReceivedValues{{
			PurchaseOrderLineID: line.ID,
			QuantityReceived:    decimal.NewFromInt(5),
			QuantityAccepted:    decimal.NewFromInt(6),
		}})
		require.Error(t, err)
	})

	t.Run("rejects accepted above outstanding order quantity", func(t *testing.T) {
		o, line := createSubmittedOrder(t)
		require.NoError(t, o.ApplyReceipt([]ReceiptLine{{PurchaseOrderLineID: line.ID, QuantityAccepted: decimal.NewFromInt(8)}}))

		_, err := NewGoodsReceiptNote("GRN-002", o, time.Now(), []ReceivedValues{{
			PurchaseOrderLineID: line.ID,
			QuantityReceived:    decimal.NewFromInt(3),
			QuantityAccepted:    decimal.NewFromInt(3),
		}})
		require.Error(t, err)
	})

	t.Run("rejects receipt against a draft order", func(t *testing.T) {
		o := createTestOrder(t)
		line := addTestLine(t, o, 10, 5, 0)

		_, err := NewGoodsReceiptNote("GRN-001", o, time.Now(), []ReceivedValues{{
			PurchaseOrderLineID: line.ID,
			QuantityReceived:    decimal.NewFromInt(1),
			QuantityAccepted:    decimal.NewFromInt(1),
		}})
		require.Error(t, err)
	})

	t.Run("rejects unknown order line", func(t *testing.T) {
		o, _ := createSubmittedOrder(t)

		_, err := NewGoodsReceiptNote("GRN-001", o, time.Now(), []ReceivedValues{{
			PurchaseOrderLineID: uuid.New(),
			QuantityReceived:    decimal.NewFromInt(1),
			QuantityAccepted:    decimal.NewFromInt(1),
		}})
		require.Error(t, err)
	})
}

func TestGoodsReceiptNote_Complete(t *testing.T) {
	t.Run("completes once", func(t *testing.T) {
		o, line := createSubmittedOrder(t)
		grn, err := NewGoodsReceiptNote("GRN-001", o, time.Now(), []ReceivedValues{{
			PurchaseOrderLineID: line.ID,
			QuantityReceived:    decimal.NewFromInt(8),
			QuantityAccepted:    decimal.NewFromInt(8),
		}})
		require.NoError(t, err)

		require.NoError(t, grn.Complete())

		assert.True(t, grn.IsCompleted())
		assert.NotNil(t, grn.CompletedAt)
	})

	t.Run("second completion fails with ALREADY_COMPLETED", func(t *testing.T) {
		o, line := createSubmittedOrder(t)
		grn, _ := NewGoodsReceiptNote("GRN-001", o, time.Now(), []ReceivedValues{{
			PurchaseOrderLineID: line.ID,
			QuantityReceived:    decimal.NewFromInt(8),
			QuantityAccepted:    decimal.NewFromInt(8),
		}})
		require.NoError(t, grn.Complete())

		err := grn.Complete()

		require.Error(t, err)
		assert.Contains(t, err.Error(), "already been completed")
	})

	t.Run("cancelled receipt cannot complete", func(t *testing.T) {
		o, line := createSubmittedOrder(t)
		grn, _ := NewGoodsReceiptNote("GRN-001", o, time.Now(), []ReceivedValues{{
			PurchaseOrderLineID: line.ID,
			QuantityReceived:    decimal.NewFromInt(8),
			QuantityAccepted:    decimal.NewFromInt(8),
		}})
		require.NoError(t, grn.Cancel())

		require.Error(t, grn.Complete())
	})

	t.Run("completed receipt cannot be cancelled", func(t *testing.T) {
		o, line := createSubmittedOrder(t)
		grn, _ := NewGoodsReceiptNote("GRN-001", o, time.Now(), []ReceivedValues{{
			PurchaseOrderLineID: line.ID,
			QuantityReceived:    decimal.NewFromInt(8),
			QuantityAccepted:    decimal.NewFromInt(8),
		}})
		require.NoError(t, grn.Complete())

		require.Error(t, grn.Cancel())
	})
}

func TestGoodsReceiptNote_AcceptedLines(t *testing.T) {
	o := createTestOrder(t)
	line1 := addTestLine(t, o, 10, 5, 0)
	line2 := addTestLine(t, o, 4, 2, 0)
	require.NoError(t, o.Submit())

	grn, err := NewGoodsReceiptNote("GRN-001", o, time.Now(), []ReceivedValues{
		{PurchaseOrderLineID: line1.ID, QuantityReceived: decimal.NewFromInt(10), QuantityAccepted: decimal.NewFromInt(9)},
		{PurchaseOrderLineID: line2.ID, QuantityReceived: decimal.NewFromInt(4), QuantityAccepted: decimal.Zero},
	})
	require.NoError(t, err)

	accepted := grn.AcceptedLines()
	require.Len(t, accepted, 1)
	assert.Equal(t, line1.ProductID, accepted[0].ProductID)

	receiptLines := grn.ReceiptLines()
	require.Len(t, receiptLines, 1)
	assert.Equal(t, "9", receiptLines[0].QuantityAccepted.String())
}
