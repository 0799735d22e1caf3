package handler

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	inventoryapp "github.com/inventra/backend/internal/application/inventory"
	pricingapp "github.com/inventra/backend/internal/application/pricing"
	procurementapp "github.com/inventra/backend/internal/application/procurement"
	"github.com/inventra/backend/internal/interfaces/http/dto"
)

func decPtr(d decimal.Decimal) *decimal.Decimal { return &d }

// createOrder creates a draft order with a single 10 x 4.50 line
func createOrder(t *testing.T, engine *gin.Engine, warehouseID uuid.UUID) procurementapp.OrderResponse {
	t.Helper()

	req := procurementapp.CreateOrderRequest{
		SupplierID:  uuid.New(),
		WarehouseID: warehouseID,
		Lines: []procurementapp.LineRequest{{
			ProductID: uuid.New(),
			Quantity:  decimal.NewFromInt(10),
			UnitPrice: decPtr(decimal.NewFromFloat(4.50)),
		}},
	}
	w, resp := doJSON(t, engine, http.MethodPost, "/api/v1/procurement/orders", req, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	return dataAs[procurementapp.OrderResponse](t, resp)
}

// submitOrder submits a draft order through the API
func submitOrder(t *testing.T, engine *gin.Engine, orderID uuid.UUID) procurementapp.OrderResponse {
	t.Helper()

	w, resp := doJSON(t, engine, http.MethodPost, fmt.Sprintf("/api/v1/procurement/orders/%s/submit", orderID), nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	return dataAs[procurementapp.OrderResponse](t, resp)
}

func TestPurchaseOrderLifecycle(t *testing.T) {
	engine := newTestServer(t)

	order := createOrder(t, engine, uuid.New())
	assert.Equal(t, "DRAFT", order.Status)
	assert.True(t, order.TotalAmount.Equal(decimal.NewFromInt(45)))

	t.Run("line editing on a draft", func(t *testing.T) {
		line := procurementapp.LineRequest{
			ProductID: uuid.New(),
			Quantity:  decimal.NewFromInt(2),
			UnitPrice: decPtr(decimal.NewFromInt(7)),
		}
		w, resp := doJSON(t, engine, http.MethodPost, fmt.Sprintf("/api/v1/procurement/orders/%s/lines", order.ID), line, nil)
		require.Equal(t, http.StatusOK, w.Code)
		updated := dataAs[procurementapp.OrderResponse](t, resp)
		require.Len(t, updated.Lines, 2)
		assert.True(t, updated.TotalAmount.Equal(decimal.NewFromInt(59)))

		lineID := updated.Lines[1].ID
		line.Quantity = decimal.NewFromInt(3)
		w, resp = doJSON(t, engine, http.MethodPut, fmt.Sprintf("/api/v1/procurement/orders/%s/lines/%s", order.ID, lineID), line, nil)
		require.Equal(t, http.StatusOK, w.Code)
		updated = dataAs[procurementapp.OrderResponse](t, resp)
		assert.True(t, updated.TotalAmount.Equal(decimal.NewFromInt(66)))

		w, resp = doJSON(t, engine, http.MethodDelete, fmt.Sprintf("/api/v1/procurement/orders/%s/lines/%s", order.ID, lineID), nil, nil)
		require.Equal(t, http.StatusOK, w.Code)
		updated = dataAs[procurementapp.OrderResponse](t, resp)
		assert.Len(t, updated.Lines, 1)
	})

	t.Run("submit freezes the draft", func(t *testing.T) {
		submitted := submitOrder(t, engine, order.ID)
		assert.Equal(t, "SUBMITTED", submitted.Status)

		line := procurementapp.LineRequest{
			ProductID: uuid.New(),
			Quantity:  decimal.NewFromInt(1),
			UnitPrice: decPtr(decimal.NewFromInt(1)),
		}
		w, resp := doJSON(t, engine, http.MethodPost, fmt.Sprintf("/api/v1/procurement/orders/%s/lines", order.ID), line, nil)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, dto.ErrCodeInvalidState, resp.Error.Code)
	})

	t.Run("list and get", func(t *testing.T) {
		w, resp := get(t, engine, "/api/v1/procurement/orders")
		require.Equal(t, http.StatusOK, w.Code)
		orders := dataAs[[]procurementapp.OrderResponse](t, resp)
		assert.Len(t, orders, 1)

		w, resp = get(t, engine, "/api/v1/procurement/orders/"+order.ID.String())
		require.Equal(t, http.StatusOK, w.Code)
		loaded := dataAs[procurementapp.OrderResponse](t, resp)
		assert.Equal(t, order.OrderNumber, loaded.OrderNumber)

		w, _ = get(t, engine, "/api/v1/procurement/orders/"+uuid.NewString())
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestPurchaseOrderResolvesPriceFromEngine(t *testing.T) {
	engine := newTestServer(t)
	variantID := uuid.New()

	// Seed the variant's standard price, then order without a unit price.
	w, _ := doJSON(t, engine, http.MethodPost, "/api/v1/pricing/variants", pricingapp.CreatePriceSetRequest{
		VariantID:     variantID,
		StandardPrice: decimal.NewFromFloat(12.50),
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	req := procurementapp.CreateOrderRequest{
		SupplierID:  uuid.New(),
		WarehouseID: uuid.New(),
		Lines: []procurementapp.LineRequest{{
			ProductID: uuid.New(),
			VariantID: variantID,
			Quantity:  decimal.NewFromInt(2),
		}},
	}
	w, resp := doJSON(t, engine, http.MethodPost, "/api/v1/procurement/orders", req, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	order := dataAs[procurementapp.OrderResponse](t, resp)
	require.Len(t, order.Lines, 1)
	assert.True(t, order.Lines[0].UnitPrice.Equal(decimal.NewFromFloat(12.50)))
	assert.True(t, order.TotalAmount.Equal(decimal.NewFromInt(25)))
}

func TestProcurementFlowEndToEnd(t *testing.T) {
	engine := newTestServer(t)
	warehouseID := uuid.New()

	order := createOrder(t, engine, warehouseID)
	submitOrder(t, engine, order.ID)

	// Receive the full ordered quantity.
	receiptReq := procurementapp.CreateReceiptRequest{
		PurchaseOrderID: order.ID,
		Lines: []procurementapp.ReceiptLineRequest{{
			PurchaseOrderLineID: order.Lines[0].ID,
			QuantityReceived:    decimal.NewFromInt(10),
			QuantityAccepted:    decimal.NewFromInt(10),
		}},
	}
	w, resp := doJSON(t, engine, http.MethodPost, "/api/v1/procurement/receipts", receiptReq, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	receipt := dataAs[procurementapp.ReceiptResponse](t, resp)
	assert.Equal(t, "DRAFT", receipt.Status)

	completePath := fmt.Sprintf("/api/v1/procurement/receipts/%s/complete", receipt.ID)
	w, resp = doJSON(t, engine, http.MethodPost, completePath, nil, map[string]string{ActorHeader: "tester"})
	require.Equal(t, http.StatusOK, w.Code)
	receipt = dataAs[procurementapp.ReceiptResponse](t, resp)
	assert.Equal(t, "COMPLETED", receipt.Status)

	// Completing twice is rejected.
	w, resp = doJSON(t, engine, http.MethodPost, completePath, nil, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, dto.ErrCodeAlreadyCompleted, resp.Error.Code)

	// The accepted quantity landed in the order's warehouse.
	w, resp = get(t, engine, positionPath(warehouseID, order.Lines[0].ProductID))
	require.Equal(t, http.StatusOK, w.Code)
	position := dataAs[inventoryapp.StockPositionResponse](t, resp)
	assert.True(t, position.PhysicalQuantity.Equal(decimal.NewFromInt(10)))

	// The order is fully received.
	w, resp = get(t, engine, "/api/v1/procurement/orders/"+order.ID.String())
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "COMPLETED", dataAs[procurementapp.OrderResponse](t, resp).Status)

	// Invoice the receipt; a second invoice for the same receipt is rejected.
	w, resp = doJSON(t, engine, http.MethodPost, "/api/v1/procurement/invoices/from-receipt",
		procurementapp.QuickCreateInvoiceRequest{GoodsReceiptID: receipt.ID}, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	invoice := dataAs[procurementapp.InvoiceResponse](t, resp)
	assert.Equal(t, "PENDING", invoice.Status)
	assert.True(t, invoice.TotalAmount.Equal(decimal.NewFromInt(45)))

	w, resp = doJSON(t, engine, http.MethodPost, "/api/v1/procurement/invoices/from-receipt",
		procurementapp.QuickCreateInvoiceRequest{GoodsReceiptID: receipt.ID}, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, dto.ErrCodeDuplicateInvoice, resp.Error.Code)

	// Pay in two installments.
	payReq := procurementapp.CreatePaymentRequest{
		PurchaseInvoiceID: invoice.ID,
		Amount:            decimal.NewFromInt(20),
		Method:            "CASH",
	}
	w, resp = doJSON(t, engine, http.MethodPost, "/api/v1/procurement/payments", payReq, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	payment := dataAs[procurementapp.PaymentResponse](t, resp)
	assert.Equal(t, "PENDING", payment.Status)

	w, resp = doJSON(t, engine, http.MethodPost, fmt.Sprintf("/api/v1/procurement/payments/%s/complete", payment.ID), nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "COMPLETED", dataAs[procurementapp.PaymentResponse](t, resp).Status)

	w, resp = get(t, engine, "/api/v1/procurement/invoices/"+invoice.ID.String())
	require.Equal(t, http.StatusOK, w.Code)
	partial := dataAs[procurementapp.InvoiceResponse](t, resp)
	assert.Equal(t, "PARTIAL", partial.Status)
	assert.True(t, partial.Balance.Equal(decimal.NewFromInt(25)))

	// Creating a payment beyond the open balance is rejected up front.
	payReq.Amount = decimal.NewFromInt(100)
	w, resp = doJSON(t, engine, http.MethodPost, "/api/v1/procurement/payments", payReq, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, dto.ErrCodeOverpayment, resp.Error.Code)

	payReq.Amount = decimal.NewFromInt(25)
	w, resp = doJSON(t, engine, http.MethodPost, "/api/v1/procurement/payments", payReq, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	second := dataAs[procurementapp.PaymentResponse](t, resp)
	w, _ = doJSON(t, engine, http.MethodPost, fmt.Sprintf("/api/v1/procurement/payments/%s/complete", second.ID), nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, resp = get(t, engine, "/api/v1/procurement/invoices/"+invoice.ID.String())
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "PAID", dataAs[procurementapp.InvoiceResponse](t, resp).Status)

	// Both payments are listed against the invoice, and the paid invoice
	// no longer shows up as outstanding.
	w, resp = get(t, engine, fmt.Sprintf("/api/v1/procurement/invoices/%s/payments", invoice.ID))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, dataAs[[]procurementapp.PaymentResponse](t, resp), 2)

	w, resp = get(t, engine, "/api/v1/procurement/invoices?outstanding=true")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, dataAs[[]procurementapp.InvoiceResponse](t, resp))
}

func TestPaymentFailureReversesInvoiceBalance(t *testing.T) {
	engine := newTestServer(t)

	order := createOrder(t, engine, uuid.New())
	submitOrder(t, engine, order.ID)

	w, resp := doJSON(t, engine, http.MethodPost, "/api/v1/procurement/invoices", procurementapp.CreateInvoiceRequest{
		PurchaseOrderID: order.ID,
		Lines: []procurementapp.LineRequest{{
			ProductID: order.Lines[0].ProductID,
			Quantity:  decimal.NewFromInt(10),
			UnitPrice: decPtr(decimal.NewFromFloat(4.50)),
		}},
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	invoice := dataAs[procurementapp.InvoiceResponse](t, resp)

	w, resp = doJSON(t, engine, http.MethodPost, "/api/v1/procurement/payments", procurementapp.CreatePaymentRequest{
		PurchaseInvoiceID: invoice.ID,
		Amount:            decimal.NewFromInt(45),
		Method:            "BANK_TRANSFER",
		BankName:          "First National",
		TransactionRef:    "TXN-1001",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	payment := dataAs[procurementapp.PaymentResponse](t, resp)

	w, _ = doJSON(t, engine, http.MethodPost, fmt.Sprintf("/api/v1/procurement/payments/%s/complete", payment.ID), nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, resp = get(t, engine, "/api/v1/procurement/invoices/"+invoice.ID.String())
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "PAID", dataAs[procurementapp.InvoiceResponse](t, resp).Status)

	// A failed settlement reverses the applied amount.
	w, resp = doJSON(t, engine, http.MethodPost, fmt.Sprintf("/api/v1/procurement/payments/%s/fail", payment.ID), nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "FAILED", dataAs[procurementapp.PaymentResponse](t, resp).Status)

	w, resp = get(t, engine, "/api/v1/procurement/invoices/"+invoice.ID.String())
	require.Equal(t, http.StatusOK, w.Code)
	reversed := dataAs[procurementapp.InvoiceResponse](t, resp)
	assert.Equal(t, "PENDING", reversed.Status)
	assert.True(t, reversed.Balance.Equal(decimal.NewFromInt(45)))
}

func TestGoodsReceiptCancel(t *testing.T) {
	engine := newTestServer(t)
	order := createOrder(t, engine, uuid.New())
	submitOrder(t, engine, order.ID)

	w, resp := doJSON(t, engine, http.MethodPost, "/api/v1/procurement/receipts", procurementapp.CreateReceiptRequest{
		PurchaseOrderID: order.ID,
		Lines: []procurementapp.ReceiptLineRequest{{
			PurchaseOrderLineID: order.Lines[0].ID,
			QuantityReceived:    decimal.NewFromInt(4),
			QuantityAccepted:    decimal.NewFromInt(4),
		}},
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	receipt := dataAs[procurementapp.ReceiptResponse](t, resp)

	w, resp = doJSON(t, engine, http.MethodPost, fmt.Sprintf("/api/v1/procurement/receipts/%s/cancel", receipt.ID), nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "CANCELLED", dataAs[procurementapp.ReceiptResponse](t, resp).Status)

	// A cancelled receipt never touched stock.
	w, _ = get(t, engine, positionPath(order.WarehouseID, order.Lines[0].ProductID))
	assert.Equal(t, http.StatusNotFound, w.Code)

	// And it shows up against the order.
	w, resp = get(t, engine, fmt.Sprintf("/api/v1/procurement/orders/%s/receipts", order.ID))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, dataAs[[]procurementapp.ReceiptResponse](t, resp), 1)
}
