package procurement

import (
	"time"

	"github.com/google/uuid"
	"github.com/inventra/backend/internal/domain/procurement"
	"github.com/shopspring/decimal"
)

// LineRequest carries caller-supplied values for one order or invoice line
type LineRequest struct {
	ProductID      uuid.UUID       `json:"product_id" binding:"required"`
	VariantID      uuid.UUID       `json:"variant_id"`
	Quantity       decimal.Decimal `json:"quantity"`
	UnitPrice      *decimal.Decimal `json:"unit_price" binding:"omitempty,dec2"` // nil resolves through the price engine
	PriceType      string          `json:"price_type,omitempty"`
	TaxPercentage  decimal.Decimal `json:"tax_percentage"`
	DiscountAmount decimal.Decimal `json:"discount_amount" binding:"dec2"`
}

// CreateOrderRequest creates a draft purchase order
type CreateOrderRequest struct {
	SupplierID   uuid.UUID     `json:"supplier_id" binding:"required"`
	WarehouseID  uuid.UUID     `json:"warehouse_id" binding:"required"`
	ExpectedDate *time.Time    `json:"expected_date"`
	Notes        string        `json:"notes"`
	Lines        []LineRequest `json:"lines"`
}

// OrderLineResponse is the API representation of an order line
type OrderLineResponse struct {
	ID               uuid.UUID       `json:"id"`
	ProductID        uuid.UUID       `json:"product_id"`
	VariantID        uuid.UUID       `json:"variant_id"`
	Quantity         decimal.Decimal `json:"quantity"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
	TaxPercentage    decimal.Decimal `json:"tax_percentage"`
	DiscountAmount   decimal.Decimal `json:"discount_amount"`
	TaxAmount        decimal.Decimal `json:"tax_amount"`
	LineTotal        decimal.Decimal `json:"line_total"`
	ReceivedQuantity decimal.Decimal `json:"received_quantity"`
}

// OrderResponse is the API representation of a purchase order
type OrderResponse struct {
	ID             uuid.UUID           `json:"id"`
	OrderNumber    string              `json:"order_number"`
	SupplierID     uuid.UUID           `json:"supplier_id"`
	WarehouseID    uuid.UUID           `json:"warehouse_id"`
	Status         string              `json:"status"`
	Lines          []OrderLineResponse `json:"lines"`
	Subtotal       decimal.Decimal     `json:"subtotal"`
	TaxAmount      decimal.Decimal     `json:"tax_amount"`
	DiscountAmount decimal.Decimal     `json:"discount_amount"`
	TotalAmount    decimal.Decimal     `json:"total_amount"`
	ExpectedDate   *time.Time          `json:"expected_date,omitempty"`
	SubmittedAt    *time.Time          `json:"submitted_at,omitempty"`
	Notes          string              `json:"notes,omitempty"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

// NewOrderResponse converts a domain order to a response DTO
func NewOrderResponse(o *procurement.PurchaseOrder) *OrderResponse {
	lines := make([]OrderLineResponse, 0, len(o.Lines))
	for i := range o.Lines {
		l := &o.Lines[i]
		lines = append(lines, OrderLineResponse{
			ID:               l.ID,
			ProductID:        l.ProductID,
			VariantID:        l.VariantID,
			Quantity:         l.Quantity,
			UnitPrice:        l.UnitPrice,
			TaxPercentage:    l.TaxPercentage,
			DiscountAmount:   l.DiscountAmount,
			TaxAmount:        l.TaxAmount,
			LineTotal:        l.LineTotal,
			ReceivedQuantity: l.ReceivedQuantity,
		})
	}
	return &OrderResponse{
		ID:             o.ID,
		OrderNumber:    o.OrderNumber,
		SupplierID:     o.SupplierID,
		WarehouseID:    o.WarehouseID,
		Status:         o.Status.String(),
		Lines:          lines,
		Subtotal:       o.Subtotal,
		TaxAmount:      o.TaxAmount,
		DiscountAmount: o.DiscountAmount,
		TotalAmount:    o.TotalAmount,
		ExpectedDate:   o.ExpectedDate,
		SubmittedAt:    o.SubmittedAt,
		Notes:          o.Notes,
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
	}
}

// ReceiptLineRequest carries received/accepted quantities for one PO line
type ReceiptLineRequest struct {
	PurchaseOrderLineID uuid.UUID       `json:"purchase_order_line_id" binding:"required"`
	QuantityReceived    decimal.Decimal `json:"quantity_received"`
	QuantityAccepted    decimal.Decimal `json:"quantity_accepted"`
}

// CreateReceiptRequest creates a draft goods receipt against an order
type CreateReceiptRequest struct {
	PurchaseOrderID uuid.UUID            `json:"purchase_order_id" binding:"required"`
	ReceiptDate     *time.Time           `json:"receipt_date"`
	Notes           string               `json:"notes"`
	Lines           []ReceiptLineRequest `json:"lines" binding:"required"`
}

// CompleteReceiptRequest completes a draft receipt
type CompleteReceiptRequest struct {
	GoodsReceiptID uuid.UUID `json:"goods_receipt_id" binding:"required"`
	IdempotencyKey string    `json:"idempotency_key"`
	Actor          string    `json:"actor"`
}

// ReceiptLineResponse is the API representation of a receipt line
type ReceiptLineResponse struct {
	ID                  uuid.UUID       `json:"id"`
	PurchaseOrderLineID uuid.UUID       `json:"purchase_order_line_id"`
	ProductID           uuid.UUID       `json:"product_id"`
	VariantID           uuid.UUID       `json:"variant_id"`
	QuantityReceived    decimal.Decimal `json:"quantity_received"`
	QuantityAccepted    decimal.Decimal `json:"quantity_accepted"`
	UnitPrice           decimal.Decimal `json:"unit_price"`
}

// ReceiptResponse is the API representation of a goods receipt note
type ReceiptResponse struct {
	ID              uuid.UUID             `json:"id"`
	ReceiptNumber   string                `json:"receipt_number"`
	PurchaseOrderID uuid.UUID             `json:"purchase_order_id"`
	WarehouseID     uuid.UUID             `json:"warehouse_id"`
	Status          string                `json:"status"`
	Lines           []ReceiptLineResponse `json:"lines"`
	ReceiptDate     time.Time             `json:"receipt_date"`
	CompletedAt     *time.Time            `json:"completed_at,omitempty"`
	Notes           string                `json:"notes,omitempty"`
	CreatedAt       time.Time             `json:"created_at"`
}

// NewReceiptResponse converts a domain receipt to a response DTO
func NewReceiptResponse(g *procurement.GoodsReceiptNote) *ReceiptResponse {
	lines := make([]ReceiptLineResponse, 0, len(g.Lines))
	for i := range g.Lines {
		l := &g.Lines[i]
		lines = append(lines, ReceiptLineResponse{
			ID:                  l.ID,
			PurchaseOrderLineID: l.PurchaseOrderLineID,
			ProductID:           l.ProductID,
			VariantID:           l.VariantID,
			QuantityReceived:    l.QuantityReceived,
			QuantityAccepted:    l.QuantityAccepted,
			UnitPrice:           l.UnitPrice,
		})
	}
	return &ReceiptResponse{
		ID:              g.ID,
		ReceiptNumber:   g.ReceiptNumber,
		PurchaseOrderID: g.PurchaseOrderID,
		WarehouseID:     g.WarehouseID,
		Status:          g.Status.String(),
		Lines:           lines,
		ReceiptDate:     g.ReceiptDate,
		CompletedAt:     g.CompletedAt,
		Notes:           g.Notes,
		CreatedAt:       g.CreatedAt,
	}
}

// QuickCreateInvoiceRequest creates an invoice from a completed receipt
type QuickCreateInvoiceRequest struct {
	GoodsReceiptID uuid.UUID  `json:"goods_receipt_id" binding:"required"`
	DueDate        *time.Time `json:"due_date"`
}

// CreateInvoiceRequest creates an ad hoc invoice against a purchase order
type CreateInvoiceRequest struct {
	PurchaseOrderID uuid.UUID     `json:"purchase_order_id" binding:"required"`
	DueDate         *time.Time    `json:"due_date"`
	Lines           []LineRequest `json:"lines" binding:"required"`
}

// InvoiceLineResponse is the API representation of an invoice line
type InvoiceLineResponse struct {
	ID             uuid.UUID       `json:"id"`
	ProductID      uuid.UUID       `json:"product_id"`
	VariantID      uuid.UUID       `json:"variant_id"`
	Quantity       decimal.Decimal `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	TaxPercentage  decimal.Decimal `json:"tax_percentage"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	LineTotal      decimal.Decimal `json:"line_total"`
}

// InvoiceResponse is the API representation of a purchase invoice
type InvoiceResponse struct {
	ID              uuid.UUID             `json:"id"`
	InvoiceNumber   string                `json:"invoice_number"`
	PurchaseOrderID uuid.UUID             `json:"purchase_order_id"`
	GoodsReceiptID  *uuid.UUID            `json:"goods_receipt_id,omitempty"`
	SupplierID      uuid.UUID             `json:"supplier_id"`
	Status          string                `json:"status"`
	Lines           []InvoiceLineResponse `json:"lines"`
	Subtotal        decimal.Decimal       `json:"subtotal"`
	TaxAmount       decimal.Decimal       `json:"tax_amount"`
	DiscountAmount  decimal.Decimal       `json:"discount_amount"`
	TotalAmount     decimal.Decimal       `json:"total_amount"`
	PaidAmount      decimal.Decimal       `json:"paid_amount"`
	Balance         decimal.Decimal       `json:"balance"`
	DueDate         *time.Time            `json:"due_date,omitempty"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
}

// NewInvoiceResponse converts a domain invoice to a response DTO
func NewInvoiceResponse(inv *procurement.PurchaseInvoice) *InvoiceResponse {
	lines := make([]InvoiceLineResponse, 0, len(inv.Lines))
	for i := range inv.Lines {
		l := &inv.Lines[i]
		lines = append(lines, InvoiceLineResponse{
			ID:             l.ID,
			ProductID:      l.ProductID,
			VariantID:      l.VariantID,
			Quantity:       l.Quantity,
			UnitPrice:      l.UnitPrice,
			TaxPercentage:  l.TaxPercentage,
			DiscountAmount: l.DiscountAmount,
			TaxAmount:      l.TaxAmount,
			LineTotal:      l.LineTotal,
		})
	}
	return &InvoiceResponse{
		ID:              inv.ID,
		InvoiceNumber:   inv.InvoiceNumber,
		PurchaseOrderID: inv.PurchaseOrderID,
		GoodsReceiptID:  inv.GoodsReceiptID,
		SupplierID:      inv.SupplierID,
		Status:          inv.Status.String(),
		Lines:           lines,
		Subtotal:        inv.Subtotal,
		TaxAmount:       inv.TaxAmount,
		DiscountAmount:  inv.DiscountAmount,
		TotalAmount:     inv.TotalAmount,
		PaidAmount:      inv.PaidAmount,
		Balance:         inv.Balance(),
		DueDate:         inv.DueDate,
		CreatedAt:       inv.CreatedAt,
		UpdatedAt:       inv.UpdatedAt,
	}
}

// CreatePaymentRequest creates a pending payment against an invoice
type CreatePaymentRequest struct {
	PurchaseInvoiceID uuid.UUID       `json:"purchase_invoice_id" binding:"required"`
	Amount            decimal.Decimal `json:"amount" binding:"dec2"`
	Method            string          `json:"method" binding:"required"`
	BankName          string          `json:"bank_name"`
	ChequeNumber      string          `json:"cheque_number"`
	TransactionRef    string          `json:"transaction_ref"`
	PaymentDate       *time.Time      `json:"payment_date"`
	IdempotencyKey    string          `json:"idempotency_key"`
	Notes             string          `json:"notes"`
}

// PaymentResponse is the API representation of a supplier payment
type PaymentResponse struct {
	ID                uuid.UUID       `json:"id"`
	PaymentNumber     string          `json:"payment_number"`
	PurchaseInvoiceID uuid.UUID       `json:"purchase_invoice_id"`
	SupplierID        uuid.UUID       `json:"supplier_id"`
	Amount            decimal.Decimal `json:"amount"`
	Method            string          `json:"method"`
	Status            string          `json:"status"`
	BankName          string          `json:"bank_name,omitempty"`
	ChequeNumber      string          `json:"cheque_number,omitempty"`
	TransactionRef    string          `json:"transaction_ref,omitempty"`
	PaymentDate       time.Time       `json:"payment_date"`
	Notes             string          `json:"notes,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// NewPaymentResponse converts a domain payment to a response DTO
func NewPaymentResponse(p *procurement.SupplierPayment) *PaymentResponse {
	return &PaymentResponse{
		ID:                p.ID,
		PaymentNumber:     p.PaymentNumber,
		PurchaseInvoiceID: p.PurchaseInvoiceID,
		SupplierID:        p.SupplierID,
		Amount:            p.Amount,
		Method:            p.Method.String(),
		Status:            p.Status.String(),
		BankName:          p.Reference.BankName,
		ChequeNumber:      p.Reference.ChequeNumber,
		TransactionRef:    p.Reference.TransactionRef,
		PaymentDate:       p.PaymentDate,
		Notes:             p.Notes,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}
