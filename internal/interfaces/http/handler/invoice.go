package handler

import (
	"github.com/gin-gonic/gin"

	procurementapp "github.com/inventra/backend/internal/application/procurement"
)

// InvoiceHandler exposes the purchase invoice API endpoints
type InvoiceHandler struct {
	BaseHandler
	invoices *procurementapp.InvoiceService
	payments *procurementapp.PaymentService
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(
	invoices *procurementapp.InvoiceService,
	payments *procurementapp.PaymentService,
) *InvoiceHandler {
	return &InvoiceHandler{invoices: invoices, payments: payments}
}

// RegisterRoutes registers the purchase invoice routes
func (h *InvoiceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/procurement/invoices")
	g.POST("", h.CreateAdHoc)
	g.POST("/from-receipt", h.QuickCreate)
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.POST("/:id/cancel", h.Cancel)
	g.GET("/:id/payments", h.ListPayments)
}

// QuickCreate creates an invoice mirroring a completed receipt's lines
func (h *InvoiceHandler) QuickCreate(c *gin.Context) {
	var req procurementapp.QuickCreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	invoice, err := h.invoices.QuickCreateFromReceipt(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, invoice)
}

// CreateAdHoc creates an invoice with caller-supplied lines
func (h *InvoiceHandler) CreateAdHoc(c *gin.Context) {
	var req procurementapp.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	invoice, err := h.invoices.CreateAdHoc(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, invoice)
}

// List lists invoices; ?outstanding=true restricts to unpaid balances
func (h *InvoiceHandler) List(c *gin.Context) {
	filter, err := bindFilter(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	var invoices []procurementapp.InvoiceResponse
	if c.Query("outstanding") == "true" {
		invoices, err = h.invoices.ListOutstanding(c.Request.Context(), filter)
	} else {
		invoices, err = h.invoices.List(c.Request.Context(), filter)
	}
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoices)
}

// Get returns a single invoice by ID
func (h *InvoiceHandler) Get(c *gin.Context) {
	invoiceID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	invoice, err := h.invoices.Get(c.Request.Context(), invoiceID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoice)
}

// Cancel cancels an invoice that has no applied payments
func (h *InvoiceHandler) Cancel(c *gin.Context) {
	invoiceID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	invoice, err := h.invoices.Cancel(c.Request.Context(), invoiceID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoice)
}

// ListPayments lists the payments recorded against an invoice
func (h *InvoiceHandler) ListPayments(c *gin.Context) {
	invoiceID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	payments, err := h.payments.ListByInvoice(c.Request.Context(), invoiceID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, payments)
}
