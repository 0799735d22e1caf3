package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	procurementapp "github.com/inventra/backend/internal/application/procurement"
)

// PaymentHandler exposes the supplier payment API endpoints
type PaymentHandler struct {
	BaseHandler
	payments *procurementapp.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(payments *procurementapp.PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

// RegisterRoutes registers the supplier payment routes
func (h *PaymentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/procurement/payments")
	g.POST("", h.Create)
	g.GET("/:id", h.Get)
	g.POST("/:id/process", h.StartProcessing)
	g.POST("/:id/complete", h.Complete)
	g.POST("/:id/fail", h.Fail)
	g.POST("/:id/cancel", h.Cancel)
}

// Create records a pending payment against an invoice.
// The Idempotency-Key header guards retried submissions.
func (h *PaymentHandler) Create(c *gin.Context) {
	var req procurementapp.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if req.IdempotencyKey == "" {
		req.IdempotencyKey = c.GetHeader(IdempotencyKeyHeader)
	}

	payment, err := h.payments.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, payment)
}

// Get returns a single payment by ID
func (h *PaymentHandler) Get(c *gin.Context) {
	paymentID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid payment ID")
		return
	}

	payment, err := h.payments.Get(c.Request.Context(), paymentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, payment)
}

// StartProcessing moves a pending payment into processing
func (h *PaymentHandler) StartProcessing(c *gin.Context) {
	h.transition(c, h.payments.StartProcessing)
}

// Complete completes a payment and applies it to the invoice balance
func (h *PaymentHandler) Complete(c *gin.Context) {
	h.transition(c, h.payments.Complete)
}

// Fail marks a payment as failed; a completed payment is reversed first
func (h *PaymentHandler) Fail(c *gin.Context) {
	h.transition(c, h.payments.Fail)
}

// Cancel cancels a payment that has not completed
func (h *PaymentHandler) Cancel(c *gin.Context) {
	h.transition(c, h.payments.Cancel)
}

// transition runs one of the payment state transition operations
func (h *PaymentHandler) transition(
	c *gin.Context,
	op func(ctx context.Context, paymentID uuid.UUID) (*procurementapp.PaymentResponse, error),
) {
	paymentID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid payment ID")
		return
	}

	payment, err := op(c.Request.Context(), paymentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, payment)
}
