package handler

import (
	"github.com/gin-gonic/gin"

	procurementapp "github.com/inventra/backend/internal/application/procurement"
)

// GoodsReceiptHandler exposes the goods receipt API endpoints
type GoodsReceiptHandler struct {
	BaseHandler
	receipts *procurementapp.GoodsReceiptService
}

// NewGoodsReceiptHandler creates a new GoodsReceiptHandler
func NewGoodsReceiptHandler(receipts *procurementapp.GoodsReceiptService) *GoodsReceiptHandler {
	return &GoodsReceiptHandler{receipts: receipts}
}

// RegisterRoutes registers the goods receipt routes
func (h *GoodsReceiptHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/procurement/receipts")
	g.POST("", h.Create)
	g.GET("/:id", h.Get)
	g.POST("/:id/complete", h.Complete)
	g.POST("/:id/cancel", h.Cancel)
}

// Create records a draft goods receipt against a submitted order
func (h *GoodsReceiptHandler) Create(c *gin.Context) {
	var req procurementapp.CreateReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	receipt, err := h.receipts.CreateFromOrder(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, receipt)
}

// Get returns a single goods receipt by ID
func (h *GoodsReceiptHandler) Get(c *gin.Context) {
	receiptID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid receipt ID")
		return
	}

	receipt, err := h.receipts.Get(c.Request.Context(), receiptID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, receipt)
}

// Complete posts the receipt's accepted quantities into the stock ledger.
// The Idempotency-Key header guards retried completions.
func (h *GoodsReceiptHandler) Complete(c *gin.Context) {
	receiptID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid receipt ID")
		return
	}

	req := procurementapp.CompleteReceiptRequest{
		GoodsReceiptID: receiptID,
		IdempotencyKey: c.GetHeader(IdempotencyKeyHeader),
		Actor:          c.GetHeader(ActorHeader),
	}

	receipt, err := h.receipts.Complete(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, receipt)
}

// Cancel cancels a draft receipt before it touches stock
func (h *GoodsReceiptHandler) Cancel(c *gin.Context) {
	receiptID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid receipt ID")
		return
	}

	receipt, err := h.receipts.Cancel(c.Request.Context(), receiptID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, receipt)
}
