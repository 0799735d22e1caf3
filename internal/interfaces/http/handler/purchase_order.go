package handler

import (
	"github.com/gin-gonic/gin"

	procurementapp "github.com/inventra/backend/internal/application/procurement"
)

// PurchaseOrderHandler exposes the purchase order API endpoints
type PurchaseOrderHandler struct {
	BaseHandler
	orders   *procurementapp.PurchaseOrderService
	receipts *procurementapp.GoodsReceiptService
}

// NewPurchaseOrderHandler creates a new PurchaseOrderHandler
func NewPurchaseOrderHandler(
	orders *procurementapp.PurchaseOrderService,
	receipts *procurementapp.GoodsReceiptService,
) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{orders: orders, receipts: receipts}
}

// RegisterRoutes registers the purchase order routes
func (h *PurchaseOrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/procurement/orders")
	g.POST("", h.Create)
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.POST("/:id/lines", h.AddLine)
	g.PUT("/:id/lines/:line_id", h.UpdateLine)
	g.DELETE("/:id/lines/:line_id", h.RemoveLine)
	g.POST("/:id/submit", h.Submit)
	g.POST("/:id/cancel", h.Cancel)
	g.GET("/:id/receipts", h.ListReceipts)
}

// Create creates a new draft purchase order
func (h *PurchaseOrderHandler) Create(c *gin.Context) {
	var req procurementapp.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	order, err := h.orders.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, order)
}

// List lists purchase orders with pagination
func (h *PurchaseOrderHandler) List(c *gin.Context) {
	filter, err := bindFilter(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	orders, err := h.orders.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, orders)
}

// Get returns a single purchase order by ID
func (h *PurchaseOrderHandler) Get(c *gin.Context) {
	orderID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	order, err := h.orders.Get(c.Request.Context(), orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// AddLine adds a line to a draft order
func (h *PurchaseOrderHandler) AddLine(c *gin.Context) {
	orderID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	var req procurementapp.LineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	order, err := h.orders.AddLine(c.Request.Context(), orderID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// UpdateLine replaces the values of a draft order line
func (h *PurchaseOrderHandler) UpdateLine(c *gin.Context) {
	orderID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}
	lineID, err := parseUUIDParam(c, "line_id")
	if err != nil {
		h.BadRequest(c, "Invalid line ID")
		return
	}

	var req procurementapp.LineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	order, err := h.orders.UpdateLine(c.Request.Context(), orderID, lineID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// RemoveLine removes a line from a draft order
func (h *PurchaseOrderHandler) RemoveLine(c *gin.Context) {
	orderID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}
	lineID, err := parseUUIDParam(c, "line_id")
	if err != nil {
		h.BadRequest(c, "Invalid line ID")
		return
	}

	order, err := h.orders.RemoveLine(c.Request.Context(), orderID, lineID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// Submit submits a draft order for receiving
func (h *PurchaseOrderHandler) Submit(c *gin.Context) {
	orderID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	order, err := h.orders.Submit(c.Request.Context(), orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// Cancel cancels an order that has not received any goods yet
func (h *PurchaseOrderHandler) Cancel(c *gin.Context) {
	orderID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	order, err := h.orders.Cancel(c.Request.Context(), orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// ListReceipts lists the goods receipts recorded against an order
func (h *PurchaseOrderHandler) ListReceipts(c *gin.Context) {
	orderID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	receipts, err := h.receipts.ListByOrder(c.Request.Context(), orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, receipts)
}
