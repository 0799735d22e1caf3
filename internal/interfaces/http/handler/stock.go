package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	inventoryapp "github.com/inventra/backend/internal/application/inventory"
)

// StockHandler exposes the stock ledger API endpoints
type StockHandler struct {
	BaseHandler
	ledger *inventoryapp.LedgerService
}

// NewStockHandler creates a new StockHandler
func NewStockHandler(ledger *inventoryapp.LedgerService) *StockHandler {
	return &StockHandler{ledger: ledger}
}

// RegisterRoutes registers the inventory routes
func (h *StockHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/inventory")
	g.POST("/adjustments", h.Adjust)
	g.POST("/movements", h.PostMovement)
	g.GET("/movements", h.ListMovements)
	g.POST("/reservations", h.Reserve)
	g.POST("/reservations/release", h.Release)
	g.POST("/transfers", h.Transfer)
	g.GET("/positions", h.GetPosition)
	g.GET("/positions/reconcile", h.Reconcile)
	g.GET("/warehouses/:warehouse_id/positions", h.ListWarehousePositions)
	g.GET("/products/:product_id/stock", h.GetProductStock)
}

// ReconciliationResponse reports whether the movement log sums back to
// the position's physical quantity
type ReconciliationResponse struct {
	LedgerSum  decimal.Decimal `json:"ledger_sum"`
	Consistent bool            `json:"consistent"`
}

// Adjust sets a position's physical quantity to an absolute value
func (h *StockHandler) Adjust(c *gin.Context) {
	var req inventoryapp.AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if req.Actor == "" {
		req.Actor = c.GetHeader(ActorHeader)
	}

	position, err := h.ledger.AdjustStock(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, position)
}

// PostMovement applies a signed quantity delta to a position
func (h *StockHandler) PostMovement(c *gin.Context) {
	var req inventoryapp.PostMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if req.Actor == "" {
		req.Actor = c.GetHeader(ActorHeader)
	}

	movement, err := h.ledger.PostMovement(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, movement)
}

// Reserve earmarks available stock for a sales document
func (h *StockHandler) Reserve(c *gin.Context) {
	var req inventoryapp.ReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if req.Actor == "" {
		req.Actor = c.GetHeader(ActorHeader)
	}

	position, err := h.ledger.Reserve(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, position)
}

// Release returns previously reserved stock to the available pool
func (h *StockHandler) Release(c *gin.Context) {
	var req inventoryapp.ReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if req.Actor == "" {
		req.Actor = c.GetHeader(ActorHeader)
	}

	position, err := h.ledger.Release(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, position)
}

// Transfer moves stock between two warehouses atomically
func (h *StockHandler) Transfer(c *gin.Context) {
	var req inventoryapp.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if req.Actor == "" {
		req.Actor = c.GetHeader(ActorHeader)
	}

	destination, err := h.ledger.Transfer(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, destination)
}

// GetPosition returns a single stock position identified by its key
func (h *StockHandler) GetPosition(c *gin.Context) {
	warehouseID, err := parseUUIDQuery(c, "warehouse_id")
	if err != nil {
		h.BadRequest(c, "Invalid warehouse ID")
		return
	}
	productID, err := parseUUIDQuery(c, "product_id")
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}
	variantID, err := parseOptionalUUIDQuery(c, "variant_id")
	if err != nil {
		h.BadRequest(c, "Invalid variant ID")
		return
	}

	position, err := h.ledger.GetPosition(c.Request.Context(), warehouseID, productID, variantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, position)
}

// ListWarehousePositions lists every position held in one warehouse
func (h *StockHandler) ListWarehousePositions(c *gin.Context) {
	warehouseID, err := parseUUIDParam(c, "warehouse_id")
	if err != nil {
		h.BadRequest(c, "Invalid warehouse ID")
		return
	}
	filter, err := bindFilter(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	positions, err := h.ledger.ListWarehousePositions(c.Request.Context(), warehouseID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, positions)
}

// GetProductStock aggregates a product's stock across all warehouses
func (h *StockHandler) GetProductStock(c *gin.Context) {
	productID, err := parseUUIDParam(c, "product_id")
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	variant, err := parseOptionalUUIDQuery(c, "variant_id")
	if err != nil {
		h.BadRequest(c, "Invalid variant ID")
		return
	}

	stock, err := h.ledger.GetAcrossWarehouses(c.Request.Context(), productID, optionalUUID(variant))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stock)
}

// ListMovements lists the movement log for one position key
func (h *StockHandler) ListMovements(c *gin.Context) {
	warehouseID, err := parseUUIDQuery(c, "warehouse_id")
	if err != nil {
		h.BadRequest(c, "Invalid warehouse ID")
		return
	}
	productID, err := parseUUIDQuery(c, "product_id")
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}
	variantID, err := parseOptionalUUIDQuery(c, "variant_id")
	if err != nil {
		h.BadRequest(c, "Invalid variant ID")
		return
	}
	filter, err := bindFilter(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	movements, err := h.ledger.GetMovements(c.Request.Context(), warehouseID, productID, variantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, movements)
}

// Reconcile checks the movement log sum against the stored position quantity
func (h *StockHandler) Reconcile(c *gin.Context) {
	warehouseID, err := parseUUIDQuery(c, "warehouse_id")
	if err != nil {
		h.BadRequest(c, "Invalid warehouse ID")
		return
	}
	productID, err := parseUUIDQuery(c, "product_id")
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}
	variantID, err := parseOptionalUUIDQuery(c, "variant_id")
	if err != nil {
		h.BadRequest(c, "Invalid variant ID")
		return
	}

	sum, consistent, err := h.ledger.Reconcile(c.Request.Context(), warehouseID, productID, variantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ReconciliationResponse{LedgerSum: sum, Consistent: consistent})
}
