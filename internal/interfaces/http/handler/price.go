package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	pricingapp "github.com/inventra/backend/internal/application/pricing"
)

// PriceHandler exposes the pricing API endpoints
type PriceHandler struct {
	BaseHandler
	prices *pricingapp.PriceService
}

// NewPriceHandler creates a new PriceHandler
func NewPriceHandler(prices *pricingapp.PriceService) *PriceHandler {
	return &PriceHandler{prices: prices}
}

// RegisterRoutes registers the pricing routes
func (h *PriceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/pricing/variants")
	g.POST("", h.CreateSet)
	g.GET("/:variant_id", h.GetSet)
	g.DELETE("/:variant_id", h.DeleteSet)
	g.PUT("/:variant_id/prices", h.SetPrice)
	g.DELETE("/:variant_id/prices/:type", h.RemovePrice)
	g.GET("/:variant_id/resolve", h.Resolve)
}

// CreateSet seeds a variant's price set with its standard price
func (h *PriceHandler) CreateSet(c *gin.Context) {
	var req pricingapp.CreatePriceSetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	set, err := h.prices.CreateSet(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, set)
}

// GetSet returns a variant's full price set
func (h *PriceHandler) GetSet(c *gin.Context) {
	variantID, err := parseUUIDParam(c, "variant_id")
	if err != nil {
		h.BadRequest(c, "Invalid variant ID")
		return
	}

	set, err := h.prices.GetSet(c.Request.Context(), variantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, set)
}

// DeleteSet removes a variant's price set entirely
func (h *PriceHandler) DeleteSet(c *gin.Context) {
	variantID, err := parseUUIDParam(c, "variant_id")
	if err != nil {
		h.BadRequest(c, "Invalid variant ID")
		return
	}

	if err := h.prices.DeleteSet(c.Request.Context(), variantID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// SetPrice adds or replaces one price record on a variant's set
func (h *PriceHandler) SetPrice(c *gin.Context) {
	variantID, err := parseUUIDParam(c, "variant_id")
	if err != nil {
		h.BadRequest(c, "Invalid variant ID")
		return
	}

	var req pricingapp.SetPriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	set, err := h.prices.SetPrice(c.Request.Context(), variantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, set)
}

// RemovePrice removes one price record from a variant's set
func (h *PriceHandler) RemovePrice(c *gin.Context) {
	variantID, err := parseUUIDParam(c, "variant_id")
	if err != nil {
		h.BadRequest(c, "Invalid variant ID")
		return
	}

	set, err := h.prices.RemovePrice(c.Request.Context(), variantID, c.Param("type"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, set)
}

// Resolve answers which price applies for a variant at a point in time.
// ?type defaults to STANDARD and ?at (RFC 3339) defaults to now.
func (h *PriceHandler) Resolve(c *gin.Context) {
	variantID, err := parseUUIDParam(c, "variant_id")
	if err != nil {
		h.BadRequest(c, "Invalid variant ID")
		return
	}

	priceType := c.DefaultQuery("type", "STANDARD")

	at := time.Now()
	if raw := c.Query("at"); raw != "" {
		at, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			h.BadRequest(c, "Invalid 'at' timestamp, expected RFC 3339")
			return
		}
	}

	resolved, err := h.prices.ResolvePrice(c.Request.Context(), variantID, priceType, at)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resolved)
}
