// internal/interfaces/http/handlers/shipping.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/threadline/storefront-backend/internal/config"
	"github.com/threadline/storefront-backend/internal/domain/shipping"
	"gorm.io/gorm"
)

// ShippingHandler handles shipping method endpoints
type ShippingHandler struct {
	shippingService *shipping.Service
	config          *config.Config
}

// NewShippingHandler creates a new shipping handler
func NewShippingHandler(db *gorm.DB, cfg *config.Config) *ShippingHandler {
	return &ShippingHandler{
		shippingService: shipping.NewService(db, cfg),
		config:          cfg,
	}
}

// GetShippingMethods handles GET /shipping/methods
func (h *ShippingHandler) GetShippingMethods(c *gin.Context) {
	methods, err := h.shippingService.ListActive()
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Shipping methods retrieved successfully",
		"data":    methods,
	})
}

// GetShippingQuote handles GET /shipping/methods/:id/quote?weight_grams=N
func (h *ShippingHandler) GetShippingQuote(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid shipping method ID"})
		return
	}

	weightGrams, _ := strconv.Atoi(c.DefaultQuery("weight_grams", "0"))

	method, err := h.shippingService.GetActive(uint(id))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"method":       method,
			"weight_grams": weightGrams,
			"price":        method.PriceFor(weightGrams),
		},
	})
}

// AdminGetShippingMethods handles GET /admin/shipping/methods
func (h *ShippingHandler) AdminGetShippingMethods(c *gin.Context) {
	methods, err := h.shippingService.AdminList()
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Shipping methods retrieved successfully",
		"data":    methods,
	})
}

// AdminCreateShippingMethod handles POST /admin/shipping/methods
func (h *ShippingHandler) AdminCreateShippingMethod(c *gin.Context) {
	var req shipping.MethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	method, err := h.shippingService.Create(&req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Shipping method created successfully",
		"data":    method,
	})
}

// AdminUpdateShippingMethod handles PUT /admin/shipping/methods/:id
func (h *ShippingHandler) AdminUpdateShippingMethod(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid shipping method ID"})
		return
	}

	var req shipping.MethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	method, err := h.shippingService.Update(uint(id), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Shipping method updated successfully",
		"data":    method,
	})
}

// AdminDeleteShippingMethod handles DELETE /admin/shipping/methods/:id
func (h *ShippingHandler) AdminDeleteShippingMethod(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid shipping method ID"})
		return
	}

	if err := h.shippingService.Delete(uint(id)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Shipping method deleted successfully",
	})
}
